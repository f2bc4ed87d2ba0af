package dictionary

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicateKey is returned when a key or alias collides, ignoring case,
	// with another key or alias of the dictionary.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrUnknownCategory is returned for a category outside the fixed set.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrMalformedEntry is returned for empty, oversized or otherwise unusable fields.
	ErrMalformedEntry = errors.New("malformed entry")
	// ErrDanglingRelated is returned when a related key names no entry.
	ErrDanglingRelated = errors.New("dangling related key")
)

// ValidationError describes one rejected field of one record.
type ValidationError struct {
	// Index is the record position in the submitted batch, -1 when unknown.
	Index  int
	Key    string
	Field  string
	Err    error
	Detail string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	if e.Index >= 0 {
		fmt.Fprintf(&b, "record %d", e.Index)
	} else {
		b.WriteString("entry")
	}
	if e.Key != "" {
		fmt.Fprintf(&b, " (%q)", e.Key)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " %s", e.Field)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	if e.Detail != "" {
		fmt.Fprintf(&b, ": %s", e.Detail)
	}
	return b.String()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidationErrors aggregates every problem found in a batch so callers can
// report all of them at once.
type ValidationErrors []*ValidationError

func (es ValidationErrors) Error() string {
	switch len(es) {
	case 0:
		return "no validation errors"
	case 1:
		return es[0].Error()
	}
	msgs := make([]string, 0, len(es))
	for _, e := range es {
		msgs = append(msgs, e.Error())
	}
	return fmt.Sprintf("%d validation errors: %s", len(es), strings.Join(msgs, "; "))
}

// Unwrap lets errors.Is and errors.As see every individual failure.
func (es ValidationErrors) Unwrap() []error {
	errs := make([]error, len(es))
	for i, e := range es {
		errs[i] = e
	}
	return errs
}

// Records returns the distinct record indexes that failed, in order of appearance.
func (es ValidationErrors) Records() []int {
	seen := make(map[int]bool, len(es))
	var out []int
	for _, e := range es {
		if !seen[e.Index] {
			seen[e.Index] = true
			out = append(out, e.Index)
		}
	}
	return out
}

// AsValidationErrors extracts the aggregate from err, wrapping a single
// *ValidationError when needed.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var es ValidationErrors
	if errors.As(err, &es) {
		return es, true
	}
	var single *ValidationError
	if errors.As(err, &single) {
		return ValidationErrors{single}, true
	}
	return nil, false
}
