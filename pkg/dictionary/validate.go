package dictionary

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bastiangx/acroserve/internal/utils"
)

// MaxKeyLength caps keys and aliases, in runes.
const MaxKeyLength = 64

// ValidateEntry checks one record in isolation: field shape and category.
// index is reported back in every ValidationError.
func ValidateEntry(index int, e Entry) ValidationErrors {
	var errs ValidationErrors
	fail := func(field string, err error, detail string) {
		errs = append(errs, &ValidationError{Index: index, Key: e.Key, Field: field, Err: err, Detail: detail})
	}

	if msg := surfaceProblem(e.Key); msg != "" {
		fail("key", ErrMalformedEntry, msg)
	}
	if e.Definition == "" || !utils.HasWordRune(e.Definition) {
		fail("definition", ErrMalformedEntry, "definition is empty")
	}
	if !e.Category.Valid() {
		fail("category", ErrUnknownCategory, fmt.Sprintf("%q", e.Category))
	}

	aliases := utils.NewFoldSet(e.Key)
	for _, alias := range e.Aliases {
		if msg := surfaceProblem(alias); msg != "" {
			fail("aliases", ErrMalformedEntry, fmt.Sprintf("alias %q: %s", alias, msg))
			continue
		}
		if !aliases.Add(alias) {
			fail("aliases", ErrDuplicateKey, fmt.Sprintf("alias %q repeats the key or another alias", alias))
		}
	}

	seen := utils.NewFoldSet()
	for _, rel := range e.RelatedKeys {
		switch {
		case rel == "":
			fail("related_keys", ErrMalformedEntry, "empty related key")
		case FoldKey(rel) == FoldKey(e.Key):
			fail("related_keys", ErrMalformedEntry, "entry relates to itself")
		case !seen.Add(rel):
			fail("related_keys", ErrMalformedEntry, fmt.Sprintf("%q listed twice", rel))
		}
	}
	return errs
}

func surfaceProblem(s string) string {
	switch {
	case s == "":
		return "empty"
	case s != strings.TrimSpace(s):
		return "leading or trailing whitespace"
	case !utf8.ValidString(s):
		return "invalid UTF-8"
	case !utils.HasWordRune(s):
		return "no letter or digit"
	case utf8.RuneCountInString(s) > MaxKeyLength:
		return fmt.Sprintf("longer than %d characters", MaxKeyLength)
	}
	return ""
}

// Validate checks a complete entry set: every record on its own, then key and
// alias uniqueness ignoring case, then that every related key resolves.
// It returns nil or a ValidationErrors listing every problem.
func Validate(entries []Entry) error {
	var errs ValidationErrors
	for i, e := range entries {
		errs = append(errs, ValidateEntry(i, e)...)
	}

	// Surfaces are claimed in record order, so a collision is always
	// reported on the later record.
	owner := make(map[string]int, len(entries))
	keys := make(map[string]bool, len(entries))
	for i, e := range entries {
		if e.Key != "" {
			fk := FoldKey(e.Key)
			if prev, dup := owner[fk]; dup {
				errs = append(errs, &ValidationError{
					Index: i, Key: e.Key, Field: "key", Err: ErrDuplicateKey,
					Detail: fmt.Sprintf("already used by %q", entries[prev].Key),
				})
			} else {
				owner[fk] = i
				keys[fk] = true
			}
		}
		for _, alias := range e.Aliases {
			fa := FoldKey(alias)
			if alias == "" || fa == FoldKey(e.Key) {
				continue
			}
			if prev, dup := owner[fa]; dup && prev != i {
				errs = append(errs, &ValidationError{
					Index: i, Key: e.Key, Field: "aliases", Err: ErrDuplicateKey,
					Detail: fmt.Sprintf("alias %q already used by %q", alias, entries[prev].Key),
				})
				continue
			}
			owner[fa] = i
		}
	}

	for i, e := range entries {
		for _, rel := range e.RelatedKeys {
			if rel == "" || FoldKey(rel) == FoldKey(e.Key) {
				continue
			}
			if !keys[FoldKey(rel)] {
				errs = append(errs, &ValidationError{
					Index: i, Key: e.Key, Field: "related_keys", Err: ErrDanglingRelated,
					Detail: fmt.Sprintf("%q", rel),
				})
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
