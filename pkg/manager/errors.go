package manager

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is wrapped by LookupError.
	ErrNotFound = errors.New("key not found")
	// ErrBusy is returned by mutations when another rebuild is running and
	// the manager was built WithRejectWhenBusy.
	ErrBusy = errors.New("dictionary rebuild in progress")
)

// LookupError reports a mutation that named a key the dictionary does not hold.
type LookupError struct {
	Key string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%q: %v", e.Key, ErrNotFound)
}

func (e *LookupError) Unwrap() error {
	return ErrNotFound
}
