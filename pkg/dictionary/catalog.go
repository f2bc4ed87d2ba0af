package dictionary

import (
	"bytes"
	_ "embed"
	"fmt"
)

//go:embed data/catalog.json
var baseCatalog []byte

// Base returns a fresh copy of the embedded telecom catalog.
func Base() ([]Entry, error) {
	entries, err := ReadEntries(bytes.NewReader(baseCatalog), FormatJSON)
	if err != nil {
		return nil, fmt.Errorf("base catalog: %w", err)
	}
	return entries, nil
}

// MustBase is Base for callers that cannot recover from a broken binary.
func MustBase() []Entry {
	entries, err := Base()
	if err != nil {
		panic(err)
	}
	return entries
}
