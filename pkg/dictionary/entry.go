package dictionary

import (
	"slices"
	"strings"
)

// Entry is one vocabulary item: a key, its surface aliases and the metadata
// used for ranking and display.
type Entry struct {
	Key           string   `json:"key" msgpack:"k" toml:"key"`
	Definition    string   `json:"definition" msgpack:"d" toml:"definition"`
	Category      Category `json:"category" msgpack:"c" toml:"category"`
	Aliases       []string `json:"aliases,omitempty" msgpack:"a,omitempty" toml:"aliases,omitempty"`
	RelatedKeys   []string `json:"related_keys,omitempty" msgpack:"r,omitempty" toml:"related_keys,omitempty"`
	CaseSensitive bool     `json:"case_sensitive,omitempty" msgpack:"cs,omitempty" toml:"case_sensitive,omitempty"`
	Pronunciation string   `json:"pronunciation,omitempty" msgpack:"p,omitempty" toml:"pronunciation,omitempty"`
}

// Clone returns a deep copy.
func (e Entry) Clone() Entry {
	e.Aliases = slices.Clone(e.Aliases)
	e.RelatedKeys = slices.Clone(e.RelatedKeys)
	return e
}

// Surfaces returns the key followed by its aliases.
func (e Entry) Surfaces() []string {
	out := make([]string, 0, 1+len(e.Aliases))
	out = append(out, e.Key)
	return append(out, e.Aliases...)
}

// Canonical trims surrounding whitespace from every text field and resolves
// the category name case-insensitively. Unrecognized categories are kept
// verbatim so validation can report them.
func (e Entry) Canonical() Entry {
	e = e.Clone()
	e.Key = strings.TrimSpace(e.Key)
	e.Definition = strings.TrimSpace(e.Definition)
	e.Pronunciation = strings.TrimSpace(e.Pronunciation)
	if c, ok := ParseCategory(string(e.Category)); ok {
		e.Category = c
	} else {
		e.Category = Category(strings.TrimSpace(string(e.Category)))
	}
	for i := range e.Aliases {
		e.Aliases[i] = strings.TrimSpace(e.Aliases[i])
	}
	for i := range e.RelatedKeys {
		e.RelatedKeys[i] = strings.TrimSpace(e.RelatedKeys[i])
	}
	return e
}

// WithoutRelated returns a copy whose related keys no longer reference key.
func (e Entry) WithoutRelated(key string) Entry {
	e = e.Clone()
	e.RelatedKeys = slices.DeleteFunc(e.RelatedKeys, func(r string) bool {
		return strings.EqualFold(r, key)
	})
	return e
}

// FoldKey is the case-insensitive identity used for keys and aliases.
func FoldKey(s string) string {
	return strings.ToLower(s)
}
