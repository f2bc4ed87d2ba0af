package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// IsWordRune reports whether r counts as part of a word for boundary checks.
func IsWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// HasWordRune reports whether s contains at least one letter or digit.
func HasWordRune(s string) bool {
	return strings.IndexFunc(s, IsWordRune) >= 0
}

// RuneBefore returns the rune ending right before byte offset i, or
// utf8.RuneError with ok=false at the start of s.
func RuneBefore(s string, i int) (rune, bool) {
	if i <= 0 || i > len(s) {
		return utf8.RuneError, false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return r, true
}

// RuneAt returns the rune starting at byte offset i, or ok=false at the end of s.
func RuneAt(s string, i int) (rune, bool) {
	if i < 0 || i >= len(s) {
		return utf8.RuneError, false
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return r, true
}

// FoldSet tracks strings case-insensitively, keeping first-seen order.
type FoldSet struct {
	seen  map[string]bool
	items []string
}

// NewFoldSet creates a set that treats the given values as already seen.
func NewFoldSet(exclude ...string) *FoldSet {
	s := &FoldSet{seen: make(map[string]bool, len(exclude))}
	for _, e := range exclude {
		s.seen[strings.ToLower(e)] = true
	}
	return s
}

// Add records v and reports whether it was new.
func (s *FoldSet) Add(v string) bool {
	k := strings.ToLower(v)
	if s.seen[k] {
		return false
	}
	s.seen[k] = true
	s.items = append(s.items, v)
	return true
}

// Has reports whether v was seen, ignoring case.
func (s *FoldSet) Has(v string) bool {
	return s.seen[strings.ToLower(v)]
}

// Items returns the added values in insertion order.
func (s *FoldSet) Items() []string {
	return s.items
}

// Len returns the number of added values.
func (s *FoldSet) Len() int {
	return len(s.items)
}
