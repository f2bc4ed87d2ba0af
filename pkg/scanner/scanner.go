// Package scanner finds dictionary terms in free text.
//
// All keys and aliases of a dictionary are compiled into one Aho-Corasick
// automaton, so a scan is linear in the length of the text regardless of the
// vocabulary size. Raw automaton hits are then filtered by the word-boundary
// rule and each entry's case policy, and overlapping survivors are resolved
// in favour of the longest match, then the earliest registered entry.
//
// Patterns and text are lowered rune by rune with unicode.ToLower, the same
// folding dictionary.FoldKey applies, so "ωcore" finds "ΩCORE".
package scanner

import (
	"slices"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	aho "github.com/petar-dambovaliev/aho-corasick"

	"github.com/bastiangx/acroserve/internal/utils"
	"github.com/bastiangx/acroserve/pkg/dictionary"
)

// Match is one detected occurrence. Start and End are half-open byte offsets
// into the scanned text.
type Match struct {
	Start       int    `json:"start" msgpack:"s"`
	End         int    `json:"end" msgpack:"e"`
	Key         string `json:"key" msgpack:"k"`
	MatchedText string `json:"text" msgpack:"t"`
}

// surface is the origin of one automaton pattern.
type surface struct {
	entry         int
	text          string
	caseSensitive bool
}

// Scanner is immutable after New and safe for concurrent Detect calls.
type Scanner struct {
	automaton aho.AhoCorasick
	patterns  []string
	owners    []surface
	keys      []string
}

// New compiles every key and alias of dict.
func New(dict *dictionary.Dictionary) *Scanner {
	s := &Scanner{keys: dict.Keys()}
	for i := 0; i < dict.Len(); i++ {
		e := dict.At(i)
		for _, text := range e.Surfaces() {
			s.patterns = append(s.patterns, dictionary.FoldKey(text))
			s.owners = append(s.owners, surface{entry: i, text: text, caseSensitive: e.CaseSensitive})
		}
	}
	if len(s.patterns) > 0 {
		// Overlapping iteration needs the default (standard) match kind.
		builder := aho.NewAhoCorasickBuilder(aho.Opts{
			DFA: true,
		})
		s.automaton = builder.Build(s.patterns)
	}
	return s
}

type candidate struct {
	start, end int
	owner      surface
}

// Detect returns the non-overlapping matches in text ordered by Start.
// It never fails: empty text, text without terms, or invalid UTF-8 simply
// produce fewer (or no) matches.
func (s *Scanner) Detect(text string) []Match {
	if len(text) == 0 || len(s.patterns) == 0 {
		return nil
	}

	folded, offsets := fold(text)
	var cands []candidate
	iter := s.automaton.IterOverlapping(folded)
	for next := iter.Next(); next != nil; next = iter.Next() {
		m := *next
		owner := s.owners[m.Pattern()]
		start, end := m.Start(), m.End()
		if offsets != nil {
			start, end = offsets[start], offsets[end]
		}
		if start >= end || !atBoundary(text, start, end) {
			continue
		}
		if owner.caseSensitive && text[start:end] != owner.text {
			continue
		}
		cands = append(cands, candidate{start: start, end: end, owner: owner})
	}
	if len(cands) == 0 {
		return nil
	}

	kept := resolveOverlaps(cands)
	out := make([]Match, len(kept))
	for i, c := range kept {
		out[i] = Match{
			Start:       c.start,
			End:         c.end,
			Key:         s.keys[c.owner.entry],
			MatchedText: text[c.start:c.end],
		}
	}
	return out
}

// resolveOverlaps keeps the longest candidate of every overlapping group,
// preferring the earlier registered entry, then the earlier start, on ties.
// The result is ordered by start.
func resolveOverlaps(cands []candidate) []candidate {
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if la, lb := a.end-a.start, b.end-b.start; la != lb {
			return la > lb
		}
		if a.owner.entry != b.owner.entry {
			return a.owner.entry < b.owner.entry
		}
		return a.start < b.start
	})

	var kept []candidate
	for _, c := range cands {
		i := sort.Search(len(kept), func(i int) bool { return kept[i].start >= c.start })
		if i > 0 && kept[i-1].end > c.start {
			continue
		}
		if i < len(kept) && kept[i].start < c.end {
			continue
		}
		kept = slices.Insert(kept, i, c)
	}
	return kept
}

// atBoundary reports whether text[start:end] is delimited by non-word runes
// or the text edges.
func atBoundary(text string, start, end int) bool {
	if r, ok := utils.RuneBefore(text, start); ok && utils.IsWordRune(r) {
		return false
	}
	if r, ok := utils.RuneAt(text, end); ok && utils.IsWordRune(r) {
		return false
	}
	return true
}

// fold lowers s rune by rune. Bytes that are not valid UTF-8 are copied
// as is. Lowering can change a rune's width ("İ" is two bytes, "i" one), so
// when any width changes offsets maps every byte of the folded string, plus
// its end, to the original offset of the rune it came from. offsets is nil
// when folded and original offsets coincide.
func fold(s string) (string, []int) {
	var (
		b       strings.Builder
		offsets []int
	)
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		at := b.Len()
		if r == utf8.RuneError && size == 1 {
			b.WriteByte(s[i])
		} else {
			b.WriteRune(unicode.ToLower(r))
		}
		if offsets == nil && b.Len()-at != size {
			offsets = make([]int, at, len(s)+8)
			for j := range offsets {
				offsets[j] = j
			}
		}
		for offsets != nil && len(offsets) < b.Len() {
			offsets = append(offsets, i)
		}
		i += size
	}
	if offsets != nil {
		offsets = append(offsets, len(s))
	}
	return b.String(), offsets
}

// Stats returns pattern and entry counts.
func (s *Scanner) Stats() map[string]int {
	return map[string]int{
		"patterns": len(s.patterns),
		"entries":  len(s.keys),
	}
}
