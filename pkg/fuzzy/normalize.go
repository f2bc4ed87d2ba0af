// Package fuzzy provides the string primitives behind approximate search:
// query normalization, bounded edit distance and a bigram bucket index used
// to prune candidates before any distance is computed.
package fuzzy

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize folds s into the form used for matching: NFKC, lower case, and
// only letters and digits. "O-RAN", "o ran" and "ＯＲＡＮ" all become "oran".
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// MaxDistanceCap bounds every edit distance computed by the package.
const MaxDistanceCap = 3

// Threshold returns the largest edit distance tolerated for a normalized
// query of n runes: exact for very short queries, growing with length.
func Threshold(n int) int {
	switch {
	case n <= 2:
		return 0
	case n <= 4:
		return 1
	case n <= 7:
		return 2
	}
	return MaxDistanceCap
}
