package fuzzy

// Distance returns the Levenshtein distance between a and b, in runes.
func Distance(a, b string) int {
	d, _ := distance([]rune(a), []rune(b), -1)
	return d
}

// BoundedDistance returns the Levenshtein distance between a and b when it is
// at most limit. Once every cell of a DP row exceeds limit it stops early and
// reports ok=false. limit is clamped to MaxDistanceCap.
func BoundedDistance(a, b string, limit int) (int, bool) {
	return BoundedRunes([]rune(a), []rune(b), limit)
}

// BoundedRunes is BoundedDistance over pre-split runes.
func BoundedRunes(a, b []rune, limit int) (int, bool) {
	if limit < 0 {
		return 0, false
	}
	limit = min(limit, MaxDistanceCap)
	if abs(len(a)-len(b)) > limit {
		return 0, false
	}
	return distance(a, b, limit)
}

// PrefixDistance compares query against the first len(query) runes of term,
// which is how far a partially typed query is from completing into term.
// Terms shorter than the query are compared whole.
func PrefixDistance(query, term []rune, limit int) (int, bool) {
	if len(term) > len(query) {
		term = term[:len(query)]
	}
	return BoundedRunes(query, term, limit)
}

// Similarity maps a distance onto [0,1] relative to the longer string.
func Similarity(d, lenA, lenB int) float64 {
	longest := max(lenA, lenB)
	if longest == 0 {
		return 1
	}
	s := 1 - float64(d)/float64(longest)
	if s < 0 {
		return 0
	}
	return s
}

// distance is the two-row DP. A negative bound disables early exit.
func distance(a, b []rune, bound int) (int, bool) {
	if len(a) < len(b) {
		a, b = b, a
	}
	if len(b) == 0 {
		d := len(a)
		return d, bound < 0 || d <= bound
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		rowMin := curr[0]
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
			rowMin = min(rowMin, curr[j])
		}
		if bound >= 0 && rowMin > bound {
			return rowMin, false
		}
		prev, curr = curr, prev
	}

	d := prev[len(b)]
	return d, bound < 0 || d <= bound
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
