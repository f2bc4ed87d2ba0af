package fuzzy

import "slices"

// gramStart pads the front of every term so the first rune forms a gram too.
const gramStart = '\x00'

type gram [2]rune

// GramIndex buckets terms by their distinct bigrams.
//
// A term within k edits of a query, either whole or as a completion of it,
// shares at least |grams(query)| - 2k distinct bigrams with the query, since
// one edit touches at most two bigram positions. Candidates below that count
// cannot qualify and are never scored.
type GramIndex struct {
	buckets map[gram][]int
	size    int
}

// NewGramIndex creates an empty index.
func NewGramIndex() *GramIndex {
	return &GramIndex{buckets: make(map[gram][]int)}
}

// Add registers term under id. Ids must be added in increasing order.
func (g *GramIndex) Add(id int, term string) {
	for gr := range gramSet([]rune(term)) {
		g.buckets[gr] = append(g.buckets[gr], id)
	}
	g.size++
}

// Len returns the number of indexed terms.
func (g *GramIndex) Len() int {
	return g.size
}

// Buckets returns the number of distinct bigrams.
func (g *GramIndex) Buckets() int {
	return len(g.buckets)
}

// Candidates returns the ids that may lie within maxDist edits of query,
// whole or as a prefix, in ascending id order. all reports that the bound
// is too weak to prune and every id is a candidate.
func (g *GramIndex) Candidates(query []rune, maxDist int) (ids []int, all bool) {
	qgrams := gramSet(query)
	need := len(qgrams) - 2*maxDist
	if need <= 0 {
		return nil, true
	}

	counts := make(map[int]int)
	for gr := range qgrams {
		for _, id := range g.buckets[gr] {
			counts[id]++
		}
	}
	for id, c := range counts {
		if c >= need {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, false
}

func gramSet(rs []rune) map[gram]struct{} {
	set := make(map[gram]struct{}, len(rs))
	prev := rune(gramStart)
	for _, r := range rs {
		set[gram{prev, r}] = struct{}{}
		prev = r
	}
	return set
}
