// Package suggest ranks dictionary entries against user-typed queries. It
// tolerates typos through bounded edit distance, completes partial input
// through a prefix trie, and blends in category intent and popularity.
package suggest

import "github.com/bastiangx/acroserve/pkg/dictionary"

// Searcher defines the query side of a search engine
type Searcher interface {
	// Search returns at most maxResults entries ranked by relevance to query.
	// An empty category applies no category boost.
	Search(query string, maxResults int, category dictionary.Category) []Result

	// Complete returns entries whose key or alias starts with prefix.
	Complete(prefix string, limit int) []Result

	// Stats returns index and cache statistics
	Stats() map[string]int
}

// Popularity supplies an external per-key weight in [0,1]. Implementations
// must be safe for concurrent use and must not block.
type Popularity interface {
	Weight(key string) float64
}

// MatchType tells how a result matched its query.
type MatchType string

const (
	MatchExact           MatchType = "exact"
	MatchPrefix          MatchType = "prefix"
	MatchFuzzy           MatchType = "fuzzy"
	MatchCategoryBoosted MatchType = "category-boosted"
)

// Result is one ranked entry.
type Result struct {
	Key       string    `json:"key" msgpack:"k"`
	Score     float64   `json:"score" msgpack:"s"`
	MatchType MatchType `json:"match_type" msgpack:"m"`
}

// Weights blends the scoring components. They are normalized by their sum,
// so only their ratios matter.
type Weights struct {
	Similarity float64 `toml:"weight_similarity"`
	Prefix     float64 `toml:"weight_prefix"`
	Category   float64 `toml:"weight_category"`
	Popularity float64 `toml:"weight_popularity"`
}

// DefaultWeights favours lexical similarity, then prefix completion.
func DefaultWeights() Weights {
	return Weights{Similarity: 0.6, Prefix: 0.2, Category: 0.1, Popularity: 0.1}
}

func (w Weights) sanitized() Weights {
	clamp := func(v float64) float64 { return max(v, 0) }
	w = Weights{clamp(w.Similarity), clamp(w.Prefix), clamp(w.Category), clamp(w.Popularity)}
	if w.total() == 0 {
		return DefaultWeights()
	}
	return w
}

func (w Weights) total() float64 {
	return w.Similarity + w.Prefix + w.Category + w.Popularity
}

type noPopularity struct{}

func (noPopularity) Weight(string) float64 { return 0 }
