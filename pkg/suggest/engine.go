package suggest

import (
	"sort"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"

	"github.com/bastiangx/acroserve/pkg/dictionary"
	"github.com/bastiangx/acroserve/pkg/fuzzy"
)

// DefaultCacheSize is the number of query candidate sets kept per engine.
const DefaultCacheSize = 512

// term is one normalized key or alias.
type term struct {
	entry int
	text  string
	runes []rune
}

// hit is the best lexical match of one entry for one query.
type hit struct {
	entry  int
	sim    float64
	prefix bool
	exact  bool
}

// Engine is built once per dictionary snapshot and is safe for concurrent use.
type Engine struct {
	dict        *dictionary.Dictionary
	terms       []term
	trie        *patricia.Trie
	grams       *fuzzy.GramIndex
	weights     Weights
	popularity  Popularity
	maxDistance int
	cache       *hitCache
}

var _ Searcher = (*Engine)(nil)

// Option configures an Engine
type Option func(*Engine)

// WithWeights overrides the scoring weights.
func WithWeights(w Weights) Option {
	return func(e *Engine) { e.weights = w.sanitized() }
}

// WithPopularity injects the popularity source read at scoring time.
func WithPopularity(p Popularity) Option {
	return func(e *Engine) {
		if p != nil {
			e.popularity = p
		}
	}
}

// WithMaxDistance lowers the edit distance cap (never above fuzzy.MaxDistanceCap).
func WithMaxDistance(n int) Option {
	return func(e *Engine) { e.maxDistance = max(0, min(n, fuzzy.MaxDistanceCap)) }
}

// WithCacheSize sets the candidate cache capacity; 0 disables caching.
func WithCacheSize(n int) Option {
	return func(e *Engine) { e.cache = newHitCache(n) }
}

// New indexes every key and alias of dict.
func New(dict *dictionary.Dictionary, opts ...Option) *Engine {
	e := &Engine{
		dict:        dict,
		trie:        patricia.NewTrie(),
		grams:       fuzzy.NewGramIndex(),
		weights:     DefaultWeights(),
		popularity:  noPopularity{},
		maxDistance: fuzzy.MaxDistanceCap,
		cache:       newHitCache(DefaultCacheSize),
	}
	for _, opt := range opts {
		opt(e)
	}

	for i := 0; i < dict.Len(); i++ {
		for _, s := range dict.At(i).Surfaces() {
			norm := fuzzy.Normalize(s)
			if norm == "" {
				continue
			}
			id := len(e.terms)
			e.terms = append(e.terms, term{entry: i, text: norm, runes: []rune(norm)})
			e.grams.Add(id, norm)

			key := patricia.Prefix(norm)
			if ids, ok := e.trie.Get(key).([]int); ok {
				e.trie.Set(key, append(ids, id))
			} else {
				e.trie.Insert(key, []int{id})
			}
		}
	}
	log.Debugf("Search index built: %d terms, %d gram buckets", len(e.terms), e.grams.Buckets())
	return e
}

// Search ranks entries against query. Results are ordered by score, then
// key; entries whose every term is beyond the distance threshold are left out.
func (e *Engine) Search(query string, maxResults int, category dictionary.Category) []Result {
	if maxResults <= 0 {
		return nil
	}
	q := fuzzy.Normalize(query)
	if q == "" {
		return nil
	}

	hits, ok := e.cache.get(q)
	if !ok {
		hits = e.collect(q)
		e.cache.put(q, hits)
	}
	return e.rank(hits, maxResults, category)
}

// Complete returns entries with a key or alias that starts with prefix,
// scored the same way Search scores them.
func (e *Engine) Complete(prefix string, limit int) []Result {
	if limit <= 0 {
		return nil
	}
	q := fuzzy.Normalize(prefix)
	if q == "" {
		return nil
	}
	qr := []rune(q)

	best := make(map[int]hit)
	e.visit(e.trie.VisitSubtree, q, func(id int) {
		t := e.terms[id]
		h := hit{
			entry:  t.entry,
			sim:    fuzzy.Similarity(fuzzy.Distance(q, t.text), len(qr), len(t.runes)),
			prefix: true,
			exact:  t.text == q,
		}
		keepBest(best, h, e.weights)
	})
	return e.rank(flatten(best), limit, "")
}

// collect gathers the best lexical hit per qualifying entry.
func (e *Engine) collect(q string) []hit {
	qr := []rune(q)
	k := min(fuzzy.Threshold(len(qr)), e.maxDistance)

	prefixed := make(map[int]bool)
	mark := func(id int) { prefixed[id] = true }
	e.visit(e.trie.VisitSubtree, q, mark)
	e.visit(e.trie.VisitPrefixes, q, mark)

	ids, all := e.grams.Candidates(qr, k)
	if all {
		ids = make([]int, len(e.terms))
		for i := range ids {
			ids[i] = i
		}
	}

	best := make(map[int]hit)
	for _, id := range ids {
		t := e.terms[id]
		d, whole := fuzzy.BoundedRunes(qr, t.runes, k)
		_, partial := fuzzy.PrefixDistance(qr, t.runes, k)
		if !whole && !partial {
			continue
		}
		if !whole {
			d = fuzzy.Distance(q, t.text)
		}
		keepBest(best, hit{
			entry:  t.entry,
			sim:    fuzzy.Similarity(d, len(qr), len(t.runes)),
			prefix: prefixed[id],
			exact:  d == 0,
		}, e.weights)
	}
	return flatten(best)
}

type visitFunc func(patricia.Prefix, patricia.VisitorFunc) error

func (e *Engine) visit(walk visitFunc, q string, fn func(id int)) {
	err := walk(patricia.Prefix(q), func(_ patricia.Prefix, item patricia.Item) error {
		ids, ok := item.([]int)
		if !ok {
			log.Errorf("Unknown trie item type: %T", item)
			return nil
		}
		for _, id := range ids {
			fn(id)
		}
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting search trie: %v", err)
	}
}

func lexical(h hit, w Weights) float64 {
	s := w.Similarity * h.sim
	if h.prefix {
		s += w.Prefix
	}
	return s
}

func keepBest(best map[int]hit, h hit, w Weights) {
	cur, ok := best[h.entry]
	if !ok {
		best[h.entry] = h
		return
	}
	if ls, lc := lexical(h, w), lexical(cur, w); ls > lc || (ls == lc && h.exact && !cur.exact) {
		best[h.entry] = h
	}
}

func flatten(best map[int]hit) []hit {
	out := make([]hit, 0, len(best))
	for _, h := range best {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].entry < out[j].entry })
	return out
}

// rank applies category and popularity, normalizes and orders the hits.
func (e *Engine) rank(hits []hit, limit int, category dictionary.Category) []Result {
	if len(hits) == 0 {
		return nil
	}
	w := e.weights
	total := w.total()

	results := make([]Result, 0, len(hits))
	for _, h := range hits {
		entry := e.dict.At(h.entry)
		boosted := category != "" && entry.Category == category

		score := lexical(h, w)
		if boosted {
			score += w.Category
		}
		score += w.Popularity * clamp01(e.popularity.Weight(entry.Key))
		score /= total

		mt := MatchFuzzy
		switch {
		case h.exact:
			mt = MatchExact
		case boosted:
			mt = MatchCategoryBoosted
		case h.prefix:
			mt = MatchPrefix
		}
		results = append(results, Result{Key: entry.Key, Score: clamp01(score), MatchType: mt})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Key < results[j].Key
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// Stats returns index and cache statistics
func (e *Engine) Stats() map[string]int {
	stats := map[string]int{
		"entries":     e.dict.Len(),
		"terms":       len(e.terms),
		"gramBuckets": e.grams.Buckets(),
		"maxDistance": e.maxDistance,
	}
	for k, v := range e.cache.stats() {
		stats[k] = v
	}
	return stats
}
