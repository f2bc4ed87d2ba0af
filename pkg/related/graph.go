// Package related ranks the neighbours of a dictionary key. Explicit
// related-key links always outweigh plain category membership.
package related

import (
	"sort"
	"strings"

	"github.com/bastiangx/acroserve/internal/utils"
	"github.com/bastiangx/acroserve/pkg/dictionary"
)

// Weights of the edge sources. Parallel sources between the same pair add up.
type Weights struct {
	Explicit float64 `toml:"explicit_weight"`
	Reverse  float64 `toml:"reverse_weight"`
	Category float64 `toml:"category_weight"`
}

// DefaultWeights keeps any explicit link (1.0) and any reverse link (0.5)
// above same-category membership (0.25).
func DefaultWeights() Weights {
	return Weights{Explicit: 1.0, Reverse: 0.5, Category: 0.25}
}

// valid reports whether every explicit or reverse link outranks a bare
// category link.
func (w Weights) valid() bool {
	return w.Category >= 0 && w.Reverse > w.Category && w.Explicit > w.Category
}

// Edge is a weighted link to another entry.
type Edge struct {
	Key    string  `json:"key" msgpack:"k"`
	Weight float64 `json:"weight" msgpack:"w"`
}

// Graph is immutable after Build and safe for concurrent use.
type Graph struct {
	dict      *dictionary.Dictionary
	adjacency [][]Edge
	weights   Weights
}

// Option configures Build
type Option func(*Graph)

// WithWeights overrides edge weights. Weight sets where a reverse or
// explicit link would not outrank a category link are ignored.
func WithWeights(w Weights) Option {
	return func(g *Graph) {
		if w.valid() {
			g.weights = w
		}
	}
}

// Build derives the graph from dict. A related key that names no entry
// fails the build with dictionary.ValidationErrors.
func Build(dict *dictionary.Dictionary, opts ...Option) (*Graph, error) {
	g := &Graph{dict: dict, weights: DefaultWeights()}
	for _, opt := range opts {
		opt(g)
	}

	n := dict.Len()
	scores := make([]map[int]float64, n)
	for i := range scores {
		scores[i] = make(map[int]float64)
	}

	var errs dictionary.ValidationErrors
	for i := 0; i < n; i++ {
		e := dict.At(i)
		for _, rel := range e.RelatedKeys {
			j, ok := dict.Index(rel)
			if !ok {
				errs = append(errs, &dictionary.ValidationError{
					Index: i, Key: e.Key, Field: "related_keys",
					Err: dictionary.ErrDanglingRelated, Detail: rel,
				})
				continue
			}
			if j == i {
				continue
			}
			scores[i][j] += g.weights.Explicit
			scores[j][i] += g.weights.Reverse
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	for _, c := range dictionary.Categories() {
		members := dict.InCategory(c)
		for _, i := range members {
			for _, j := range members {
				if i != j {
					scores[i][j] += g.weights.Category
				}
			}
		}
	}

	g.adjacency = make([][]Edge, n)
	for i, neighbours := range scores {
		edges := make([]Edge, 0, len(neighbours))
		for j, w := range neighbours {
			edges = append(edges, Edge{Key: dict.At(j).Key, Weight: w})
		}
		sort.Slice(edges, func(a, b int) bool {
			if edges[a].Weight != edges[b].Weight {
				return edges[a].Weight > edges[b].Weight
			}
			return edges[a].Key < edges[b].Key
		})
		g.adjacency[i] = edges
	}
	return g, nil
}

// Related returns up to maxResults neighbour keys of key, strongest first,
// ties by key. Unknown keys and non-positive limits yield an empty result.
func (g *Graph) Related(key string, maxResults int) []string {
	edges := g.Edges(key, maxResults)
	if len(edges) == 0 {
		return nil
	}
	out := make([]string, len(edges))
	for i, e := range edges {
		out[i] = e.Key
	}
	return out
}

// Edges is Related with the weights attached.
func (g *Graph) Edges(key string, maxResults int) []Edge {
	if maxResults <= 0 {
		return nil
	}
	i, ok := g.dict.Index(key)
	if !ok {
		return nil
	}
	edges := g.adjacency[i]
	if len(edges) > maxResults {
		edges = edges[:maxResults]
	}
	return append([]Edge(nil), edges...)
}

// ForContext suggests keys for a passage of text: every word that starts
// with a category trigger ("network", "security", ...) pulls in that
// category's keys in registration order. Keys already present in the text
// are skipped.
func (g *Graph) ForContext(text string, maxResults int) []string {
	if maxResults <= 0 {
		return nil
	}
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !utils.IsWordRune(r) && r != '-'
	})
	present := utils.NewFoldSet(words...)

	var hit []dictionary.Category
	seenCat := make(map[dictionary.Category]bool)
	for _, w := range words {
		for _, c := range dictionary.Categories() {
			if seenCat[c] {
				continue
			}
			for _, trig := range c.Triggers() {
				if strings.HasPrefix(w, trig) {
					seenCat[c] = true
					hit = append(hit, c)
					break
				}
			}
		}
	}

	out := utils.NewFoldSet()
	for _, c := range hit {
		for _, i := range g.dict.InCategory(c) {
			key := g.dict.At(i).Key
			if present.Has(key) {
				continue
			}
			out.Add(key)
			if out.Len() >= maxResults {
				return out.Items()
			}
		}
	}
	return out.Items()
}

// Stats returns node and edge counts.
func (g *Graph) Stats() map[string]int {
	edges := 0
	for _, adj := range g.adjacency {
		edges += len(adj)
	}
	return map[string]int{"nodes": len(g.adjacency), "edges": edges}
}
