package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastiangx/acroserve/pkg/dictionary"
)

type popMap map[string]float64

func (p popMap) Weight(key string) float64 { return p[key] }

func baseEngine(t testing.TB, opts ...Option) *Engine {
	t.Helper()
	d, err := dictionary.New(dictionary.MustBase())
	require.NoError(t, err)
	return New(d, opts...)
}

func twinEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	d, err := dictionary.New([]dictionary.Entry{
		{Key: "ABCD", Definition: "first twin", Category: dictionary.CategoryGeneral},
		{Key: "ABCE", Definition: "second twin", Category: dictionary.CategorySecurity},
	})
	require.NoError(t, err)
	return New(d, opts...)
}

func keys(rs []Result) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Key
	}
	return out
}

func TestSearchShortQueryRanksExactFirst(t *testing.T) {
	e := baseEngine(t)
	rs := e.Search("5g", 5, "")
	require.NotEmpty(t, rs)
	assert.Contains(t, keys(rs[:min(2, len(rs))]), "5G")
	assert.Equal(t, "5G", rs[0].Key)
	assert.Equal(t, MatchExact, rs[0].MatchType)
	for _, r := range rs[1:] {
		assert.Equal(t, MatchPrefix, r.MatchType, r.Key)
	}
}

func TestSearchGibberishIsEmpty(t *testing.T) {
	e := baseEngine(t)
	assert.Empty(t, e.Search("xyzxyz123", 5, ""))
}

func TestSearchTypos(t *testing.T) {
	e := baseEngine(t)
	tests := []struct {
		query string
		want  string
		mt    MatchType
	}{
		{"urlcc", "URLLC", MatchFuzzy},
		{"QoS", "QoS", MatchExact},
		{"massive mimo", "Massive MIMO", MatchExact},
		{"beamform", "Beamforming", MatchPrefix},
		{"nwdaff", "NWDAF", MatchPrefix},
		{"wifi", "Wi-Fi", MatchExact},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rs := e.Search(tt.query, 5, "")
			require.NotEmpty(t, rs)
			assert.Equal(t, tt.want, rs[0].Key)
			assert.Equal(t, tt.mt, rs[0].MatchType)
		})
	}
}

func TestSearchBoundsAndOrdering(t *testing.T) {
	e := baseEngine(t)

	assert.Empty(t, e.Search("amf", 0, ""))
	assert.Empty(t, e.Search("amf", -1, ""))
	assert.Empty(t, e.Search("", 5, ""))
	assert.Empty(t, e.Search(" -- ", 5, ""))

	for _, q := range []string{"sinr", "rsr", "o-ran", "qam", "mimo", "ai"} {
		rs := e.Search(q, 4, "")
		assert.LessOrEqual(t, len(rs), 4, q)
		for i, r := range rs {
			assert.GreaterOrEqual(t, r.Score, 0.0)
			assert.LessOrEqual(t, r.Score, 1.0)
			if i == 0 {
				continue
			}
			prev := rs[i-1]
			assert.True(t, prev.Score > r.Score || (prev.Score == r.Score && prev.Key < r.Key),
				"query %q: %v before %v", q, prev, r)
		}
	}
}

func TestSearchTiesBreakByKey(t *testing.T) {
	e := twinEngine(t)
	rs := e.Search("abcx", 5, "")
	require.Len(t, rs, 2)
	assert.Equal(t, []string{"ABCD", "ABCE"}, keys(rs))
	assert.Equal(t, rs[0].Score, rs[1].Score)
	assert.Equal(t, MatchFuzzy, rs[0].MatchType)
}

func TestSearchCategoryBoost(t *testing.T) {
	e := twinEngine(t)
	rs := e.Search("abcx", 5, dictionary.CategorySecurity)
	require.Len(t, rs, 2)
	assert.Equal(t, "ABCE", rs[0].Key)
	assert.Equal(t, MatchCategoryBoosted, rs[0].MatchType)
	assert.Greater(t, rs[0].Score, rs[1].Score)
}

func TestSearchPopularity(t *testing.T) {
	pop := popMap{"ABCE": 1}
	e := twinEngine(t, WithPopularity(pop))
	rs := e.Search("abcx", 5, "")
	require.Len(t, rs, 2)
	assert.Equal(t, "ABCE", rs[0].Key)

	// Weights are read per call, so a changed source takes effect on cached queries.
	pop["ABCE"] = 0
	pop["ABCD"] = 0.5
	rs = e.Search("abcx", 5, "")
	assert.Equal(t, "ABCD", rs[0].Key)
}

func TestSearchWeights(t *testing.T) {
	e := twinEngine(t, WithWeights(Weights{Similarity: 1}))
	rs := e.Search("abcd", 5, dictionary.CategorySecurity)
	require.NotEmpty(t, rs)
	assert.Equal(t, "ABCD", rs[0].Key)
	assert.InDelta(t, 1.0, rs[0].Score, 1e-9)

	// All-zero weights fall back to the defaults.
	e = twinEngine(t, WithWeights(Weights{}))
	assert.Equal(t, DefaultWeights(), e.weights)
}

func TestSearchDeterministicWithAndWithoutCache(t *testing.T) {
	cached := baseEngine(t)
	uncached := baseEngine(t, WithCacheSize(0))
	for _, q := range []string{"5g", "amf", "mimo", "secrity", "lora"} {
		first := cached.Search(q, 10, "")
		assert.Equal(t, first, cached.Search(q, 10, ""), q)
		assert.Equal(t, first, uncached.Search(q, 10, ""), q)
	}
	assert.Positive(t, cached.Stats()["cacheHits"])
}

func TestSearchMaxDistance(t *testing.T) {
	e := baseEngine(t, WithMaxDistance(0))
	assert.Empty(t, e.Search("urlcc", 5, ""))
}

func TestComplete(t *testing.T) {
	e := baseEngine(t)
	rs := e.Complete("5g", 10)
	assert.ElementsMatch(t, []string{"5G", "5GC", "5G-AKA"}, keys(rs))
	assert.Equal(t, "5G", rs[0].Key)

	assert.Empty(t, e.Complete("zzz", 10))
	assert.Empty(t, e.Complete("5g", 0))
}

func TestHitCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := newHitCache(2)
	c.put("a", nil)
	c.put("b", nil)
	_, _ = c.get("a")
	c.put("c", nil)

	_, okA := c.get("a")
	_, okB := c.get("b")
	_, okC := c.get("c")
	assert.True(t, okA)
	assert.False(t, okB)
	assert.True(t, okC)
}

func BenchmarkSearch(b *testing.B) {
	e := baseEngine(b, WithCacheSize(0))
	queries := []string{"5g", "amf", "urlcc", "beamform", "xyzxyz123", "massive mimo"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Search(queries[i%len(queries)], 5, "")
	}
}
