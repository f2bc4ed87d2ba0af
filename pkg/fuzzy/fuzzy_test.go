package fuzzy

import (
	"fmt"
	"testing"
)

func TestNormalize(t *testing.T) {
	testCases := []struct {
		input string
		want  string
	}{
		{"5G", "5g"},
		{"O-RAN", "oran"},
		{"Massive MIMO", "massivemimo"},
		{"ＱｏＳ", "qos"}, // full-width
		{"  --  ", ""},
		{"802.11", "80211"},
	}
	for _, tc := range testCases {
		if got := Normalize(tc.input); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestDistance(t *testing.T) {
	testCases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"qam", "", 3},
		{"amf", "amf", 0},
		{"amf", "smf", 1},
		{"mimo", "mmio", 2},
		{"kitten", "sitting", 3},
		{"urllc", "urlc", 1},
	}
	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%s_%s", tc.a, tc.b), func(t *testing.T) {
			if got := Distance(tc.a, tc.b); got != tc.want {
				t.Errorf("Distance(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
			}
			if got := Distance(tc.b, tc.a); got != tc.want {
				t.Errorf("Distance is not symmetric for %q, %q", tc.a, tc.b)
			}
		})
	}
}

func TestBoundedDistance(t *testing.T) {
	testCases := []struct {
		a, b   string
		limit  int
		want   int
		within bool
	}{
		{"amf", "smf", 1, 1, true},
		{"amf", "smf", 0, 0, false},
		{"kitten", "sitting", 3, 3, true},
		{"kitten", "sitting", 2, 0, false},
		{"xyzxyz123", "nwdaf", 3, 0, false},
		{"abcdefghij", "abcdefghij", 9, 0, true}, // limit clamps to the cap
	}
	for _, tc := range testCases {
		d, ok := BoundedDistance(tc.a, tc.b, tc.limit)
		if ok != tc.within {
			t.Errorf("BoundedDistance(%q, %q, %d) ok = %v, want %v", tc.a, tc.b, tc.limit, ok, tc.within)
			continue
		}
		if ok && d != tc.want {
			t.Errorf("BoundedDistance(%q, %q, %d) = %d, want %d", tc.a, tc.b, tc.limit, d, tc.want)
		}
	}
}

func TestPrefixDistance(t *testing.T) {
	d, ok := PrefixDistance([]rune("beamf"), []rune("beamforming"), 1)
	if !ok || d != 0 {
		t.Errorf("exact prefix: got %d, %v", d, ok)
	}
	d, ok = PrefixDistance([]rune("bemaf"), []rune("beamforming"), 2)
	if !ok || d != 2 {
		t.Errorf("typo in prefix: got %d, %v", d, ok)
	}
	if _, ok = PrefixDistance([]rune("zzzzz"), []rune("beamforming"), 2); ok {
		t.Error("unrelated prefix should not be within bound")
	}
}

func TestThresholdScalesWithLength(t *testing.T) {
	prev := 0
	for n := 0; n <= 20; n++ {
		got := Threshold(n)
		if got < prev {
			t.Fatalf("Threshold(%d) = %d decreased from %d", n, got, prev)
		}
		if got > MaxDistanceCap {
			t.Fatalf("Threshold(%d) = %d exceeds cap", n, got)
		}
		prev = got
	}
	if Threshold(2) != 0 {
		t.Errorf("two-rune queries must match exactly, got %d", Threshold(2))
	}
}

func TestSimilarity(t *testing.T) {
	if s := Similarity(0, 3, 3); s != 1 {
		t.Errorf("identical strings: %v", s)
	}
	if s := Similarity(1, 2, 4); s != 0.75 {
		t.Errorf("got %v, want 0.75", s)
	}
	if s := Similarity(9, 2, 3); s != 0 {
		t.Errorf("similarity must clamp at 0, got %v", s)
	}
}

// A candidate within the distance bound must never be pruned.
func TestGramIndexNeverDropsQualifyingTerms(t *testing.T) {
	terms := []string{"5g", "5gc", "5gaka", "6g", "amf", "smf", "urllc", "beamforming", "massivemimo", "nwdaf", "qos", "qoe"}
	idx := NewGramIndex()
	for i, term := range terms {
		idx.Add(i, term)
	}

	queries := []string{"5g", "amg", "urlcc", "beamfrm", "massivmimo", "qos", "nwdfa", "xyzxyz123"}
	for _, q := range queries {
		qr := []rune(q)
		k := Threshold(len(qr))
		ids, all := idx.Candidates(qr, k)
		got := make(map[int]bool, len(ids))
		for _, id := range ids {
			got[id] = true
		}
		for i, term := range terms {
			tr := []rune(term)
			_, whole := BoundedRunes(qr, tr, k)
			_, prefix := PrefixDistance(qr, tr, k)
			if (whole || prefix) && !all && !got[i] {
				t.Errorf("query %q pruned qualifying term %q", q, term)
			}
		}
	}
}

func TestGramIndexPrunes(t *testing.T) {
	idx := NewGramIndex()
	idx.Add(0, "beamforming")
	idx.Add(1, "qos")
	ids, all := idx.Candidates([]rune("beamformin"), 3)
	if all {
		t.Fatal("expected pruning for a long query")
	}
	if len(ids) != 1 || ids[0] != 0 {
		t.Errorf("got %v, want [0]", ids)
	}
}
