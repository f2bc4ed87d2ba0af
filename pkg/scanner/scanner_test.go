package scanner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastiangx/acroserve/pkg/dictionary"
)

func newScanner(t *testing.T, entries []dictionary.Entry) *Scanner {
	t.Helper()
	d, err := dictionary.New(entries)
	require.NoError(t, err)
	return New(d)
}

func baseScanner(t *testing.T) *Scanner {
	t.Helper()
	return newScanner(t, dictionary.MustBase())
}

func keysOf(ms []Match) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Key
	}
	return out
}

func TestDetectBasic(t *testing.T) {
	s := baseScanner(t)
	text := "The AMF talks to the SMF over 5G."

	ms := s.Detect(text)
	require.Equal(t, []string{"AMF", "SMF", "5G"}, keysOf(ms))
	for _, m := range ms {
		assert.Equal(t, m.MatchedText, text[m.Start:m.End])
	}
}

func TestDetectBoundaryRule(t *testing.T) {
	s := baseScanner(t)
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"embedded in word", "SAMFORD and AMFs", nil},
		{"punctuation delimits", "(AMF), [SMF]; UPF.", []string{"AMF", "SMF", "UPF"}},
		{"digits glue", "x5G 5Gx 5G", []string{"5G"}},
		{"text edges", "QAM", []string{"QAM"}},
		{"unicode letters glue", "éAMF AMFé", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := keysOf(s.Detect(tt.text))
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectCasePolicy(t *testing.T) {
	s := baseScanner(t)

	// Case-insensitive entries match any casing.
	assert.Equal(t, []string{"MIMO", "QoS"}, keysOf(s.Detect("mimo improves qos")))

	// Case-sensitive entries only match their exact surface.
	assert.Empty(t, s.Detect("the sa and ip of it"))
	assert.Equal(t, []string{"SA", "IP"}, keysOf(s.Detect("SA over IP")))
}

func TestDetectLongestMatchWins(t *testing.T) {
	s := baseScanner(t)

	ms := s.Detect("Massive MIMO and Near-RT RIC and 5G-AKA")
	assert.Equal(t, []string{"Massive MIMO", "Near-RT RIC", "5G-AKA"}, keysOf(ms))
	assert.Equal(t, "Massive MIMO", ms[0].MatchedText)
}

func TestDetectTieGoesToEarlierEntry(t *testing.T) {
	s := newScanner(t, []dictionary.Entry{
		{Key: "AB CD", Definition: "first", Category: dictionary.CategoryGeneral},
		{Key: "CD EF", Definition: "second", Category: dictionary.CategoryGeneral},
	})
	ms := s.Detect("AB CD EF")
	require.Len(t, ms, 1)
	assert.Equal(t, "AB CD", ms[0].Key)

	s = newScanner(t, []dictionary.Entry{
		{Key: "CD EF", Definition: "second", Category: dictionary.CategoryGeneral},
		{Key: "AB CD", Definition: "first", Category: dictionary.CategoryGeneral},
	})
	ms = s.Detect("AB CD EF")
	require.Len(t, ms, 1)
	assert.Equal(t, "CD EF", ms[0].Key)
}

func TestDetectAliasReportsCanonicalKey(t *testing.T) {
	s := baseScanner(t)
	ms := s.Detect("Connect over WiFi")
	require.Len(t, ms, 1)
	assert.Equal(t, "Wi-Fi", ms[0].Key)
	assert.Equal(t, "WiFi", ms[0].MatchedText)
}

func TestDetectRepetitionDoublesMatches(t *testing.T) {
	s := baseScanner(t)
	texts := []string{
		"5G NR uses OFDM and Massive MIMO with beamforming.",
		"The gNB reports RSRP, SINR and CQI to the AMF.",
		"IoT devices use NB-IoT or LoRaWAN; SA over IP.",
		"",
		"nothing to see here",
	}
	for _, text := range texts {
		single := s.Detect(text)
		double := s.Detect(text + " " + text)
		assert.Len(t, double, 2*len(single), "text %q", text)
	}
}

func TestDetectIsDeterministic(t *testing.T) {
	s := baseScanner(t)
	text := strings.Repeat("eMBB URLLC mMTC over O-RAN with RIC xApp. ", 20)
	first := s.Detect(text)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, s.Detect(text))
	}
}

func TestDetectEdgeInput(t *testing.T) {
	s := baseScanner(t)
	assert.Empty(t, s.Detect(""))
	assert.Empty(t, s.Detect("   \n\t"))

	ms := s.Detect("\xffAMF\xfe")
	assert.Equal(t, []string{"AMF"}, keysOf(ms))

	empty := newScanner(t, nil)
	assert.Empty(t, empty.Detect("AMF"))
}

func TestDetectOrderedByStart(t *testing.T) {
	s := baseScanner(t)
	ms := s.Detect("UPF SMF AMF UPF")
	require.Len(t, ms, 4)
	for i := 1; i < len(ms); i++ {
		assert.Less(t, ms[i-1].Start, ms[i].Start)
		assert.LessOrEqual(t, ms[i-1].End, ms[i].Start)
	}
}

func BenchmarkDetect(b *testing.B) {
	d, err := dictionary.New(dictionary.MustBase())
	if err != nil {
		b.Fatal(err)
	}
	s := New(d)
	text := strings.Repeat("The gNB and AMF negotiate QoS for eMBB and URLLC slices over Massive MIMO. ", 50)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Detect(text)
	}
}

func TestDetectFoldsNonASCIICase(t *testing.T) {
	s := newScanner(t, []dictionary.Entry{
		{Key: "ΩCORE", Definition: "Omega core", Category: dictionary.CategoryGeneral},
		{Key: "KELVIN", Definition: "Kelvin", Category: dictionary.CategoryGeneral},
		{Key: "ÉTSI", Definition: "Cased", Category: dictionary.CategoryGeneral, CaseSensitive: true},
		{Key: "5G", Definition: "Fifth Generation", Category: dictionary.Category5G6G},
	})

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"lower greek", "ωcore", []string{"ΩCORE"}},
		{"mixed greek", "the Ωcore link", []string{"ΩCORE"}},
		{"case sensitive keeps exact form", "étsi ÉTSI", []string{"ÉTSI"}},
		// the Kelvin sign is three bytes and lowers to a one-byte "k"
		{"width change", "\u212aelvin on 5g", []string{"KELVIN", "5G"}},
		{"after dotted capital I", "İİ 5G ωCORE", []string{"5G", "ΩCORE"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := s.Detect(tt.text)
			require.Equal(t, tt.want, keysOf(ms))
			for _, m := range ms {
				assert.Equal(t, m.MatchedText, tt.text[m.Start:m.End])
			}
		})
	}
}

func TestDetectOffsetsSurviveWidthChanges(t *testing.T) {
	s := newScanner(t, []dictionary.Entry{
		{Key: "ΩCORE", Definition: "Omega core", Category: dictionary.CategoryGeneral},
	})
	text := "İ \u212a ωcore\xff"

	ms := s.Detect(text)
	require.Len(t, ms, 1)
	start := strings.Index(text, "ωcore")
	assert.Equal(t, start, ms[0].Start)
	assert.Equal(t, start+len("ωcore"), ms[0].End)
	assert.Equal(t, "ωcore", ms[0].MatchedText)
}

func TestFoldMapsOffsets(t *testing.T) {
	folded, offsets := fold("AMF 5G")
	assert.Equal(t, "amf 5g", folded)
	assert.Nil(t, offsets)

	folded, offsets = fold("\u212aA")
	assert.Equal(t, "ka", folded)
	assert.Equal(t, []int{0, 3, 4}, offsets)
}
