package dictionary

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatsRoundTrip(t *testing.T) {
	want := sampleEntries()
	want[1].CaseSensitive = true
	want[1].Pronunciation = "en-ar"

	for _, format := range []FileFormat{FormatJSON, FormatCSV, FormatMsgpack} {
		t.Run(format.String(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteEntries(&buf, format, want))

			got, err := ReadEntries(&buf, format)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestReadLegacyJSON(t *testing.T) {
	doc := `{
		"acronyms": {"AMF": "Access and Mobility Management Function", "XYZ": "Unlisted"},
		"categories": {"Core Network": ["AMF"]},
		"total_count": 2
	}`
	got, err := ReadEntries(strings.NewReader(doc), FormatJSON)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "AMF", got[0].Key)
	assert.Equal(t, CategoryCoreNetwork, got[0].Category)
	assert.Equal(t, CategoryGeneral, got[1].Category)
}

func TestReadCSVAcceptsAcronymHeader(t *testing.T) {
	doc := "acronym,definition,category\nSMF,Session Management Function,core network\n"
	got, err := ReadEntries(strings.NewReader(doc), FormatCSV)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, CategoryCoreNetwork, got[0].Category)
}

func TestReadCSVCollectsRowErrors(t *testing.T) {
	doc := "key,definition,category,case_sensitive\n" +
		"SA,Standalone,5G/6G Technologies,maybe\n" +
		"NSA,Non-Standalone,5G/6G Technologies,false\n" +
		"AF,Application Function,Core Network,sometimes\n"
	_, err := ReadEntries(strings.NewReader(doc), FormatCSV)
	require.Error(t, err)

	verrs, ok := AsValidationErrors(err)
	require.True(t, ok)
	assert.Equal(t, []int{0, 2}, verrs.Records())
}

func TestDetectFileFormat(t *testing.T) {
	tests := []struct {
		name string
		want FileFormat
		ok   bool
	}{
		{"catalog.json", FormatJSON, true},
		{"CATALOG.CSV", FormatCSV, true},
		{"dump.msgpack", FormatMsgpack, true},
		{"notes.txt", FormatUnknown, false},
	}
	for _, tt := range tests {
		got, err := DetectFileFormat(tt.name)
		assert.Equal(t, tt.want, got, tt.name)
		assert.Equal(t, tt.ok, err == nil, tt.name)
	}
}

func TestLoaderMergesFilesInNameOrder(t *testing.T) {
	dir := t.TempDir()
	entries := sampleEntries()
	require.NoError(t, SaveFile(filepath.Join(dir, "b.csv"), entries[1:]))
	require.NoError(t, SaveFile(filepath.Join(dir, "a.json"), entries[:1]))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("ignored"), 0o644))

	got, stats, err := NewLoader(dir).LoadAll()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Files)
	assert.Equal(t, entries, got)
}
