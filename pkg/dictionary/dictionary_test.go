package dictionary

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntries() []Entry {
	return []Entry{
		{Key: "5G", Definition: "Fifth Generation", Category: Category5G6G, RelatedKeys: []string{"NR"}},
		{Key: "NR", Definition: "New Radio", Category: Category5G6G},
		{Key: "QoS", Definition: "Quality of Service", Category: CategoryPerformance, Aliases: []string{"Quality of Service"}},
	}
}

func TestBaseCatalogIsValid(t *testing.T) {
	entries, err := Base()
	require.NoError(t, err)
	assert.Greater(t, len(entries), 200)

	d, err := New(entries)
	require.NoError(t, err)
	assert.Equal(t, len(entries), d.Len())

	e, ok := d.Get("5g")
	require.True(t, ok)
	assert.Equal(t, "5G", e.Key)
	assert.Equal(t, "five-jee", e.Pronunciation)
	assert.Contains(t, e.RelatedKeys, "mmWave")
}

func TestNewRejectsCaseDuplicate(t *testing.T) {
	entries := append(sampleEntries(), Entry{Key: "qos", Definition: "dup", Category: CategoryGeneral})

	_, err := New(entries)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateKey)

	verrs, ok := AsValidationErrors(err)
	require.True(t, ok)
	require.Len(t, verrs, 1)
	assert.Equal(t, 3, verrs[0].Index)
	assert.Equal(t, "key", verrs[0].Field)
}

func TestValidateAggregatesEveryProblem(t *testing.T) {
	entries := []Entry{
		{Key: "", Definition: "no key", Category: CategoryGeneral},
		{Key: "AMF", Definition: "Access and Mobility", Category: "Kitchen"},
		{Key: "SMF", Definition: "Session Management", Category: CategoryCoreNetwork, RelatedKeys: []string{"UPF"}},
		{Key: "UDM", Definition: "", Category: CategoryCoreNetwork},
	}

	err := Validate(entries)
	require.Error(t, err)

	verrs, ok := AsValidationErrors(err)
	require.True(t, ok)
	assert.Equal(t, []int{0, 1, 3, 2}, verrs.Records())
	assert.ErrorIs(t, err, ErrMalformedEntry)
	assert.ErrorIs(t, err, ErrUnknownCategory)
	assert.ErrorIs(t, err, ErrDanglingRelated)
}

func TestValidateEntry(t *testing.T) {
	tests := []struct {
		name    string
		entry   Entry
		wantErr error
	}{
		{"valid", Entry{Key: "RAN", Definition: "Radio Access Network", Category: Category5G6G}, nil},
		{"padded key", Entry{Key: " RAN", Definition: "x", Category: Category5G6G}, ErrMalformedEntry},
		{"punctuation only", Entry{Key: "--", Definition: "x", Category: Category5G6G}, ErrMalformedEntry},
		{"alias repeats key", Entry{Key: "RAN", Definition: "x", Category: Category5G6G, Aliases: []string{"ran"}}, ErrDuplicateKey},
		{"self relation", Entry{Key: "RAN", Definition: "x", Category: Category5G6G, RelatedKeys: []string{"RAN"}}, ErrMalformedEntry},
		{"lowercase category", Entry{Key: "RAN", Definition: "x", Category: "core network"}, ErrUnknownCategory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateEntry(0, tt.entry)
			if tt.wantErr == nil {
				assert.Empty(t, errs)
				return
			}
			require.NotEmpty(t, errs)
			assert.True(t, errors.Is(errs, tt.wantErr), "got %v", errs)
		})
	}
}

func TestCanonicalResolvesCategoryCase(t *testing.T) {
	e := Entry{Key: " RAN ", Definition: " Radio Access Network ", Category: "core network"}.Canonical()
	assert.Equal(t, "RAN", e.Key)
	assert.Equal(t, "Radio Access Network", e.Definition)
	assert.Equal(t, CategoryCoreNetwork, e.Category)
	assert.Empty(t, ValidateEntry(0, e))
}

func TestLookupByAlias(t *testing.T) {
	d, err := New(sampleEntries())
	require.NoError(t, err)

	e, ok := d.Lookup("quality of service")
	require.True(t, ok)
	assert.Equal(t, "QoS", e.Key)

	_, ok = d.Get("quality of service")
	assert.False(t, ok, "Get only resolves keys")

	i, ok := d.Index("nr")
	require.True(t, ok)
	assert.Equal(t, 1, i)
	assert.Equal(t, []int{0, 1}, d.InCategory(Category5G6G))
}

func TestEntriesAreCopies(t *testing.T) {
	d, err := New(sampleEntries())
	require.NoError(t, err)

	out := d.Entries()
	out[0].RelatedKeys[0] = "changed"

	e, _ := d.Get("5G")
	assert.Equal(t, []string{"NR"}, e.RelatedKeys)
}

func TestParseCategory(t *testing.T) {
	c, ok := ParseCategory("ai/ml")
	require.True(t, ok)
	assert.Equal(t, CategoryAIML, c)

	_, ok = ParseCategory("Cooking")
	assert.False(t, ok)
	assert.Len(t, Categories(), 15)
	assert.Contains(t, CategorySecurity.Triggers(), "security")
}

func TestValidateBlamesLaterRecordForAliasCollision(t *testing.T) {
	entries := append(sampleEntries(), Entry{Key: "quality of service", Definition: "dup", Category: CategoryGeneral})

	verrs, ok := AsValidationErrors(Validate(entries))
	require.True(t, ok)
	require.Len(t, verrs, 1)
	assert.Equal(t, 3, verrs[0].Index)
	assert.Equal(t, "key", verrs[0].Field)
	assert.ErrorIs(t, verrs[0], ErrDuplicateKey)
}
