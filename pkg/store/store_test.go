package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastiangx/acroserve/pkg/dictionary"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "acroserve.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadFromFreshStore(t *testing.T) {
	s := openTemp(t)
	entries, version, err := s.LoadEntries()
	require.NoError(t, err)
	assert.Nil(t, entries)
	assert.Zero(t, version)

	info, err := s.Info()
	require.NoError(t, err)
	assert.Zero(t, info.Entries)
}

func TestSaveKeepsRegistrationOrder(t *testing.T) {
	s := openTemp(t)
	base := dictionary.MustBase()

	require.NoError(t, s.SaveEntries(7, base))
	got, version, err := s.LoadEntries()
	require.NoError(t, err)
	assert.Equal(t, uint64(7), version)
	assert.Equal(t, base, got)

	info, err := s.Info()
	require.NoError(t, err)
	assert.Equal(t, len(base), info.Entries)
	assert.Equal(t, uint64(7), info.Version)
	assert.False(t, info.SavedAt.IsZero())
}

func TestSaveReplacesPreviousContent(t *testing.T) {
	s := openTemp(t)
	base := dictionary.MustBase()
	require.NoError(t, s.SaveEntries(1, base))
	require.NoError(t, s.SaveEntries(2, base[:3]))

	got, version, err := s.LoadEntries()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), version)
	assert.Equal(t, base[:3], got)
}

func TestReopenReadsPersistedEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "acroserve.db")
	s, err := Open(path)
	require.NoError(t, err)
	entries := dictionary.MustBase()[:5]
	require.NoError(t, s.SaveEntries(3, entries))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, _, err := s.LoadEntries()
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}
