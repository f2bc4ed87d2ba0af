package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastiangx/acroserve/pkg/dictionary"
	"github.com/bastiangx/acroserve/pkg/store"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

func TestLoadEntriesStoreWinsOverDataFlag(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "acro.db"))
	require.NoError(t, err)
	defer db.Close()

	stored := dictionary.MustBase()[:3]
	require.NoError(t, db.SaveEntries(4, stored))

	logs := captureLog(t)
	entries, version, source, err := loadEntries(db, "/srv/catalogs/extra.json")
	require.NoError(t, err)
	assert.Equal(t, stored, entries)
	assert.Equal(t, uint64(4), version)
	assert.Equal(t, "store", source)
	assert.Contains(t, logs.String(), "/srv/catalogs/extra.json")
}

func TestLoadEntriesFallsBackToEmbeddedCatalog(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "acro.db"))
	require.NoError(t, err)
	defer db.Close()

	logs := captureLog(t)
	entries, version, source, err := loadEntries(db, "")
	require.NoError(t, err)
	assert.Equal(t, dictionary.MustBase(), entries)
	assert.Zero(t, version)
	assert.Equal(t, "embedded catalog", source)
	assert.NotContains(t, logs.String(), "ignoring")
}
