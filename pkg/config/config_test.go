package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastiangx/acroserve/pkg/related"
	"github.com/bastiangx/acroserve/pkg/suggest"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestInitConfigCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	cfg, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.FileExists(t, path)

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), loaded)
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
[server]
max_limit = 20
batch_workers = 2

[search]
weight_popularity = 0.3

[manager]
reject_when_busy = true
store_path = "/tmp/acro.db"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Server.MaxLimit)
	assert.Equal(t, 2, cfg.Server.BatchWorkers)
	assert.Equal(t, 0.3, cfg.Search.WeightPopularity)
	assert.Equal(t, DefaultConfig().Search.WeightSimilarity, cfg.Search.WeightSimilarity)
	assert.True(t, cfg.Manager.RejectWhenBusy)
	assert.Equal(t, "/tmp/acro.db", cfg.Manager.StorePath)
	assert.Equal(t, DefaultConfig().CLI, cfg.CLI)
}

func TestLoadConfigSalvagesMistypedValues(t *testing.T) {
	path := writeConfig(t, `
[server]
max_limit = "lots"
batch_workers = 4

[search]
weight_prefix = 1

[cli]
log_level = "debug"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Server.MaxLimit)
	assert.Equal(t, 4, cfg.Server.BatchWorkers)
	assert.Equal(t, 1.0, cfg.Search.WeightPrefix)
	assert.Equal(t, "debug", cfg.CLI.LogLevel)
}

func TestLoadConfigFallsBackOnGarbage(t *testing.T) {
	path := writeConfig(t, "[server\nmax_limit = = 3")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigWithPriorityPrefersCustomPath(t *testing.T) {
	path := writeConfig(t, "[cli]\ndefault_limit = 3\n")
	cfg, used, err := LoadConfigWithPriority(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, 3, cfg.CLI.DefaultLimit)
}

func TestWeightConversions(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, suggest.DefaultWeights(), cfg.SearchWeights())
	assert.Equal(t, related.DefaultWeights(), cfg.RelatedWeights())
}

func TestUpdateSaves(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	cfg := DefaultConfig()
	limit := 5
	require.NoError(t, cfg.Update(path, &limit, nil, nil))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 5, loaded.Server.MaxLimit)
	assert.Equal(t, cfg.Server.MaxQuery, loaded.Server.MaxQuery)
}

func TestRebuildConfigFile(t *testing.T) {
	path := writeConfig(t, "[server]\nmax_limit = 3\n")
	require.NoError(t, RebuildConfigFile(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), loaded)
}
