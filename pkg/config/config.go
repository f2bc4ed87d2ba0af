/*
Package config manages TOML config for acroserve services.
*/
package config

import (
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/acroserve/internal/utils"
	"github.com/bastiangx/acroserve/pkg/related"
	"github.com/bastiangx/acroserve/pkg/suggest"
)

// FileName is the config file name inside the config directory.
const FileName = "config.toml"

// Config holds the entire config structure
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Search     SearchConfig     `toml:"search"`
	Related    RelatedConfig    `toml:"related"`
	Manager    ManagerConfig    `toml:"manager"`
	Popularity PopularityConfig `toml:"popularity"`
	CLI        CliConfig        `toml:"cli"`
}

// ServerConfig has IPC server options.
type ServerConfig struct {
	MaxLimit     int `toml:"max_limit"`
	MinQuery     int `toml:"min_query"`
	MaxQuery     int `toml:"max_query"`
	MaxTextBytes int `toml:"max_text_bytes"`
	BatchWorkers int `toml:"batch_workers"`
}

// SearchConfig holds the fuzzy scoring weights.
type SearchConfig struct {
	WeightSimilarity float64 `toml:"weight_similarity"`
	WeightPrefix     float64 `toml:"weight_prefix"`
	WeightCategory   float64 `toml:"weight_category"`
	WeightPopularity float64 `toml:"weight_popularity"`
	MaxDistance      int     `toml:"max_distance"`
}

// RelatedConfig holds the related-term edge weights.
type RelatedConfig struct {
	ExplicitWeight float64 `toml:"explicit_weight"`
	ReverseWeight  float64 `toml:"reverse_weight"`
	CategoryWeight float64 `toml:"category_weight"`
}

// ManagerConfig holds dictionary manager options.
type ManagerConfig struct {
	RejectWhenBusy bool   `toml:"reject_when_busy"`
	StorePath      string `toml:"store_path"`
}

// PopularityConfig points at an optional popularity counts file.
type PopularityConfig struct {
	File  string `toml:"file"`
	Watch bool   `toml:"watch"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultLimit int    `toml:"default_limit"`
	LogLevel     string `toml:"log_level"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	w := suggest.DefaultWeights()
	rw := related.DefaultWeights()
	return &Config{
		Server: ServerConfig{
			MaxLimit:     64,
			MinQuery:     1,
			MaxQuery:     64,
			MaxTextBytes: 1 << 20,
			BatchWorkers: 8,
		},
		Search: SearchConfig{
			WeightSimilarity: w.Similarity,
			WeightPrefix:     w.Prefix,
			WeightCategory:   w.Category,
			WeightPopularity: w.Popularity,
			MaxDistance:      3,
		},
		Related: RelatedConfig{
			ExplicitWeight: rw.Explicit,
			ReverseWeight:  rw.Reverse,
			CategoryWeight: rw.Category,
		},
		Manager: ManagerConfig{
			RejectWhenBusy: false,
			StorePath:      "",
		},
		Popularity: PopularityConfig{
			File:  "",
			Watch: true,
		},
		CLI: CliConfig{
			DefaultLimit: 10,
			LogLevel:     "info",
		},
	}
}

// SearchWeights converts the [search] section for the engine.
func (c *Config) SearchWeights() suggest.Weights {
	return suggest.Weights{
		Similarity: c.Search.WeightSimilarity,
		Prefix:     c.Search.WeightPrefix,
		Category:   c.Search.WeightCategory,
		Popularity: c.Search.WeightPopularity,
	}
}

// RelatedWeights converts the [related] section for the graph.
func (c *Config) RelatedWeights() related.Weights {
	return related.Weights{
		Explicit: c.Related.ExplicitWeight,
		Reverse:  c.Related.ReverseWeight,
		Category: c.Related.CategoryWeight,
	}
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	pr, err := utils.NewPathResolver()
	if err != nil {
		return "", err
	}
	return pr.GetConfigPath(FileName)
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/acroserve/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if utils.FileExists(customConfigPath) {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s. Trying default path...", customConfigPath)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}
	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file. A file that does not decode cleanly is
// salvaged section by section; keys that cannot be read keep their defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse attempts to parse a TOML file
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tempConfig, "search"); ok {
		extractSearchConfig(section, &config.Search)
	}
	if section, ok := utils.ExtractSection(tempConfig, "related"); ok {
		extractRelatedConfig(section, &config.Related)
	}
	if section, ok := utils.ExtractSection(tempConfig, "manager"); ok {
		extractManagerConfig(section, &config.Manager)
	}
	if section, ok := utils.ExtractSection(tempConfig, "popularity"); ok {
		extractPopularityConfig(section, &config.Popularity)
	}
	if section, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(section, &config.CLI)
	}
	return config, nil
}

// extractServerConfig extracts server configuration from a map
func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_limit"); ok {
		server.MaxLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "min_query"); ok {
		server.MinQuery = val
	}
	if val, ok := utils.ExtractInt64(data, "max_query"); ok {
		server.MaxQuery = val
	}
	if val, ok := utils.ExtractInt64(data, "max_text_bytes"); ok {
		server.MaxTextBytes = val
	}
	if val, ok := utils.ExtractInt64(data, "batch_workers"); ok {
		server.BatchWorkers = val
	}
}

func extractSearchConfig(data map[string]any, search *SearchConfig) {
	if val, ok := utils.ExtractFloat64(data, "weight_similarity"); ok {
		search.WeightSimilarity = val
	}
	if val, ok := utils.ExtractFloat64(data, "weight_prefix"); ok {
		search.WeightPrefix = val
	}
	if val, ok := utils.ExtractFloat64(data, "weight_category"); ok {
		search.WeightCategory = val
	}
	if val, ok := utils.ExtractFloat64(data, "weight_popularity"); ok {
		search.WeightPopularity = val
	}
	if val, ok := utils.ExtractInt64(data, "max_distance"); ok {
		search.MaxDistance = val
	}
}

func extractRelatedConfig(data map[string]any, rel *RelatedConfig) {
	if val, ok := utils.ExtractFloat64(data, "explicit_weight"); ok {
		rel.ExplicitWeight = val
	}
	if val, ok := utils.ExtractFloat64(data, "reverse_weight"); ok {
		rel.ReverseWeight = val
	}
	if val, ok := utils.ExtractFloat64(data, "category_weight"); ok {
		rel.CategoryWeight = val
	}
}

func extractManagerConfig(data map[string]any, mgr *ManagerConfig) {
	if val, ok := utils.ExtractBool(data, "reject_when_busy"); ok {
		mgr.RejectWhenBusy = val
	}
	if val, ok := utils.ExtractString(data, "store_path"); ok {
		mgr.StorePath = val
	}
}

func extractPopularityConfig(data map[string]any, pop *PopularityConfig) {
	if val, ok := utils.ExtractString(data, "file"); ok {
		pop.File = val
	}
	if val, ok := utils.ExtractBool(data, "watch"); ok {
		pop.Watch = val
	}
}

// extractCliConfig extracts CLI config from a map
func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		cli.DefaultLimit = val
	}
	if val, ok := utils.ExtractString(data, "log_level"); ok {
		cli.LogLevel = val
	}
}

// RebuildConfigFile force creates a new config.toml at path
func RebuildConfigFile(path string) error {
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	return SaveConfig(DefaultConfig(), path)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// Update changes the server limits and saves to file
func (c *Config) Update(configPath string, maxLimit, minQuery, maxQuery *int) error {
	server := &c.Server
	if maxLimit != nil {
		server.MaxLimit = *maxLimit
	}
	if minQuery != nil {
		server.MinQuery = *minQuery
	}
	if maxQuery != nil {
		server.MaxQuery = *maxQuery
	}
	return SaveConfig(c, configPath)
}
