package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/bastiangx/acroserve/internal/utils"
	"github.com/bastiangx/acroserve/pkg/config"
	"github.com/bastiangx/acroserve/pkg/store"
)

var (
	dbFlag     string
	configFlag string
	debugFlag  bool
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#286983", Dark: "#9ccfd8"})
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#ea9d34", Dark: "#f6c177"})
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#b4637a", Dark: "#eb6f92"})
)

var rootCmd = &cobra.Command{
	Use:           "acroctl",
	Short:         "acroctl manages the acroserve acronym store",
	Long:          "Seed, import, export and validate acronym catalogs kept in the acroserve bbolt store.",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debugFlag {
			log.SetLevel(log.DebugLevel)
		} else {
			log.SetLevel(log.WarnLevel)
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dbFlag, "db", "", "Path to the bbolt store (default: [manager] store_path, then <config dir>/acroserve.db)")
	pf.StringVar(&configFlag, "config", "", "Path to custom config.toml file")
	pf.BoolVarP(&debugFlag, "debug", "d", false, "Enable debug logging")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(formatsCmd)
}

// storePath resolves --db, then the config, then the config directory.
func storePath() (string, error) {
	if dbFlag != "" {
		return dbFlag, nil
	}
	cfg, _, err := config.LoadConfigWithPriority(configFlag)
	if err == nil && cfg.Manager.StorePath != "" {
		return cfg.Manager.StorePath, nil
	}
	pr, err := utils.NewPathResolver()
	if err != nil {
		return "", fmt.Errorf("resolve store path: %w", err)
	}
	return filepath.Join(pr.GetConfigDir(), "acroserve.db"), nil
}

// openStore opens the resolved store, creating its directory.
func openStore() (*store.Store, string, error) {
	path, err := storePath()
	if err != nil {
		return nil, "", err
	}
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, "", err
	}
	db, err := store.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w (is acroserve running with this store?)", err)
	}
	return db, path, nil
}
