// Copyright 2025 The AcroServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the acronym detection server and its debugging CLI.

AcroServe finds telecom acronyms in free text, answers fuzzy lookups for
misspelled ones and ranks related terms. It runs as a MessagePack IPC server
for editors and other tools, or as an interactive CLI for testing.

# Usage

Start the server with the embedded catalog:

	acroserve

Load catalog files from a directory and enable debug logs:

	acroserve -data /path/to/catalogs -d

Run in CLI mode:

	acroserve -c -limit 5

Expose Prometheus metrics while serving:

	acroserve -metrics 127.0.0.1:9464

# Dictionary sources

On startup the entries come from the first source that yields any:

 1. the bbolt store at [manager] store_path, when set and not empty
 2. the -data file or directory (json, csv or msgpack catalogs)
 3. the embedded base catalog

Every published snapshot is written back to the store, so changes made over
IPC survive a restart.

# Configuration

Runtime configuration lives in a TOML file created with defaults on first run:

	[server]
	max_limit = 64
	max_text_bytes = 1048576
	batch_workers = 8

	[search]
	weight_similarity = 0.6
	weight_prefix = 0.2
	weight_category = 0.1
	weight_popularity = 0.1

	[popularity]
	file = "~/.config/acroserve/popularity.json"
	watch = true

# IPC Protocol

See package server for the message shapes. The first message on stdout is
always {"status": "ready"}; closing stdin stops the server.

# Command Line Flags

	-config string
	    Path to a config file (default: platform config dir)
	-data string
	    Catalog file or directory
	-d  Enable debug mode with detailed logging
	-c  Run in CLI mode instead of server mode
	-limit int
	    Number of results to show in CLI mode
	-metrics string
	    Serve Prometheus metrics on this address
	-reset-config
	    Rewrite the config file with defaults and exit
	-version
	    Show current version
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/bastiangx/acroserve/internal/cli"
	"github.com/bastiangx/acroserve/internal/logger"
	"github.com/bastiangx/acroserve/internal/utils"
	"github.com/bastiangx/acroserve/pkg/config"
	"github.com/bastiangx/acroserve/pkg/dictionary"
	"github.com/bastiangx/acroserve/pkg/manager"
	"github.com/bastiangx/acroserve/pkg/metrics"
	"github.com/bastiangx/acroserve/pkg/popularity"
	"github.com/bastiangx/acroserve/pkg/server"
	"github.com/bastiangx/acroserve/pkg/store"
	"github.com/bastiangx/acroserve/pkg/suggest"
)

const (
	Version = "0.3.0-beta"
	AppName = "acroserve"
	gh      = "https://github.com/bastiangx/acroserve"
)

// sigHandler cancels the context on SIGINT/SIGTERM and exits.
func sigHandler(cancel context.CancelFunc, cleanup func()) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		cancel()
		cleanup()
		os.Exit(0)
	}()
}

// main wires config, storage and the manager, then hands over to the IPC
// server or the CLI. It does not implement their logic.
func main() {
	defaultConfig := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	configFile := flag.String("config", "", "Path to custom config.toml file")
	dataPath := flag.String("data", "", "Catalog file or directory (json, csv, msgpack)")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	limit := flag.Int("limit", defaultConfig.CLI.DefaultLimit, "Number of results to show in CLI mode")
	metricsAddr := flag.String("metrics", "", "Serve Prometheus metrics on this address (e.g. 127.0.0.1:9464)")
	resetConfig := flag.Bool("reset-config", false, "Rewrite the config file with defaults and exit")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	if *resetConfig {
		path := *configFile
		if path == "" {
			var err error
			if path, err = config.GetDefaultConfigPath(); err != nil {
				log.Fatalf("Failed to locate config: %v", err)
			}
		}
		if err := config.RebuildConfigFile(path); err != nil {
			log.Fatalf("Failed to rewrite config: %v", err)
		}
		fmt.Fprintf(os.Stderr, "Wrote default config to %s\n", path)
		os.Exit(0)
	}

	appConfig, configPath, err := config.LoadConfigWithPriority(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if !*debugMode {
		logger.SetLevel(appConfig.CLI.LogLevel)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(configPath))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var db *store.Store
	if appConfig.Manager.StorePath != "" {
		db, err = store.Open(appConfig.Manager.StorePath)
		if err != nil {
			log.Fatalf("Failed to open store: %v", err)
		}
		defer db.Close()
	}
	sigHandler(cancel, func() {
		if db != nil {
			db.Close()
		}
	})

	entries, version, source, err := loadEntries(db, *dataPath)
	if err != nil {
		log.Fatalf("Failed to load dictionary: %v", err)
	}
	log.Debugf("Loaded %d entries from %s", len(entries), source)

	weights := popularity.NewTable()
	if path := appConfig.Popularity.File; path != "" {
		if appConfig.Popularity.Watch {
			if err := weights.Watch(ctx, path); err != nil {
				log.Warnf("Popularity watch disabled: %v", err)
			}
		} else if err := weights.LoadFile(path); err != nil {
			log.Warnf("Failed to load popularity file %s: %v", path, err)
		}
	}

	opts := []manager.Option{
		manager.WithStartVersion(version + 1),
		manager.WithPopularity(weights),
		manager.WithEngineOptions(
			suggest.WithWeights(appConfig.SearchWeights()),
			suggest.WithMaxDistance(appConfig.Search.MaxDistance),
		),
		manager.WithRelatedWeights(appConfig.RelatedWeights()),
	}
	if appConfig.Manager.RejectWhenBusy {
		opts = append(opts, manager.WithRejectWhenBusy())
	}
	if db != nil {
		opts = append(opts, manager.WithPublishHook(persistTo(db)))
	}

	mgr, err := manager.New(entries, opts...)
	if err != nil {
		if verrs, ok := dictionary.AsValidationErrors(err); ok {
			for _, ve := range verrs {
				log.Error(ve.Error())
			}
		}
		log.Fatalf("Failed to build dictionary from %s: %v", source, err)
	}

	if *metricsAddr != "" {
		go serveMetrics(*metricsAddr)
	}

	if *cliMode {
		log.SetReportTimestamp(false)
		log.Debug("Input info:", "limit", *limit, "entries", mgr.Current().Len())

		inputHandler := cli.NewInputHandler(mgr, *limit)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	srv, err := server.NewServer(mgr, appConfig.Server)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}
	defer srv.Close()

	showStartupInfo(source, mgr.Current())

	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// loadEntries picks the first dictionary source that yields entries: the
// store, then the -data path, then the embedded catalog.
func loadEntries(db *store.Store, dataPath string) ([]dictionary.Entry, uint64, string, error) {
	if db != nil {
		entries, version, err := db.LoadEntries()
		if err != nil {
			return nil, 0, "", fmt.Errorf("store: %w", err)
		}
		if len(entries) > 0 {
			if dataPath != "" {
				log.Warnf("Store already holds %d entries (v%d); ignoring -data %s. Use acroctl import to load it.", len(entries), version, dataPath)
			}
			return entries, version, "store", nil
		}
	}

	if dataPath != "" {
		pathResolver, err := utils.NewPathResolver()
		if err != nil {
			return nil, 0, "", fmt.Errorf("path resolver: %w", err)
		}
		resolved := pathResolver.ResolveDataPath(dataPath)
		if resolved == "" {
			return nil, 0, "", fmt.Errorf("catalog data not found: %s", dataPath)
		}
		entries, stats, err := dictionary.NewLoader(resolved).LoadAll()
		if err != nil {
			return nil, 0, "", err
		}
		log.Debugf("Catalog files: %d read, %d empty", stats.Files, stats.Skipped)
		return entries, 0, resolved, nil
	}

	entries, err := dictionary.Base()
	return entries, 0, "embedded catalog", err
}

// persistTo saves every published snapshot. Failures are logged; the
// in-memory snapshot stays authoritative.
func persistTo(db *store.Store) func(*manager.Snapshot) {
	storeLog := logger.New("store")
	return func(snap *manager.Snapshot) {
		if err := db.SaveEntries(snap.Version, snap.Dictionary.Entries()); err != nil {
			storeLog.Errorf("Failed to persist v%d: %v", snap.Version, err)
			return
		}
		storeLog.Debugf("Persisted v%d (%d entries)", snap.Version, snap.Len())
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	log.Debugf("Serving metrics on http://%s/metrics", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Errorf("Metrics server stopped: %v", err)
	}
}

func printVersion() {
	banner := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	banner.SetStyles(styles)

	banner.Print("")
	banner.Print("[ AcroServe ] Finds and explains telecom acronyms, fast")
	banner.Print("", "version", Version)
	banner.Print("")
	banner.Print("use -h or --help to see available options")
	banner.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(source string, snap *manager.Snapshot) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	fmt.Fprintln(os.Stderr, "===========")
	fmt.Fprintln(os.Stderr, " AcroServe ")
	fmt.Fprintln(os.Stderr, "===========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Infof("dictionary: %d entries, v%d ( %s )", snap.Len(), snap.Version, source)
	log.Info("status: ready")
	fmt.Fprintln(os.Stderr, "===========")
	fmt.Fprintln(os.Stderr, "Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
