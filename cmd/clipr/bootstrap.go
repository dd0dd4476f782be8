package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jamesainslie/clipr/pkg/clipr/config"
	"github.com/jamesainslie/clipr/pkg/clipr/history"
	"github.com/jamesainslie/clipr/pkg/clipr/logging"
	"github.com/jamesainslie/clipr/pkg/clipr/snapshot"
)

var (
	// appConfig is the configuration loaded by initializeLogging. It holds
	// the defaults when loading failed; configErr records why.
	appConfig *config.Config
	configErr error
)

// initializeLogging is the PersistentPreRunE hook. It creates the clipr
// directories, loads the configuration and starts file logging.
func initializeLogging(_ *cobra.Command, _ []string) error {
	if err := config.EnsureConfigDir(); err != nil {
		return err
	}
	if err := config.EnsureStateDir(); err != nil {
		return err
	}

	appConfig, configErr = config.Load(cfgFile)
	if configErr != nil {
		appConfig = config.Default()
	}
	if err := config.EnsureDataDir(appConfig.DataPath()); err != nil {
		return err
	}

	if err := logging.Init(logConfig(appConfig, false)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	if configErr != nil {
		logging.Get("main").Warn("using default configuration", "err", configErr)
	}
	printVerbose("Data directory: %s", appConfig.DataPath())
	return nil
}

// initTUILogging re-initializes logging for the TUI: console output is
// disabled and recent records go to the in-memory buffer.
func initTUILogging() error {
	return logging.Init(logConfig(appConfig, true))
}

// logConfig converts the logging section of cfg.
func logConfig(cfg *config.Config, tui bool) logging.Config {
	lc := logging.Config{
		Level:      cfg.Logging.Level,
		Path:       cfg.Logging.Path,
		Rotation:   parseRotationConfig(cfg.Logging.Rotation),
		Components: cfg.Logging.Components,
		TUIMode:    tui,
	}
	if lc.Level == "" {
		lc.Level = "info"
	}
	if lc.Path != "" {
		if p, err := config.ExpandPath(lc.Path); err == nil {
			lc.Path = p
		}
	}
	if !tui && getVerbose() {
		lc.ConsoleLevel = "debug"
	}
	return lc
}

// parseRotationConfig converts the config's rotation section, falling back
// to the default size when max_size is empty or invalid.
func parseRotationConfig(rc config.RotationConfig) logging.RotationConfig {
	out := logging.DefaultRotationConfig()
	if rc.MaxSize != "" {
		if n, err := humanize.ParseBytes(rc.MaxSize); err == nil && n > 0 {
			out.MaxSize = int64(n)
		}
	}
	out.MaxAge = rc.MaxAge
	out.MaxBackups = rc.MaxBackups
	out.Daily = rc.Daily
	return out
}

// requireConfig returns the loaded configuration, or the load error for
// commands that must not silently run on defaults.
func requireConfig() (*config.Config, error) {
	if configErr != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", configErr)
	}
	return appConfig, nil
}

// openStore opens the snapshot store configured in cfg.
func openStore(cfg *config.Config) (snapshot.Store, error) {
	store, err := snapshot.Open(cfg.Storage.Backend, cfg.DataPath(), history.WithMaxEntries(cfg.General.MaxHistory))
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}
	return store, nil
}

// loadHistory opens the store and loads the ledger. A corrupt snapshot is
// reported and replaced by an empty history.
func loadHistory(cfg *config.Config) (snapshot.Store, *history.Ledger, error) {
	store, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	l, err := store.Load()
	if err != nil {
		if !errors.Is(err, snapshot.ErrSnapshotCorrupt) {
			_ = store.Close()
			return nil, nil, fmt.Errorf("failed to load history: %w", err)
		}
		printError("%v", err)
	}
	return store, l, nil
}
