package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/clipr/cmd/clipr/tui"
	"github.com/jamesainslie/clipr/pkg/clipr/clipboard"
	"github.com/jamesainslie/clipr/pkg/clipr/config"
	"github.com/jamesainslie/clipr/pkg/clipr/logging"
	"github.com/jamesainslie/clipr/pkg/clipr/session"
	"github.com/jamesainslie/clipr/pkg/clipr/watcher"
)

// runTUI opens the interactive browser. Config file changes are applied
// while it runs.
func runTUI(cmd *cobra.Command, _ []string) (err error) {
	if err := initTUILogging(); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	log := logging.Get("tui")
	if configErr != nil {
		log.Warn("using default configuration", "err", configErr)
	}
	cfg := appConfig

	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	sink, err := clipboard.New(cfg.Clipboard.Backend)
	if err != nil {
		log.Warn("clipboard unavailable, copying is disabled", "err", err)
		sink = nil
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var reloads <-chan struct{}
	if w, werr := startConfigWatcher(ctx, cfg); werr != nil {
		log.Warn("config hot reload disabled", "err", werr)
	} else {
		defer func() { _ = w.Close() }()
		reloads = w.Reloads()
	}

	sess, err := session.Open(ctx, session.Options{
		Config:     cfg,
		Store:      store,
		Sink:       sink,
		Reloads:    reloads,
		LoadConfig: func() (*config.Config, error) { return config.Load(cfgFile) },
	})
	if err != nil {
		_ = store.Close()
		return err
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	return tui.Run(sess)
}

// startConfigWatcher watches the active config file.
func startConfigWatcher(ctx context.Context, cfg *config.Config) (*watcher.Watcher, error) {
	path := cfg.File
	if path == "" {
		p, err := config.ConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	w, err := watcher.New(0)
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		_ = w.Close()
		return nil, err
	}
	go w.Run(ctx)
	logging.Get("tui").Debug("watching config", "path", path)
	return w, nil
}
