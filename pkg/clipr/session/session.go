// Package session wires the ledger, selection view, preview pipeline,
// clipboard sink and snapshot store into the state driven by the TUI.
//
// A Session is owned by a single goroutine. Every action mutates the ledger
// synchronously, refreshes the view and, when the selection lands on an
// image, queues a preview decode. Tick collects finished decodes and
// config reload signals.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/jamesainslie/clipr/pkg/clipr/clipboard"
	"github.com/jamesainslie/clipr/pkg/clipr/config"
	"github.com/jamesainslie/clipr/pkg/clipr/history"
	"github.com/jamesainslie/clipr/pkg/clipr/logging"
	"github.com/jamesainslie/clipr/pkg/clipr/preview"
	"github.com/jamesainslie/clipr/pkg/clipr/search"
	"github.com/jamesainslie/clipr/pkg/clipr/selection"
	"github.com/jamesainslie/clipr/pkg/clipr/snapshot"
)

// ErrNoSelection is returned by actions that need a selected entry.
var ErrNoSelection = errors.New("no entry selected")

// Options configures Open.
type Options struct {
	// Config is the loaded configuration. Required.
	Config *config.Config

	// Store persists the ledger. Required.
	Store snapshot.Store

	// Sink receives copies. Nil makes copy actions fail with
	// clipboard.ErrNoBackend.
	Sink clipboard.Sink

	// Reloads delivers config change signals, usually from a
	// watcher.Watcher. Nil disables reloading.
	Reloads <-chan struct{}

	// LoadConfig re-reads the configuration on reload. Defaults to
	// config.Load of Config.File.
	LoadConfig func() (*config.Config, error)
}

// Session is the interactive clipboard state.
type Session struct {
	cfg        *config.Config
	loadConfig func() (*config.Config, error)
	reloads    <-chan struct{}

	store    snapshot.Store
	sink     clipboard.Sink
	ledger   *history.Ledger
	ranker   *search.FuzzyRanker
	view     *selection.View
	pipeline *preview.Pipeline

	dirty  bool
	closed bool
}

// Open loads the snapshot, applies permanent registers from the config and
// starts the preview pipeline. A corrupt snapshot is logged and replaced by
// an empty history; only a pipeline failure is fatal.
func Open(ctx context.Context, opts Options) (*Session, error) {
	if opts.Config == nil || opts.Store == nil {
		return nil, errors.New("session requires a config and a store")
	}
	log := logging.Get("session")

	l, err := opts.Store.Load()
	switch {
	case errors.Is(err, snapshot.ErrSnapshotCorrupt):
		log.Warn("history snapshot was corrupt, starting empty", "err", err)
	case err != nil:
		return nil, fmt.Errorf("loading history: %w", err)
	}

	pipeline, err := preview.New(ctx, pipelineOptions(opts.Config))
	if err != nil {
		return nil, fmt.Errorf("starting preview pipeline: %w", err)
	}

	s := &Session{
		cfg:        opts.Config,
		loadConfig: opts.LoadConfig,
		reloads:    opts.Reloads,
		store:      opts.Store,
		sink:       opts.Sink,
		ledger:     l,
		ranker:     search.NewFuzzyRanker(search.SmartCase),
		pipeline:   pipeline,
	}
	if s.loadConfig == nil {
		path := opts.Config.File
		s.loadConfig = func() (*config.Config, error) { return config.Load(path) }
	}

	if removed := l.SetMaxEntries(s.cfg.General.MaxHistory); removed > 0 {
		s.dirty = true
	}
	s.applyPermanent(s.cfg)

	s.view = selection.New(l, s.ranker)
	s.requestPreview()
	log.Info("session opened", "entries", l.Len(), "max_history", l.MaxEntries())
	return s, nil
}

func pipelineOptions(cfg *config.Config) preview.Options {
	return preview.Options{
		CacheSize: cfg.Images.CacheSize,
		MaxWidth:  cfg.Images.PreviewWidth,
		// Each terminal cell renders two pixel rows.
		MaxHeight:   cfg.Images.PreviewHeight * 2,
		MaxFileSize: cfg.MaxPreviewSize(),
	}
}

// applyPermanent loads the config's permanent registers. Bad definitions
// are logged; the valid ones still apply.
func (s *Session) applyPermanent(cfg *config.Config) {
	log := logging.Get("session")
	defs, err := cfg.PermanentDefs()
	if err != nil {
		log.Warn("skipping invalid permanent registers", "err", err)
	}
	if err := s.ledger.Registers().LoadPermanent(defs); err != nil {
		log.Warn("could not apply permanent registers", "err", err)
	}
	if len(defs) > 0 {
		s.dirty = true
	}
}

// Config returns the active configuration.
func (s *Session) Config() *config.Config { return s.cfg }

// Ledger returns the history ledger.
func (s *Session) Ledger() *history.Ledger { return s.ledger }

// View returns the selection view.
func (s *Session) View() *selection.View { return s.view }

// Dirty reports whether there are unsaved changes.
func (s *Session) Dirty() bool { return s.dirty }

// Visible returns the visible entries in display order.
func (s *Session) Visible() []*history.Entry {
	ids := s.view.VisibleIDs()
	out := make([]*history.Entry, 0, len(ids))
	for _, id := range ids {
		if e, ok := s.ledger.Get(id); ok {
			out = append(out, e)
		}
	}
	return out
}

// Selected returns the entry under the cursor.
func (s *Session) Selected() (*history.Entry, bool) {
	return s.view.Selected()
}

func (s *Session) selected() (*history.Entry, error) {
	e, ok := s.view.Selected()
	if !ok {
		return nil, ErrNoSelection
	}
	return e, nil
}

// changed marks the ledger dirty and refreshes derived state.
func (s *Session) changed() {
	s.dirty = true
	s.view.Refresh()
	s.requestPreview()
}

// requestPreview runs when the selection may have changed. A cached image
// is marked recently used; otherwise an image entry that is not in flight
// is queued for decoding.
func (s *Session) requestPreview() {
	e, ok := s.view.Selected()
	if !ok {
		return
	}
	if _, cached := s.pipeline.Get(e.ID); cached {
		return
	}
	req, ok := preview.RequestFor(e)
	if !ok || s.pipeline.Pending(e.ID) {
		return
	}
	if !s.pipeline.RequestDecode(req) {
		logging.Get("session").Debug("preview queue busy", "id", e.ID)
	}
}

// Preview returns the decoded image for the selected entry. It does not
// touch cache recency, so redraws leave the eviction order alone.
func (s *Session) Preview() (*preview.Image, bool) {
	id, ok := s.view.SelectedID()
	if !ok {
		return nil, false
	}
	return s.pipeline.Peek(id)
}

// PreviewPending reports whether the selected entry is being decoded.
func (s *Session) PreviewPending() bool {
	id, ok := s.view.SelectedID()
	return ok && s.pipeline.Pending(id)
}
