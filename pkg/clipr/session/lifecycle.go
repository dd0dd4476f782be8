package session

import (
	"errors"
	"fmt"

	"github.com/jamesainslie/clipr/pkg/clipr/config"
	"github.com/jamesainslie/clipr/pkg/clipr/logging"
)

// TickResult reports what a Tick changed.
type TickResult struct {
	// Decoded is the number of previews added to the cache.
	Decoded int
	// Reloaded is set when a new config was applied.
	Reloaded bool
	// ReloadErr is the error of a failed reload. The previous config stays
	// active.
	ReloadErr error
}

// Changed reports whether the display needs a redraw.
func (r TickResult) Changed() bool {
	return r.Decoded > 0 || r.Reloaded || r.ReloadErr != nil
}

// Tick collects finished preview decodes and handles a pending config
// reload. It never blocks.
func (s *Session) Tick() TickResult {
	var res TickResult
	res.Decoded = s.pipeline.Poll()

	select {
	case _, ok := <-s.reloads:
		if !ok {
			s.reloads = nil
			break
		}
		if err := s.Reload(); err != nil {
			res.ReloadErr = err
		} else {
			res.Reloaded = true
		}
	default:
	}
	return res
}

// Reload re-reads the configuration and applies it. On error nothing
// changes.
func (s *Session) Reload() error {
	log := logging.Get("session")
	cfg, err := s.loadConfig()
	if err != nil {
		log.Warn("config reload failed, keeping previous settings", "err", err)
		return fmt.Errorf("reloading config: %w", err)
	}
	s.apply(cfg)
	log.Info("config reloaded", "file", cfg.File)
	return nil
}

// apply switches to cfg. Permanent registers from cfg are added; registers
// dropped from the file keep their current assignment until removed in the
// UI.
func (s *Session) apply(cfg *config.Config) {
	if removed := s.ledger.SetMaxEntries(cfg.General.MaxHistory); removed > 0 {
		s.dirty = true
	}
	s.pipeline.Resize(cfg.Images.CacheSize)
	s.cfg = cfg
	s.applyPermanent(cfg)
	s.view.Refresh()
	s.requestPreview()
}

// Save writes the ledger to the store if anything changed.
func (s *Session) Save() error {
	if !s.dirty {
		return nil
	}
	if err := s.store.Save(s.ledger); err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	s.dirty = false
	return nil
}

// Close clears temporary registers, saves and stops the pipeline and the
// store. It is safe to call more than once.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if len(s.ledger.Registers().ListTemporary()) > 0 {
		s.ledger.Registers().ClearTemporary()
		s.dirty = true
	}
	err := s.Save()
	s.pipeline.Close()
	if cerr := s.store.Close(); cerr != nil {
		err = errors.Join(err, fmt.Errorf("closing store: %w", cerr))
	}
	logging.Get("session").Info("session closed", "entries", s.ledger.Len())
	return err
}
