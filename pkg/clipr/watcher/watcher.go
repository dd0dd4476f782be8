// Package watcher turns filesystem changes to watched files into coalesced
// reload signals.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jamesainslie/clipr/pkg/clipr/logging"
)

// DefaultDebounce is how long the watcher waits for further events before
// signalling a reload.
const DefaultDebounce = 150 * time.Millisecond

// Watcher signals when any watched file changes. Parent directories are
// watched rather than the files themselves so editors that replace a file
// by rename are still noticed.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	reloads  chan struct{}

	mu     sync.Mutex
	files  map[string]bool
	dirs   map[string]bool
	closed bool
}

// New creates a watcher. A non-positive debounce uses DefaultDebounce.
func New(debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		watcher:  fsw,
		debounce: debounce,
		reloads:  make(chan struct{}, 1),
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
	}, nil
}

// Watch adds path to the watched files. The file need not exist yet, but
// its directory must.
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	if !w.dirs[dir] {
		if err := w.watcher.Add(dir); err != nil {
			logging.Get("watcher").Warn("failed to add watch", "path", dir, "error", err)
			return err
		}
		w.dirs[dir] = true
	}
	w.files[abs] = true
	return nil
}

// Reloads delivers one signal per burst of changes. At most one signal is
// ever buffered; callers poll it without blocking.
func (w *Watcher) Reloads() <-chan struct{} {
	return w.reloads
}

// Run starts the event loop. It blocks until the context is cancelled or
// the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			logging.Get("watcher").Debug("watched file changed", "path", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.signal()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Get("watcher").Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.files[filepath.Clean(event.Name)]
}

// signal queues a reload unless one is already pending.
func (w *Watcher) signal() {
	select {
	case w.reloads <- struct{}{}:
	default:
	}
}

// Close closes the watcher and releases resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}

	w.closed = true
	w.files = make(map[string]bool)
	w.dirs = make(map[string]bool)
	return w.watcher.Close()
}
