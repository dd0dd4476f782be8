// Package output provides formatters for the clipr history and stats
// commands (plain, json, yaml).
//
// The package uses a registry pattern so formatters can be selected by name
// at runtime.
//
// Basic usage:
//
//	formatter, err := output.Get("json")
//	if err != nil {
//	    return err
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, output.History(ledger, 20, time.Now())); err != nil {
//	    return err
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jamesainslie/clipr/pkg/clipr/history"
)

// PreviewLength is the number of characters shown per entry.
const PreviewLength = 50

// View selects what a Result describes.
type View int

const (
	// ViewHistory lists entries.
	ViewHistory View = iota
	// ViewStats summarizes the ledger.
	ViewStats
)

// EntryInfo describes one history entry for output.
type EntryInfo struct {
	// Index is the 1-based position in the listing.
	Index int `json:"index" yaml:"index"`

	ID   uint64 `json:"id" yaml:"id"`
	Kind string `json:"kind" yaml:"kind"`

	// Preview is the single-line summary of the content.
	Preview string `json:"preview" yaml:"preview"`

	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	MIME        string `json:"mime,omitempty" yaml:"mime,omitempty"`
	Path        string `json:"path,omitempty" yaml:"path,omitempty"`

	Pinned    bool   `json:"pinned" yaml:"pinned"`
	Temporary string `json:"temporary_registers,omitempty" yaml:"temporary_registers,omitempty"`
	Permanent string `json:"permanent_registers,omitempty" yaml:"permanent_registers,omitempty"`

	Size      int       `json:"size" yaml:"size"`
	SizeHuman string    `json:"size_human" yaml:"size_human"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`

	// Age is the humanized time since the entry was last captured.
	Age string `json:"age" yaml:"age"`
}

// StatsInfo summarizes a ledger.
type StatsInfo struct {
	Total      int    `json:"total" yaml:"total"`
	Text       int    `json:"text" yaml:"text"`
	Images     int    `json:"images" yaml:"images"`
	Files      int    `json:"files" yaml:"files"`
	Pinned     int    `json:"pinned" yaml:"pinned"`
	Temporary  int    `json:"temporary_registers" yaml:"temporary_registers"`
	Permanent  int    `json:"permanent_registers" yaml:"permanent_registers"`
	Bytes      int64  `json:"bytes" yaml:"bytes"`
	BytesHuman string `json:"bytes_human" yaml:"bytes_human"`
	MaxHistory int    `json:"max_history" yaml:"max_history"`
}

// Result contains the data for one formatted report.
type Result struct {
	View View

	// Entries is the listing for ViewHistory, most recent first.
	Entries []EntryInfo

	// Limit is the requested listing size.
	Limit int

	// Stats is set for ViewStats.
	Stats StatsInfo
}

// History builds a ViewHistory result with at most limit entries.
// A limit of zero or less lists everything.
func History(l *history.Ledger, limit int, now time.Time) *Result {
	all := l.Entries()
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}

	entries := make([]EntryInfo, len(all))
	for i, e := range all {
		entries[i] = EntryInfo{
			Index:       i + 1,
			ID:          e.ID,
			Kind:        e.Content.Kind.String(),
			Preview:     e.Content.Preview(PreviewLength),
			Name:        e.Name,
			Description: e.Description,
			MIME:        e.Content.MIME,
			Path:        e.Content.Path,
			Pinned:      e.Pinned,
			Temporary:   e.TemporaryRegisters().String(),
			Permanent:   e.PermanentRegisters().String(),
			Size:        e.Content.Size(),
			SizeHuman:   humanize.IBytes(uint64(e.Content.Size())),
			Timestamp:   e.Timestamp,
			Age:         humanize.RelTime(e.Timestamp, now, "ago", "from now"),
		}
	}
	return &Result{View: ViewHistory, Entries: entries, Limit: limit}
}

// Stats builds a ViewStats result.
func Stats(l *history.Ledger) *Result {
	s := l.Stats()
	return &Result{
		View: ViewStats,
		Stats: StatsInfo{
			Total:      s.Total,
			Text:       s.Text,
			Images:     s.Images,
			Files:      s.Files,
			Pinned:     s.Pinned,
			Temporary:  s.Temporary,
			Permanent:  s.Permanent,
			Bytes:      s.Bytes,
			BytesHuman: humanize.IBytes(uint64(s.Bytes)),
			MaxHistory: l.MaxEntries(),
		},
	}
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes the formatted output to the buffer.
	Format(w *bytes.Buffer, r *Result) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory to the registry, replacing any existing
// formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}
