// Package snapshot persists the clipboard ledger.
//
// Two backends exist: FileStore writes a single JSON document with an
// atomic temp-file rename, and BadgerStore keeps the same document under
// one key in a Badger database. Both recover from unreadable snapshots by
// returning an empty ledger and preserving the bad data for inspection.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jamesainslie/clipr/pkg/clipr/history"
	"github.com/jamesainslie/clipr/pkg/clipr/logging"
)

// ErrSnapshotCorrupt is returned alongside an empty, usable ledger when the
// stored snapshot could not be decoded.
var ErrSnapshotCorrupt = errors.New("snapshot corrupt")

// Store loads and saves the ledger.
//
// Load always returns a usable ledger when err is nil or wraps
// ErrSnapshotCorrupt. The ledger's hash index and register maps are rebuilt
// from the stored entries.
type Store interface {
	Load() (*history.Ledger, error)
	Save(l *history.Ledger) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
)

// Open returns the store for backend rooted at dir.
func Open(backend, dir string, opts ...history.Option) (Store, error) {
	switch backend {
	case "", BackendFile:
		return NewFileStore(FilePath(dir), opts...), nil
	case BackendBadger:
		return OpenBadgerStore(BadgerPath(dir), opts...)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

const formatVersion = 1

type document struct {
	Version int      `json:"version"`
	NextID  uint64   `json:"next_id"`
	Entries []record `json:"entries"`
}

type record struct {
	ID                 uint64    `json:"id"`
	Kind               string    `json:"kind"`
	Text               string    `json:"text,omitempty"`
	Data               []byte    `json:"data,omitempty"`
	Path               string    `json:"path,omitempty"`
	MIME               string    `json:"mime,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
	Pinned             bool      `json:"pinned,omitempty"`
	Name               string    `json:"name,omitempty"`
	Description        string    `json:"description,omitempty"`
	TemporaryRegisters string    `json:"temporary_registers,omitempty"`
	PermanentRegisters string    `json:"permanent_registers,omitempty"`
}

func encode(l *history.Ledger) ([]byte, error) {
	st := l.State()
	doc := document{
		Version: formatVersion,
		NextID:  st.NextID,
		Entries: make([]record, 0, len(st.Entries)),
	}
	for _, r := range st.Entries {
		doc.Entries = append(doc.Entries, record{
			ID:                 r.ID,
			Kind:               r.Content.Kind.String(),
			Text:               r.Content.Text,
			Data:               r.Content.Data,
			Path:               r.Content.Path,
			MIME:               r.Content.MIME,
			Timestamp:          r.Timestamp,
			Pinned:             r.Pinned,
			Name:               r.Name,
			Description:        r.Description,
			TemporaryRegisters: r.TemporaryRegisters.String(),
			PermanentRegisters: r.PermanentRegisters.String(),
		})
	}
	return json.Marshal(doc)
}

// decode parses a snapshot. Records with an unknown kind are skipped.
func decode(data []byte) (history.State, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return history.State{}, fmt.Errorf("%w: %w", ErrSnapshotCorrupt, err)
	}
	if doc.Version > formatVersion {
		return history.State{}, fmt.Errorf("%w: unsupported version %d", ErrSnapshotCorrupt, doc.Version)
	}

	st := history.State{NextID: doc.NextID, Entries: make([]history.Record, 0, len(doc.Entries))}
	for _, r := range doc.Entries {
		kind, err := history.ParseKind(r.Kind)
		if err != nil {
			logging.Get("snapshot").Warn("skipping entry", "id", r.ID, "err", err)
			continue
		}
		st.Entries = append(st.Entries, history.Record{
			ID:                 r.ID,
			Content:            history.Content{Kind: kind, Text: r.Text, Data: r.Data, Path: r.Path, MIME: r.MIME},
			Timestamp:          r.Timestamp,
			Pinned:             r.Pinned,
			Name:               r.Name,
			Description:        r.Description,
			TemporaryRegisters: history.ParseRegisterSet(r.TemporaryRegisters),
			PermanentRegisters: history.ParseRegisterSet(r.PermanentRegisters),
		})
	}
	return st, nil
}
