// Package history holds the clipboard ledger and its register index.
//
// The ledger keeps entries most-recent-first, deduplicates captures by
// content hash and evicts the oldest unprotected entries once more than
// the configured number exist. Pinned entries and entries holding a
// register are never evicted.
//
// A Ledger is not safe for concurrent use. clipr mutates it only from the
// interactive loop.
package history

import (
	"fmt"
	"slices"
	"time"

	"github.com/jamesainslie/clipr/pkg/clipr/logging"
)

// Ledger is the ordered, deduplicated clipboard history.
type Ledger struct {
	entries    []*Entry
	byID       map[uint64]*Entry
	hashIndex  map[uint64]uint64
	nextID     uint64
	maxEntries int
	now        func() time.Time
	regs       *Registers
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithMaxEntries caps the number of unprotected entries. Zero or less
// disables rotation.
func WithMaxEntries(n int) Option {
	return func(l *Ledger) { l.maxEntries = n }
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// New returns an empty ledger.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		byID:      make(map[uint64]*Entry),
		hashIndex: make(map[uint64]uint64),
		nextID:    1,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.regs = newRegisters(l)
	return l
}

// Registers returns the register index bound to this ledger.
func (l *Ledger) Registers() *Registers {
	return l.regs
}

// MaxEntries returns the rotation cap.
func (l *Ledger) MaxEntries() int {
	return l.maxEntries
}

// SetMaxEntries changes the rotation cap and applies it immediately.
func (l *Ledger) SetMaxEntries(n int) int {
	l.maxEntries = n
	return l.rotate()
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// NextID returns the id the next new entry will receive.
func (l *Ledger) NextID() uint64 {
	return l.nextID
}

// Insert stores content and returns its id. Content already present is
// touched instead: its timestamp is bumped and it moves to the front.
func (l *Ledger) Insert(c Content) uint64 {
	return l.insert(c, "", "")
}

// InsertWithMetadata is Insert with a name and description. On a duplicate,
// only non-empty values overwrite the existing metadata.
func (l *Ledger) InsertWithMetadata(c Content, name, description string) uint64 {
	return l.insert(c, name, description)
}

func (l *Ledger) insert(c Content, name, description string) uint64 {
	hash := HashContent(c)
	if id, ok := l.hashIndex[hash]; ok {
		e := l.byID[id]
		e.Timestamp = l.now()
		if name != "" {
			e.Name = name
		}
		if description != "" {
			e.Description = description
		}
		l.moveToFront(id)
		return id
	}

	e := &Entry{
		ID:          l.nextID,
		Content:     c,
		Hash:        hash,
		Timestamp:   l.now(),
		Name:        name,
		Description: description,
	}
	l.nextID++

	l.entries = append(l.entries, nil)
	copy(l.entries[1:], l.entries)
	l.entries[0] = e
	l.byID[e.ID] = e
	l.hashIndex[hash] = e.ID

	l.rotate()
	return e.ID
}

func (l *Ledger) moveToFront(id uint64) {
	i := l.indexOf(id)
	if i <= 0 {
		return
	}
	e := l.entries[i]
	copy(l.entries[1:i+1], l.entries[:i])
	l.entries[0] = e
}

func (l *Ledger) indexOf(id uint64) int {
	for i, e := range l.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// rotate evicts the tail-most unprotected entries beyond maxEntries in a
// single pass and returns how many were removed.
func (l *Ledger) rotate() int {
	if l.maxEntries <= 0 {
		return 0
	}

	unprotected := 0
	evicted := l.retain(func(e *Entry) bool {
		if e.Protected() {
			return true
		}
		unprotected++
		return unprotected <= l.maxEntries
	})

	if evicted > 0 {
		logging.Get("ledger").Debug("rotated history", "evicted", evicted, "max_entries", l.maxEntries)
	}
	return evicted
}

// retain keeps entries for which keep returns true, in order, and drops the
// rest from every index. Dropped entries must hold no registers.
func (l *Ledger) retain(keep func(*Entry) bool) int {
	n := 0
	for _, e := range l.entries {
		if keep(e) {
			l.entries[n] = e
			n++
			continue
		}
		l.forget(e)
	}
	dropped := len(l.entries) - n
	clear(l.entries[n:])
	l.entries = l.entries[:n]
	return dropped
}

func (l *Ledger) forget(e *Entry) {
	delete(l.byID, e.ID)
	if l.hashIndex[e.Hash] == e.ID {
		delete(l.hashIndex, e.Hash)
	}
}

// Get returns the entry with id.
func (l *Ledger) Get(id uint64) (*Entry, bool) {
	e, ok := l.byID[id]
	return e, ok
}

// FindByHash returns the id of the entry whose content hashes to hash.
func (l *Ledger) FindByHash(hash uint64) (uint64, bool) {
	id, ok := l.hashIndex[hash]
	return id, ok
}

// Entries returns the entries most-recent-first. The slice is a copy; the
// entries are not.
func (l *Ledger) Entries() []*Entry {
	out := make([]*Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// IDs returns entry ids most-recent-first.
func (l *Ledger) IDs() []uint64 {
	ids := make([]uint64, len(l.entries))
	for i, e := range l.entries {
		ids[i] = e.ID
	}
	return ids
}

// Remove deletes the entry with id, detaching its registers and hash.
// It reports whether an entry was removed.
func (l *Ledger) Remove(id uint64) bool {
	e, ok := l.byID[id]
	if !ok {
		return false
	}
	l.regs.detachAll(e)
	l.forget(e)
	if i := l.indexOf(id); i >= 0 {
		l.entries = slices.Delete(l.entries, i, i+1)
	}
	return true
}

// Delete is the user-facing removal. Entries holding a permanent register
// are refused with ErrCannotDelete and left untouched.
func (l *Ledger) Delete(id uint64) error {
	e, ok := l.byID[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownEntry, id)
	}
	if !e.CanDelete() {
		return fmt.Errorf("%w: entry %d (%s)", ErrCannotDelete, id, e.permanent)
	}
	l.Remove(id)
	return nil
}

// TogglePin flips the pinned flag and returns the new value.
func (l *Ledger) TogglePin(id uint64) (bool, error) {
	e, ok := l.byID[id]
	if !ok {
		return false, fmt.Errorf("%w: %d", ErrUnknownEntry, id)
	}
	e.Pinned = !e.Pinned
	return e.Pinned, nil
}

// Update calls fn with the entry so callers can edit its pin and metadata.
// Content, ID and Hash are restored afterwards; content is immutable once
// inserted.
func (l *Ledger) Update(id uint64, fn func(*Entry)) error {
	e, ok := l.byID[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownEntry, id)
	}
	content, hash := e.Content, e.Hash
	fn(e)
	e.ID, e.Content, e.Hash = id, content, hash
	return nil
}

// ClearUnpinned removes every entry that is neither pinned nor registered
// and returns how many were removed.
func (l *Ledger) ClearUnpinned() int {
	removed := l.retain((*Entry).Protected)
	if removed > 0 {
		logging.Get("ledger").Info("cleared unpinned entries", "removed", removed, "kept", len(l.entries))
	}
	return removed
}

// RebuildHashIndex recomputes every entry's hash and the hash index. When
// two entries hash alike the front-most survives and absorbs the other's
// pin and registers.
func (l *Ledger) RebuildHashIndex() {
	l.hashIndex = make(map[uint64]uint64, len(l.entries))
	merged := 0
	n := 0
	for _, e := range l.entries {
		e.Hash = HashContent(e.Content)
		if keeperID, dup := l.hashIndex[e.Hash]; dup {
			keeper := l.byID[keeperID]
			keeper.Pinned = keeper.Pinned || e.Pinned
			for _, k := range e.temporary {
				keeper.temporary.add(k)
			}
			for _, k := range e.permanent {
				keeper.permanent.add(k)
			}
			delete(l.byID, e.ID)
			merged++
			continue
		}
		l.hashIndex[e.Hash] = e.ID
		l.entries[n] = e
		n++
	}
	clear(l.entries[n:])
	l.entries = l.entries[:n]

	if merged > 0 {
		l.regs.Rebuild()
		logging.Get("ledger").Warn("merged duplicate entries while rebuilding hash index", "merged", merged)
	}
}

// Stats summarizes the ledger contents.
type Stats struct {
	Total     int
	Text      int
	Images    int
	Files     int
	Pinned    int
	Temporary int
	Permanent int
	Bytes     int64
}

// Stats counts entries by kind and protection.
func (l *Ledger) Stats() Stats {
	s := Stats{Total: len(l.entries)}
	for _, e := range l.entries {
		switch e.Content.Kind {
		case KindText:
			s.Text++
		case KindImage:
			s.Images++
		case KindFile:
			s.Files++
		}
		if e.Pinned {
			s.Pinned++
		}
		s.Bytes += int64(e.Content.Size())
	}
	s.Temporary = len(l.regs.temporary)
	s.Permanent = len(l.regs.permanent)
	return s
}
