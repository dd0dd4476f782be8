package history

import (
	"slices"
	"time"
)

// Record is the persisted form of an Entry.
type Record struct {
	ID                 uint64
	Content            Content
	Timestamp          time.Time
	Pinned             bool
	Name               string
	Description        string
	TemporaryRegisters RegisterSet
	PermanentRegisters RegisterSet
}

// State is everything a snapshot needs to recreate a ledger.
type State struct {
	NextID  uint64
	Entries []Record
}

// State exports the ledger for persistence, most-recent-first.
func (l *Ledger) State() State {
	st := State{NextID: l.nextID, Entries: make([]Record, 0, len(l.entries))}
	for _, e := range l.entries {
		st.Entries = append(st.Entries, Record{
			ID:                 e.ID,
			Content:            e.Content,
			Timestamp:          e.Timestamp,
			Pinned:             e.Pinned,
			Name:               e.Name,
			Description:        e.Description,
			TemporaryRegisters: slices.Clone(e.temporary),
			PermanentRegisters: slices.Clone(e.permanent),
		})
	}
	return st
}

// Restore builds a ledger from persisted state. Hashes are recomputed, the
// hash index and register maps are rebuilt from the records, and the id
// counter is moved past every restored id. Records with a repeated id keep
// the first occurrence. Rotation is not applied until the next insert.
func Restore(st State, opts ...Option) *Ledger {
	l := New(opts...)
	for _, rec := range st.Entries {
		if _, dup := l.byID[rec.ID]; dup || rec.ID == 0 {
			continue
		}
		e := &Entry{
			ID:          rec.ID,
			Content:     rec.Content,
			Timestamp:   rec.Timestamp,
			Pinned:      rec.Pinned,
			Name:        rec.Name,
			Description: rec.Description,
			temporary:   ParseRegisterSet(string(rec.TemporaryRegisters)),
			permanent:   ParseRegisterSet(string(rec.PermanentRegisters)),
		}
		l.entries = append(l.entries, e)
		l.byID[e.ID] = e
		if e.ID >= l.nextID {
			l.nextID = e.ID + 1
		}
	}
	if st.NextID > l.nextID {
		l.nextID = st.NextID
	}

	l.RebuildHashIndex()
	l.regs.Rebuild()
	return l
}
