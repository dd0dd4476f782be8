package history

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/jamesainslie/clipr/pkg/clipr/logging"
)

type scope int

const (
	scopeTemporary scope = iota
	scopePermanent
)

func (s scope) String() string {
	if s == scopePermanent {
		return "permanent"
	}
	return "temporary"
}

// ValidKey reports whether key is one of the 62 register symbols [0-9a-zA-Z].
func ValidKey(key rune) bool {
	return (key >= '0' && key <= '9') || (key >= 'a' && key <= 'z') || (key >= 'A' && key <= 'Z')
}

// Assignment pairs a register key with the entry it points at.
type Assignment struct {
	Key rune
	ID  uint64
}

// PermanentDef is a permanent register defined in configuration.
type PermanentDef struct {
	Key         rune
	Content     Content
	Name        string
	Description string
}

// Registers maps register keys to entry ids. Every change is mirrored onto
// the entries' own register sets, so the maps and the sets always agree.
type Registers struct {
	ledger    *Ledger
	temporary map[rune]uint64
	permanent map[rune]uint64
}

func newRegisters(l *Ledger) *Registers {
	return &Registers{
		ledger:    l,
		temporary: make(map[rune]uint64),
		permanent: make(map[rune]uint64),
	}
}

func (r *Registers) table(s scope) map[rune]uint64 {
	if s == scopePermanent {
		return r.permanent
	}
	return r.temporary
}

// AssignTemporary points temporary register key at entry id.
func (r *Registers) AssignTemporary(key rune, id uint64) error {
	return r.assign(scopeTemporary, key, id)
}

// AssignPermanent points permanent register key at entry id.
func (r *Registers) AssignPermanent(key rune, id uint64) error {
	return r.assign(scopePermanent, key, id)
}

func (r *Registers) assign(s scope, key rune, id uint64) error {
	if !ValidKey(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	target, ok := r.ledger.byID[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownEntry, id)
	}

	table := r.table(s)
	if prev, ok := table[key]; ok && prev != id {
		if old, ok := r.ledger.byID[prev]; ok {
			old.registers(s).remove(key)
		}
		logging.Get("registers").Debug("reassigning register", "scope", s, "key", string(key), "from", prev, "to", id)
	}
	target.registers(s).add(key)
	table[key] = id
	return nil
}

// RemoveTemporary clears temporary register key. Unassigned keys are ignored.
func (r *Registers) RemoveTemporary(key rune) {
	r.remove(scopeTemporary, key)
}

// RemovePermanent clears permanent register key. Unassigned keys are ignored.
func (r *Registers) RemovePermanent(key rune) {
	r.remove(scopePermanent, key)
}

func (r *Registers) remove(s scope, key rune) {
	table := r.table(s)
	id, ok := table[key]
	if !ok {
		return
	}
	if e, ok := r.ledger.byID[id]; ok {
		e.registers(s).remove(key)
	}
	delete(table, key)
}

// detachAll removes every register pointing at e.
func (r *Registers) detachAll(e *Entry) {
	for _, s := range []scope{scopeTemporary, scopePermanent} {
		table := r.table(s)
		for _, key := range *e.registers(s) {
			if table[key] == e.ID {
				delete(table, key)
			}
		}
		*e.registers(s) = nil
	}
}

// Temporary returns the entry id held by temporary register key.
func (r *Registers) Temporary(key rune) (uint64, bool) {
	id, ok := r.temporary[key]
	return id, ok
}

// Permanent returns the entry id held by permanent register key.
func (r *Registers) Permanent(key rune) (uint64, bool) {
	id, ok := r.permanent[key]
	return id, ok
}

// ListTemporary returns temporary assignments sorted by key.
func (r *Registers) ListTemporary() []Assignment {
	return list(r.temporary)
}

// ListPermanent returns permanent assignments sorted by key.
func (r *Registers) ListPermanent() []Assignment {
	return list(r.permanent)
}

func list(table map[rune]uint64) []Assignment {
	out := make([]Assignment, 0, len(table))
	for k, id := range table {
		out = append(out, Assignment{Key: k, ID: id})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// ClearTemporary removes every temporary register.
func (r *Registers) ClearTemporary() {
	for key := range r.temporary {
		r.remove(scopeTemporary, key)
	}
}

// Rebuild reconstructs both maps from the entries' register sets. When two
// entries claim the same key the later one in ledger order wins and the
// earlier one loses the key. Invalid keys are dropped.
func (r *Registers) Rebuild() {
	r.temporary = make(map[rune]uint64)
	r.permanent = make(map[rune]uint64)

	for _, e := range r.ledger.entries {
		for _, s := range []scope{scopeTemporary, scopePermanent} {
			table := r.table(s)
			set := e.registers(s)
			for _, key := range slices.Clone(*set) {
				if !ValidKey(key) {
					set.remove(key)
					continue
				}
				if prev, ok := table[key]; ok && prev != e.ID {
					r.ledger.byID[prev].registers(s).remove(key)
					logging.Get("registers").Warn("register claimed by two entries", "scope", s, "key", string(key), "dropped", prev, "kept", e.ID)
				}
				table[key] = e.ID
			}
		}
	}
}

// LoadPermanent applies permanent register definitions. Existing content is
// reused via its hash; missing content is inserted with the definition's
// metadata. Running it again with the same definitions changes nothing.
// Definitions with invalid keys are skipped and reported together.
func (r *Registers) LoadPermanent(defs []PermanentDef) error {
	var errs []error
	for _, def := range defs {
		if !ValidKey(def.Key) {
			errs = append(errs, fmt.Errorf("permanent register %q: %w", def.Key, ErrInvalidKey))
			continue
		}

		id, ok := r.ledger.FindByHash(HashContent(def.Content))
		if ok {
			e := r.ledger.byID[id]
			if def.Name != "" {
				e.Name = def.Name
			}
			if def.Description != "" {
				e.Description = def.Description
			}
		} else {
			id = r.ledger.InsertWithMetadata(def.Content, def.Name, def.Description)
		}

		if err := r.AssignPermanent(def.Key, id); err != nil {
			errs = append(errs, fmt.Errorf("permanent register %q: %w", def.Key, err))
		}
	}
	return errors.Join(errs...)
}
