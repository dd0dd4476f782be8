package history

import (
	"errors"
	"slices"
	"time"
)

// Errors returned by ledger and register operations.
var (
	// ErrInvalidKey is returned for register keys outside [0-9a-zA-Z].
	ErrInvalidKey = errors.New("invalid register key")

	// ErrUnknownEntry is returned when an id is not in the ledger.
	ErrUnknownEntry = errors.New("unknown entry")

	// ErrCannotDelete is returned when deleting an entry that holds a permanent register.
	ErrCannotDelete = errors.New("entry holds a permanent register")
)

// RegisterSet is a sorted set of register keys.
type RegisterSet []rune

// Has reports whether key is in the set.
func (s RegisterSet) Has(key rune) bool {
	_, found := slices.BinarySearch(s, key)
	return found
}

// String renders the keys in order, e.g. "aeZ".
func (s RegisterSet) String() string {
	return string(s)
}

func (s *RegisterSet) add(key rune) {
	i, found := slices.BinarySearch(*s, key)
	if !found {
		*s = slices.Insert(*s, i, key)
	}
}

func (s *RegisterSet) remove(key rune) {
	if i, found := slices.BinarySearch(*s, key); found {
		*s = slices.Delete(*s, i, i+1)
	}
}

// ParseRegisterSet builds a set from a string of keys, dropping duplicates.
func ParseRegisterSet(keys string) RegisterSet {
	var s RegisterSet
	for _, k := range keys {
		s.add(k)
	}
	return s
}

// Entry is one captured clipboard item. Entries are owned by their Ledger;
// change them through Ledger and Registers methods.
type Entry struct {
	ID          uint64
	Content     Content
	Hash        uint64
	Timestamp   time.Time
	Pinned      bool
	Name        string
	Description string

	temporary RegisterSet
	permanent RegisterSet
}

// TemporaryRegisters returns a copy of the entry's temporary register keys.
func (e *Entry) TemporaryRegisters() RegisterSet {
	return slices.Clone(e.temporary)
}

// PermanentRegisters returns a copy of the entry's permanent register keys.
func (e *Entry) PermanentRegisters() RegisterSet {
	return slices.Clone(e.permanent)
}

// HasRegisters reports whether any register points at the entry.
func (e *Entry) HasRegisters() bool {
	return len(e.temporary) > 0 || len(e.permanent) > 0
}

// Protected reports whether rotation must keep the entry.
func (e *Entry) Protected() bool {
	return e.Pinned || e.HasRegisters()
}

// CanDelete reports whether the entry may be deleted by the user.
func (e *Entry) CanDelete() bool {
	return len(e.permanent) == 0
}

func (e *Entry) registers(s scope) *RegisterSet {
	if s == scopePermanent {
		return &e.permanent
	}
	return &e.temporary
}
