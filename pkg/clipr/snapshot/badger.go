package snapshot

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"

	"github.com/jamesainslie/clipr/pkg/clipr/history"
	"github.com/jamesainslie/clipr/pkg/clipr/logging"
)

// BadgerDir is the database directory inside the data directory.
const BadgerDir = "history.db"

var (
	snapshotKey  = []byte("snapshot")
	corruptedKey = []byte("snapshot.corrupted")
)

// BadgerPath returns the database directory inside dir.
func BadgerPath(dir string) string {
	return filepath.Join(dir, BadgerDir)
}

// BadgerStore keeps the encoded ledger under a single key. Every save
// replaces it in one transaction.
type BadgerStore struct {
	db   *badger.DB
	opts []history.Option
}

// OpenBadgerStore opens or creates the database at path.
func OpenBadgerStore(path string, opts ...history.Option) (*BadgerStore, error) {
	bopts := badger.DefaultOptions(path)
	bopts.Logger = nil

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot database: %w", err)
	}
	return &BadgerStore{db: db, opts: opts}, nil
}

// Load reads the snapshot key. A missing key yields an empty ledger. An
// undecodable value is moved to a side key and an empty ledger is returned
// with an error wrapping ErrSnapshotCorrupt.
func (s *BadgerStore) Load() (*history.Ledger, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotKey)
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return history.New(s.opts...), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	st, err := decode(data)
	if err != nil {
		if perr := s.preserve(data); perr != nil {
			logging.Get("snapshot").Error("could not preserve corrupt snapshot", "err", perr)
		} else {
			logging.Get("snapshot").Warn("preserved corrupt snapshot", "key", string(corruptedKey), "err", err)
		}
		return history.New(s.opts...), fmt.Errorf("loading snapshot database: %w", err)
	}
	return history.Restore(st, s.opts...), nil
}

func (s *BadgerStore) preserve(data []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(corruptedKey, data); err != nil {
			return err
		}
		return txn.Delete(snapshotKey)
	})
}

// Save replaces the snapshot.
func (s *BadgerStore) Save(l *history.Ledger) error {
	data, err := encode(l)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(snapshotKey, data)
	})
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
