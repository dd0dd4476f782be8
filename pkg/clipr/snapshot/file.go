package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/jamesainslie/clipr/pkg/clipr/history"
	"github.com/jamesainslie/clipr/pkg/clipr/logging"
)

// FileName is the snapshot file inside the data directory.
const FileName = "history.json"

// FilePath returns the snapshot file path inside dir.
func FilePath(dir string) string {
	return filepath.Join(dir, FileName)
}

// FileStore keeps the ledger in a single JSON file.
type FileStore struct {
	path string
	opts []history.Option

	// rename is swapped in tests to simulate a crash before the rename.
	rename func(oldpath, newpath string) error
}

// NewFileStore returns a store for the snapshot at path. Ledgers it loads
// are built with opts.
func NewFileStore(path string, opts ...history.Option) *FileStore {
	return &FileStore{path: path, opts: opts, rename: os.Rename}
}

// Path returns the snapshot file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the snapshot. A missing file yields an empty ledger. A file
// that cannot be decoded is renamed to <path>.corrupted and an empty ledger
// is returned with an error wrapping ErrSnapshotCorrupt.
func (s *FileStore) Load() (*history.Ledger, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return history.New(s.opts...), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	log := logging.Get("snapshot").With("path", s.path)
	st, err := decode(data)
	if err != nil {
		bad := s.path + ".corrupted"
		if rerr := os.Rename(s.path, bad); rerr != nil {
			log.Error("could not preserve corrupt snapshot", "err", rerr)
		} else {
			log.Warn("preserved corrupt snapshot", "saved_as", bad, "err", err)
		}
		return history.New(s.opts...), fmt.Errorf("loading %s: %w", s.path, err)
	}

	l := history.Restore(st, s.opts...)
	log.Debug("loaded snapshot", "entries", l.Len())
	return l, nil
}

// Save writes the ledger to a uniquely named temp file beside the snapshot,
// syncs it and renames it over the snapshot. On any failure the temp file
// is removed and the previous snapshot is left as it was.
func (s *FileStore) Save(l *history.Ledger) error {
	data, err := encode(l)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	tmpPath := fmt.Sprintf("%s.%s.tmp", s.path, uuid.NewString())
	if err := writeSynced(tmpPath, data); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	if err := s.rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replacing snapshot: %w", err)
	}

	syncDir(dir)
	return nil
}

// Close implements Store.
func (s *FileStore) Close() error {
	return nil
}

func writeSynced(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing temp snapshot: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("syncing temp snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing temp snapshot: %w", err)
	}
	return nil
}

// syncDir flushes the directory entry for the rename. Errors are ignored;
// some filesystems do not support syncing directories.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
