package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jamesainslie/clipr/pkg/clipr/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countLogFiles(t *testing.T, dir, prefix string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	n := 0
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), prefix) && strings.HasSuffix(e.Name(), ".log") {
			n++
		}
	}
	return n
}

func TestRotationBySize(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "size.log")
	w, err := logging.NewRotatingWriter(path, logging.RotationConfig{MaxSize: 256})
	require.NoError(t, err)

	line := []byte(strings.Repeat("x", 100) + "\n")
	for i := 0; i < 3; i++ {
		_, err := w.Write(line)
		require.NoError(t, err)
		// Distinct rotation timestamps.
		time.Sleep(2 * time.Millisecond)
	}
	require.NoError(t, w.Close())

	assert.GreaterOrEqual(t, countLogFiles(t, dir, "size"), 2)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.LessOrEqual(t, info.Size(), int64(256))
}

func TestRotationPrunesBackups(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "prune.log")
	for i := 0; i < 4; i++ {
		old := filepath.Join(dir, "prune.2024-01-0"+string(rune('1'+i))+"-000000.log")
		require.NoError(t, os.WriteFile(old, []byte("old\n"), 0o644))
		mtime := time.Now().Add(-time.Duration(4-i) * time.Hour)
		require.NoError(t, os.Chtimes(old, mtime, mtime))
	}

	w, err := logging.NewRotatingWriter(path, logging.RotationConfig{MaxBackups: 2})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	// Two backups plus the live file.
	assert.Equal(t, 3, countLogFiles(t, dir, "prune"))
}

func TestWriteAfterClose(t *testing.T) {
	t.Parallel()

	w, err := logging.NewRotatingWriter(filepath.Join(t.TempDir(), "closed.log"), logging.DefaultRotationConfig())
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, err = w.Write([]byte("late\n"))
	assert.ErrorIs(t, err, os.ErrClosed)
}
