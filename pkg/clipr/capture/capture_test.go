package capture

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/clipr/pkg/clipr/history"
	"github.com/jamesainslie/clipr/pkg/clipr/snapshot"
)

func TestText(t *testing.T) {
	c := New(Options{})

	got, err := c.Text(strings.NewReader("hello\nworld"))
	require.NoError(t, err)
	assert.Equal(t, history.KindText, got.Kind)
	assert.Equal(t, "hello\nworld", got.Text)

	_, err = c.Text(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = c.Text(bytes.NewReader([]byte{0xff, 0xfe, 'a'}))
	assert.ErrorIs(t, err, ErrInvalidText)
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestImageInline(t *testing.T) {
	c := New(Options{MaxImageSize: 1024, MaxMemorySize: 512})

	got, err := c.Image(bytes.NewReader(pngHeader), "")
	require.NoError(t, err)
	assert.Equal(t, history.KindImage, got.Kind)
	assert.Equal(t, "image/png", got.MIME, "mime sniffed from data")
	assert.Equal(t, pngHeader, got.Data)

	_, err = c.Image(bytes.NewReader(nil), "image/png")
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestImageTooLarge(t *testing.T) {
	c := New(Options{MaxImageSize: 16})
	_, err := c.Image(bytes.NewReader(make([]byte, 17)), "image/png")
	assert.ErrorIs(t, err, ErrTooLarge)

	got, err := c.Image(bytes.NewReader(make([]byte, 16)), "image/png")
	require.NoError(t, err)
	assert.Len(t, got.Data, 16)
}

func TestLargeImageSpillsToDisk(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "images")
	c := New(Options{MaxMemorySize: 8, ImagesDir: dir})
	data := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{7}, 64)...)

	got, err := c.Image(bytes.NewReader(data), "image/png")
	require.NoError(t, err)
	assert.Equal(t, history.KindFile, got.Kind)
	assert.Equal(t, "image/png", got.MIME)
	assert.Equal(t, dir, filepath.Dir(got.Path))
	assert.Equal(t, ".png", filepath.Ext(got.Path))

	onDisk, err := os.ReadFile(got.Path)
	require.NoError(t, err)
	assert.Equal(t, data, onDisk)

	again, err := c.Image(bytes.NewReader(data), "image/png")
	require.NoError(t, err)
	assert.Equal(t, got.Path, again.Path)
	assert.Equal(t, history.HashContent(got), history.HashContent(again))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestSpillWithoutDirectory(t *testing.T) {
	c := New(Options{MaxMemorySize: 1})
	_, err := c.Image(bytes.NewReader(pngHeader), "image/png")
	assert.Error(t, err)
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".png", extension("image/png"))
	assert.Equal(t, ".jpg", extension("image/jpeg"))
	assert.Equal(t, ".x-weird", extension("image/x-weird"))
	assert.Equal(t, ".bin", extension("application/x-nothing-known"))
}

func TestRecord(t *testing.T) {
	store := snapshot.NewFileStore(filepath.Join(t.TempDir(), snapshot.FileName))

	first, err := Record(store, history.Text("one"))
	require.NoError(t, err)
	_, err = Record(store, history.Text("two"))
	require.NoError(t, err)
	again, err := Record(store, history.Text("one"))
	require.NoError(t, err)
	assert.Equal(t, first, again, "duplicate keeps its id")

	l, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, 2, l.Len())
	assert.Equal(t, []uint64{first, first + 1}, l.IDs())
}

func TestRecordReplacesCorruptSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), snapshot.FileName)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	store := snapshot.NewFileStore(path)

	_, err := Record(store, history.Text("fresh"))
	require.NoError(t, err)

	l, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, l.Len())
}
