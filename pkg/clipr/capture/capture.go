// Package capture turns raw clipboard bytes into history content and
// records them in the snapshot.
package capture

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/jamesainslie/clipr/pkg/clipr/history"
	"github.com/jamesainslie/clipr/pkg/clipr/logging"
	"github.com/jamesainslie/clipr/pkg/clipr/snapshot"
)

var (
	// ErrEmpty is returned for empty captures. Callers skip them silently.
	ErrEmpty = errors.New("empty capture")

	// ErrInvalidText is returned for text that is not valid UTF-8.
	ErrInvalidText = errors.New("clipboard text is not valid UTF-8")

	// ErrTooLarge is returned for images above the capture limit.
	ErrTooLarge = errors.New("capture too large")
)

// Options configures a Capturer.
type Options struct {
	// MaxImageSize rejects larger images. Zero disables the limit.
	MaxImageSize int64
	// MaxMemorySize is the largest image stored inline. Larger images are
	// written to ImagesDir and recorded as file references. Zero keeps
	// every image inline.
	MaxMemorySize int64
	// ImagesDir receives spilled images.
	ImagesDir string
}

// Capturer reads clipboard payloads.
type Capturer struct {
	opts Options
}

// New returns a Capturer.
func New(opts Options) *Capturer {
	return &Capturer{opts: opts}
}

// Text reads a text capture.
func (c *Capturer) Text(r io.Reader) (history.Content, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return history.Content{}, fmt.Errorf("reading text: %w", err)
	}
	if len(data) == 0 {
		return history.Content{}, ErrEmpty
	}
	if !utf8.Valid(data) {
		return history.Content{}, ErrInvalidText
	}
	return history.Text(string(data)), nil
}

// Image reads an image capture. An empty mime is sniffed from the data.
func (c *Capturer) Image(r io.Reader, mimeType string) (history.Content, error) {
	if c.opts.MaxImageSize > 0 {
		r = io.LimitReader(r, c.opts.MaxImageSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return history.Content{}, fmt.Errorf("reading image: %w", err)
	}
	if len(data) == 0 {
		return history.Content{}, ErrEmpty
	}
	if c.opts.MaxImageSize > 0 && int64(len(data)) > c.opts.MaxImageSize {
		return history.Content{}, fmt.Errorf("%w: image exceeds %s", ErrTooLarge, humanize.IBytes(uint64(c.opts.MaxImageSize)))
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	if c.opts.MaxMemorySize > 0 && int64(len(data)) > c.opts.MaxMemorySize {
		path, err := c.spill(data, mimeType)
		if err != nil {
			return history.Content{}, err
		}
		return history.FileRef(path, mimeType), nil
	}
	return history.Image(data, mimeType), nil
}

// spill writes data to ImagesDir under its content hash. Identical images
// share one file, so re-capturing one dedups against the same file ref.
func (c *Capturer) spill(data []byte, mimeType string) (string, error) {
	if c.opts.ImagesDir == "" {
		return "", errors.New("no images directory configured")
	}
	if err := os.MkdirAll(c.opts.ImagesDir, 0o700); err != nil {
		return "", fmt.Errorf("creating images directory: %w", err)
	}

	name := strconv.FormatUint(xxhash.Sum64(data), 16) + extension(mimeType)
	path := filepath.Join(c.opts.ImagesDir, name)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	tmpPath := fmt.Sprintf("%s.%s.tmp", path, uuid.NewString())
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("writing image: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("writing image: %w", err)
	}
	logging.Get("capture").Info("stored large image on disk", "path", path, "size", humanize.IBytes(uint64(len(data))))
	return path, nil
}

func extension(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	}
	if exts, err := mime.ExtensionsByType(mimeType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	if sub, ok := strings.CutPrefix(mimeType, "image/"); ok && sub != "" {
		return "." + sub
	}
	return ".bin"
}

// Record loads the ledger from store, inserts content, applies rotation and
// saves. A corrupt snapshot is replaced by a fresh ledger.
func Record(store snapshot.Store, content history.Content) (uint64, error) {
	l, err := store.Load()
	if errors.Is(err, snapshot.ErrSnapshotCorrupt) {
		logging.Get("capture").Warn("starting from an empty history", "err", err)
	} else if err != nil {
		return 0, err
	}

	id := l.Insert(content)
	if err := store.Save(l); err != nil {
		return 0, fmt.Errorf("saving history: %w", err)
	}
	logging.Get("capture").Info("stored clip", "id", id, "kind", content.Kind.String(), "bytes", content.Size())
	return id, nil
}
