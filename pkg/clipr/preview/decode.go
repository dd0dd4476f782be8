package preview

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/jamesainslie/clipr/pkg/clipr/history"
)

// ErrDecodeFailure wraps every reason an image could not be decoded.
var ErrDecodeFailure = errors.New("image decode failed")

// Request asks the worker to decode one entry. Exactly one of Data or Path
// is set.
type Request struct {
	ID   uint64
	Data []byte
	Path string
}

// RequestFor builds a decode request for e. It reports false for entries
// that are not images.
func RequestFor(e *history.Entry) (Request, bool) {
	if !e.Content.IsImage() {
		return Request{}, false
	}
	switch e.Content.Kind {
	case history.KindImage:
		return Request{ID: e.ID, Data: e.Content.Data}, true
	case history.KindFile:
		return Request{ID: e.ID, Path: e.Content.Path}, true
	default:
		return Request{}, false
	}
}

// Image is a decoded preview, already scaled to fit the configured bounds.
type Image struct {
	ID     uint64
	Image  image.Image
	Format string
	// Original holds the source dimensions before scaling.
	Original image.Rectangle
	Bytes    int
}

// decoder turns requests into scaled images.
type decoder struct {
	maxWidth    int
	maxHeight   int
	maxFileSize int64
}

func (d decoder) decode(req Request) (*Image, error) {
	data := req.Data
	if req.Path != "" {
		var err error
		if data, err = d.readFile(req.Path); err != nil {
			return nil, err
		}
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: entry %d: no image data", ErrDecodeFailure, req.ID)
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: entry %d: %w", ErrDecodeFailure, req.ID, err)
	}

	return &Image{
		ID:       req.ID,
		Image:    d.scale(src),
		Format:   format,
		Original: src.Bounds(),
		Bytes:    len(data),
	}, nil
}

func (d decoder) readFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailure, err)
	}
	if d.maxFileSize > 0 && info.Size() > d.maxFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrDecodeFailure, path, info.Size(), d.maxFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailure, err)
	}
	return data, nil
}

// scale shrinks src to fit within the bounds, keeping its aspect ratio.
// Images already small enough are returned unchanged.
func (d decoder) scale(src image.Image) image.Image {
	b := src.Bounds()
	w, h := fit(b.Dx(), b.Dy(), d.maxWidth, d.maxHeight)
	if w == b.Dx() && h == b.Dy() {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// fit returns w×h scaled down to fit maxW×maxH. A non-positive limit leaves
// that dimension unbounded. Results are at least 1×1.
func fit(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return w, h
	}
	scale := 1.0
	if maxW > 0 && w > maxW {
		scale = float64(maxW) / float64(w)
	}
	if maxH > 0 && h > maxH {
		scale = min(scale, float64(maxH)/float64(h))
	}
	if scale == 1.0 {
		return w, h
	}
	return max(1, int(float64(w)*scale)), max(1, int(float64(h)*scale))
}
