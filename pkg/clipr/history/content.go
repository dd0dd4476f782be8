package history

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"
)

// Kind identifies which payload a Content carries.
type Kind int

const (
	KindText Kind = iota
	KindImage
	KindFile
)

// String returns the lowercase name used in snapshots and output.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindImage:
		return "image"
	case KindFile:
		return "file"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "text":
		return KindText, nil
	case "image":
		return KindImage, nil
	case "file":
		return KindFile, nil
	default:
		return 0, fmt.Errorf("unknown content kind %q", s)
	}
}

// Content is a captured clipboard payload. Exactly one of Text, Data or
// Path is meaningful, selected by Kind. Construct it with Text, Image or
// FileRef.
type Content struct {
	Kind Kind
	Text string
	Data []byte
	Path string
	MIME string
}

// Text returns text content.
func Text(s string) Content {
	return Content{Kind: KindText, Text: s}
}

// Image returns in-memory image content.
func Image(data []byte, mime string) Content {
	return Content{Kind: KindImage, Data: data, MIME: mime}
}

// FileRef returns a reference to a file on disk.
func FileRef(path, mime string) Content {
	return Content{Kind: KindFile, Path: path, MIME: mime}
}

// HashContent returns the dedup hash of c.
//
// File references hash path and MIME type only. A file rewritten in place
// keeps its hash, so re-capturing it touches the existing entry instead of
// adding a new one.
func HashContent(c Content) uint64 {
	d := xxhash.New()
	_, _ = d.Write([]byte{byte(c.Kind)})
	switch c.Kind {
	case KindText:
		_, _ = d.WriteString(c.Text)
	case KindImage:
		_, _ = d.Write(c.Data)
		_, _ = d.Write([]byte{0})
		_, _ = d.WriteString(c.MIME)
	case KindFile:
		_, _ = d.WriteString(c.Path)
		_, _ = d.Write([]byte{0})
		_, _ = d.WriteString(c.MIME)
	}
	return d.Sum64()
}

// IsImage reports whether c can be decoded for preview: in-memory images
// and file references with an image/* MIME type.
func (c Content) IsImage() bool {
	switch c.Kind {
	case KindImage:
		return true
	case KindFile:
		return strings.HasPrefix(c.MIME, "image/")
	default:
		return false
	}
}

// Size returns the payload size in bytes held in memory.
func (c Content) Size() int {
	switch c.Kind {
	case KindText:
		return len(c.Text)
	case KindImage:
		return len(c.Data)
	default:
		return 0
	}
}

// Preview returns a single-line summary of at most maxLen runes for text.
func (c Content) Preview(maxLen int) string {
	switch c.Kind {
	case KindText:
		line := strings.Join(strings.Fields(c.Text), " ")
		runes := []rune(line)
		if maxLen > 0 && len(runes) > maxLen {
			return string(runes[:maxLen]) + "..."
		}
		return line
	case KindImage:
		return fmt.Sprintf("[Image: %s (%s)]", c.MIME, humanize.IBytes(uint64(len(c.Data))))
	case KindFile:
		return fmt.Sprintf("[File: %s (%s)]", c.MIME, filepath.Base(c.Path))
	default:
		return ""
	}
}

// SearchText returns the text the fuzzy ranker matches against.
func (c Content) SearchText() string {
	switch c.Kind {
	case KindText:
		return c.Text
	case KindImage:
		return "[image]"
	case KindFile:
		return "[file: " + filepath.Base(c.Path) + "]"
	default:
		return ""
	}
}
