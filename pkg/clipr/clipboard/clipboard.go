// Package clipboard writes entries back to the system clipboard and starts
// the background watchers that feed captures into clipr.
package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/jamesainslie/clipr/pkg/clipr/logging"
)

// ErrImagesUnsupported is returned by sinks that can only hold text.
var ErrImagesUnsupported = errors.New("clipboard backend cannot hold images")

// ErrNoBackend is returned when no clipboard writer is usable.
var ErrNoBackend = errors.New("no clipboard backend available")

// Sink writes content to the clipboard. It is only used for explicit copy
// actions.
type Sink interface {
	WriteText(text string) error
	WriteImage(data []byte, mime string) error
	SupportsImages() bool
	Name() string
}

// Backend names accepted by New.
const (
	BackendAuto    = "auto"
	BackendWayland = "wayland"
	BackendSystem  = "system"
)

// New returns the sink for backend. Auto prefers wl-copy inside a Wayland
// session and falls back to the system clipboard.
func New(backend string) (Sink, error) {
	switch backend {
	case "", BackendAuto:
		if isWaylandSession() && hasCommand(wlCopy) {
			return NewWaylandSink(), nil
		}
		if clipboard.Unsupported {
			return nil, ErrNoBackend
		}
		return SystemSink{}, nil
	case BackendWayland:
		if !hasCommand(wlCopy) {
			return nil, fmt.Errorf("%w: %s not found, install wl-clipboard", ErrNoBackend, wlCopy)
		}
		return NewWaylandSink(), nil
	case BackendSystem:
		if clipboard.Unsupported {
			return nil, fmt.Errorf("%w: no system clipboard tool found", ErrNoBackend)
		}
		return SystemSink{}, nil
	default:
		return nil, fmt.Errorf("unknown clipboard backend %q", backend)
	}
}

const (
	wlCopy  = "wl-copy"
	wlPaste = "wl-paste"
)

// WaylandSink writes through wl-copy.
type WaylandSink struct {
	command string
}

// NewWaylandSink returns a sink that runs wl-copy from PATH.
func NewWaylandSink() *WaylandSink {
	return &WaylandSink{command: wlCopy}
}

// WriteText implements Sink.
func (s *WaylandSink) WriteText(text string) error {
	return s.copy(strings.NewReader(text), "text/plain", len(text))
}

// WriteImage implements Sink.
func (s *WaylandSink) WriteImage(data []byte, mime string) error {
	if mime == "" {
		mime = "image/png"
	}
	return s.copy(bytes.NewReader(data), mime, len(data))
}

func (s *WaylandSink) copy(r io.Reader, mime string, n int) error {
	cmd := exec.Command(s.command, "--type", mime)
	cmd.Stdin = r
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", s.command, err, msg)
		}
		return fmt.Errorf("%s: %w", s.command, err)
	}
	logging.Get("clipboard").Debug("wrote clipboard", "backend", s.Name(), "mime", mime, "bytes", n)
	return nil
}

// SupportsImages implements Sink.
func (s *WaylandSink) SupportsImages() bool { return true }

// Name implements Sink.
func (s *WaylandSink) Name() string { return "wayland" }

// SystemSink writes text through github.com/atotto/clipboard, which picks
// xclip, xsel, wl-copy or the platform API.
type SystemSink struct{}

// WriteText implements Sink.
func (SystemSink) WriteText(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("system clipboard: %w", err)
	}
	logging.Get("clipboard").Debug("wrote clipboard", "backend", "system", "bytes", len(text))
	return nil
}

// WriteImage implements Sink.
func (SystemSink) WriteImage([]byte, string) error {
	return ErrImagesUnsupported
}

// SupportsImages implements Sink.
func (SystemSink) SupportsImages() bool { return false }

// Name implements Sink.
func (SystemSink) Name() string { return "system" }

func isWaylandSession() bool {
	return os.Getenv("WAYLAND_DISPLAY") != ""
}

func hasCommand(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
