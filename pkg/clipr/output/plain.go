package output

import (
	"bytes"
	"fmt"
	"strings"
)

// PlainFormatter writes human-readable text without styling.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	switch r.View {
	case ViewHistory:
		f.history(w, r)
	case ViewStats:
		f.stats(w, r.Stats)
	default:
		return fmt.Errorf("unsupported view %d", r.View)
	}
	return nil
}

func (f *PlainFormatter) history(w *bytes.Buffer, r *Result) {
	if r.Limit > 0 {
		fmt.Fprintf(w, "Recent Clipboard Entries (showing up to %d):\n", r.Limit)
	} else {
		w.WriteString("Clipboard Entries:\n")
	}
	w.WriteString(strings.Repeat("=", 60) + "\n")

	if len(r.Entries) == 0 {
		w.WriteString("(empty - no clipboard history yet)\n")
		return
	}
	for _, e := range r.Entries {
		fmt.Fprintf(w, "%3d. [%s]%s %s\n", e.Index, strings.ToUpper(e.Kind), marks(e), e.Preview)
	}
}

// marks renders the pin and register annotations of an entry.
func marks(e EntryInfo) string {
	var b strings.Builder
	if e.Pinned {
		b.WriteString(" *")
	}
	if e.Temporary != "" {
		fmt.Fprintf(&b, " (%s)", e.Temporary)
	}
	if e.Permanent != "" {
		fmt.Fprintf(&b, " <%s>", e.Permanent)
	}
	return b.String()
}

func (f *PlainFormatter) stats(w *bytes.Buffer, s StatsInfo) {
	w.WriteString("Clipboard History Statistics\n")
	w.WriteString("============================\n")
	fmt.Fprintf(w, "Total entries: %d\n", s.Total)
	fmt.Fprintf(w, "  Text: %d\n", s.Text)
	fmt.Fprintf(w, "  Images: %d\n", s.Images)
	fmt.Fprintf(w, "  Files: %d\n", s.Files)
	fmt.Fprintf(w, "Pinned entries: %d\n", s.Pinned)
	fmt.Fprintf(w, "Temporary registers: %d\n", s.Temporary)
	fmt.Fprintf(w, "Permanent registers: %d\n", s.Permanent)
	fmt.Fprintf(w, "Stored content: %s\n", s.BytesHuman)
	if s.MaxHistory > 0 {
		fmt.Fprintf(w, "Max history: %d\n", s.MaxHistory)
	} else {
		w.WriteString("Max history: unlimited\n")
	}
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

// Ensure PlainFormatter implements Formatter.
var _ Formatter = (*PlainFormatter)(nil)
