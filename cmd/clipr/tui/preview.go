package tui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jamesainslie/clipr/pkg/clipr/history"
	"github.com/jamesainslie/clipr/pkg/clipr/preview"
)

// previewState is what the preview pane knows about the selected entry.
type previewState struct {
	entry    *history.Entry
	image    *preview.Image
	pending  bool
	spinner  string
	metadata bool
}

// renderPreview renders the preview pane body for width x height cells.
func renderPreview(st previewState, width, height int) string {
	if st.entry == nil {
		return mutedTextStyle.Render("No entry selected")
	}
	if width <= 0 || height <= 0 {
		return ""
	}

	var meta []string
	if st.metadata {
		meta = metadataLines(st.entry, st.image, width)
		if len(meta)+1 >= height {
			meta = nil
		}
	}
	bodyHeight := height
	if len(meta) > 0 {
		bodyHeight -= len(meta) + 1
	}

	var body string
	switch st.entry.Content.Kind {
	case history.KindText:
		body = renderText(st.entry.Content.Text, width, bodyHeight)
	case history.KindImage:
		body = renderImagePane(st, width, bodyHeight)
	case history.KindFile:
		if st.entry.Content.IsImage() {
			body = renderImagePane(st, width, bodyHeight)
		} else {
			body = renderText(st.entry.Content.Path, width, bodyHeight)
		}
	}

	if len(meta) == 0 {
		return body
	}
	return body + "\n" + renderDivider(width) + "\n" + strings.Join(meta, "\n")
}

func renderImagePane(st previewState, width, height int) string {
	switch {
	case st.image != nil:
		return renderImage(st.image.Image, width, height)
	case st.pending:
		return st.spinner + " " + mutedTextStyle.Render("Decoding image…")
	default:
		return mutedTextStyle.Render("[no preview available]")
	}
}

// renderText wraps text to width and keeps at most height lines.
func renderText(text string, width, height int) string {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\t", "    "), "\n") {
		runes := []rune(line)
		for len(runes) > width {
			lines = append(lines, string(runes[:width]))
			runes = runes[width:]
		}
		lines = append(lines, string(runes))
		if len(lines) >= height {
			break
		}
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

// renderImage draws img with the upper half block, one cell per two pixel
// rows. Larger images are sampled down to fit.
func renderImage(img image.Image, width, height int) string {
	b := img.Bounds()
	if b.Empty() || width <= 0 || height <= 0 {
		return ""
	}
	cols := min(b.Dx(), width)
	rows := min((b.Dy()+1)/2, height)
	pixelRows := rows * 2

	var sb strings.Builder
	for y := 0; y < rows; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		top := b.Min.Y + (2*y)*b.Dy()/pixelRows
		bottom := b.Min.Y + (2*y+1)*b.Dy()/pixelRows
		for x := 0; x < cols; x++ {
			px := b.Min.X + x*b.Dx()/cols
			style := lipgloss.NewStyle().
				Foreground(hexColor(img.At(px, top))).
				Background(hexColor(img.At(px, bottom)))
			sb.WriteString(style.Render("▀"))
		}
	}
	return sb.String()
}

func hexColor(c color.Color) lipgloss.Color {
	r, g, b, _ := c.RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8))
}

// metadataLines describes the entry below the preview.
func metadataLines(e *history.Entry, img *preview.Image, width int) []string {
	label := func(k, v string) string {
		return mutedTextStyle.Render(k+": ") + truncate(v, width-len(k)-2)
	}
	lines := []string{
		label("Kind", e.Content.Kind.String()),
		label("Captured", humanize.Time(e.Timestamp)),
	}
	if e.Content.MIME != "" {
		lines = append(lines, label("Type", e.Content.MIME))
	}
	switch e.Content.Kind {
	case history.KindText:
		lines = append(lines, label("Size", fmt.Sprintf("%s, %d lines", humanize.IBytes(uint64(e.Content.Size())), strings.Count(e.Content.Text, "\n")+1)))
	case history.KindImage:
		lines = append(lines, label("Size", humanize.IBytes(uint64(e.Content.Size()))))
	case history.KindFile:
		lines = append(lines, label("Path", truncatePath(e.Content.Path, max(width-6, 4))))
	}
	if img != nil {
		lines = append(lines, label("Dimensions", fmt.Sprintf("%dx%d %s", img.Original.Dx(), img.Original.Dy(), img.Format)))
	}
	if e.Name != "" {
		lines = append(lines, label("Name", e.Name))
	}
	if e.Description != "" {
		lines = append(lines, label("Description", e.Description))
	}
	if regs := e.TemporaryRegisters().String(); regs != "" {
		lines = append(lines, label("Temporary", regs))
	}
	if regs := e.PermanentRegisters().String(); regs != "" {
		lines = append(lines, label("Permanent", regs))
	}
	return lines
}
