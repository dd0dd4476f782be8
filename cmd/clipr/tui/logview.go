package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jamesainslie/clipr/pkg/clipr/logging"
)

// logView shows the in-memory log buffer in place of the preview pane.
type logView struct {
	open   bool
	level  logging.Level
	offset int
}

// tail is an offset past any buffer size; rendering clamps it to the
// newest entries.
const tail = 1 << 30

func (v *logView) toggle() {
	v.open = !v.open
	v.offset = tail
}

func (v *logView) setLevel(level logging.Level) {
	v.level = level
	v.offset = tail
}

// scroll moves the window by delta lines over total filtered entries.
func (v *logView) scroll(delta, total, rows int) {
	v.offset = clampLogScroll(clampLogScroll(v.offset, total, rows)+delta, total, rows)
}

// bufferedLogs returns the TUI log buffer contents, oldest first.
func bufferedLogs() []logging.LogEntry {
	buf := logging.GetLogBuffer()
	if buf == nil {
		return nil
	}
	return buf.Entries()
}

// filterEntriesByLevel returns entries at or above minLevel.
func filterEntriesByLevel(entries []logging.LogEntry, minLevel logging.Level) []logging.LogEntry {
	out := make([]logging.LogEntry, 0, len(entries))
	for _, e := range entries {
		if e.Level >= minLevel {
			out = append(out, e)
		}
	}
	return out
}

// clampLogScroll keeps offset within [0, total-rows].
func clampLogScroll(offset, total, rows int) int {
	if total <= rows || offset < 0 {
		return 0
	}
	return min(offset, total-rows)
}

func logLevelStyle(level logging.Level) lipgloss.Style {
	switch level {
	case logging.LevelDebug:
		return logDebugStyle
	case logging.LevelWarn:
		return logWarnStyle
	case logging.LevelError:
		return logErrorStyle
	default:
		return logInfoStyle
	}
}

func logLevelChar(level logging.Level) string {
	switch level {
	case logging.LevelDebug:
		return "D"
	case logging.LevelInfo:
		return "I"
	case logging.LevelWarn:
		return "W"
	case logging.LevelError:
		return "E"
	default:
		return "?"
	}
}

// renderLogView renders filtered entries for width x height cells, oldest
// at the top; offset counts lines from the top.
func renderLogView(entries []logging.LogEntry, v logView, width, height int) string {
	if height < 3 {
		return ""
	}
	title := titleStyle.Render(fmt.Sprintf("Logs [%s]", v.level)) + " " + mutedTextStyle.Render("[1-4] level  [J/K] scroll  [L] close")
	rows := height - 2

	filtered := filterEntriesByLevel(entries, v.level)
	lines := []string{title, renderDivider(width)}
	if len(filtered) == 0 {
		return strings.Join(append(lines, mutedTextStyle.Render("No log entries")), "\n")
	}

	offset := clampLogScroll(v.offset, len(filtered), rows)
	end := min(offset+rows, len(filtered))
	for _, e := range filtered[offset:end] {
		lines = append(lines, renderLogEntry(e, width))
	}
	return strings.Join(lines, "\n")
}

// renderLogEntry formats "HH:MM:SS [L] component: message".
func renderLogEntry(e logging.LogEntry, width int) string {
	comp := e.Component
	if len(comp) > 10 {
		comp = comp[:10]
	}
	prefix := logTimeStyle.Render(e.Time.Format("15:04:05")) + " " +
		logLevelStyle(e.Level).Render("["+logLevelChar(e.Level)+"]") + " " +
		logComponentStyle.Render(comp) + ": "
	return prefix + truncate(e.Message, max(width-lipgloss.Width(prefix), 10))
}
