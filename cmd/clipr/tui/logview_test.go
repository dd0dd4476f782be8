package tui

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jamesainslie/clipr/pkg/clipr/logging"
)

func sampleLogs(n int) []logging.LogEntry {
	levels := []logging.Level{logging.LevelDebug, logging.LevelInfo, logging.LevelWarn, logging.LevelError}
	out := make([]logging.LogEntry, n)
	base := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	for i := range out {
		out[i] = logging.LogEntry{
			Time:      base.Add(time.Duration(i) * time.Second),
			Level:     levels[i%len(levels)],
			Component: "session",
			Message:   fmt.Sprintf("message %d", i),
		}
	}
	return out
}

func TestFilterEntriesByLevel(t *testing.T) {
	entries := sampleLogs(8)
	tests := []struct {
		level logging.Level
		want  int
	}{
		{logging.LevelDebug, 8},
		{logging.LevelInfo, 6},
		{logging.LevelWarn, 4},
		{logging.LevelError, 2},
	}
	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			if got := len(filterEntriesByLevel(entries, tt.level)); got != tt.want {
				t.Errorf("expected %d entries, got %d", tt.want, got)
			}
		})
	}
}

func TestClampLogScroll(t *testing.T) {
	tests := []struct {
		name                string
		offset, total, rows int
		want                int
	}{
		{"fits", 5, 3, 10, 0},
		{"negative", -1, 20, 10, 0},
		{"within", 4, 20, 10, 4},
		{"past end", 50, 20, 10, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clampLogScroll(tt.offset, tt.total, tt.rows); got != tt.want {
				t.Errorf("clampLogScroll(%d, %d, %d) = %d, want %d", tt.offset, tt.total, tt.rows, got, tt.want)
			}
		})
	}
}

func TestLogViewScroll(t *testing.T) {
	var v logView
	v.toggle()
	if !v.open {
		t.Fatal("expected log view open")
	}

	v.scroll(-1, 20, 5)
	if v.offset != 14 {
		t.Errorf("expected one line above the tail, got %d", v.offset)
	}
	v.scroll(100, 20, 5)
	if v.offset != 15 {
		t.Errorf("expected clamp at tail, got %d", v.offset)
	}
	v.setLevel(logging.LevelError)
	v.scroll(-100, 20, 5)
	if v.offset != 0 {
		t.Errorf("expected clamp at top, got %d", v.offset)
	}
}

func TestRenderLogView(t *testing.T) {
	entries := sampleLogs(12)

	out := renderLogView(entries, logView{open: true, level: logging.LevelDebug, offset: tail}, 80, 6)
	if !strings.Contains(out, "Logs [debug]") {
		t.Errorf("expected title with level, got %q", out)
	}
	if !strings.Contains(out, "message 11") || strings.Contains(out, "message 7") {
		t.Errorf("expected the newest four entries, got %q", out)
	}

	out = renderLogView(entries, logView{open: true, level: logging.LevelError}, 80, 10)
	if strings.Contains(out, "message 0") || !strings.Contains(out, "message 3") {
		t.Errorf("expected only error entries, got %q", out)
	}

	if !strings.Contains(renderLogView(nil, logView{}, 80, 10), "No log entries") {
		t.Errorf("expected empty message")
	}
	if renderLogView(entries, logView{}, 80, 2) != "" {
		t.Errorf("expected nothing for a too-small pane")
	}
}

func TestRenderLogEntry(t *testing.T) {
	e := logging.LogEntry{
		Time:      time.Date(2025, 1, 15, 10, 30, 45, 0, time.UTC),
		Level:     logging.LevelWarn,
		Component: "averyverylongcomponent",
		Message:   strings.Repeat("x", 200),
	}
	line := renderLogEntry(e, 60)
	if !strings.Contains(line, "10:30:45") || !strings.Contains(line, "[W]") {
		t.Errorf("expected time and level, got %q", line)
	}
	if !strings.Contains(line, "averyveryl:") {
		t.Errorf("expected component cut to 10 characters, got %q", line)
	}
	if !strings.HasSuffix(line, "…") {
		t.Errorf("expected truncated message, got %q", line)
	}
}

func TestLogKeys(t *testing.T) {
	m := newTestModel(t, "a", "b")

	m, _ = press(m, "L")
	if !m.logs.open {
		t.Fatal("expected L to open the log view")
	}
	m, _ = press(m, "3")
	if m.logs.level != logging.LevelWarn {
		t.Errorf("expected warn level, got %s", m.logs.level)
	}
	m, _ = press(m, "j")
	if got := selectedText(m); got != "a" {
		t.Errorf("list keys should still work with logs open, got %q", got)
	}
	m, cmd := press(m, "esc")
	if cmd != nil || m.logs.open {
		t.Errorf("expected esc to close the log view without quitting")
	}
}
