package tui

import (
	"context"
	"image"
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jamesainslie/clipr/pkg/clipr/config"
	"github.com/jamesainslie/clipr/pkg/clipr/history"
	"github.com/jamesainslie/clipr/pkg/clipr/session"
	"github.com/jamesainslie/clipr/pkg/clipr/snapshot"
)

func newTestModel(t *testing.T, texts ...string) Model {
	t.Helper()
	store := snapshot.NewFileStore(filepath.Join(t.TempDir(), snapshot.FileName))
	l := history.New()
	for _, s := range texts {
		l.Insert(history.Text(s))
	}
	if err := store.Save(l); err != nil {
		t.Fatalf("saving seed history: %v", err)
	}
	sess, err := session.Open(context.Background(), session.Options{Config: config.Default(), Store: store})
	if err != nil {
		t.Fatalf("opening session: %v", err)
	}
	t.Cleanup(func() { _ = sess.Close() })
	m := NewModel(sess)
	m.width, m.height = 100, 30
	return m
}

func keyFor(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press feeds keys to the model and returns it with the last command.
func press(m Model, keys ...string) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(keyFor(k))
		m = next.(Model)
	}
	return m, cmd
}

func selectedText(m Model) string {
	e, ok := m.sess.Selected()
	if !ok {
		return ""
	}
	return e.Content.Text
}

func TestNavigation(t *testing.T) {
	m := newTestModel(t, "one", "two", "three", "four")

	if got := selectedText(m); got != "four" {
		t.Fatalf("expected most recent entry selected, got %q", got)
	}

	m, _ = press(m, "j")
	if got := selectedText(m); got != "three" {
		t.Errorf("after j expected three, got %q", got)
	}

	m, _ = press(m, "G")
	if got := selectedText(m); got != "one" {
		t.Errorf("after G expected one, got %q", got)
	}

	m, _ = press(m, "g")
	if got := selectedText(m); got != "four" {
		t.Errorf("after g expected four, got %q", got)
	}

	m, _ = press(m, "2", "j")
	if got := selectedText(m); got != "two" {
		t.Errorf("after 2j expected two, got %q", got)
	}

	m, _ = press(m, "2", "G")
	if got := selectedText(m); got != "three" {
		t.Errorf("after 2G expected three, got %q", got)
	}

	m, _ = press(m, "9", "9", "k")
	if got := selectedText(m); got != "four" {
		t.Errorf("expected cursor to clamp at top, got %q", got)
	}
}

func TestSearch(t *testing.T) {
	m := newTestModel(t, "apple pie", "banana split", "cherry tart")

	m, _ = press(m, "/")
	if m.mode != modeSearch {
		t.Fatalf("expected search mode")
	}
	m, _ = press(m, "b", "a", "n")
	if n := m.sess.View().Len(); n != 1 {
		t.Fatalf("expected 1 match while typing, got %d", n)
	}

	m, _ = press(m, "enter")
	if m.mode != modeNormal {
		t.Errorf("expected normal mode after enter")
	}
	if q := m.sess.View().Query(); q != "ban" {
		t.Errorf("expected query to be kept, got %q", q)
	}

	m, cmd := press(m, "esc")
	if cmd != nil {
		t.Errorf("esc with an active query should not quit")
	}
	if n := m.sess.View().Len(); n != 3 {
		t.Errorf("expected query cleared, got %d visible", n)
	}
}

func TestSearchEscClears(t *testing.T) {
	m := newTestModel(t, "alpha", "beta")

	m, _ = press(m, "/", "z", "z", "z")
	if n := m.sess.View().Len(); n != 0 {
		t.Fatalf("expected no matches, got %d", n)
	}
	m, _ = press(m, "esc")
	if m.mode != modeNormal || m.sess.View().Query() != "" {
		t.Errorf("expected esc to leave search and clear the query")
	}
	if !strings.Contains(m.View(), "alpha") {
		t.Errorf("expected entries visible again")
	}
}

func TestRegisters(t *testing.T) {
	m := newTestModel(t, "first", "second")

	m, _ = press(m, "m", "a")
	e, _ := m.sess.Selected()
	if !e.TemporaryRegisters().Has('a') {
		t.Fatalf("expected temporary register a on %q", e.Content.Text)
	}

	m, _ = press(m, "j", "'", "a")
	if got := selectedText(m); got != "second" {
		t.Errorf("expected jump back to second, got %q", got)
	}

	m, _ = press(m, "'", "z")
	if !m.statusErr || !strings.Contains(m.status, "'z'") {
		t.Errorf("expected error for empty register, got %q", m.status)
	}

	m, _ = press(m, "m", "a")
	e, _ = m.sess.Selected()
	if e.TemporaryRegisters().Has('a') {
		t.Errorf("expected second m a to remove the register")
	}

	m, _ = press(m, "M", "!")
	if !m.statusErr {
		t.Errorf("expected invalid key error")
	}
	if m.mode != modeNormal {
		t.Errorf("expected register mode to end after one key")
	}
}

func TestPinAndClear(t *testing.T) {
	m := newTestModel(t, "keep", "drop1", "drop2")

	m, _ = press(m, "G", "p")
	if e, _ := m.sess.Selected(); !e.Pinned {
		t.Fatalf("expected pinned entry")
	}

	m, _ = press(m, "D", "n")
	if n := m.sess.View().Len(); n != 3 {
		t.Errorf("expected clear to be cancelled, got %d entries", n)
	}

	m, _ = press(m, "D")
	if m.mode != modeConfirmClear {
		t.Fatalf("expected confirmation prompt")
	}
	m, _ = press(m, "y")
	if n := m.sess.View().Len(); n != 1 {
		t.Errorf("expected only the pinned entry, got %d", n)
	}
	if got := selectedText(m); got != "keep" {
		t.Errorf("expected keep to survive, got %q", got)
	}
}

func TestFilters(t *testing.T) {
	m := newTestModel(t, "a", "b", "c")

	m, _ = press(m, "p", "P")
	if n := m.sess.View().Len(); n != 1 {
		t.Errorf("expected pinned filter to show 1 entry, got %d", n)
	}
	m, _ = press(m, "P")
	if n := m.sess.View().Len(); n != 3 {
		t.Errorf("expected filter toggled off, got %d", n)
	}
	m, _ = press(m, "t")
	if n := m.sess.View().Len(); n != 0 {
		t.Errorf("expected no temporary entries, got %d", n)
	}
}

func TestCopyWithoutBackend(t *testing.T) {
	m := newTestModel(t, "text")

	m, cmd := press(m, "enter")
	if cmd != nil {
		t.Errorf("failed copy should not quit")
	}
	if !m.statusErr {
		t.Errorf("expected error status for missing clipboard backend")
	}
}

func TestQuit(t *testing.T) {
	m := newTestModel(t, "text")

	_, cmd := press(m, "q")
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("expected tea.QuitMsg")
	}
}

func TestViewModeToggle(t *testing.T) {
	m := newTestModel(t, "x")
	if !m.compact {
		t.Fatalf("expected compact view by default")
	}
	rows := m.visibleRows()
	m, _ = press(m, "v")
	if m.compact {
		t.Errorf("expected comfortable view after v")
	}
	if m.visibleRows() >= rows {
		t.Errorf("comfortable view should fit fewer rows")
	}
}

func TestScrollKeepsCursorVisible(t *testing.T) {
	var texts []string
	for i := 0; i < 60; i++ {
		texts = append(texts, strings.Repeat("x", i+1))
	}
	m := newTestModel(t, texts...)

	m, _ = press(m, "G")
	cursor := m.sess.View().Cursor()
	if cursor < m.offset || cursor >= m.offset+m.visibleRows() {
		t.Errorf("cursor %d outside window [%d,%d)", cursor, m.offset, m.offset+m.visibleRows())
	}
	m, _ = press(m, "g")
	if m.offset != 0 {
		t.Errorf("expected offset 0 at top, got %d", m.offset)
	}
}

func TestViewRendersEntries(t *testing.T) {
	m := newTestModel(t, "hello world")
	out := m.View()
	for _, want := range []string{"CLIPR", "hello world", "1/1 shown"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}

	empty := newTestModel(t)
	if !strings.Contains(empty.View(), "No clipboard history yet") {
		t.Errorf("expected empty-state message")
	}
}

func TestRenderText(t *testing.T) {
	if got := renderText("abcdef", 4, 5); got != "abcd\nef" {
		t.Errorf("expected wrapped text, got %q", got)
	}
	if got := renderText("a\nb\nc\nd", 10, 2); got != "a\nb" {
		t.Errorf("expected height cap, got %q", got)
	}
}

func TestRenderImage(t *testing.T) {
	small := image.NewRGBA(image.Rect(0, 0, 4, 4))
	small.Set(0, 0, color.RGBA{R: 255, A: 255})
	out := renderImage(small, 10, 10)
	if lines := strings.Count(out, "\n") + 1; lines != 2 {
		t.Errorf("expected 2 rows for 4px high image, got %d", lines)
	}
	if n := strings.Count(out, "▀"); n != 8 {
		t.Errorf("expected 8 cells, got %d", n)
	}

	large := image.NewRGBA(image.Rect(0, 0, 100, 100))
	out = renderImage(large, 10, 5)
	if lines := strings.Count(out, "\n") + 1; lines != 5 {
		t.Errorf("expected image scaled to 5 rows, got %d", lines)
	}
	if n := strings.Count(out, "▀"); n != 50 {
		t.Errorf("expected 50 cells, got %d", n)
	}

	if renderImage(image.NewRGBA(image.Rect(0, 0, 0, 0)), 10, 10) != "" {
		t.Errorf("expected empty output for empty image")
	}
}

func TestRenderPreview(t *testing.T) {
	if !strings.Contains(renderPreview(previewState{}, 40, 10), "No entry selected") {
		t.Errorf("expected placeholder without entry")
	}

	img := &history.Entry{ID: 1, Content: history.Image([]byte{1, 2, 3}, "image/png")}
	pending := renderPreview(previewState{entry: img, pending: true}, 40, 10)
	if !strings.Contains(pending, "Decoding image") {
		t.Errorf("expected decoding message, got %q", pending)
	}
	failed := renderPreview(previewState{entry: img}, 40, 10)
	if !strings.Contains(failed, "no preview available") {
		t.Errorf("expected fallback message, got %q", failed)
	}

	text := &history.Entry{ID: 2, Content: history.Text("body"), Name: "greeting"}
	out := renderPreview(previewState{entry: text, metadata: true}, 40, 12)
	if !strings.Contains(out, "body") || !strings.Contains(out, "greeting") {
		t.Errorf("expected body and metadata, got %q", out)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello", 4, "hel…"},
		{"héllo", 3, "hé…"},
		{"hello", 1, "…"},
		{"hello", 0, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestTruncatePath(t *testing.T) {
	if got := truncatePath("/a/b/c", 10); got != "/a/b/c" {
		t.Errorf("expected path unchanged, got %q", got)
	}
	if got := truncatePath("/very/long/path/file.png", 12); got != ".../file.png" {
		t.Errorf("expected tail kept, got %q", got)
	}
}
