package session

import (
	"errors"
	"fmt"

	"github.com/jamesainslie/clipr/pkg/clipr/clipboard"
	"github.com/jamesainslie/clipr/pkg/clipr/history"
	"github.com/jamesainslie/clipr/pkg/clipr/logging"
	"github.com/jamesainslie/clipr/pkg/clipr/search"
	"github.com/jamesainslie/clipr/pkg/clipr/selection"
)

// ErrRegisterNotFound is returned when grabbing an unassigned register.
var ErrRegisterNotFound = errors.New("register not found")

// Copy writes content to sink. File references are copied as their path.
func Copy(sink clipboard.Sink, c history.Content) error {
	if sink == nil {
		return clipboard.ErrNoBackend
	}
	switch c.Kind {
	case history.KindText:
		return sink.WriteText(c.Text)
	case history.KindImage:
		if !sink.SupportsImages() {
			return fmt.Errorf("%s: %w", sink.Name(), clipboard.ErrImagesUnsupported)
		}
		return sink.WriteImage(c.Data, c.MIME)
	case history.KindFile:
		return sink.WriteText(c.Path)
	default:
		return fmt.Errorf("unsupported content kind %s", c.Kind)
	}
}

// Grab copies the entry held by a register to sink.
func Grab(l *history.Ledger, sink clipboard.Sink, permanent bool, key rune) error {
	regs := l.Registers()
	lookup := regs.Temporary
	if permanent {
		lookup = regs.Permanent
	}
	id, ok := lookup(key)
	if !ok {
		return fmt.Errorf("%w: '%c'", ErrRegisterNotFound, key)
	}
	e, ok := l.Get(id)
	if !ok {
		return fmt.Errorf("%w: %d", history.ErrUnknownEntry, id)
	}
	return Copy(sink, e.Content)
}

// CopySelected copies the selected entry to the clipboard and returns its
// id. The caller decides whether to exit afterwards (ExitOnSelect).
func (s *Session) CopySelected() (uint64, error) {
	e, err := s.selected()
	if err != nil {
		return 0, err
	}
	if err := Copy(s.sink, e.Content); err != nil {
		return 0, fmt.Errorf("copying entry %d: %w", e.ID, err)
	}
	logging.Get("session").Info("copied entry", "id", e.ID, "kind", e.Content.Kind.String())
	return e.ID, nil
}

// ExitOnSelect reports whether the TUI should quit after a copy.
func (s *Session) ExitOnSelect() bool {
	return s.cfg.General.ExitOnSelect
}

// TogglePin flips the pin on the selected entry.
func (s *Session) TogglePin() (bool, error) {
	e, err := s.selected()
	if err != nil {
		return false, err
	}
	pinned, err := s.ledger.TogglePin(e.ID)
	if err != nil {
		return false, err
	}
	s.changed()
	return pinned, nil
}

// DeleteSelected removes the selected entry. Entries holding a permanent
// register are refused with history.ErrCannotDelete.
func (s *Session) DeleteSelected() error {
	e, err := s.selected()
	if err != nil {
		return err
	}
	if err := s.ledger.Delete(e.ID); err != nil {
		return err
	}
	s.changed()
	return nil
}

// ToggleTemporary assigns key to the selected entry, or removes it when
// the entry already holds it.
func (s *Session) ToggleTemporary(key rune) (bool, error) {
	regs := s.ledger.Registers()
	return s.toggleRegister(key, regs.Temporary, regs.AssignTemporary, regs.RemoveTemporary)
}

// TogglePermanent is ToggleTemporary for permanent registers.
func (s *Session) TogglePermanent(key rune) (bool, error) {
	regs := s.ledger.Registers()
	return s.toggleRegister(key, regs.Permanent, regs.AssignPermanent, regs.RemovePermanent)
}

func (s *Session) toggleRegister(
	key rune,
	lookup func(rune) (uint64, bool),
	assign func(rune, uint64) error,
	remove func(rune),
) (bool, error) {
	if !history.ValidKey(key) {
		return false, fmt.Errorf("%w: %q", history.ErrInvalidKey, key)
	}
	e, err := s.selected()
	if err != nil {
		return false, err
	}
	if id, ok := lookup(key); ok && id == e.ID {
		remove(key)
		s.changed()
		return false, nil
	}
	if err := assign(key, e.ID); err != nil {
		return false, err
	}
	s.changed()
	return true, nil
}

// ClearUnpinned removes every unprotected entry.
func (s *Session) ClearUnpinned() int {
	n := s.ledger.ClearUnpinned()
	if n > 0 {
		s.changed()
	}
	return n
}

// SetQuery filters the view by a fuzzy query.
func (s *Session) SetQuery(q string) {
	if q == s.view.Query() {
		return
	}
	s.view.SetQuery(q)
	s.requestPreview()
}

// ToggleFilter switches the register filter between f and none.
func (s *Session) ToggleFilter(f selection.Filter) {
	s.view.ToggleFilter(f)
	s.requestPreview()
}

// SearchMode returns the active search mode.
func (s *Session) SearchMode() search.Mode {
	return s.ranker.Mode
}

// ToggleSearchMode switches between smart-case and case-sensitive search.
func (s *Session) ToggleSearchMode() search.Mode {
	s.ranker.Mode = s.ranker.Mode.Toggle()
	s.view.SetRanker(s.ranker)
	s.requestPreview()
	return s.ranker.Mode
}

// MoveUp moves the cursor up n rows.
func (s *Session) MoveUp(n int) {
	s.view.MoveUp(n)
	s.requestPreview()
}

// MoveDown moves the cursor down n rows.
func (s *Session) MoveDown(n int) {
	s.view.MoveDown(n)
	s.requestPreview()
}

// Top moves to the first row.
func (s *Session) Top() {
	s.view.Top()
	s.requestPreview()
}

// Bottom moves to the last row.
func (s *Session) Bottom() {
	s.view.Bottom()
	s.requestPreview()
}

// JumpTo moves the cursor to a 0-based row.
func (s *Session) JumpTo(i int) {
	s.view.JumpTo(i)
	s.requestPreview()
}
