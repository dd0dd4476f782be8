// Package selection derives the visible, ordered list of entries from the
// ledger, the active search query and the active register filter, and keeps
// a clamped cursor into it.
package selection

import (
	"slices"

	"github.com/jamesainslie/clipr/pkg/clipr/history"
	"github.com/jamesainslie/clipr/pkg/clipr/search"
)

// Filter restricts the visible entries.
type Filter int

const (
	FilterNone Filter = iota
	FilterTemporary
	FilterPermanent
	FilterPinned
)

func (f Filter) String() string {
	switch f {
	case FilterTemporary:
		return "temporary"
	case FilterPermanent:
		return "permanent"
	case FilterPinned:
		return "pinned"
	default:
		return "all"
	}
}

func (f Filter) keep(e *history.Entry) bool {
	switch f {
	case FilterTemporary:
		return len(e.TemporaryRegisters()) > 0
	case FilterPermanent:
		return len(e.PermanentRegisters()) > 0
	case FilterPinned:
		return e.Pinned
	default:
		return true
	}
}

// View is the visible window over a ledger. Call Refresh after mutating the
// ledger; setters refresh on their own.
type View struct {
	ledger  *history.Ledger
	ranker  search.Ranker
	query   string
	filter  Filter
	visible []uint64
	cursor  int
}

// New returns a view over l ranked by r.
func New(l *history.Ledger, r search.Ranker) *View {
	v := &View{ledger: l, ranker: r}
	v.Refresh()
	return v
}

// Query returns the active search query.
func (v *View) Query() string { return v.query }

// Filter returns the active register filter.
func (v *View) Filter() Filter { return v.filter }

// SetQuery changes the search query and moves the cursor to the top.
func (v *View) SetQuery(q string) {
	v.query = q
	v.cursor = 0
	v.Refresh()
}

// SetFilter changes the register filter and moves the cursor to the top.
func (v *View) SetFilter(f Filter) {
	v.filter = f
	v.cursor = 0
	v.Refresh()
}

// ToggleFilter switches between f and FilterNone.
func (v *View) ToggleFilter(f Filter) {
	if v.filter == f {
		v.SetFilter(FilterNone)
		return
	}
	v.SetFilter(f)
}

// SetRanker replaces the ranker, for example after a search mode change.
func (v *View) SetRanker(r search.Ranker) {
	v.ranker = r
	v.Refresh()
}

// Refresh recomputes the visible ids and clamps the cursor.
func (v *View) Refresh() {
	base := v.ledger.IDs()
	if v.query != "" {
		matches := v.ranker.Rank(v.query, search.CandidatesFrom(v.ledger))
		base = base[:0]
		for _, m := range matches {
			base = append(base, m.ID)
		}
	}

	v.visible = v.visible[:0]
	for _, id := range base {
		e, ok := v.ledger.Get(id)
		if !ok || !v.filter.keep(e) {
			continue
		}
		v.visible = append(v.visible, id)
	}
	v.clamp()
}

func (v *View) clamp() {
	switch {
	case len(v.visible) == 0, v.cursor < 0:
		v.cursor = 0
	case v.cursor >= len(v.visible):
		v.cursor = len(v.visible) - 1
	}
}

// VisibleIDs returns the visible ids in display order.
func (v *View) VisibleIDs() []uint64 {
	return slices.Clone(v.visible)
}

// Len returns the number of visible entries.
func (v *View) Len() int { return len(v.visible) }

// Cursor returns the selected index.
func (v *View) Cursor() int { return v.cursor }

// IDAt returns the id at index i of the visible list.
func (v *View) IDAt(i int) (uint64, bool) {
	if i < 0 || i >= len(v.visible) {
		return 0, false
	}
	return v.visible[i], true
}

// SelectedID returns the id under the cursor.
func (v *View) SelectedID() (uint64, bool) {
	return v.IDAt(v.cursor)
}

// Selected returns the entry under the cursor.
func (v *View) Selected() (*history.Entry, bool) {
	id, ok := v.SelectedID()
	if !ok {
		return nil, false
	}
	return v.ledger.Get(id)
}

// MoveUp moves the cursor n rows towards the top.
func (v *View) MoveUp(n int) {
	if n < 0 {
		v.MoveDown(-n)
		return
	}
	v.cursor -= min(n, v.cursor)
	v.clamp()
}

// MoveDown moves the cursor n rows towards the bottom.
func (v *View) MoveDown(n int) {
	if n < 0 {
		v.MoveUp(-n)
		return
	}
	v.cursor += min(n, len(v.visible)-v.cursor)
	v.clamp()
}

// Top moves the cursor to the first row.
func (v *View) Top() { v.cursor = 0 }

// Bottom moves the cursor to the last row.
func (v *View) Bottom() {
	v.cursor = len(v.visible) - 1
	v.clamp()
}

// JumpTo moves the cursor to index i, clamped to the visible range.
func (v *View) JumpTo(i int) {
	v.cursor = i
	v.clamp()
}

// Select moves the cursor to id if it is visible.
func (v *View) Select(id uint64) bool {
	i := slices.Index(v.visible, id)
	if i < 0 {
		return false
	}
	v.cursor = i
	return true
}
