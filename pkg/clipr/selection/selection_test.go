package selection

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/clipr/pkg/clipr/history"
	"github.com/jamesainslie/clipr/pkg/clipr/search"
)

// stubRanker returns a fixed ranking regardless of query.
type stubRanker []uint64

func (s stubRanker) Rank(string, []search.Candidate) []search.Match {
	out := make([]search.Match, len(s))
	for i, id := range s {
		out[i] = search.Match{ID: id, Score: len(s) - i}
	}
	return out
}

func seed(t *testing.T) (*history.Ledger, []uint64) {
	t.Helper()
	l := history.New()
	var ids []uint64
	for _, s := range []string{"alpha", "bravo", "charlie", "delta", "echo"} {
		ids = append(ids, l.Insert(history.Text(s)))
	}
	// Ledger order is most-recent-first: echo, delta, charlie, bravo, alpha.
	return l, ids
}

func TestVisibleIDsFollowsLedgerWithoutQuery(t *testing.T) {
	l, _ := seed(t)
	v := New(l, search.NewFuzzyRanker(search.SmartCase))
	assert.Equal(t, l.IDs(), v.VisibleIDs())
}

func TestVisibleIDsUsesRankerOrderAndDropsMissing(t *testing.T) {
	l, ids := seed(t)
	v := New(l, stubRanker{ids[2], 999, ids[0]})
	v.SetQuery("anything")
	assert.Equal(t, []uint64{ids[2], ids[0]}, v.VisibleIDs())
}

func TestFilters(t *testing.T) {
	l, ids := seed(t)
	_, err := l.TogglePin(ids[1])
	require.NoError(t, err)
	require.NoError(t, l.Registers().AssignTemporary('t', ids[3]))
	require.NoError(t, l.Registers().AssignPermanent('p', ids[0]))

	v := New(l, search.NewFuzzyRanker(search.SmartCase))
	tests := []struct {
		filter Filter
		want   []uint64
	}{
		{FilterNone, l.IDs()},
		{FilterPinned, []uint64{ids[1]}},
		{FilterTemporary, []uint64{ids[3]}},
		{FilterPermanent, []uint64{ids[0]}},
	}
	for _, tt := range tests {
		t.Run(tt.filter.String(), func(t *testing.T) {
			v.SetFilter(tt.filter)
			assert.Equal(t, tt.want, v.VisibleIDs())
		})
	}
}

func TestFilterAppliesAfterRanking(t *testing.T) {
	l, ids := seed(t)
	_, _ = l.TogglePin(ids[0])
	_, _ = l.TogglePin(ids[4])
	v := New(l, stubRanker{ids[0], ids[1], ids[4]})
	v.SetQuery("x")
	v.SetFilter(FilterPinned)
	assert.Equal(t, []uint64{ids[0], ids[4]}, v.VisibleIDs())
}

func TestToggleFilter(t *testing.T) {
	l, _ := seed(t)
	v := New(l, search.NewFuzzyRanker(search.SmartCase))
	v.ToggleFilter(FilterPinned)
	assert.Equal(t, FilterPinned, v.Filter())
	v.ToggleFilter(FilterPinned)
	assert.Equal(t, FilterNone, v.Filter())
	v.ToggleFilter(FilterTemporary)
	v.ToggleFilter(FilterPermanent)
	assert.Equal(t, FilterPermanent, v.Filter())
}

func TestNavigationClamps(t *testing.T) {
	l, _ := seed(t)
	v := New(l, search.NewFuzzyRanker(search.SmartCase))

	v.MoveUp(3)
	assert.Equal(t, 0, v.Cursor())
	v.MoveDown(2)
	assert.Equal(t, 2, v.Cursor())
	v.MoveDown(100)
	assert.Equal(t, 4, v.Cursor())
	v.MoveDown(math.MaxInt)
	assert.Equal(t, 4, v.Cursor())
	v.MoveUp(math.MaxInt)
	assert.Equal(t, 0, v.Cursor())
	v.Bottom()
	assert.Equal(t, 4, v.Cursor())
	v.Top()
	assert.Equal(t, 0, v.Cursor())
	v.JumpTo(-7)
	assert.Equal(t, 0, v.Cursor())
	v.JumpTo(42)
	assert.Equal(t, 4, v.Cursor())
	v.JumpTo(2)
	id, ok := v.SelectedID()
	require.True(t, ok)
	assert.Equal(t, l.IDs()[2], id)
}

func TestEmptyView(t *testing.T) {
	v := New(history.New(), search.NewFuzzyRanker(search.SmartCase))
	v.MoveDown(1)
	v.Bottom()
	v.MoveUp(1)
	assert.Equal(t, 0, v.Cursor())
	_, ok := v.SelectedID()
	assert.False(t, ok)
	_, ok = v.IDAt(-1)
	assert.False(t, ok)
	_, ok = v.Selected()
	assert.False(t, ok)
}

func TestRefreshClampsAfterRemoval(t *testing.T) {
	l, _ := seed(t)
	v := New(l, search.NewFuzzyRanker(search.SmartCase))
	v.Bottom()
	last, _ := v.SelectedID()

	require.True(t, l.Remove(last))
	v.Refresh()
	assert.Equal(t, 3, v.Cursor())
	assert.NotContains(t, v.VisibleIDs(), last)
}

func TestSetQueryResetsCursor(t *testing.T) {
	l, _ := seed(t)
	v := New(l, search.NewFuzzyRanker(search.SmartCase))
	v.JumpTo(3)
	v.SetQuery("a")
	assert.Equal(t, 0, v.Cursor())
	v.JumpTo(1)
	v.SetFilter(FilterNone)
	assert.Equal(t, 0, v.Cursor())
}

func TestSelect(t *testing.T) {
	l, ids := seed(t)
	v := New(l, search.NewFuzzyRanker(search.SmartCase))
	assert.True(t, v.Select(ids[1]))
	assert.Equal(t, 3, v.Cursor())
	assert.False(t, v.Select(12345))
	assert.Equal(t, 3, v.Cursor())
}
