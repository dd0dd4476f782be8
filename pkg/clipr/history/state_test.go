package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateRestoreRoundTrip(t *testing.T) {
	l := New(WithClock(fakeClock()))
	a := l.InsertWithMetadata(Text("a"), "alpha", "first letter")
	b := l.Insert(Image([]byte{9, 9}, "image/png"))
	c := l.Insert(FileRef("/tmp/c.txt", "text/plain"))
	_, _ = l.TogglePin(a)
	require.NoError(t, l.Registers().AssignTemporary('t', b))
	require.NoError(t, l.Registers().AssignPermanent('p', c))
	l.Remove(l.Insert(Text("gone")))

	restored := Restore(l.State())

	assert.Equal(t, l.IDs(), restored.IDs())
	assert.Equal(t, l.NextID(), restored.NextID())
	assert.Equal(t, l.Registers().ListTemporary(), restored.Registers().ListTemporary())
	assert.Equal(t, l.Registers().ListPermanent(), restored.Registers().ListPermanent())

	ra, ok := restored.Get(a)
	require.True(t, ok)
	assert.True(t, ra.Pinned)
	assert.Equal(t, "alpha", ra.Name)
	assert.Equal(t, "first letter", ra.Description)
	assertHashIndex(t, restored)
	assertSymmetric(t, restored)
}

func TestRestoreAdvancesNextID(t *testing.T) {
	st := State{
		NextID: 2, // stale
		Entries: []Record{
			{ID: 40, Content: Text("x"), Timestamp: time.Now()},
			{ID: 7, Content: Text("y"), Timestamp: time.Now()},
		},
	}
	l := Restore(st)
	assert.Equal(t, uint64(41), l.NextID())
	assert.Equal(t, uint64(41), l.Insert(Text("z")))
}

func TestRestoreDropsDuplicateIDsAndMergesContent(t *testing.T) {
	st := State{Entries: []Record{
		{ID: 1, Content: Text("x")},
		{ID: 1, Content: Text("shadow")},
		{ID: 2, Content: Text("x"), TemporaryRegisters: RegisterSet{'a'}},
		{ID: 0, Content: Text("zero id")},
	}}
	l := Restore(st)

	assert.Equal(t, []uint64{1}, l.IDs())
	id, ok := l.Registers().Temporary('a')
	require.True(t, ok)
	assert.Equal(t, uint64(1), id)
	assertHashIndex(t, l)
	assertSymmetric(t, l)
}

func TestRestoreDoesNotRotateUntilInsert(t *testing.T) {
	var recs []Record
	for i := 1; i <= 5; i++ {
		recs = append(recs, Record{ID: uint64(i), Content: Text(string(rune('a' + i)))})
	}
	l := Restore(State{Entries: recs}, WithMaxEntries(2))
	assert.Equal(t, 5, l.Len())

	l.Insert(Text("new"))
	assert.Equal(t, 2, l.Len())
}
