package history

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock returns a clock that advances one second per call.
func fakeClock() func() time.Time {
	t := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func texts(t *testing.T, l *Ledger) []string {
	t.Helper()
	var out []string
	for _, e := range l.Entries() {
		require.Equal(t, KindText, e.Content.Kind)
		out = append(out, e.Content.Text)
	}
	return out
}

// assertHashIndex checks the hash index equals the entries' (hash, id) pairs.
func assertHashIndex(t *testing.T, l *Ledger) {
	t.Helper()
	want := make(map[uint64]uint64, len(l.entries))
	for _, e := range l.entries {
		want[e.Hash] = e.ID
	}
	assert.Equal(t, want, l.hashIndex)
	assert.Len(t, l.byID, len(l.entries))
}

func TestInsertDedupReordersWithoutConsumingID(t *testing.T) {
	l := New()

	assert.Equal(t, uint64(1), l.Insert(Text("a")))
	assert.Equal(t, uint64(2), l.Insert(Text("b")))
	assert.Equal(t, uint64(1), l.Insert(Text("a")))

	assert.Equal(t, 2, l.Len())
	assert.Equal(t, []uint64{1, 2}, l.IDs())
	assert.Equal(t, uint64(3), l.Insert(Text("c")))
	assertHashIndex(t, l)
}

func TestInsertSameContentManyTimes(t *testing.T) {
	clock := fakeClock()
	var last time.Time
	l := New(WithClock(func() time.Time {
		last = clock()
		return last
	}))

	l.Insert(Text("other"))
	var id uint64
	for i := 0; i < 5; i++ {
		id = l.Insert(Text("same"))
		assert.Equal(t, id, l.IDs()[0], "duplicate should move to front")
		l.Insert(Text("other"))
	}
	id = l.Insert(Text("same"))

	assert.Equal(t, 2, l.Len())
	e, ok := l.Get(id)
	require.True(t, ok)
	assert.Equal(t, last, e.Timestamp)
	assert.Equal(t, id, l.IDs()[0])
}

func TestInsertWithMetadataKeepsExistingOnEmpty(t *testing.T) {
	l := New()
	id := l.InsertWithMetadata(Text("token"), "api", "staging token")

	assert.Equal(t, id, l.InsertWithMetadata(Text("token"), "", ""))
	e, _ := l.Get(id)
	assert.Equal(t, "api", e.Name)
	assert.Equal(t, "staging token", e.Description)

	l.InsertWithMetadata(Text("token"), "prod-api", "")
	assert.Equal(t, "prod-api", e.Name)
	assert.Equal(t, "staging token", e.Description)
}

func TestRotationWorkedExample(t *testing.T) {
	l := New(WithMaxEntries(2))
	l.Insert(Text("a"))
	l.Insert(Text("b"))
	l.Insert(Text("c"))
	assert.Equal(t, []string{"c", "b"}, texts(t, l))

	b, ok := l.FindByHash(HashContent(Text("b")))
	require.True(t, ok)
	_, err := l.TogglePin(b)
	require.NoError(t, err)

	l.Insert(Text("d"))
	l.Insert(Text("e"))
	assert.Equal(t, []string{"e", "d", "b"}, texts(t, l))
	assertHashIndex(t, l)
}

func TestRotationKeepsExactlyCap(t *testing.T) {
	const k = 4
	l := New(WithMaxEntries(k))
	for i := 0; i < k+5; i++ {
		l.Insert(Text(string(rune('a' + i))))
	}
	assert.Equal(t, k, l.Len())
	assert.Equal(t, []string{"i", "h", "g", "f"}, texts(t, l))
	assertHashIndex(t, l)
}

func TestRotationProtectsPinnedAndRegistered(t *testing.T) {
	l := New(WithMaxEntries(2))
	pinned := l.Insert(Text("pinned"))
	_, err := l.TogglePin(pinned)
	require.NoError(t, err)
	tagged := l.Insert(Text("tagged"))
	require.NoError(t, l.Registers().AssignTemporary('t', tagged))
	perm := l.Insert(Text("perm"))
	require.NoError(t, l.Registers().AssignPermanent('P', perm))

	for i := 0; i < 20; i++ {
		l.Insert(Text(string(rune('A' + i))))
	}

	for _, id := range []uint64{pinned, tagged, perm} {
		_, ok := l.Get(id)
		assert.True(t, ok, "protected entry %d was evicted", id)
	}
	assert.Equal(t, 5, l.Len())
	assertHashIndex(t, l)
}

func TestRotationDisabledWhenUncapped(t *testing.T) {
	l := New(WithMaxEntries(0))
	for i := 0; i < 50; i++ {
		l.Insert(Text(string(rune(0x100 + i))))
	}
	assert.Equal(t, 50, l.Len())
}

func TestSetMaxEntriesRotatesImmediately(t *testing.T) {
	l := New()
	for _, s := range []string{"a", "b", "c", "d"} {
		l.Insert(Text(s))
	}
	assert.Equal(t, 2, l.SetMaxEntries(2))
	assert.Equal(t, []string{"d", "c"}, texts(t, l))
}

func TestRemovePurgesRegistersAndHash(t *testing.T) {
	l := New()
	id := l.Insert(Text("secret"))
	require.NoError(t, l.Registers().AssignTemporary('a', id))

	assert.True(t, l.Remove(id))
	assert.False(t, l.Remove(id))

	_, ok := l.Registers().Temporary('a')
	assert.False(t, ok, "register still points at a deleted entry")
	_, ok = l.FindByHash(HashContent(Text("secret")))
	assert.False(t, ok)
	assertHashIndex(t, l)

	// Ids are never reused.
	assert.Equal(t, id+1, l.Insert(Text("secret")))
}

func TestDeleteRefusesPermanent(t *testing.T) {
	l := New()
	id := l.Insert(Text("address"))
	require.NoError(t, l.Registers().AssignPermanent('h', id))
	require.NoError(t, l.Registers().AssignTemporary('x', id))

	err := l.Delete(id)
	require.ErrorIs(t, err, ErrCannotDelete)

	e, ok := l.Get(id)
	require.True(t, ok)
	assert.Equal(t, RegisterSet{'h'}, e.PermanentRegisters())
	assert.Equal(t, RegisterSet{'x'}, e.TemporaryRegisters())
	got, ok := l.Registers().Temporary('x')
	assert.True(t, ok)
	assert.Equal(t, id, got)

	assert.ErrorIs(t, l.Delete(999), ErrUnknownEntry)
}

func TestDeleteTemporaryOnlyEntry(t *testing.T) {
	l := New()
	id := l.Insert(Text("scratch"))
	require.NoError(t, l.Registers().AssignTemporary('s', id))

	require.NoError(t, l.Delete(id))
	_, ok := l.Registers().Temporary('s')
	assert.False(t, ok)
}

func TestTogglePinUnknown(t *testing.T) {
	_, err := New().TogglePin(42)
	if !errors.Is(err, ErrUnknownEntry) {
		t.Errorf("TogglePin(42) error = %v, want ErrUnknownEntry", err)
	}
}

func TestClearUnpinned(t *testing.T) {
	l := New()
	keep := l.Insert(Text("keep"))
	reg := l.Insert(Text("reg"))
	l.Insert(Text("drop1"))
	l.Insert(Text("drop2"))
	_, _ = l.TogglePin(keep)
	require.NoError(t, l.Registers().AssignTemporary('r', reg))

	assert.Equal(t, 2, l.ClearUnpinned())
	assert.ElementsMatch(t, []uint64{keep, reg}, l.IDs())
	assertHashIndex(t, l)
}

func TestRebuildHashIndexMergesDuplicates(t *testing.T) {
	l := New()
	a := l.Insert(Text("a"))
	l.Insert(Text("b"))

	// Simulate a snapshot holding two copies of "a".
	dup := &Entry{ID: 10, Content: Text("a"), Pinned: true, temporary: RegisterSet{'q'}}
	l.entries = append(l.entries, dup)
	l.byID[dup.ID] = dup
	l.RebuildHashIndex()

	assert.Equal(t, 2, l.Len())
	e, _ := l.Get(a)
	assert.True(t, e.Pinned)
	assert.True(t, e.TemporaryRegisters().Has('q'))
	got, ok := l.Registers().Temporary('q')
	assert.True(t, ok)
	assert.Equal(t, a, got)
	assertHashIndex(t, l)
}

func TestStats(t *testing.T) {
	l := New()
	l.Insert(Text("hello"))
	img := l.Insert(Image([]byte{1, 2, 3}, "image/png"))
	l.Insert(FileRef("/tmp/a.pdf", "application/pdf"))
	_, _ = l.TogglePin(img)
	require.NoError(t, l.Registers().AssignTemporary('i', img))

	s := l.Stats()
	assert.Equal(t, Stats{Total: 3, Text: 1, Images: 1, Files: 1, Pinned: 1, Temporary: 1, Bytes: 8}, s)
}

func TestUpdateKeepsIdentity(t *testing.T) {
	l := New()
	id := l.Insert(Text("original"))
	other := l.Insert(Text("other"))

	require.NoError(t, l.Update(id, func(e *Entry) {
		e.ID = 999
		e.Content = Text("other")
		e.Hash = 1
		e.Pinned = true
		e.Name = "greeting"
	}))

	e, ok := l.Get(id)
	require.True(t, ok)
	assert.Equal(t, id, e.ID)
	assert.Equal(t, "original", e.Content.Text)
	assert.Equal(t, HashContent(Text("original")), e.Hash)
	assert.True(t, e.Pinned)
	assert.Equal(t, "greeting", e.Name)

	_, ok = l.Get(999)
	assert.False(t, ok)
	got, ok := l.FindByHash(HashContent(Text("other")))
	require.True(t, ok)
	assert.Equal(t, other, got)
	assertHashIndex(t, l)
}

func TestUpdateUnknown(t *testing.T) {
	l := New()
	called := false
	err := l.Update(42, func(*Entry) { called = true })
	assert.ErrorIs(t, err, ErrUnknownEntry)
	assert.False(t, called)
}
