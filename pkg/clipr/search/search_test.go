package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/clipr/pkg/clipr/history"
)

func ids(matches []Match) []uint64 {
	out := make([]uint64, len(matches))
	for i, m := range matches {
		out[i] = m.ID
	}
	return out
}

func assertSortedByScore(t *testing.T, matches []Match) {
	t.Helper()
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Score, matches[i].Score, "matches out of order at %d", i)
	}
}

var corpus = []Candidate{
	{ID: 1, Text: "foo bar"},
	{ID: 2, Text: "Foo bar"},
	{ID: 3, Text: "F-o-o"},
	{ID: 4, Text: "unrelated"},
}

func TestEmptyQueryReturnsEverything(t *testing.T) {
	r := NewFuzzyRanker(SmartCase)
	assert.Equal(t, []uint64{1, 2, 3, 4}, ids(r.Rank("", corpus)))
	assert.Empty(t, r.Rank("", nil))
}

func TestSmartCase(t *testing.T) {
	r := NewFuzzyRanker(SmartCase)

	lower := r.Rank("foo", corpus)
	assert.ElementsMatch(t, []uint64{1, 2, 3}, ids(lower))
	assertSortedByScore(t, lower)

	upper := r.Rank("Foo", corpus)
	assert.ElementsMatch(t, []uint64{2, 3}, ids(upper))
	assertSortedByScore(t, upper)
}

func TestCaseSensitiveMode(t *testing.T) {
	r := NewFuzzyRanker(CaseSensitive)

	got := r.Rank("foo", corpus)
	assert.Equal(t, []uint64{1}, ids(got))

	got = r.Rank("Foo", corpus)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(3), got[0].ID, "closer edit distance ranks first")
	assertSortedByScore(t, got)
}

func TestNoMatch(t *testing.T) {
	assert.Empty(t, NewFuzzyRanker(SmartCase).Rank("zzz", corpus))
	assert.Empty(t, NewFuzzyRanker(CaseSensitive).Rank("zzz", corpus))
}

func TestModeToggle(t *testing.T) {
	assert.Equal(t, CaseSensitive, SmartCase.Toggle())
	assert.Equal(t, SmartCase, CaseSensitive.Toggle())
	assert.Equal(t, "smart-case", SmartCase.String())
}

func TestCandidatesFrom(t *testing.T) {
	l := history.New()
	l.Insert(history.Text("plain"))
	l.InsertWithMetadata(history.Text("token-123"), "api", "staging key")
	l.Insert(history.Image([]byte{1}, "image/png"))
	l.Insert(history.FileRef("/tmp/report.pdf", "application/pdf"))

	got := CandidatesFrom(l)
	require.Len(t, got, 4)
	assert.Equal(t, "[file: report.pdf]", got[0].Text)
	assert.Equal(t, "[image]", got[1].Text)
	assert.Equal(t, "api staging key token-123", got[2].Text)
	assert.Equal(t, "plain", got[3].Text)
	assert.Equal(t, l.IDs(), []uint64{got[0].ID, got[1].ID, got[2].ID, got[3].ID})

	matches := NewFuzzyRanker(SmartCase).Rank("staging", got)
	require.Len(t, matches, 1)
	assert.Equal(t, got[2].ID, matches[0].ID)
}
