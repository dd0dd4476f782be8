// Package search ranks clipboard entries against a fuzzy query.
package search

import (
	"sort"
	"strings"
	"unicode"

	fuzzysearch "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sahilm/fuzzy"

	"github.com/jamesainslie/clipr/pkg/clipr/history"
)

// Candidate is one searchable entry.
type Candidate struct {
	ID   uint64
	Text string
}

// Match is a ranked candidate. Higher scores rank first.
type Match struct {
	ID    uint64
	Score int
}

// Ranker orders candidates by how well they match query. An empty query
// returns every candidate in corpus order.
type Ranker interface {
	Rank(query string, corpus []Candidate) []Match
}

// Mode selects how letter case affects matching.
type Mode int

const (
	// SmartCase ignores case unless the query contains an upper case letter.
	SmartCase Mode = iota
	// CaseSensitive always matches case exactly.
	CaseSensitive
)

func (m Mode) String() string {
	if m == CaseSensitive {
		return "case-sensitive"
	}
	return "smart-case"
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == CaseSensitive {
		return SmartCase
	}
	return CaseSensitive
}

// FuzzyRanker scores case-insensitive queries with sahilm/fuzzy and
// case-sensitive ones by edit distance with lithammer/fuzzysearch.
type FuzzyRanker struct {
	Mode Mode
}

// NewFuzzyRanker returns a ranker in mode.
func NewFuzzyRanker(mode Mode) *FuzzyRanker {
	return &FuzzyRanker{Mode: mode}
}

// Rank implements Ranker.
func (r *FuzzyRanker) Rank(query string, corpus []Candidate) []Match {
	if query == "" {
		out := make([]Match, len(corpus))
		for i, c := range corpus {
			out[i] = Match{ID: c.ID}
		}
		return out
	}
	if r.caseSensitive(query) {
		return rankExact(query, corpus)
	}
	return rankFolded(query, corpus)
}

func (r *FuzzyRanker) caseSensitive(query string) bool {
	if r.Mode == CaseSensitive {
		return true
	}
	return strings.IndexFunc(query, unicode.IsUpper) >= 0
}

// source adapts a candidate slice to fuzzy.Source.
type source []Candidate

func (s source) String(i int) string { return s[i].Text }
func (s source) Len() int            { return len(s) }

func rankFolded(query string, corpus []Candidate) []Match {
	matches := fuzzy.FindFrom(query, source(corpus))
	out := make([]Match, 0, len(matches))
	for _, m := range matches {
		out = append(out, Match{ID: corpus[m.Index].ID, Score: m.Score})
	}
	return out
}

func rankExact(query string, corpus []Candidate) []Match {
	targets := make([]string, len(corpus))
	for i, c := range corpus {
		targets[i] = c.Text
	}
	ranks := fuzzysearch.RankFind(query, targets)
	sort.Stable(ranks)

	out := make([]Match, 0, len(ranks))
	for _, rk := range ranks {
		out = append(out, Match{ID: corpus[rk.OriginalIndex].ID, Score: -rk.Distance})
	}
	return out
}

// CandidatesFrom builds the search corpus from a ledger in ledger order.
// Each candidate's text joins the entry's name, description and content.
func CandidatesFrom(l *history.Ledger) []Candidate {
	entries := l.Entries()
	out := make([]Candidate, 0, len(entries))
	for _, e := range entries {
		out = append(out, Candidate{ID: e.ID, Text: SearchText(e)})
	}
	return out
}

// SearchText returns the text an entry is matched against.
func SearchText(e *history.Entry) string {
	parts := make([]string, 0, 3)
	if e.Name != "" {
		parts = append(parts, e.Name)
	}
	if e.Description != "" {
		parts = append(parts, e.Description)
	}
	parts = append(parts, e.Content.SearchText())
	return strings.Join(parts, " ")
}
