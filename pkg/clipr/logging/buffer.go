package logging

import "sync"

// DefaultBufferSize is the number of entries kept for the TUI.
const DefaultBufferSize = 100

// LogBuffer is a fixed-size ring of recent log entries.
type LogBuffer struct {
	mu      sync.RWMutex
	entries []LogEntry
	next    int
	full    bool
}

// NewLogBuffer creates a buffer holding up to size entries.
func NewLogBuffer(size int) *LogBuffer {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &LogBuffer{entries: make([]LogEntry, size)}
}

// Add records entry, overwriting the oldest one when full.
func (b *LogBuffer) Add(entry LogEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[b.next] = entry
	b.next = (b.next + 1) % len(b.entries)
	if b.next == 0 {
		b.full = true
	}
}

// Len returns the number of buffered entries.
func (b *LogBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lenLocked()
}

func (b *LogBuffer) lenLocked() int {
	if b.full {
		return len(b.entries)
	}
	return b.next
}

// Last returns up to n of the most recent entries, oldest first.
func (b *LogBuffer) Last(n int) []LogEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	count := b.lenLocked()
	if n > count {
		n = count
	}
	if n <= 0 {
		return []LogEntry{}
	}

	out := make([]LogEntry, n)
	start := b.next - n
	for i := range out {
		out[i] = b.entries[(start+i+len(b.entries))%len(b.entries)]
	}
	return out
}

// Entries returns every buffered entry, oldest first.
func (b *LogBuffer) Entries() []LogEntry {
	return b.Last(len(b.entries))
}

// Latest returns the newest entry at or above floor.
func (b *LogBuffer) Latest(floor Level) (LogEntry, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	count := b.lenLocked()
	for i := 1; i <= count; i++ {
		e := b.entries[(b.next-i+len(b.entries))%len(b.entries)]
		if e.Level >= floor {
			return e, true
		}
	}
	return LogEntry{}, false
}
