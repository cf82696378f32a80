package testutil

import (
	"context"
	"iter"
	"slices"
	"sync"

	"github.com/roach88/slotmap/internal/model"
)

// MemoryLog is an in-memory action log with a deterministic seq clock.
//
// Set FailAppend to make every Append fail without recording anything; set
// FailScan to make every Scan yield that error once.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type MemoryLog struct {
	mu      sync.Mutex
	seq     int64
	entries []model.LogEntry

	FailAppend error
	FailScan   error
}

// NewMemoryLog creates a log holding entries in the given order. Their Seq
// values are reassigned starting at 1.
func NewMemoryLog(entries ...model.LogEntry) *MemoryLog {
	l := &MemoryLog{}
	for _, e := range entries {
		l.seq++
		e.Seq = l.seq
		l.entries = append(l.entries, e)
	}
	return l
}

// Append stamps e with the next seq and records it.
func (l *MemoryLog) Append(_ context.Context, e model.LogEntry) (model.LogEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.FailAppend != nil {
		return model.LogEntry{}, l.FailAppend
	}
	l.seq++
	e.Seq = l.seq
	l.entries = append(l.entries, e)
	return e, nil
}

// Scan yields a copy of the entries taken when ranging starts.
func (l *MemoryLog) Scan(_ context.Context) iter.Seq2[model.LogEntry, error] {
	return func(yield func(model.LogEntry, error) bool) {
		l.mu.Lock()
		failure := l.FailScan
		entries := slices.Clone(l.entries)
		l.mu.Unlock()

		if failure != nil {
			yield(model.LogEntry{}, failure)
			return
		}
		for _, e := range entries {
			if !yield(e, nil) {
				return
			}
		}
	}
}

// Entries returns a copy of everything appended so far.
func (l *MemoryLog) Entries() []model.LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.entries)
}

// Len returns the number of recorded entries.
func (l *MemoryLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Reset drops all entries and restarts the clock at 0.
func (l *MemoryLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq = 0
	l.entries = nil
}
