package store

import "sync/atomic"

// Clock is the monotonic logical clock that stamps log entries.
//
// Every appended entry gets a strictly increasing seq from this clock; seq is
// the only ordering signal in the log.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClockAt creates a clock positioned at start. The next call to Next
// returns start+1. Open uses this to resume after the highest stored seq.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
