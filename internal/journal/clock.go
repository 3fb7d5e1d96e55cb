package journal

import "sync/atomic"

// Clock is a monotonic logical clock stamping journal entries.
// Sequence numbers, not wall-clock timestamps, order events: replaying
// a run reproduces the exact order regardless of timing.
//
// Thread-safety: safe for concurrent use via atomics, although the
// runtime's single-consumer design means one goroutine normally calls
// Next.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0; the first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock resuming from a known position. Used when
// appending to an existing run.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next increments the clock and returns the new sequence number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current position without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
