package engine

import "sync/atomic"

// Clock hands out journal sequence numbers: 1, 2, 3, ... one per committed
// edit, undo or redo. Sequence numbers say nothing about wall time; two
// runs of the same session number their entries identically.
//
// Safe for concurrent use.
type Clock struct {
	seq atomic.Int64
}

// NewClock returns a clock whose first Next is 1.
func NewClock() *Clock {
	return &Clock{}
}

// ResumeClock returns a clock whose first Next is last+1, for appending to
// a session whose newest entry has seq last.
func ResumeClock(last int64) *Clock {
	c := &Clock{}
	c.seq.Store(last)
	return c
}

// Next consumes and returns the next seq.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last seq handed out, 0 if none.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
