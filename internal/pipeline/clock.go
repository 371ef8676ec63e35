package pipeline

import "sync/atomic"

// Clock is a monotonic logical clock for stage ordering.
//
// Every stage result is stamped with a strictly increasing seq number so
// the journal reads back in execution order without depending on wall
// time. The pipeline is single-threaded, but the clock is atomic so a
// shared clock is safe if one is ever reused across runs.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
