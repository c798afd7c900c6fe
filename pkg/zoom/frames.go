package zoom

import (
	"sync"
	"time"
)

// FrameScheduler delivers animation frame callbacks with a monotonic
// timestamp. In the browser it is requestAnimationFrame.
type FrameScheduler interface {
	RequestFrame(fn func(now time.Duration)) (cancel func())
}

// ManualClock is a FrameScheduler driven by Advance, for tests and hosts
// that own their own tick (the terminal preview).
type ManualClock struct {
	mu      sync.Mutex
	now     time.Duration
	seq     uint64
	pending []frameRequest

	// cancelled holds ids cancelled after Advance took them off pending
	cancelled map[uint64]bool
}

type frameRequest struct {
	id uint64
	fn func(now time.Duration)
}

// NewManualClock returns a clock at time zero with no pending frames.
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

// RequestFrame queues fn for the next Advance.
func (c *ManualClock) RequestFrame(fn func(now time.Duration)) (cancel func()) {
	c.mu.Lock()
	c.seq++
	id := c.seq
	c.pending = append(c.pending, frameRequest{id: id, fn: fn})
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, req := range c.pending {
			if req.id == id {
				c.pending = append(c.pending[:i], c.pending[i+1:]...)
				return
			}
		}
		if c.cancelled == nil {
			c.cancelled = make(map[uint64]bool)
		}
		c.cancelled[id] = true
	}
}

// Advance moves time forward by d and runs the frames that were pending
// when it was called. Frames requested from inside a callback run on the
// next Advance, as with requestAnimationFrame. It returns how many ran.
func (c *ManualClock) Advance(d time.Duration) int {
	c.mu.Lock()
	c.now += d
	now := c.now
	batch := c.pending
	c.pending = nil
	c.mu.Unlock()

	ran := 0
	for _, req := range batch {
		c.mu.Lock()
		skip := c.cancelled[req.id]
		delete(c.cancelled, req.id)
		c.mu.Unlock()
		if skip {
			continue
		}
		req.fn(now)
		ran++
	}

	c.mu.Lock()
	c.cancelled = nil
	c.mu.Unlock()
	return ran
}

// Run advances in steps of frame until no frames are pending or limit
// steps have run. It returns the number of steps taken.
func (c *ManualClock) Run(frame time.Duration, limit int) int {
	steps := 0
	for steps < limit && c.Pending() > 0 {
		c.Advance(frame)
		steps++
	}
	return steps
}

// Now returns the current clock time.
func (c *ManualClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Pending returns the number of queued frame callbacks.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
