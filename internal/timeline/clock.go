package timeline

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Clock decides how long the event loop waits before an event fires.
// Offsets are measured from the start of the run.
type Clock interface {
	// Until blocks until offset has been reached or ctx is done.
	Until(ctx context.Context, offset time.Duration) error
}

// VirtualClock never waits: events fire as fast as the loop can run them,
// in timestamp order. Used for offline rendering and tests.
type VirtualClock struct{}

// Until returns immediately unless ctx is already done.
func (VirtualClock) Until(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

// WallClock waits in real time. The run starts at the first call to Until.
type WallClock struct {
	once  sync.Once
	start time.Time
}

// NewWallClock returns a WallClock.
func NewWallClock() *WallClock {
	return &WallClock{}
}

// Until sleeps until start+offset. Offsets already in the past return at
// once, so a slow frame delays the next one without accumulating drift.
func (c *WallClock) Until(ctx context.Context, offset time.Duration) error {
	c.once.Do(func() { c.start = time.Now() })

	wait := time.Until(c.start.Add(offset))
	if wait <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// seqClock is a monotonic logical clock. Every scheduled event is stamped
// with the next value so events sharing a timestamp fire in scheduling
// order.
type seqClock struct {
	seq atomic.Int64
}

// Next returns the next sequence number.
func (c *seqClock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last issued sequence number.
func (c *seqClock) Current() int64 {
	return c.seq.Load()
}
