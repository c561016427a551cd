// Package timeline is a single-goroutine discrete-event loop. Callbacks are
// scheduled at offsets from the start of the run and executed one at a
// time in offset order, so state touched only from callbacks needs no
// locking.
package timeline

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Timeline runs scheduled callbacks in time order.
type Timeline struct {
	clock Clock
	queue *eventQueue
	seq   seqClock
	now   atomic.Int64
}

// New returns an empty Timeline driven by clock. A nil clock selects
// VirtualClock.
func New(clock Clock) *Timeline {
	if clock == nil {
		clock = VirtualClock{}
	}
	return &Timeline{clock: clock, queue: newEventQueue()}
}

// Now returns the offset of the event currently running, or of the last
// one that ran.
func (tl *Timeline) Now() time.Duration {
	return time.Duration(tl.now.Load())
}

// At schedules fn at offset at. Offsets earlier than Now fire at Now,
// after the events already due then.
func (tl *Timeline) At(at time.Duration, fn func()) {
	if now := tl.Now(); at < now {
		at = now
	}
	tl.queue.Push(event{at: at, seq: tl.seq.Next(), fn: fn})
}

// After schedules fn d after Now.
func (tl *Timeline) After(d time.Duration, fn func()) {
	tl.At(tl.Now()+d, fn)
}

// Pending returns the number of scheduled events.
func (tl *Timeline) Pending() int {
	return tl.queue.Len()
}

// Run executes events until the queue is empty or ctx is done. The context
// is checked before every event; an event never starts after cancellation.
func (tl *Timeline) Run(ctx context.Context) error {
	slog.Debug("timeline starting", "pending", tl.queue.Len())
	for {
		if err := ctx.Err(); err != nil {
			slog.Debug("timeline stopping: context cancelled", "at", tl.Now())
			return err
		}
		ev, ok := tl.queue.Pop()
		if !ok {
			slog.Debug("timeline finished", "at", tl.Now(), "events", tl.seq.Current())
			return nil
		}
		if err := tl.clock.Until(ctx, ev.at); err != nil {
			slog.Debug("timeline stopping: context cancelled", "at", tl.Now())
			return err
		}
		tl.now.Store(int64(ev.at))
		ev.fn()
	}
}
