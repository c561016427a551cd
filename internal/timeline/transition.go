package timeline

import (
	"fmt"
	"strings"
	"time"
)

// Ease maps linear progress in [0,1] to eased progress.
type Ease func(t float64) float64

// Linear is the identity easing.
func Linear(t float64) float64 { return t }

// CubicInOut is symmetric cubic easing, the default of d3 transitions.
func CubicInOut(t float64) float64 {
	t *= 2
	if t <= 1 {
		return t * t * t / 2
	}
	t -= 2
	return (t*t*t + 2) / 2
}

// EaseByName returns the easing called name: "cubic" (also
// "cubic-in-out") or "linear".
func EaseByName(name string) (Ease, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "cubic", "cubic-in-out", "cubicinout":
		return CubicInOut, nil
	case "linear":
		return Linear, nil
	default:
		return nil, fmt.Errorf("unknown easing %q (want cubic or linear)", name)
	}
}

// DefaultFrame is the tick spacing used when a Transition leaves Frame
// unset: 25 frames per second.
const DefaultFrame = 40 * time.Millisecond

// Transition animates Tick from eased progress 0 to 1 over Duration.
type Transition struct {
	Duration time.Duration
	Frame    time.Duration
	Ease     Ease
	Tick     func(t float64)
}

// Handle controls a running transition.
type Handle struct {
	cancelled bool
	done      bool
	ticks     int
}

// Cancel stops the transition before its next tick. Cancelling a finished
// transition has no effect.
func (h *Handle) Cancel() {
	if !h.done {
		h.cancelled = true
		h.done = true
	}
}

// Done reports whether the transition completed or was cancelled.
func (h *Handle) Done() bool { return h.done }

// Cancelled reports whether Cancel stopped the transition early.
func (h *Handle) Cancelled() bool { return h.cancelled }

// Ticks returns how many ticks ran.
func (h *Handle) Ticks() int { return h.ticks }

// Animate starts tr at Now. Ticks run at Now + k*Frame while the elapsed
// time is below Duration, then once more at Duration with progress 1.
// Each tick is scheduled by the previous one, so the handle must only be
// used from callbacks.
func (tl *Timeline) Animate(tr Transition) *Handle {
	if tr.Frame <= 0 {
		tr.Frame = DefaultFrame
	}
	if tr.Ease == nil {
		tr.Ease = CubicInOut
	}
	h := &Handle{}
	start := tl.Now()

	var tick func(elapsed time.Duration)
	tick = func(elapsed time.Duration) {
		if h.cancelled {
			return
		}
		h.ticks++
		if elapsed >= tr.Duration {
			h.done = true
			tr.Tick(1)
			return
		}
		tr.Tick(tr.Ease(float64(elapsed) / float64(tr.Duration)))

		next := elapsed + tr.Frame
		if next > tr.Duration {
			next = tr.Duration
		}
		tl.At(start+next, func() { tick(next) })
	}
	tl.At(start, func() { tick(0) })
	return h
}
