package timeline

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeline_RunsInOffsetOrder(t *testing.T) {
	tl := New(nil)
	var got []string
	record := func(s string) func() {
		return func() { got = append(got, fmt.Sprintf("%s@%s", s, tl.Now())) }
	}

	tl.At(2*time.Second, record("c"))
	tl.At(0, record("a"))
	tl.At(time.Second, record("b"))
	require.Equal(t, 3, tl.Pending())

	require.NoError(t, tl.Run(context.Background()))
	assert.Equal(t, []string{"a@0s", "b@1s", "c@2s"}, got)
	assert.Zero(t, tl.Pending())
}

func TestTimeline_EqualOffsetsFireInSchedulingOrder(t *testing.T) {
	tl := New(VirtualClock{})
	var got []int
	for i := 0; i < 10; i++ {
		i := i
		tl.At(time.Second, func() { got = append(got, i) })
	}
	require.NoError(t, tl.Run(context.Background()))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
}

func TestTimeline_SchedulingFromCallbacks(t *testing.T) {
	tl := New(nil)
	var got []time.Duration
	tl.At(time.Second, func() {
		got = append(got, tl.Now())
		tl.After(500*time.Millisecond, func() { got = append(got, tl.Now()) })
		// In the past: runs at Now, after what is already due.
		tl.At(0, func() { got = append(got, tl.Now()) })
	})
	require.NoError(t, tl.Run(context.Background()))
	assert.Equal(t, []time.Duration{time.Second, time.Second, 1500 * time.Millisecond}, got)
}

func TestTimeline_EmptyRunReturns(t *testing.T) {
	assert.NoError(t, New(nil).Run(context.Background()))
}

func TestTimeline_CancelledContextStopsBeforeNextEvent(t *testing.T) {
	tl := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	ran := 0
	tl.At(0, func() { ran++; cancel() })
	tl.At(time.Second, func() { ran++ })

	err := tl.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, ran)
	assert.Equal(t, 1, tl.Pending())
}

func TestWallClock_WaitsForOffset(t *testing.T) {
	tl := New(NewWallClock())
	var at time.Time
	start := time.Now()
	tl.At(30*time.Millisecond, func() { at = time.Now() })

	require.NoError(t, tl.Run(context.Background()))
	assert.GreaterOrEqual(t, at.Sub(start), 30*time.Millisecond)
}

func TestWallClock_ContextCancel(t *testing.T) {
	c := NewWallClock()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := c.Until(ctx, time.Hour)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAnimate_TickSchedule(t *testing.T) {
	tl := New(nil)
	type tick struct {
		at time.Duration
		t  float64
	}
	var ticks []tick
	var h *Handle
	tl.At(time.Second, func() {
		h = tl.Animate(Transition{
			Duration: 100 * time.Millisecond,
			Frame:    40 * time.Millisecond,
			Ease:     Linear,
			Tick:     func(t float64) { ticks = append(ticks, tick{tl.Now(), t}) },
		})
	})
	require.NoError(t, tl.Run(context.Background()))

	require.Len(t, ticks, 4)
	want := []tick{
		{1000 * time.Millisecond, 0},
		{1040 * time.Millisecond, 0.4},
		{1080 * time.Millisecond, 0.8},
		{1100 * time.Millisecond, 1},
	}
	for i := range want {
		assert.Equal(t, want[i].at, ticks[i].at, "tick %d", i)
		assert.InDelta(t, want[i].t, ticks[i].t, 1e-12, "tick %d", i)
	}
	assert.True(t, h.Done())
	assert.False(t, h.Cancelled())
	assert.Equal(t, 4, h.Ticks())
}

func TestAnimate_ExactFrameMultipleHasNoDuplicateFinalTick(t *testing.T) {
	tl := New(nil)
	var ts []float64
	tl.Animate(Transition{
		Duration: 1250 * time.Millisecond,
		Frame:    625 * time.Millisecond,
		Ease:     Linear,
		Tick:     func(t float64) { ts = append(ts, t) },
	})
	require.NoError(t, tl.Run(context.Background()))
	assert.Equal(t, []float64{0, 0.5, 1}, ts)
}

func TestAnimate_DefaultFrameAndEase(t *testing.T) {
	tl := New(nil)
	var ts []float64
	h := tl.Animate(Transition{Duration: 1250 * time.Millisecond, Tick: func(t float64) { ts = append(ts, t) }})
	require.NoError(t, tl.Run(context.Background()))

	// 0, 40, ..., 1240 and the final tick at 1250.
	assert.Len(t, ts, 33)
	assert.Equal(t, 33, h.Ticks())
	assert.Equal(t, float64(0), ts[0])
	assert.Equal(t, float64(1), ts[len(ts)-1])
	assert.Equal(t, 1250*time.Millisecond, tl.Now())
}

func TestAnimate_ZeroDurationTicksOnceAtOne(t *testing.T) {
	tl := New(nil)
	var ts []float64
	tl.Animate(Transition{Tick: func(t float64) { ts = append(ts, t) }})
	require.NoError(t, tl.Run(context.Background()))
	assert.Equal(t, []float64{1}, ts)
}

func TestAnimate_Cancel(t *testing.T) {
	tl := New(nil)
	var ts []float64
	h := tl.Animate(Transition{
		Duration: time.Second,
		Frame:    100 * time.Millisecond,
		Ease:     Linear,
		Tick:     func(t float64) { ts = append(ts, t) },
	})
	tl.At(250*time.Millisecond, h.Cancel)
	require.NoError(t, tl.Run(context.Background()))

	assert.Equal(t, []float64{0, 0.1, 0.2}, ts)
	assert.True(t, h.Done())
	assert.True(t, h.Cancelled())

	h.Cancel()
	assert.True(t, h.Cancelled())
}

func TestCubicInOut(t *testing.T) {
	assert.Equal(t, 0.0, CubicInOut(0))
	assert.Equal(t, 0.5, CubicInOut(0.5))
	assert.Equal(t, 1.0, CubicInOut(1))
	assert.InDelta(t, 0.0625, CubicInOut(0.25), 1e-12)
	assert.InDelta(t, 0.9375, CubicInOut(0.75), 1e-12)
}

func TestEaseByName(t *testing.T) {
	e, err := EaseByName("Linear")
	require.NoError(t, err)
	assert.Equal(t, 0.3, e(0.3))

	e, err = EaseByName("cubic")
	require.NoError(t, err)
	assert.InDelta(t, 0.0625, e(0.25), 1e-12)

	_, err = EaseByName("bounce")
	assert.Error(t, err)
}
