package sequence

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/roach88/circuitglobe/internal/dataset"
	"github.com/roach88/circuitglobe/internal/geo"
	"github.com/roach88/circuitglobe/internal/render"
	"github.com/roach88/circuitglobe/internal/timeline"
)

// Scene draws one frame. *render.Renderer implements it.
type Scene interface {
	Render(rot geo.Rotation, h render.Highlight)
}

// Default timings.
const (
	DefaultInterval = 2 * time.Second
	DefaultDuration = 1250 * time.Millisecond
)

// Options tune the tour.
type Options struct {
	// Interval separates step starts. Step i starts at i*Interval.
	Interval time.Duration

	// Duration is the length of each rotation transition.
	Duration time.Duration

	// Frame is the spacing of transition ticks.
	Frame time.Duration

	// Ease shapes transition progress; cubic in-out when nil.
	Ease timeline.Ease

	// Tilt is the on-screen latitude of the focused circuit.
	Tilt float64

	// IDs generates the session id; UUIDv7 when nil.
	IDs IDGenerator
}

// DefaultOptions returns the reference timings.
func DefaultOptions() Options {
	return Options{
		Interval: DefaultInterval,
		Duration: DefaultDuration,
		Frame:    timeline.DefaultFrame,
		Ease:     timeline.CubicInOut,
		Tilt:     TiltBias,
	}
}

// Sequencer schedules the tour on a timeline and animates the scene.
type Sequencer struct {
	tl       *timeline.Timeline
	scene    Scene
	status   StatusDisplay
	circuits []dataset.Circuit
	opts     Options

	session     *Session
	active      *timeline.Handle
	interrupted int
	started     bool
	logger      *slog.Logger
}

// New returns a Sequencer for circuits. Nothing happens until Start.
func New(tl *timeline.Timeline, scene Scene, status StatusDisplay, circuits []dataset.Circuit, opts Options) *Sequencer {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Duration <= 0 {
		opts.Duration = DefaultDuration
	}
	if opts.Frame <= 0 {
		opts.Frame = timeline.DefaultFrame
	}
	if opts.Ease == nil {
		opts.Ease = timeline.CubicInOut
	}
	if opts.IDs == nil {
		opts.IDs = UUIDv7Generator{}
	}
	if status == nil {
		status = LogStatus{}
	}
	session := &Session{ID: opts.IDs.Generate()}
	return &Sequencer{
		tl:       tl,
		scene:    scene,
		status:   status,
		circuits: circuits,
		opts:     opts,
		session:  session,
		logger:   slog.Default().With("session", session.ID),
	}
}

// Session returns the tour state.
func (s *Sequencer) Session() *Session { return s.session }

// Interrupted returns how many transitions a later step cut short.
func (s *Sequencer) Interrupted() int { return s.interrupted }

// Plan returns the steps Start schedules.
func (s *Sequencer) Plan() []Step {
	return PlanTilted(s.circuits, s.opts.Interval, s.opts.Tilt)
}

// End returns the offset at which the last transition finishes.
func (s *Sequencer) End() time.Duration {
	if len(s.circuits) == 0 {
		return 0
	}
	return time.Duration(len(s.circuits)-1)*s.opts.Interval + s.opts.Duration
}

// Start renders the plain globe once and schedules every step at its
// offset from now. Once ctx is done no further step starts and running
// transitions stop at their next tick. Start may only be called once.
func (s *Sequencer) Start(ctx context.Context) error {
	if s.started {
		return errors.New("sequencer already started")
	}
	s.started = true

	s.scene.Render(s.session.Rotation, render.Highlight{})

	base := s.tl.Now()
	for _, step := range s.Plan() {
		step := step
		loc := step.Circuit.Location()
		step.Arc = nil
		if prev := s.session.Previous; prev != nil {
			step.Arc = &geo.Arc{From: *prev, To: loc}
		}
		s.session.Previous = &loc
		s.tl.At(base+step.At, func() { s.fire(ctx, step) })
	}
	s.logger.Info("tour scheduled", "steps", len(s.circuits), "interval", s.opts.Interval, "duration", s.opts.Duration)
	return nil
}

func (s *Sequencer) fire(ctx context.Context, step Step) {
	if ctx.Err() != nil {
		return
	}
	c := step.Circuit
	s.status.SetStatus(StatusText(c))

	if s.active != nil && !s.active.Done() {
		s.active.Cancel()
		s.interrupted++
		s.logger.Warn("transition interrupted", "step", step.Index)
	}

	loc := c.Location()
	h := render.Highlight{
		Country:  c.Country,
		Location: &loc,
		Label:    c.Name,
		Arc:      step.Arc,
	}
	interp := Interpolate(s.session.Rotation, step.Target)
	s.logger.Debug("step started", "step", step.Index, "circuit", c.Name, "from", s.session.Rotation, "to", step.Target)

	s.active = s.tl.Animate(timeline.Transition{
		Duration: s.opts.Duration,
		Frame:    s.opts.Frame,
		Ease:     s.opts.Ease,
		Tick: func(t float64) {
			if ctx.Err() != nil {
				return
			}
			s.session.Rotation = interp(t)
			s.scene.Render(s.session.Rotation, h)
		},
	})
}
