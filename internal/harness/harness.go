package harness

import (
	"context"
	"fmt"

	"github.com/roach88/circuitglobe/internal/geo"
	"github.com/roach88/circuitglobe/internal/render"
	"github.com/roach88/circuitglobe/internal/sequence"
	"github.com/roach88/circuitglobe/internal/timeline"
)

// recorder stands in for the scene and the status line and records every
// call with its timeline offset.
type recorder struct {
	tl     *timeline.Timeline
	events []TraceEvent
}

func (r *recorder) Render(rot geo.Rotation, h render.Highlight) {
	r.events = append(r.events, TraceEvent{
		Type:     EventRender,
		At:       r.tl.Now(),
		Rotation: rot,
		Country:  h.Country,
		Marker:   h.Location,
		Arc:      h.Arc,
		Label:    h.Label,
	})
}

func (r *recorder) SetStatus(text string) {
	r.events = append(r.events, TraceEvent{Type: EventStatus, At: r.tl.Now(), Text: text})
}

// Run plays a scenario on virtual time and evaluates its assertions.
//
// Execution flow:
// 1. Load the circuits and build the sequencer options
// 2. Start the sequencer on a fresh timeline
// 3. Run the timeline until no event is left
// 4. Evaluate assertions against the recorded trace
//
// An error means the scenario could not be played; failed assertions are
// reported in the Result.
func Run(scenario *Scenario) (*Result, error) {
	circuits, err := scenario.LoadCircuits()
	if err != nil {
		return nil, fmt.Errorf("failed to load circuits: %w", err)
	}
	opts, err := scenario.Options()
	if err != nil {
		return nil, fmt.Errorf("invalid timing: %w", err)
	}

	ctx := context.Background()
	tl := timeline.New(timeline.VirtualClock{})
	rec := &recorder{tl: tl}
	seq := sequence.New(tl, rec, rec, circuits, opts)
	if err := seq.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start tour: %w", err)
	}
	if err := tl.Run(ctx); err != nil {
		return nil, fmt.Errorf("failed to play tour: %w", err)
	}

	result := NewResult()
	result.Session = seq.Session().ID
	result.Plan = seq.Plan()
	result.Trace = append(result.Trace, rec.events...)
	result.Interrupted = seq.Interrupted()
	result.Final = seq.Session().Rotation

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}
