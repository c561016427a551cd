// Package globe wires the tour together: it loads the data, builds the
// renderer and the sequencer, and runs the timeline to completion.
package globe

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/roach88/circuitglobe/internal/dataset"
	"github.com/roach88/circuitglobe/internal/geo"
	"github.com/roach88/circuitglobe/internal/names"
	"github.com/roach88/circuitglobe/internal/render"
	"github.com/roach88/circuitglobe/internal/sequence"
	"github.com/roach88/circuitglobe/internal/timeline"
)

// Source provides the dataset. *dataset.Loader implements it.
type Source interface {
	Load(ctx context.Context) (*dataset.Dataset, error)
}

// FrameFunc receives every rendered frame with its timeline offset. An
// error stops the run.
type FrameFunc func(at time.Duration, img image.Image) error

// Options configure a run.
type Options struct {
	Source Source

	// Mapper resolves country aliases; the embedded table when nil.
	Mapper *names.Mapper

	Width, Height int
	Projection    geo.Orthographic
	Style         render.Style
	Sequence      sequence.Options

	// Clock drives the timeline; virtual time when nil.
	Clock timeline.Clock

	// Canvas overrides the raster canvas. Frames are only captured from
	// canvases that can take a snapshot.
	Canvas render.Canvas

	Frames FrameFunc
	Status sequence.StatusDisplay
	Logger *slog.Logger
}

// Result summarizes a completed run.
type Result struct {
	SessionID   string
	Steps       int
	Frames      int
	Renders     int
	Interrupted int
	End         time.Duration
}

type snapshotter interface {
	Snapshot() *image.RGBA
}

// scene renders on the renderer and hands the canvas to the frame
// function. It only runs inside timeline callbacks.
type scene struct {
	renderer *render.Renderer
	tl       *timeline.Timeline
	frames   FrameFunc
	cancel   context.CancelFunc

	renders  int
	captured int
	err      error
}

func (s *scene) Render(rot geo.Rotation, h render.Highlight) {
	if s.err != nil {
		return
	}
	s.renderer.Render(rot, h)
	s.renders++
	if s.frames == nil {
		return
	}
	snap, ok := s.renderer.Canvas().(snapshotter)
	if !ok {
		return
	}
	if err := s.frames(s.tl.Now(), snap.Snapshot()); err != nil {
		s.err = fmt.Errorf("writing frame at %s: %w", s.tl.Now(), err)
		s.cancel()
		return
	}
	s.captured++
}

// Run loads the data and plays the tour. A load failure is logged once as
// "error loading data" and returned before anything is drawn.
func Run(ctx context.Context, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Source == nil {
		return nil, errors.New("no data source")
	}

	ds, err := opts.Source.Load(ctx)
	if err != nil {
		logger.Error("error loading data", "error", err)
		return nil, err
	}
	logger.Info("data loaded", "countries", len(ds.Countries), "circuits", len(ds.Circuits))

	mapper := opts.Mapper
	if mapper == nil {
		if mapper, err = names.Default(); err != nil {
			return nil, err
		}
	}

	canvas := opts.Canvas
	if canvas == nil {
		face, err := render.LabelFace(opts.Style.LabelSize)
		if err != nil {
			return nil, err
		}
		if canvas, err = render.NewGGCanvas(opts.Width, opts.Height, face); err != nil {
			return nil, err
		}
	}

	renderer := render.New(canvas, opts.Projection,
		render.World{Countries: ds.Countries, Borders: ds.Borders}, mapper, opts.Style)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tl := timeline.New(opts.Clock)
	sc := &scene{renderer: renderer, tl: tl, frames: opts.Frames, cancel: cancel}
	status := opts.Status
	if status == nil {
		status = sequence.LogStatus{Logger: logger}
	}
	seq := sequence.New(tl, sc, status, ds.Circuits, opts.Sequence)
	if err := seq.Start(ctx); err != nil {
		return nil, err
	}

	runErr := tl.Run(ctx)
	if sc.err != nil {
		return nil, sc.err
	}
	res := &Result{
		SessionID:   seq.Session().ID,
		Steps:       len(ds.Circuits),
		Frames:      sc.captured,
		Renders:     sc.renders,
		Interrupted: seq.Interrupted(),
		End:         seq.End(),
	}
	if runErr != nil {
		return res, runErr
	}
	logger.Info("tour finished", "session", res.SessionID, "steps", res.Steps,
		"renders", res.Renders, "interrupted", res.Interrupted)
	return res, nil
}
