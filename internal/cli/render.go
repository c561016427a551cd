package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/circuitglobe/internal/config"
	"github.com/roach88/circuitglobe/internal/dataset"
	"github.com/roach88/circuitglobe/internal/globe"
	"github.com/roach88/circuitglobe/internal/output"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Out        string
	FramesDir  string
	NoProgress bool
}

// RenderResult is the summary printed after an offline render.
type RenderResult struct {
	Steps       int    `json:"steps"`
	Frames      int    `json:"frames"`
	Interrupted int    `json:"interrupted"`
	DurationMS  int64  `json:"duration_ms"`
	Out         string `json:"out,omitempty"`
	FramesDir   string `json:"frames_dir,omitempty"`
}

func (r RenderResult) String() string {
	var targets []string
	if r.Out != "" {
		targets = append(targets, r.Out)
	}
	if r.FramesDir != "" {
		targets = append(targets, r.FramesDir+"/")
	}
	return fmt.Sprintf("✓ Rendered %d circuits in %d frames (%s) to %s",
		r.Steps, r.Frames, time.Duration(r.DurationMS)*time.Millisecond, strings.Join(targets, ", "))
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the tour to an animated GIF or PNG frames",
		Long: `Render the circuit tour offline on a virtual clock.

Every frame of every transition is captured at its offset in the tour.
The animated GIF shows each frame until the next one; the last frame is
held for --hold.

The GIF is assembled in memory: every frame is kept as a paletted image
of width x height bytes until the tour ends. The shipped table of 24
circuits at 600x400 and 25 fps needs about 190 MB. Lower --fps, or write
only --frames-dir with --out "", for long tours or large sizes.

Example:
  circuitglobe render --out globe.gif
  circuitglobe render --frames-dir frames --width 1200 --height 800`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "globe.gif", "animated GIF output (empty to skip)")
	cmd.Flags().StringVar(&opts.FramesDir, "frames-dir", "", "also write numbered PNG frames to this directory")
	cmd.Flags().BoolVar(&opts.NoProgress, "no-progress", false, "do not draw a progress bar")
	addSceneFlags(cmd)
	cmd.Flags().Duration("hold", config.Default().Hold, "how long the last GIF frame is shown")
	cmd.Flags().Int("fps", config.Default().FPS, "transition frames per second")

	return cmd
}

// addSceneFlags registers the flags shared by render and serve. Their
// names match config keys.
func addSceneFlags(cmd *cobra.Command) {
	d := config.Default()
	cmd.Flags().Int("width", d.Width, "output width in pixels")
	cmd.Flags().Int("height", d.Height, "output height in pixels")
	cmd.Flags().Duration("interval", d.Interval, "time between circuits")
	cmd.Flags().Duration("duration", d.Duration, "rotation transition length")
	cmd.Flags().Float64("tilt", d.Tilt, "latitude at which the focused circuit is shown")
	cmd.Flags().String("ease", d.Easing, "transition easing (cubic|linear)")
}

func runRender(opts *RenderOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if opts.Out == "" && opts.FramesDir == "" {
		return opts.fail(cmd, CodeConfig, ExitCommandError, "nothing to render",
			errors.New("set --out or --frames-dir"))
	}

	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return err
	}
	mapper, err := opts.mapper(cmd, cfg)
	if err != nil {
		return err
	}
	style, err := cfg.RenderStyle()
	if err != nil {
		return opts.fail(cmd, CodeConfig, ExitCommandError, "invalid style", err)
	}
	seqOpts, err := cfg.SequenceOptions()
	if err != nil {
		return opts.fail(cmd, CodeConfig, ExitCommandError, "invalid timing", err)
	}

	var (
		sinks  output.Multi
		gifBuf bytes.Buffer
		gifOut *output.GIFWriter
	)
	if opts.Out != "" {
		gifOut = output.NewGIFWriter(&gifBuf, cfg.Hold)
		sinks = append(sinks, gifOut)
	}
	if opts.FramesDir != "" {
		pngs, err := output.NewPNGSequence(opts.FramesDir)
		if err != nil {
			return opts.fail(cmd, CodeOutput, ExitFailure, "failed to prepare frames dir", err)
		}
		sinks = append(sinks, pngs)
	}
	var sink output.Sink = sinks
	if !opts.NoProgress && opts.Format == "text" {
		sink = output.NewProgress(sinks, -1, "rendering", cmd.ErrOrStderr())
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	formatter.VerboseLog("Loading %s and %s", cfg.World, cfg.Circuits)
	res, err := globe.Run(ctx, globe.Options{
		Source:     &dataset.Loader{World: cfg.World, Circuits: cfg.Circuits},
		Mapper:     mapper,
		Width:      cfg.Width,
		Height:     cfg.Height,
		Projection: cfg.Projection(),
		Style:      style,
		Sequence:   seqOpts,
		Frames: func(at time.Duration, img image.Image) error {
			return sink.WriteFrame(output.Frame{At: at, Image: img})
		},
	})
	if err != nil {
		_ = sink.Close()
		switch {
		case errors.Is(err, dataset.ErrDataLoad):
			return opts.fail(cmd, CodeDataLoad, ExitCommandError, "failed to load data", err)
		case errors.Is(err, context.Canceled):
			return opts.fail(cmd, CodeOutput, ExitFailure, "render interrupted", err)
		default:
			return opts.fail(cmd, CodeOutput, ExitFailure, "render failed", err)
		}
	}

	if err := sink.Close(); err != nil {
		return opts.fail(cmd, CodeOutput, ExitFailure, "failed to write output", err)
	}
	if gifOut != nil {
		if err := os.WriteFile(opts.Out, gifBuf.Bytes(), 0o644); err != nil {
			return opts.fail(cmd, CodeOutput, ExitFailure, "failed to write output", err)
		}
	}

	return formatter.SuccessWithSession(res.SessionID, RenderResult{
		Steps:       res.Steps,
		Frames:      res.Frames,
		Interrupted: res.Interrupted,
		DurationMS:  (res.End + cfg.Hold).Milliseconds(),
		Out:         opts.Out,
		FramesDir:   opts.FramesDir,
	})
}
