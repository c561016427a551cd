package cli

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/circuitglobe/internal/dataset"
	"github.com/roach88/circuitglobe/internal/globe"
	"github.com/roach88/circuitglobe/internal/server"
	"github.com/roach88/circuitglobe/internal/timeline"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions

	// Once stops the server when the tour ends instead of serving the
	// final frame until interrupted.
	Once bool
}

// ServeResult is the summary printed when the server stops.
type ServeResult struct {
	Steps       int    `json:"steps"`
	Frames      int    `json:"frames"`
	Interrupted int    `json:"interrupted"`
	Addr        string `json:"addr"`
}

func (r ServeResult) String() string {
	return fmt.Sprintf("✓ Played %d circuits (%d frames) on %s", r.Steps, r.Frames, r.Addr)
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Play the tour live in the browser",
		Long: `Serve a page that shows the globe while the tour plays in real time.

Frames are pushed to every connected browser over a websocket together
with the status line of the focused circuit. Viewers that connect late
get the latest frame and status immediately.

Example:
  circuitglobe serve --addr :8080
  circuitglobe serve --circuits ./circuits_new.csv --interval 3s`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&opts.Once, "once", false, "exit when the tour ends")
	addSceneFlags(cmd)

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
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

	ctx, cancel := signalContext(cmd)
	defer cancel()

	srv := server.New()
	g, gctx := errgroup.WithContext(ctx)
	// serveCtx outlives a finished tour unless --once is set.
	serveCtx, stopServing := context.WithCancel(gctx)
	defer stopServing()

	g.Go(func() error {
		return srv.ListenAndServe(serveCtx, cfg.Addr)
	})

	var res *globe.Result
	g.Go(func() error {
		var err error
		res, err = globe.Run(gctx, globe.Options{
			Source:     &dataset.Loader{World: cfg.World, Circuits: cfg.Circuits},
			Mapper:     mapper,
			Width:      cfg.Width,
			Height:     cfg.Height,
			Projection: cfg.Projection(),
			Style:      style,
			Sequence:   seqOpts,
			Clock:      timeline.NewWallClock(),
			Frames: func(_ time.Duration, img image.Image) error {
				return srv.PublishFrame(img)
			},
			Status: srv,
		})
		if err != nil {
			return err
		}
		slog.Info("tour finished", "viewers", srv.Clients(), "dropped", srv.Dropped())
		if opts.Once {
			stopServing()
		}
		return nil
	})

	err = g.Wait()
	switch {
	case err == nil:
	case errors.Is(err, dataset.ErrDataLoad):
		return opts.fail(cmd, CodeDataLoad, ExitCommandError, "failed to load data", err)
	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		// Interrupted by signal or parent context.
	default:
		return opts.fail(cmd, CodeOutput, ExitFailure, "serve failed", err)
	}

	if res == nil {
		return nil
	}
	return opts.formatter(cmd).SuccessWithSession(res.SessionID, ServeResult{
		Steps:       res.Steps,
		Frames:      res.Frames,
		Interrupted: res.Interrupted,
		Addr:        cfg.Addr,
	})
}
