package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/circuitglobe/internal/dataset"
	"github.com/roach88/circuitglobe/internal/sequence"
)

// PlanStep is one scheduled step in command output.
type PlanStep struct {
	Index    int          `json:"index"`
	AtMS     int64        `json:"at_ms"`
	Country  string       `json:"country"`
	Circuit  string       `json:"circuit"`
	Location [2]float64   `json:"location"`
	Target   [3]float64   `json:"target"`
	Arc      [][2]float64 `json:"arc,omitempty"`
	Status   string       `json:"status"`

	step sequence.Step
}

// PlanResult is the tour schedule.
type PlanResult struct {
	Steps []PlanStep `json:"steps"`
}

func (r PlanResult) String() string {
	if len(r.Steps) == 0 {
		return "No circuits to visit"
	}
	lines := make([]string, len(r.Steps))
	for i, s := range r.Steps {
		lines[i] = s.step.String()
	}
	return strings.Join(lines, "\n")
}

// NewPlanCommand creates the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the tour schedule",
		Long: `Print when each circuit is visited, the rotation the globe turns to
and the arc drawn from the previous circuit. Only the circuits table is
loaded.

Example:
  circuitglobe plan --circuits circuits_new.csv
  circuitglobe plan --format json --interval 3s`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(rootOpts, cmd)
		},
	}

	d := sequence.DefaultOptions()
	cmd.Flags().Duration("interval", d.Interval, "time between circuits")
	cmd.Flags().Float64("tilt", d.Tilt, "latitude at which the focused circuit is shown")

	return cmd
}

func runPlan(opts *RootOptions, cmd *cobra.Command) error {
	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	loader := &dataset.Loader{Circuits: cfg.Circuits}
	circuits, err := loader.LoadCircuits(ctx)
	if err != nil {
		return opts.fail(cmd, CodeDataLoad, ExitCommandError, "failed to load data", err)
	}

	steps := sequence.PlanTilted(circuits, cfg.Interval, cfg.Tilt)
	result := PlanResult{Steps: make([]PlanStep, len(steps))}
	for i, s := range steps {
		ps := PlanStep{
			Index:    s.Index,
			AtMS:     s.At.Milliseconds(),
			Country:  s.Circuit.Country,
			Circuit:  s.Circuit.Name,
			Location: s.Circuit.Location().Pair(),
			Target:   [3]float64(s.Target),
			Status:   sequence.StatusText(s.Circuit),
			step:     s,
		}
		if s.Arc != nil {
			ps.Arc = s.Arc.Coordinates()
		}
		result.Steps[i] = ps
	}
	return opts.formatter(cmd).Success(result)
}
