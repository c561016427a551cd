package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/circuitglobe/internal/dataset"
	"github.com/roach88/circuitglobe/internal/sequence"
	"github.com/roach88/circuitglobe/internal/timeline"
)

// DefaultSessionID is used when a scenario does not fix one.
const DefaultSessionID = "test-session"

// Scenario describes one tour and what must hold after playing it.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// SessionID fixes the session id for golden comparison.
	SessionID string `yaml:"session_id,omitempty"`

	Timing Timing `yaml:"timing,omitempty"`

	// Circuits lists the tour inline. Exactly one of Circuits and
	// CircuitsFile is set.
	Circuits []CircuitRow `yaml:"circuits,omitempty"`

	// CircuitsFile names a circuits CSV table. Relative paths are resolved
	// against the scenario file's directory.
	CircuitsFile string `yaml:"circuits_file,omitempty"`

	Assertions []Assertion `yaml:"assertions"`
}

// Timing overrides the sequencer defaults. Zero fields keep the default.
type Timing struct {
	Interval time.Duration `yaml:"interval,omitempty"`
	Duration time.Duration `yaml:"duration,omitempty"`
	Frame    time.Duration `yaml:"frame,omitempty"`
	Ease     string        `yaml:"ease,omitempty"`
	Tilt     *float64      `yaml:"tilt,omitempty"`
}

// CircuitRow is one inline circuit.
type CircuitRow struct {
	Country     string  `yaml:"country"`
	Name        string  `yaml:"name"`
	Lat         float64 `yaml:"lat"`
	Lng         float64 `yaml:"lng"`
	YearsActive string  `yaml:"years_active,omitempty"`
}

// Assertion checks one property of a Result. Which fields apply depends
// on Type.
type Assertion struct {
	Type string `yaml:"type"`

	// Step is the tour index (step_at, arc, target).
	Step int `yaml:"step,omitempty"`

	// At is the expected start offset (step_at).
	At time.Duration `yaml:"at,omitempty"`

	// From and To are [lng, lat] arc endpoints; None expects no arc (arc).
	From []float64 `yaml:"from,omitempty"`
	To   []float64 `yaml:"to,omitempty"`
	None bool      `yaml:"none,omitempty"`

	// Rotation lists lambda, phi and optionally gamma (target,
	// final_rotation).
	Rotation []float64 `yaml:"rotation,omitempty"`

	// Statuses is the expected status order (status_order).
	Statuses []string `yaml:"statuses,omitempty"`

	// Count is the expected number (render_count, interrupted).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertStepAt        = "step_at"
	AssertArc           = "arc"
	AssertTarget        = "target"
	AssertStatusOrder   = "status_order"
	AssertRenderCount   = "render_count"
	AssertInterrupted   = "interrupted"
	AssertFinalRotation = "final_rotation"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	s, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	if s.CircuitsFile != "" && !filepath.IsAbs(s.CircuitsFile) {
		s.CircuitsFile = filepath.Join(filepath.Dir(path), s.CircuitsFile)
	}
	return s, nil
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // catches "assertion:" vs "assertions:"
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

// LoadCircuits returns the tour, reading CircuitsFile when set.
func (s *Scenario) LoadCircuits() ([]dataset.Circuit, error) {
	if s.CircuitsFile != "" {
		f, err := os.Open(s.CircuitsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open circuits: %w", err)
		}
		defer f.Close()
		circuits, err := dataset.ParseCircuits(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.CircuitsFile, err)
		}
		return circuits, nil
	}

	circuits := make([]dataset.Circuit, len(s.Circuits))
	for i, row := range s.Circuits {
		circuits[i] = dataset.Circuit{
			Country:     row.Country,
			Name:        row.Name,
			Lat:         row.Lat,
			Lng:         row.Lng,
			YearsActive: row.YearsActive,
		}
	}
	return circuits, nil
}

// Options returns the sequencer options the scenario runs with.
func (s *Scenario) Options() (sequence.Options, error) {
	opts := sequence.DefaultOptions()
	if s.Timing.Interval > 0 {
		opts.Interval = s.Timing.Interval
	}
	if s.Timing.Duration > 0 {
		opts.Duration = s.Timing.Duration
	}
	if s.Timing.Frame > 0 {
		opts.Frame = s.Timing.Frame
	}
	if s.Timing.Tilt != nil {
		opts.Tilt = *s.Timing.Tilt
	}
	ease, err := timeline.EaseByName(s.Timing.Ease)
	if err != nil {
		return sequence.Options{}, err
	}
	opts.Ease = ease

	id := s.SessionID
	if id == "" {
		id = DefaultSessionID
	}
	opts.IDs = sequence.NewFixedGenerator(id)
	return opts, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case len(s.Circuits) == 0 && s.CircuitsFile == "":
		return fmt.Errorf("circuits or circuits_file is required")
	case len(s.Circuits) > 0 && s.CircuitsFile != "":
		return fmt.Errorf("circuits and circuits_file are mutually exclusive")
	}
	for i, c := range s.Circuits {
		if c.Name == "" {
			return fmt.Errorf("circuits[%d]: name is required", i)
		}
	}

	if s.Timing.Interval < 0 || s.Timing.Duration < 0 || s.Timing.Frame < 0 {
		return fmt.Errorf("timing: durations must not be negative")
	}
	if _, err := timeline.EaseByName(s.Timing.Ease); err != nil {
		return fmt.Errorf("timing: %w", err)
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Step < 0 {
		return fmt.Errorf("assertions[%d]: step must be non-negative", index)
	}

	switch a.Type {
	case AssertStepAt:
		if a.At < 0 {
			return fmt.Errorf("assertions[%d]: at must be non-negative for step_at", index)
		}
	case AssertArc:
		if a.None {
			if a.From != nil || a.To != nil {
				return fmt.Errorf("assertions[%d]: none excludes from/to for arc", index)
			}
			break
		}
		if len(a.From) != 2 || len(a.To) != 2 {
			return fmt.Errorf("assertions[%d]: from and to must be [lng, lat] for arc", index)
		}
	case AssertTarget, AssertFinalRotation:
		if len(a.Rotation) < 2 || len(a.Rotation) > 3 {
			return fmt.Errorf("assertions[%d]: rotation needs 2 or 3 values for %s", index, a.Type)
		}
	case AssertStatusOrder:
		if len(a.Statuses) == 0 {
			return fmt.Errorf("assertions[%d]: statuses list is required for status_order", index)
		}
	case AssertRenderCount, AssertInterrupted:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
