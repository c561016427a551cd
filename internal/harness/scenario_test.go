package harness

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/circuitglobe/internal/sequence"
	"github.com/roach88/circuitglobe/internal/timeline"
)

const minimal = `
name: minimal
description: "one circuit"
circuits:
  - {country: Italy, name: Monza, lat: 45.6, lng: 9.3}
assertions:
  - type: render_count
    count: 2
`

func TestLoadScenario(t *testing.T) {
	s := loadScenario(t, "reference_tour")

	assert.Equal(t, "reference_tour", s.Name)
	assert.Equal(t, "session-1", s.SessionID)
	assert.Equal(t, 2*time.Second, s.Timing.Interval)
	assert.Equal(t, 1250*time.Millisecond, s.Timing.Duration)
	assert.Equal(t, 625*time.Millisecond, s.Timing.Frame)
	assert.Equal(t, "linear", s.Timing.Ease)
	require.Len(t, s.Circuits, 3)
	assert.Equal(t, CircuitRow{Country: "Bravia", Name: "Bravo Park", Lat: -5, Lng: 30, YearsActive: "1970"}, s.Circuits[1])
	require.Len(t, s.Assertions, 13)
	assert.Equal(t, []float64{20, 10}, s.Assertions[4].From)
}

func TestLoadScenario_ResolvesCircuitsFile(t *testing.T) {
	s := loadScenario(t, "from_file")
	assert.Equal(t, filepath.Join("testdata", "scenarios", "circuits.csv"), s.CircuitsFile)
}

func TestLoadScenario_Missing(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/nope.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestScenario_Options(t *testing.T) {
	s, err := ParseScenario([]byte(minimal))
	require.NoError(t, err)

	opts, err := s.Options()
	require.NoError(t, err)
	def := sequence.DefaultOptions()
	assert.Equal(t, def.Interval, opts.Interval)
	assert.Equal(t, def.Duration, opts.Duration)
	assert.Equal(t, timeline.DefaultFrame, opts.Frame)
	assert.Equal(t, sequence.TiltBias, opts.Tilt)
	assert.Equal(t, DefaultSessionID, opts.IDs.Generate())
	assert.InDelta(t, timeline.CubicInOut(0.25), opts.Ease(0.25), 1e-12)

	tilt := 0.0
	s.Timing = Timing{Interval: time.Second, Ease: "linear", Tilt: &tilt}
	opts, err = s.Options()
	require.NoError(t, err)
	assert.Equal(t, time.Second, opts.Interval)
	assert.Zero(t, opts.Tilt)
	assert.Equal(t, 0.25, opts.Ease(0.25))
}

func TestScenario_LoadCircuitsInline(t *testing.T) {
	s, err := ParseScenario([]byte(minimal))
	require.NoError(t, err)

	circuits, err := s.LoadCircuits()
	require.NoError(t, err)
	require.Len(t, circuits, 1)
	assert.Equal(t, "Monza", circuits[0].Name)
	assert.Equal(t, 9.3, circuits[0].Lng)
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown field",
			yaml:    minimal + "assertion: []\n",
			wantErr: "failed to parse YAML",
		},
		{
			name: "missing name",
			yaml: `
description: d
circuits: [{name: a}]
assertions: [{type: interrupted}]
`,
			wantErr: "name is required",
		},
		{
			name: "missing description",
			yaml: `
name: n
circuits: [{name: a}]
assertions: [{type: interrupted}]
`,
			wantErr: "description is required",
		},
		{
			name: "no circuits",
			yaml: `
name: n
description: d
assertions: [{type: interrupted}]
`,
			wantErr: "circuits or circuits_file is required",
		},
		{
			name: "both circuit sources",
			yaml: `
name: n
description: d
circuits: [{name: a}]
circuits_file: c.csv
assertions: [{type: interrupted}]
`,
			wantErr: "mutually exclusive",
		},
		{
			name: "unnamed circuit",
			yaml: `
name: n
description: d
circuits: [{country: X}]
assertions: [{type: interrupted}]
`,
			wantErr: "circuits[0]: name is required",
		},
		{
			name: "unknown ease",
			yaml: `
name: n
description: d
timing: {ease: bounce}
circuits: [{name: a}]
assertions: [{type: interrupted}]
`,
			wantErr: "unknown easing",
		},
		{
			name: "negative interval",
			yaml: `
name: n
description: d
timing: {interval: -1s}
circuits: [{name: a}]
assertions: [{type: interrupted}]
`,
			wantErr: "must not be negative",
		},
		{
			name: "no assertions",
			yaml: `
name: n
description: d
circuits: [{name: a}]
`,
			wantErr: "assertions list is required",
		},
		{
			name: "unknown assertion",
			yaml: `
name: n
description: d
circuits: [{name: a}]
assertions: [{type: trace_contains}]
`,
			wantErr: `unknown assertion type "trace_contains"`,
		},
		{
			name: "arc without endpoints",
			yaml: `
name: n
description: d
circuits: [{name: a}]
assertions: [{type: arc, step: 1, from: [1, 2]}]
`,
			wantErr: "from and to must be [lng, lat]",
		},
		{
			name: "arc none with endpoints",
			yaml: `
name: n
description: d
circuits: [{name: a}]
assertions: [{type: arc, none: true, from: [1, 2]}]
`,
			wantErr: "none excludes from/to",
		},
		{
			name: "short rotation",
			yaml: `
name: n
description: d
circuits: [{name: a}]
assertions: [{type: target, rotation: [1]}]
`,
			wantErr: "rotation needs 2 or 3 values",
		},
		{
			name: "empty status order",
			yaml: `
name: n
description: d
circuits: [{name: a}]
assertions: [{type: status_order}]
`,
			wantErr: "statuses list is required",
		},
		{
			name: "negative step",
			yaml: `
name: n
description: d
circuits: [{name: a}]
assertions: [{type: step_at, step: -1, at: 0s}]
`,
			wantErr: "step must be non-negative",
		},
		{
			name: "negative count",
			yaml: `
name: n
description: d
circuits: [{name: a}]
assertions: [{type: render_count, count: -2}]
`,
			wantErr: "count must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
