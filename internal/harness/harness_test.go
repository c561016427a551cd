package harness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/circuitglobe/internal/geo"
)

func offsets(events []TraceEvent) []time.Duration {
	out := make([]time.Duration, len(events))
	for i, e := range events {
		out[i] = e.At
	}
	return out
}

func loadScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario("testdata/scenarios/" + name + ".yaml")
	require.NoError(t, err)
	return s
}

func TestRun_ReferenceTour(t *testing.T) {
	result, err := RunWithGolden(t, loadScenario(t, "reference_tour"))
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "session-1", result.Session)
	assert.Equal(t,
		[]time.Duration{0, 2 * time.Second, 4 * time.Second},
		offsets(result.Statuses()))
	assert.Equal(t, 10, result.Renders())
	assert.Equal(t, geo.Rotation{0, 20, 0}, result.Final)
	require.Len(t, result.Plan, 3)
}

func TestRun_OverlappingSteps(t *testing.T) {
	result, err := Run(loadScenario(t, "overlapping_steps"))
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, DefaultSessionID, result.Session)
	assert.Equal(t, 1, result.Interrupted)
}

func TestRun_CircuitsFile(t *testing.T) {
	result, err := Run(loadScenario(t, "from_file"))
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Plan, 3)
	assert.Equal(t, "Silverstone Circuit", result.Plan[2].Circuit.Name)
}

func TestRun_MissingCircuitsFile(t *testing.T) {
	s := loadScenario(t, "from_file")
	s.CircuitsFile = "testdata/scenarios/missing.csv"

	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load circuits")
}

func TestRun_FailedAssertions(t *testing.T) {
	s := loadScenario(t, "reference_tour")
	s.Assertions = []Assertion{
		{Type: AssertStepAt, Step: 1, At: 3 * time.Second},
		{Type: AssertStepAt, Step: 5, At: 0},
		{Type: AssertArc, Step: 1, None: true},
		{Type: AssertArc, Step: 0, From: []float64{0, 0}, To: []float64{1, 1}},
		{Type: AssertTarget, Step: 1, Rotation: []float64{-30, 20}},
		{Type: AssertTarget, Step: 9, Rotation: []float64{0, 0}},
		{Type: AssertStatusOrder, Statuses: []string{
			"Country: Charlia | Circuit: Charlie Oval | Years Active: 2001-2024",
			"Country: Aland | Circuit: Alpha Ring | Years Active: 1950-1960",
		}},
		{Type: AssertRenderCount, Count: 3},
		{Type: AssertInterrupted, Count: 2},
		{Type: AssertFinalRotation, Rotation: []float64{1, 2}},
	}

	result, err := Run(s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, len(s.Assertions))
	assert.Contains(t, result.Errors[0], "assertions[0]: Assertion failed: step_at")
	assert.Contains(t, result.Errors[0], "Actual: started at 2s")
	assert.Contains(t, result.Errors[1], "only 3 steps started")
	assert.Contains(t, result.Errors[2], "Actual: [[20,10],[30,-5]]")
	assert.Contains(t, result.Errors[3], "Actual: no arc")
	assert.Contains(t, result.Errors[4], "Actual: [-30,25,0]")
	assert.Contains(t, result.Errors[5], "tour has 3 steps")
	assert.Contains(t, result.Errors[6], "Alpha Ring")
	assert.Contains(t, result.Errors[7], "Actual: 10")
	assert.Contains(t, result.Errors[8], "Actual: 0")
	assert.Contains(t, result.Errors[9], "Actual: [0,20,0]")
}

func TestResult_AddError(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Pass)

	r.AddError("boom")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"boom"}, r.Errors)
}

func TestTraceEvent_String(t *testing.T) {
	loc := geo.LngLat{Lng: 20, Lat: 10}
	render := TraceEvent{
		Type:     EventRender,
		At:       625 * time.Millisecond,
		Rotation: geo.Rotation{-10, 5, 0},
		Country:  "Aland",
		Marker:   &loc,
		Label:    "Alpha Ring",
	}
	assert.Equal(t,
		`625ms render rot=[-10,5,0] country="Aland" marker=[20,10] arc=none label="Alpha Ring"`,
		render.String())

	status := TraceEvent{Type: EventStatus, At: 2 * time.Second, Text: "Country: X"}
	assert.Equal(t, `2s status "Country: X"`, status.String())
}

func TestSnapshot(t *testing.T) {
	r := NewResult()
	r.Session = "s"
	r.Trace = []TraceEvent{{Type: EventStatus, Text: "hi"}}
	assert.Equal(t, "session s\n0s status \"hi\"\n", string(Snapshot(r)))
}
