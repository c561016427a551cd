package sequence

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/circuitglobe/internal/dataset"
	"github.com/roach88/circuitglobe/internal/geo"
	"github.com/roach88/circuitglobe/internal/render"
	"github.com/roach88/circuitglobe/internal/timeline"
)

var tour = []dataset.Circuit{
	{Country: "Aland", Name: "Alpha Ring", Lat: 10, Lng: 20, YearsActive: "1950-1960"},
	{Country: "Bravia", Name: "Bravo Park", Lat: -5, Lng: 30, YearsActive: "1970"},
	{Country: "Charlia", Name: "Charlie Oval", Lat: 0, Lng: 0, YearsActive: "2001-2024"},
}

// tracer records scene and status calls with their timeline offsets.
type tracer struct {
	tl    *timeline.Timeline
	lines []string
	rots  []geo.Rotation
}

func (tr *tracer) Render(rot geo.Rotation, h render.Highlight) {
	marker, arc := "none", "none"
	if h.Location != nil {
		marker = h.Location.String()
	}
	if h.Arc != nil {
		arc = fmt.Sprintf("[%s,%s]", h.Arc.From, h.Arc.To)
	}
	tr.rots = append(tr.rots, rot)
	tr.lines = append(tr.lines, fmt.Sprintf("%s render rot=%s country=%q marker=%s arc=%s label=%q",
		tr.tl.Now(), rot, h.Country, marker, arc, h.Label))
}

func (tr *tracer) SetStatus(text string) {
	tr.lines = append(tr.lines, fmt.Sprintf("%s status %q", tr.tl.Now(), text))
}

func (tr *tracer) String() string {
	return strings.Join(tr.lines, "\n") + "\n"
}

func (tr *tracer) count(kind string) int {
	n := 0
	for _, l := range tr.lines {
		if strings.Contains(l, " "+kind+" ") {
			n++
		}
	}
	return n
}

func newTour(t *testing.T, circuits []dataset.Circuit, opts Options) (*Sequencer, *tracer, *timeline.Timeline) {
	t.Helper()
	tl := timeline.New(timeline.VirtualClock{})
	tr := &tracer{tl: tl}
	if opts.IDs == nil {
		opts.IDs = NewFixedGenerator("session-1")
	}
	return New(tl, tr, tr, circuits, opts), tr, tl
}

func TestPlan_OffsetsTargetsAndArcs(t *testing.T) {
	steps := Plan(tour, 2*time.Second)
	require.Len(t, steps, 3)

	assert.Equal(t, []time.Duration{0, 2 * time.Second, 4 * time.Second},
		[]time.Duration{steps[0].At, steps[1].At, steps[2].At})
	assert.Equal(t, geo.Rotation{-20, 10, 0}, steps[0].Target)
	assert.Equal(t, geo.Rotation{-30, 25, 0}, steps[1].Target)
	assert.Equal(t, geo.Rotation{0, 20, 0}, steps[2].Target)

	assert.Nil(t, steps[0].Arc)
	require.NotNil(t, steps[1].Arc)
	assert.Equal(t, [][2]float64{{20, 10}, {30, -5}}, steps[1].Arc.Coordinates())
	require.NotNil(t, steps[2].Arc)
	assert.Equal(t, [][2]float64{{30, -5}, {0, 0}}, steps[2].Arc.Coordinates())

	assert.Equal(t, "#1 at=2s target=[-30,25,0] arc=[[20,10],[30,-5]] Bravo Park", steps[1].String())
}

func TestPlan_Empty(t *testing.T) {
	assert.Empty(t, Plan(nil, time.Second))
}

func TestPlanTilted(t *testing.T) {
	steps := PlanTilted(tour[:1], time.Second, 0)
	assert.Equal(t, geo.Rotation{-20, -10, 0}, steps[0].Target)
}

func TestTargetRotation_CentersCircuitAtTilt(t *testing.T) {
	for _, c := range tour {
		got := geo.Rotate(TargetRotation(c.Location(), TiltBias), c.Location())
		assert.InDelta(t, 0, got.Lng, 1e-9, c.Name)
		assert.InDelta(t, TiltBias, got.Lat, 1e-9, c.Name)
	}
}

func TestInterpolate(t *testing.T) {
	f := Interpolate(geo.Rotation{170, 0, 0}, geo.Rotation{-170, 10, 4})
	assert.Equal(t, geo.Rotation{170, 0, 0}, f(0))
	assert.Equal(t, geo.Rotation{0, 5, 2}, f(0.5))
	assert.Equal(t, geo.Rotation{-170, 10, 4}, f(1))
}

func TestSequencer_TraceGolden(t *testing.T) {
	opts := DefaultOptions()
	opts.Frame = 625 * time.Millisecond
	s, tr, tl := newTour(t, tour, opts)

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, tl.Run(context.Background()))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "tour_trace", []byte(tr.String()))

	assert.Zero(t, s.Interrupted())
	assert.Equal(t, geo.Rotation{0, 20, 0}, s.Session().Rotation)
	assert.Equal(t, 5250*time.Millisecond, s.End())
}

func TestSequencer_DefaultTimings(t *testing.T) {
	s, tr, tl := newTour(t, tour, Options{})
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, tl.Run(context.Background()))

	// Initial render plus 33 ticks per step at 25 fps.
	assert.Equal(t, 1+3*33, tr.count("render"))
	assert.Equal(t, 3, tr.count("status"))
	assert.Equal(t, 5250*time.Millisecond, tl.Now())
	assert.Equal(t, "session-1", s.Session().ID)
}

func TestSequencer_InitialRenderIsPlain(t *testing.T) {
	s, tr, _ := newTour(t, tour, Options{})
	require.NoError(t, s.Start(context.Background()))

	require.Len(t, tr.lines, 1)
	assert.Equal(t, `0s render rot=[0,0,0] country="" marker=none arc=none label=""`, tr.lines[0])
}

func TestSequencer_PreviousAdvancesAtScheduleTime(t *testing.T) {
	s, _, _ := newTour(t, tour, Options{})
	assert.Nil(t, s.Session().Previous)

	require.NoError(t, s.Start(context.Background()))
	require.NotNil(t, s.Session().Previous)
	assert.Equal(t, geo.LngLat{Lng: 0, Lat: 0}, *s.Session().Previous)
}

func TestSequencer_ArcsStartAtPreviousLocation(t *testing.T) {
	s, tr, tl := newTour(t, tour, Options{})
	home := geo.LngLat{Lng: -1, Lat: 52}
	s.Session().Previous = &home

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, tl.Run(context.Background()))

	assert.Contains(t, tr.lines[2], "arc=[[-1,52],[20,10]]")
	assert.Equal(t, geo.LngLat{Lng: 0, Lat: 0}, *s.Session().Previous)
}

func TestSequencer_StartTwice(t *testing.T) {
	s, _, _ := newTour(t, tour, Options{})
	require.NoError(t, s.Start(context.Background()))
	assert.Error(t, s.Start(context.Background()))
}

func TestSequencer_OverlappingStepsInterrupt(t *testing.T) {
	opts := Options{
		Interval: 500 * time.Millisecond,
		Duration: time.Second,
		Frame:    250 * time.Millisecond,
		Ease:     timeline.Linear,
	}
	s, tr, tl := newTour(t, tour[:2], opts)
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, tl.Run(context.Background()))

	assert.Equal(t, 1, s.Interrupted())
	// Step 1 starts from the rotation reached at 250ms of step 0, not from
	// step 0's target.
	assert.Equal(t, geo.Rotation{-5, 2.5, 0}, tr.rots[2])
	assert.Equal(t, geo.Rotation{-5, 2.5, 0}, tr.rots[3])
	assert.Equal(t, geo.Rotation{-30, 25, 0}, s.Session().Rotation)
	assert.Equal(t, 1500*time.Millisecond, tl.Now())
}

func TestSequencer_CancelStopsFurtherSteps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tl := timeline.New(nil)
	var statuses []string
	renders := 0
	scene := sceneFunc(func(geo.Rotation, render.Highlight) {
		renders++
		if tl.Now() >= time.Second {
			cancel()
		}
	})
	s := New(tl, scene, StatusFunc(func(text string) { statuses = append(statuses, text) }), tour, Options{IDs: NewFixedGenerator("x")})

	require.NoError(t, s.Start(ctx))
	err := tl.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, statuses, 1)
	assert.Less(t, tl.Now(), 2*time.Second)
	assert.Positive(t, renders)
}

func TestSequencer_NoCircuits(t *testing.T) {
	s, tr, tl := newTour(t, nil, Options{})
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, tl.Run(context.Background()))
	assert.Len(t, tr.lines, 1)
	assert.Zero(t, s.End())
}

func TestUUIDv7Generator(t *testing.T) {
	id := UUIDv7Generator{}.Generate()
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestFixedGenerator_PanicsWhenExhausted(t *testing.T) {
	g := NewFixedGenerator("a")
	assert.Equal(t, "a", g.Generate())
	assert.Panics(t, func() { g.Generate() })
}

func TestStatusText(t *testing.T) {
	assert.Equal(t, "Country: Aland | Circuit: Alpha Ring | Years Active: 1950-1960", StatusText(tour[0]))
}

type sceneFunc func(geo.Rotation, render.Highlight)

func (f sceneFunc) Render(rot geo.Rotation, h render.Highlight) { f(rot, h) }
