package harness

import (
	"fmt"
	"math"
	"strings"

	"github.com/roach88/circuitglobe/internal/geo"
)

// tolerance for comparing rotations and coordinates, in degrees.
const tolerance = 1e-9

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Status events for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nStatuses:\n")
		for i, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s\n", i, event.At, event.Text)
		}
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion and returns one message per
// failure. An empty slice means all assertions held.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertStepAt:
		return assertStepAt(result, a)
	case AssertArc:
		return assertArc(result, a)
	case AssertTarget:
		if err := checkStep(result, a); err != nil {
			return err
		}
		return assertRotation(a.Type, result.Plan[a.Step].Target, a.Rotation)
	case AssertStatusOrder:
		return assertStatusOrder(result, a)
	case AssertRenderCount:
		return assertCount(a.Type, result.Renders(), a.Count)
	case AssertInterrupted:
		return assertCount(a.Type, result.Interrupted, a.Count)
	case AssertFinalRotation:
		return assertRotation(a.Type, result.Final, a.Rotation)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func checkStep(result *Result, a Assertion) error {
	if a.Step >= len(result.Plan) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("step %d", a.Step),
			Actual:   fmt.Sprintf("tour has %d steps", len(result.Plan)),
		}
	}
	return nil
}

// assertStepAt matches the step against the status it showed when it
// started; the sequencer sets one status per started step.
func assertStepAt(result *Result, a Assertion) error {
	statuses := result.Statuses()
	if a.Step >= len(statuses) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("step %d started at %s", a.Step, a.At),
			Actual:   fmt.Sprintf("only %d steps started", len(statuses)),
			Trace:    statuses,
		}
	}
	if got := statuses[a.Step].At; got != a.At {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("step %d started at %s", a.Step, a.At),
			Actual:   fmt.Sprintf("started at %s", got),
			Trace:    statuses,
		}
	}
	return nil
}

func assertArc(result *Result, a Assertion) error {
	if err := checkStep(result, a); err != nil {
		return err
	}
	got := result.Plan[a.Step].Arc
	if a.None {
		if got != nil {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("step %d has no arc", a.Step),
				Actual:   formatArc(got),
			}
		}
		return nil
	}

	want := geo.Arc{
		From: geo.LngLat{Lng: a.From[0], Lat: a.From[1]},
		To:   geo.LngLat{Lng: a.To[0], Lat: a.To[1]},
	}
	if got == nil || !sameLngLat(got.From, want.From) || !sameLngLat(got.To, want.To) {
		return &AssertionError{
			Type:     a.Type,
			Expected: formatArc(&want),
			Actual:   formatArc(got),
		}
	}
	return nil
}

func assertRotation(kind string, got geo.Rotation, want []float64) error {
	for i, w := range want {
		if math.Abs(got[i]-w) > tolerance {
			return &AssertionError{
				Type:     kind,
				Expected: fmt.Sprint(want),
				Actual:   got.String(),
			}
		}
	}
	return nil
}

// assertStatusOrder requires the statuses to appear in order, not
// necessarily adjacent.
func assertStatusOrder(result *Result, a Assertion) error {
	statuses := result.Statuses()
	next := 0
	for _, e := range statuses {
		if next < len(a.Statuses) && e.Text == a.Statuses[next] {
			next++
		}
	}
	if next < len(a.Statuses) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("status %q in order", a.Statuses[next]),
			Actual:   "not shown after the previous expected status",
			Trace:    statuses,
		}
	}
	return nil
}

func assertCount(kind string, got, want int) error {
	if got != want {
		return &AssertionError{
			Type:     kind,
			Expected: fmt.Sprint(want),
			Actual:   fmt.Sprint(got),
		}
	}
	return nil
}

func sameLngLat(a, b geo.LngLat) bool {
	return math.Abs(a.Lng-b.Lng) <= tolerance && math.Abs(a.Lat-b.Lat) <= tolerance
}

func formatArc(a *geo.Arc) string {
	if a == nil {
		return "no arc"
	}
	return fmt.Sprintf("[%s,%s]", a.From, a.To)
}

