// Package sequence drives the circuit tour: it plans one step per circuit,
// schedules the steps on a timeline and animates the globe rotation toward
// each circuit.
package sequence

import (
	"fmt"
	"time"

	"github.com/roach88/circuitglobe/internal/dataset"
	"github.com/roach88/circuitglobe/internal/geo"
)

// TiltBias is the latitude, in degrees, at which a focused circuit sits
// on screen. Positive values place it above the disc center.
const TiltBias = 20.0

// Step is one entry of the tour.
type Step struct {
	Index   int             `json:"index"`
	At      time.Duration   `json:"at"`
	Circuit dataset.Circuit `json:"circuit"`
	Target  geo.Rotation    `json:"target"`

	// Arc runs from the previous circuit to this one; nil for the first
	// step.
	Arc *geo.Arc `json:"arc,omitempty"`
}

func (s Step) String() string {
	arc := "none"
	if s.Arc != nil {
		arc = fmt.Sprintf("[%s,%s]", s.Arc.From, s.Arc.To)
	}
	return fmt.Sprintf("#%d at=%s target=%s arc=%s %s", s.Index, s.At, s.Target, arc, s.Circuit.Name)
}

// TargetRotation returns the rotation that brings ll to the central
// meridian at latitude tilt.
func TargetRotation(ll geo.LngLat, tilt float64) geo.Rotation {
	// 0-x keeps a zero longitude from becoming -0.
	return geo.Rotation{0 - ll.Lng, tilt - ll.Lat, 0}
}

// Plan lays out one step per circuit in table order: step i starts at
// i*interval, targets the circuit with the default tilt and carries the
// arc from circuit i-1.
func Plan(circuits []dataset.Circuit, interval time.Duration) []Step {
	return PlanTilted(circuits, interval, TiltBias)
}

// PlanTilted is Plan with an explicit tilt.
func PlanTilted(circuits []dataset.Circuit, interval time.Duration, tilt float64) []Step {
	steps := make([]Step, len(circuits))
	var prev *geo.LngLat
	for i, c := range circuits {
		loc := c.Location()
		steps[i] = Step{
			Index:   i,
			At:      time.Duration(i) * interval,
			Circuit: c,
			Target:  TargetRotation(loc, tilt),
		}
		if prev != nil {
			steps[i].Arc = &geo.Arc{From: *prev, To: loc}
		}
		prev = &loc
	}
	return steps
}

// Interpolator maps transition progress to a rotation.
type Interpolator func(t float64) geo.Rotation

// Interpolate returns a component-wise linear interpolator from a to b.
// There is no wrap-around: a lambda move from 170 to -170 sweeps through
// 0.
func Interpolate(a, b geo.Rotation) Interpolator {
	return func(t float64) geo.Rotation {
		var r geo.Rotation
		for i := range r {
			r[i] = a[i]*(1-t) + b[i]*t
		}
		return r
	}
}
