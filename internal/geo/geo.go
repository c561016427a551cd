// Package geo holds the spherical geometry behind the globe: geographic
// coordinates, d3-style rotations, the orthographic projection and clipping
// of projected shapes to the visible hemisphere.
//
// Shapes are stored as unit vectors (s2.Point) so that rotation is a
// matrix product and edges are great-circle arcs, the same interpretation
// d3-geo gives GeoJSON edges.
package geo

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// LngLat is a geographic position in degrees.
type LngLat struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// Point returns the unit vector for ll.
func (ll LngLat) Point() s2.Point {
	return s2.PointFromLatLng(s2.LatLngFromDegrees(ll.Lat, ll.Lng))
}

// Pair returns ll in GeoJSON [lng, lat] order.
func (ll LngLat) Pair() [2]float64 {
	return [2]float64{ll.Lng, ll.Lat}
}

func (ll LngLat) String() string {
	return fmt.Sprintf("[%g,%g]", ll.Lng, ll.Lat)
}

// FromPoint converts a unit vector back to degrees.
func FromPoint(p s2.Point) LngLat {
	ll := s2.LatLngFromPoint(p)
	return LngLat{Lng: ll.Lng.Degrees(), Lat: ll.Lat.Degrees()}
}

// Arc is a great-circle segment between two positions.
type Arc struct {
	From LngLat `json:"from"`
	To   LngLat `json:"to"`
}

// Coordinates returns the arc as a GeoJSON LineString coordinate list.
func (a Arc) Coordinates() [][2]float64 {
	return [][2]float64{a.From.Pair(), a.To.Pair()}
}

// Points samples the great circle from From to To with no more than step
// between consecutive points. Both endpoints are included.
func (a Arc) Points(step s1.Angle) []s2.Point {
	return densifyEdge(a.From.Point(), a.To.Point(), step, true)
}

// Rotation is a d3 projection rotation [lambda, phi, gamma] in degrees.
type Rotation [3]float64

// Lambda, Phi and Gamma name the rotation components.
func (r Rotation) Lambda() float64 { return r[0] }
func (r Rotation) Phi() float64    { return r[1] }
func (r Rotation) Gamma() float64  { return r[2] }

func (r Rotation) String() string {
	return fmt.Sprintf("[%g,%g,%g]", r[0], r[1], r[2])
}

// rotator applies a Rotation to unit vectors: lambda about the polar axis,
// then phi, then gamma, matching d3.geoRotation.
type rotator struct {
	cl, sl float64
	cp, sp float64
	cg, sg float64
}

func newRotator(r Rotation) rotator {
	rad := math.Pi / 180
	return rotator{
		cl: math.Cos(r[0] * rad), sl: math.Sin(r[0] * rad),
		cp: math.Cos(r[1] * rad), sp: math.Sin(r[1] * rad),
		cg: math.Cos(r[2] * rad), sg: math.Sin(r[2] * rad),
	}
}

func (m rotator) apply(v r3.Vector) r3.Vector {
	x := v.X*m.cl - v.Y*m.sl
	y := v.X*m.sl + v.Y*m.cl
	z := v.Z

	x2 := x*m.cp - z*m.sp
	k := z*m.cp + x*m.sp

	return r3.Vector{
		X: x2,
		Y: y*m.cg - k*m.sg,
		Z: k*m.cg + y*m.sg,
	}
}

func (m rotator) invert(v r3.Vector) r3.Vector {
	y := v.Y*m.cg + v.Z*m.sg
	k := v.Z*m.cg - v.Y*m.sg

	x := v.X*m.cp + k*m.sp
	z := k*m.cp - v.X*m.sp

	return r3.Vector{
		X: x*m.cl + y*m.sl,
		Y: y*m.cl - x*m.sl,
		Z: z,
	}
}

// Rotate applies r to ll and returns the rotated position, as
// d3.geoRotation(r)(ll) would.
func Rotate(r Rotation, ll LngLat) LngLat {
	v := newRotator(r).apply(ll.Point().Vector)
	return FromPoint(s2.Point{Vector: v})
}
