package geo

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"
)

// Orthographic is an orthographic projection of the unit sphere onto a
// screen with y growing downwards. The zero Rotation looks at [0, 0].
//
// An Orthographic value is immutable; WithRotation returns a copy.
type Orthographic struct {
	scale    float64
	center   r2.Point
	rotation Rotation
	rot      rotator
}

// NewOrthographic returns a projection with the given scale (sphere radius
// in pixels) and translate (screen position of the sphere center).
func NewOrthographic(scale float64, center r2.Point) Orthographic {
	return Orthographic{
		scale:  scale,
		center: center,
		rot:    newRotator(Rotation{}),
	}
}

// FitExtent fits the whole sphere into the rectangle [x0,y0]-[x1,y1], as
// d3's projection.fitExtent does for {type: "Sphere"}.
func FitExtent(x0, y0, x1, y1 float64) Orthographic {
	w, h := x1-x0, y1-y0
	scale := math.Min(w, h) / 2
	return NewOrthographic(scale, r2.Point{X: x0 + w/2, Y: y0 + h/2})
}

// WithRotation returns a copy of o rotated by r.
func (o Orthographic) WithRotation(r Rotation) Orthographic {
	o.rotation = r
	o.rot = newRotator(r)
	return o
}

// Rotation returns the current rotation.
func (o Orthographic) Rotation() Rotation { return o.rotation }

// Scale returns the sphere radius in pixels.
func (o Orthographic) Scale() float64 { return o.scale }

// Center returns the screen position of the sphere center.
func (o Orthographic) Center() r2.Point { return o.center }

// Project returns the screen position of ll. Like d3's projection(point),
// it performs no visibility check: points on the far hemisphere land on
// the disc as if seen through the globe.
func (o Orthographic) Project(ll LngLat) r2.Point {
	return o.screen(o.rot.apply(ll.Point().Vector))
}

// Visible reports whether ll lies on the hemisphere facing the viewer.
func (o Orthographic) Visible(ll LngLat) bool {
	return visible(o.rot.apply(ll.Point().Vector))
}

// Invert returns the geographic position under screen point p, and false
// when p is outside the disc.
func (o Orthographic) Invert(p r2.Point) (LngLat, bool) {
	y := (p.X - o.center.X) / o.scale
	z := (o.center.Y - p.Y) / o.scale
	rr := y*y + z*z
	if rr > 1 {
		return LngLat{}, false
	}
	v := r3.Vector{X: math.Sqrt(1 - rr), Y: y, Z: z}
	return FromPoint(s2.Point{Vector: o.rot.invert(v)}), true
}

// screen maps a rotated unit vector to screen coordinates. The viewer looks
// down the +X axis; Y runs right and Z up.
func (o Orthographic) screen(v r3.Vector) r2.Point {
	return r2.Point{
		X: o.center.X + o.scale*v.Y,
		Y: o.center.Y - o.scale*v.Z,
	}
}

// horizonPoint returns the screen position of the horizon at angle a,
// measured counterclockwise from the +Y axis in the rotated frame.
func (o Orthographic) horizonPoint(a float64) r2.Point {
	return o.screen(r3.Vector{Y: math.Cos(a), Z: math.Sin(a)})
}

// world maps a rotated-frame vector back to a world-frame point.
func (o Orthographic) world(v r3.Vector) s2.Point {
	return s2.Point{Vector: o.rot.invert(v)}
}

func visible(v r3.Vector) bool {
	return v.X >= 0
}
