package geo

import (
	"fmt"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
	geojson "github.com/paulmach/go.geojson"
)

// MaxEdge is the longest great-circle edge kept after densification.
// Longer edges are subdivided so clipping and projection stay smooth.
var MaxEdge = 2 * s1.Degree

// Polygon is a spherical polygon: an outer ring followed by holes. Rings
// are open (the closing vertex is not repeated).
type Polygon struct {
	Rings [][]s2.Point

	loops []*s2.Loop
}

// ContainsPoint reports whether p lies inside the polygon, counting a point
// as inside when an odd number of rings contain it.
func (p *Polygon) ContainsPoint(pt s2.Point) bool {
	inside := false
	for _, l := range p.loops {
		if l.ContainsPoint(pt) {
			inside = !inside
		}
	}
	return inside
}

// Country is a named country feature.
type Country struct {
	Name     string
	Polygons []*Polygon
}

// Mesh is a set of polylines, such as the shared borders between
// countries.
type Mesh [][]s2.Point

// NewPolygon builds a polygon from GeoJSON rings of [lng, lat] pairs.
// Rings with fewer than three distinct vertices are dropped.
func NewPolygon(rings [][][]float64) *Polygon {
	p := &Polygon{}
	for _, ring := range rings {
		pts := densify(toPoints(ring), MaxEdge, false)
		if len(pts) < 3 {
			continue
		}
		p.Rings = append(p.Rings, pts)

		loop := s2.LoopFromPoints(pts)
		loop.Normalize()
		p.loops = append(p.loops, loop)
	}
	return p
}

// NewCountry converts a GeoJSON feature with Polygon or MultiPolygon
// geometry. The country name is read from the "name" property.
func NewCountry(f *geojson.Feature) (Country, error) {
	c := Country{Name: f.PropertyMustString("name")}
	if f.Geometry == nil {
		return c, nil
	}
	switch {
	case f.Geometry.IsPolygon():
		c.Polygons = append(c.Polygons, NewPolygon(f.Geometry.Polygon))
	case f.Geometry.IsMultiPolygon():
		for _, rings := range f.Geometry.MultiPolygon {
			c.Polygons = append(c.Polygons, NewPolygon(rings))
		}
	default:
		return c, fmt.Errorf("country %q: unsupported geometry %s", c.Name, f.Geometry.Type)
	}
	return c, nil
}

// NewCountries converts a feature collection, keeping dataset order.
func NewCountries(fc *geojson.FeatureCollection) ([]Country, error) {
	out := make([]Country, 0, len(fc.Features))
	for _, f := range fc.Features {
		c, err := NewCountry(f)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// NewMesh converts a LineString or MultiLineString geometry.
func NewMesh(g *geojson.Geometry) (Mesh, error) {
	if g == nil {
		return nil, nil
	}
	var lines [][][]float64
	switch {
	case g.IsMultiLineString():
		lines = g.MultiLineString
	case g.IsLineString():
		lines = [][][]float64{g.LineString}
	default:
		return nil, fmt.Errorf("mesh: unsupported geometry %s", g.Type)
	}

	m := make(Mesh, 0, len(lines))
	for _, line := range lines {
		pts := densify(toPoints(line), MaxEdge, true)
		if len(pts) >= 2 {
			m = append(m, pts)
		}
	}
	return m, nil
}

// toPoints converts [lng, lat] pairs to unit vectors, dropping repeated
// vertices (including the closing vertex of a ring and points that only
// differ by a 360 degree longitude wrap).
func toPoints(coords [][]float64) []s2.Point {
	pts := make([]s2.Point, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			continue
		}
		p := LngLat{Lng: c[0], Lat: c[1]}.Point()
		if n := len(pts); n > 0 && pts[n-1].ApproxEqual(p) {
			continue
		}
		pts = append(pts, p)
	}
	if n := len(pts); n > 1 && pts[0].ApproxEqual(pts[n-1]) {
		pts = pts[:n-1]
	}
	return pts
}

// densify subdivides every edge longer than step. For open polylines the
// last edge ends at the last vertex; for rings a closing edge back to the
// first vertex is subdivided as well but the first vertex is not repeated.
func densify(pts []s2.Point, step s1.Angle, open bool) []s2.Point {
	if len(pts) < 2 {
		return pts
	}
	out := make([]s2.Point, 0, len(pts))
	n := len(pts)
	edges := n
	if open {
		edges = n - 1
	}
	for i := 0; i < edges; i++ {
		a, b := pts[i], pts[(i+1)%n]
		seg := densifyEdge(a, b, step, false)
		out = append(out, seg...)
	}
	if open {
		out = append(out, pts[n-1])
	}
	return out
}

// densifyEdge returns a followed by the interior points of the great arc
// a->b; b itself is included only when withEnd is set.
func densifyEdge(a, b s2.Point, step s1.Angle, withEnd bool) []s2.Point {
	out := []s2.Point{a}
	if d := a.Distance(b); step > 0 && d > step {
		parts := int(d/step) + 1
		for k := 1; k < parts; k++ {
			out = append(out, s2.Interpolate(float64(k)/float64(parts), a, b))
		}
	}
	if withEnd {
		out = append(out, b)
	}
	return out
}
