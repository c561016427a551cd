package geo

import (
	"math"
	"sort"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"
)

// horizonStep is the angular spacing of points inserted along the horizon
// when a clipped polygon is closed around the edge of the disc.
const horizonStep = 3 * math.Pi / 180

// Sphere returns the projected outline of the globe: the disc center and
// radius.
func (o Orthographic) Sphere() (r2.Point, float64) {
	return o.center, o.scale
}

// ProjectLine projects a polyline, cutting it where it crosses the horizon.
// Each returned run lies entirely on the visible hemisphere.
func (o Orthographic) ProjectLine(pts []s2.Point) [][]r2.Point {
	if len(pts) == 0 {
		return nil
	}
	var (
		runs [][]r2.Point
		cur  []r2.Point
	)
	prev := o.rot.apply(pts[0].Vector)
	if visible(prev) {
		cur = append(cur, o.screen(prev))
	}
	for _, p := range pts[1:] {
		next := o.rot.apply(p.Vector)
		pv, nv := visible(prev), visible(next)
		switch {
		case pv && nv:
			cur = append(cur, o.screen(next))
		case pv && !nv:
			cur = append(cur, o.screen(horizon(prev, next)))
			if len(cur) > 1 {
				runs = append(runs, cur)
			}
			cur = nil
		case !pv && nv:
			cur = []r2.Point{o.screen(horizon(prev, next)), o.screen(next)}
		}
		prev = next
	}
	if len(cur) > 1 {
		runs = append(runs, cur)
	}
	return runs
}

// ProjectMesh projects every line of m.
func (o Orthographic) ProjectMesh(m Mesh) [][]r2.Point {
	var out [][]r2.Point
	for _, line := range m {
		out = append(out, o.ProjectLine(line)...)
	}
	return out
}

// fragment is the visible part of a ring between entering and leaving the
// visible hemisphere.
type fragment struct {
	pts        []r2.Point
	entryAngle float64
	exitAngle  float64
}

// crossing is a horizon crossing, sorted by angle around the disc. entry
// marks the crossing where its fragment starts.
type crossing struct {
	angle float64
	frag  int
	entry bool
}

// fragments splits a rotated ring with at least one visible and one hidden
// vertex into visible fragments, each running from an entry crossing to an
// exit crossing.
func (o Orthographic) fragments(ring []r3.Vector) []fragment {
	n := len(ring)
	start := -1
	for i := 0; i < n; i++ {
		if !visible(ring[(i+n-1)%n]) && visible(ring[i]) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}

	// ring[start-1] is hidden, so the walk below always ends outside a
	// fragment.
	var (
		out []fragment
		cur *fragment
	)
	for k := 0; k < n; k++ {
		i := (start + k) % n
		prev := ring[(i+n-1)%n]
		v := ring[i]
		pv, cv := visible(prev), visible(v)
		switch {
		case !pv && cv:
			h := horizon(prev, v)
			cur = &fragment{entryAngle: horizonAngle(h), pts: []r2.Point{o.screen(h)}}
			cur.pts = append(cur.pts, o.screen(v))
		case pv && cv:
			cur.pts = append(cur.pts, o.screen(v))
		case pv && !cv:
			h := horizon(prev, v)
			cur.pts = append(cur.pts, o.screen(h))
			cur.exitAngle = horizonAngle(h)
			out = append(out, *cur)
			cur = nil
		}
	}
	return out
}

// link joins fragments into closed rings. Sorted by angle, the crossings
// cut the horizon into arcs that alternate between inside and outside the
// polygon, so every crossing borders exactly one inside arc. A ring follows
// a fragment, then the inside arc at its far end, then the fragment met
// there, until it is back where it started. A fragment reached at its exit
// is walked backwards, which keeps holes and either winding correct.
func (o Orthographic) link(p *Polygon, frags []fragment) [][]r2.Point {
	crossings := make([]crossing, 0, 2*len(frags))
	for i, f := range frags {
		crossings = append(crossings,
			crossing{angle: f.entryAngle, frag: i, entry: true},
			crossing{angle: f.exitAngle, frag: i, entry: false},
		)
	}
	sort.SliceStable(crossings, func(i, j int) bool { return crossings[i].angle < crossings[j].angle })

	m := len(crossings)
	// ends[f] holds the sorted positions of the entry and exit of f.
	ends := make([][2]int, len(frags))
	for pos, c := range crossings {
		if c.entry {
			ends[c.frag][0] = pos
		} else {
			ends[c.frag][1] = pos
		}
	}
	inside := o.insideArcs(p, crossings)

	var rings [][]r2.Point
	used := make([]bool, len(frags))
	for first := range frags {
		if used[first] {
			continue
		}
		var ring []r2.Point
		start := ends[first][0]
		at := start
		for steps := 0; steps < len(frags); steps++ {
			c := crossings[at]
			f := frags[c.frag]
			used[c.frag] = true

			var end int
			if c.entry {
				ring = append(ring, f.pts...)
				end = ends[c.frag][1]
			} else {
				for i := len(f.pts) - 1; i >= 0; i-- {
					ring = append(ring, f.pts[i])
				}
				end = ends[c.frag][0]
			}

			next, dir := (end+1)%m, 1
			if !inside[end] {
				next, dir = (end+m-1)%m, -1
			}
			ring = append(ring, o.horizonArc(crossings[end].angle, crossings[next].angle, dir)...)
			at = next
			if at == start {
				break
			}
		}
		if len(ring) > 2 {
			rings = append(rings, ring)
		}
	}
	return rings
}

// insideArcs reports, for each sorted crossing k, whether the horizon arc
// running counterclockwise from crossing k to crossing k+1 lies inside p.
// Only the widest arc is sampled; the others alternate from it.
func (o Orthographic) insideArcs(p *Polygon, crossings []crossing) []bool {
	m := len(crossings)
	widest, span := 0, -1.0
	for k := range crossings {
		s := crossings[(k+1)%m].angle - crossings[k].angle
		if s < 0 {
			s += 2 * math.Pi
		}
		if s > span {
			widest, span = k, s
		}
	}
	mid := crossings[widest].angle + span/2
	ref := p.ContainsPoint(o.world(r3.Vector{Y: math.Cos(mid), Z: math.Sin(mid)}))

	out := make([]bool, m)
	for k := range out {
		out[k] = ref != ((k-widest)%2 != 0)
	}
	return out
}

// horizonArc returns screen points strictly between angles from and to,
// walking in direction dir (+1 counterclockwise, -1 clockwise).
func (o Orthographic) horizonArc(from, to float64, dir int) []r2.Point {
	span := to - from
	if dir > 0 {
		for span < 0 {
			span += 2 * math.Pi
		}
	} else {
		for span > 0 {
			span -= 2 * math.Pi
		}
	}
	steps := int(math.Abs(span) / horizonStep)
	out := make([]r2.Point, 0, steps)
	for k := 1; k <= steps; k++ {
		a := from + span*float64(k)/float64(steps+1)
		out = append(out, o.horizonPoint(a))
	}
	return out
}

// horizon returns the point where the great arc a->b crosses the plane
// X=0, with a and b on opposite sides of it.
func horizon(a, b r3.Vector) r3.Vector {
	t := a.X / (a.X - b.X)
	p := a.Add(b.Sub(a).Mul(t))
	p.X = 0
	return p.Normalize()
}

func horizonAngle(v r3.Vector) float64 {
	return math.Atan2(v.Z, v.Y)
}
