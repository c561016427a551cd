package render

import (
	"github.com/golang/geo/r2"

	"github.com/roach88/circuitglobe/internal/geo"
	"github.com/roach88/circuitglobe/internal/names"
)

// World is the static geometry drawn on every frame.
type World struct {
	Countries []geo.Country
	Borders   geo.Mesh
}

// Highlight selects what a frame emphasizes. The zero value draws the
// plain globe.
type Highlight struct {
	Country  string
	Location *geo.LngLat
	Label    string
	Arc      *geo.Arc
}

// Renderer redraws the whole scene from a rotation on every call.
type Renderer struct {
	canvas Canvas
	proj   geo.Orthographic
	world  World
	names  *names.Mapper
	style  Style
}

// New returns a Renderer drawing world onto c with projection proj.
// Highlighted country names are resolved through mapper.
func New(c Canvas, proj geo.Orthographic, world World, mapper *names.Mapper, style Style) *Renderer {
	return &Renderer{canvas: c, proj: proj, world: world, names: mapper, style: style}
}

// Canvas returns the surface the renderer draws on.
func (r *Renderer) Canvas() Canvas { return r.canvas }

// Projection returns the projection at rotation rot.
func (r *Renderer) Projection(rot geo.Rotation) geo.Orthographic {
	return r.proj.WithRotation(rot)
}

// Render draws the scene at rotation rot: background, sphere, countries,
// borders, arc, then marker and label.
func (r *Renderer) Render(rot geo.Rotation, h Highlight) {
	p := r.proj.WithRotation(rot)
	c := r.canvas
	s := r.style

	c.Clear()

	center, radius := p.Sphere()
	c.BeginPath()
	c.Circle(center.X, center.Y, radius)
	c.Fill(s.Sphere)
	c.Stroke(s.SphereStroke, s.SphereWidth)

	for _, country := range r.world.Countries {
		c.BeginPath()
		for _, poly := range country.Polygons {
			for _, ring := range p.ProjectPolygon(poly) {
				r.ring(ring)
			}
		}
		fill := s.Land
		if r.names.Equal(country.Name, h.Country) {
			fill = s.Highlight
		}
		c.Fill(fill)
	}

	c.BeginPath()
	for _, line := range p.ProjectMesh(r.world.Borders) {
		r.line(line)
	}
	c.Stroke(s.Border, s.BorderWidth)

	if h.Arc != nil {
		c.BeginPath()
		for _, line := range p.ProjectLine(h.Arc.Points(geo.MaxEdge)) {
			r.line(line)
		}
		c.Stroke(s.Arc, s.ArcWidth)
	}

	if h.Location != nil {
		pt := p.Project(*h.Location)
		c.BeginPath()
		c.Circle(pt.X, pt.Y, s.MarkerRadius)
		c.Fill(s.Marker)
		c.FillText(h.Label, pt.X+s.LabelOffset, pt.Y, s.Label)
	}
}

func (r *Renderer) line(pts []r2.Point) {
	for i, pt := range pts {
		if i == 0 {
			r.canvas.MoveTo(pt.X, pt.Y)
			continue
		}
		r.canvas.LineTo(pt.X, pt.Y)
	}
}

func (r *Renderer) ring(pts []r2.Point) {
	r.line(pts)
	r.canvas.ClosePath()
}
