// Package topo decodes TopoJSON topologies into GeoJSON geometry.
//
// Only the parts of the format the globe needs are supported: quantized or
// absolute arcs, Point/MultiPoint, LineString/MultiLineString,
// Polygon/MultiPolygon and GeometryCollection objects. Feature extracts
// per-geometry features from a named object, Mesh extracts the arcs shared
// between geometries (for example interior country borders).
package topo

import (
	"encoding/json"
	"fmt"
	"io"
)

// Geometry type names as they appear in TopoJSON documents.
const (
	TypeTopology           = "Topology"
	TypeGeometryCollection = "GeometryCollection"
	TypePoint              = "Point"
	TypeMultiPoint         = "MultiPoint"
	TypeLineString         = "LineString"
	TypeMultiLineString    = "MultiLineString"
	TypePolygon            = "Polygon"
	TypeMultiPolygon       = "MultiPolygon"
)

// Transform describes arc quantization.
type Transform struct {
	Scale     [2]float64 `json:"scale"`
	Translate [2]float64 `json:"translate"`
}

// Topology is a decoded TopoJSON document.
type Topology struct {
	Type      string               `json:"type"`
	BBox      []float64            `json:"bbox,omitempty"`
	Transform *Transform           `json:"transform,omitempty"`
	Objects   map[string]*Geometry `json:"objects"`
	Arcs      [][][]float64        `json:"arcs"`

	decoded [][][]float64
}

// Geometry is a TopoJSON geometry object. Arcs and Coordinates keep their
// raw JSON form because their nesting depth depends on Type.
type Geometry struct {
	Type        string          `json:"type"`
	ID          any             `json:"id,omitempty"`
	Properties  map[string]any  `json:"properties,omitempty"`
	Arcs        json.RawMessage `json:"arcs,omitempty"`
	Coordinates json.RawMessage `json:"coordinates,omitempty"`
	Geometries  []*Geometry     `json:"geometries,omitempty"`
}

// Decode reads a topology from r and decodes its arcs.
func Decode(r io.Reader) (*Topology, error) {
	var t Topology
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("decoding topology: %w", err)
	}
	if t.Type != TypeTopology {
		return nil, fmt.Errorf("unexpected document type %q, want %q", t.Type, TypeTopology)
	}
	t.decodeArcs()
	return &t, nil
}

// Object returns the named top-level object.
func (t *Topology) Object(name string) (*Geometry, error) {
	obj, ok := t.Objects[name]
	if !ok || obj == nil {
		return nil, fmt.Errorf("topology has no object %q", name)
	}
	return obj, nil
}

// decodeArcs resolves delta encoding and quantization once, so rings can
// be assembled by plain slicing afterwards.
func (t *Topology) decodeArcs() {
	t.decoded = make([][][]float64, len(t.Arcs))
	for i, arc := range t.Arcs {
		out := make([][]float64, len(arc))
		var x, y float64
		for j, p := range arc {
			if len(p) < 2 {
				continue
			}
			if t.Transform == nil {
				out[j] = []float64{p[0], p[1]}
				continue
			}
			x += p[0]
			y += p[1]
			out[j] = []float64{
				x*t.Transform.Scale[0] + t.Transform.Translate[0],
				y*t.Transform.Scale[1] + t.Transform.Translate[1],
			}
		}
		t.decoded[i] = out
	}
}

// point converts a quantized position (not delta encoded).
func (t *Topology) point(p []float64) []float64 {
	if t.Transform == nil || len(p) < 2 {
		return p
	}
	return []float64{
		p[0]*t.Transform.Scale[0] + t.Transform.Translate[0],
		p[1]*t.Transform.Scale[1] + t.Transform.Translate[1],
	}
}

// arc returns the positions of arc i; negative indexes (~i) are reversed.
func (t *Topology) arc(i int) ([][]float64, error) {
	reversed := i < 0
	if reversed {
		i = ^i
	}
	if i >= len(t.decoded) {
		return nil, fmt.Errorf("arc index %d out of range (%d arcs)", i, len(t.decoded))
	}
	src := t.decoded[i]
	out := make([][]float64, len(src))
	for j := range src {
		if reversed {
			out[j] = src[len(src)-1-j]
		} else {
			out[j] = src[j]
		}
	}
	return out, nil
}

// line concatenates arcs, dropping the shared first point of every arc
// after the first.
func (t *Topology) line(arcs []int) ([][]float64, error) {
	var out [][]float64
	for k, i := range arcs {
		pts, err := t.arc(i)
		if err != nil {
			return nil, err
		}
		if k > 0 && len(pts) > 0 {
			pts = pts[1:]
		}
		out = append(out, pts...)
	}
	return out, nil
}

// ring is a line padded to the minimum closed ring length.
func (t *Topology) ring(arcs []int) ([][]float64, error) {
	pts, err := t.line(arcs)
	if err != nil {
		return nil, err
	}
	for len(pts) > 0 && len(pts) < 4 {
		pts = append(pts, pts[0])
	}
	return pts, nil
}

func (t *Topology) polygon(rings [][]int) ([][][]float64, error) {
	out := make([][][]float64, 0, len(rings))
	for _, r := range rings {
		pts, err := t.ring(r)
		if err != nil {
			return nil, err
		}
		out = append(out, pts)
	}
	return out, nil
}

func unmarshalArcs[T any](g *Geometry) (T, error) {
	var v T
	if len(g.Arcs) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(g.Arcs, &v); err != nil {
		return v, fmt.Errorf("%s arcs: %w", g.Type, err)
	}
	return v, nil
}

func unmarshalCoordinates[T any](g *Geometry) (T, error) {
	var v T
	if len(g.Coordinates) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(g.Coordinates, &v); err != nil {
		return v, fmt.Errorf("%s coordinates: %w", g.Type, err)
	}
	return v, nil
}
