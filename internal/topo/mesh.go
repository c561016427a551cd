package topo

import (
	"fmt"

	geojson "github.com/paulmach/go.geojson"
)

// Filter decides whether an arc shared by geometries a and b belongs in a
// mesh. For an arc used by a single geometry, a and b are the same pointer.
type Filter func(a, b *Geometry) bool

// Interior keeps arcs shared by two different geometries, i.e. internal
// borders; coastlines are dropped.
func Interior(a, b *Geometry) bool {
	return a != b
}

// Mesh returns the arcs of the named object as a MultiLineString. With a
// nil filter every arc is kept once. Arcs are emitted in order of first
// reference.
func Mesh(t *Topology, object string, filter Filter) (*geojson.Geometry, error) {
	obj, err := t.Object(object)
	if err != nil {
		return nil, err
	}

	users := make(map[int][]*Geometry)
	var order []int
	if err := collectArcs(obj, users, &order); err != nil {
		return nil, fmt.Errorf("object %q: %w", object, err)
	}

	var lines [][][]float64
	for _, i := range order {
		geoms := users[i]
		if filter != nil && !filter(geoms[0], geoms[len(geoms)-1]) {
			continue
		}
		pts, err := t.arc(i)
		if err != nil {
			return nil, err
		}
		lines = append(lines, pts)
	}
	return geojson.NewMultiLineStringGeometry(lines...), nil
}

// collectArcs records, for every arc referenced below g, the leaf
// geometries that reference it.
func collectArcs(g *Geometry, users map[int][]*Geometry, order *[]int) error {
	owner := g
	add := func(i int) {
		if i < 0 {
			i = ^i
		}
		if _, ok := users[i]; !ok {
			*order = append(*order, i)
		}
		users[i] = append(users[i], owner)
	}

	switch g.Type {
	case TypeGeometryCollection:
		for _, member := range g.Geometries {
			if err := collectArcs(member, users, order); err != nil {
				return err
			}
		}
	case TypeLineString:
		arcs, err := unmarshalArcs[[]int](g)
		if err != nil {
			return err
		}
		for _, i := range arcs {
			add(i)
		}
	case TypeMultiLineString, TypePolygon:
		arcs, err := unmarshalArcs[[][]int](g)
		if err != nil {
			return err
		}
		for _, line := range arcs {
			for _, i := range line {
				add(i)
			}
		}
	case TypeMultiPolygon:
		arcs, err := unmarshalArcs[[][][]int](g)
		if err != nil {
			return err
		}
		for _, poly := range arcs {
			for _, ring := range poly {
				for _, i := range ring {
					add(i)
				}
			}
		}
	}
	return nil
}
