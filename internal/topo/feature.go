package topo

import (
	"fmt"

	geojson "github.com/paulmach/go.geojson"
)

// Feature converts the named object into a GeoJSON feature collection. A
// GeometryCollection yields one feature per member geometry, in document
// order; any other object yields a single feature.
func Feature(t *Topology, object string) (*geojson.FeatureCollection, error) {
	obj, err := t.Object(object)
	if err != nil {
		return nil, err
	}

	fc := geojson.NewFeatureCollection()
	members := []*Geometry{obj}
	if obj.Type == TypeGeometryCollection {
		members = obj.Geometries
	}
	for i, g := range members {
		f, err := t.feature(g)
		if err != nil {
			return nil, fmt.Errorf("object %q geometry %d: %w", object, i, err)
		}
		fc.AddFeature(f)
	}
	return fc, nil
}

func (t *Topology) feature(g *Geometry) (*geojson.Feature, error) {
	geom, err := t.Geometry(g)
	if err != nil {
		return nil, err
	}
	f := geojson.NewFeature(geom)
	f.ID = g.ID
	for k, v := range g.Properties {
		f.SetProperty(k, v)
	}
	return f, nil
}

// Geometry converts a single TopoJSON geometry to GeoJSON. A geometry with
// no type (null geometry) converts to nil.
func (t *Topology) Geometry(g *Geometry) (*geojson.Geometry, error) {
	switch g.Type {
	case "":
		return nil, nil
	case TypePoint:
		c, err := unmarshalCoordinates[[]float64](g)
		if err != nil {
			return nil, err
		}
		return geojson.NewPointGeometry(t.point(c)), nil
	case TypeMultiPoint:
		cs, err := unmarshalCoordinates[[][]float64](g)
		if err != nil {
			return nil, err
		}
		pts := make([][]float64, len(cs))
		for i, c := range cs {
			pts[i] = t.point(c)
		}
		return geojson.NewMultiPointGeometry(pts...), nil
	case TypeLineString:
		arcs, err := unmarshalArcs[[]int](g)
		if err != nil {
			return nil, err
		}
		line, err := t.line(arcs)
		if err != nil {
			return nil, err
		}
		return geojson.NewLineStringGeometry(line), nil
	case TypeMultiLineString:
		arcs, err := unmarshalArcs[[][]int](g)
		if err != nil {
			return nil, err
		}
		lines := make([][][]float64, 0, len(arcs))
		for _, a := range arcs {
			line, err := t.line(a)
			if err != nil {
				return nil, err
			}
			lines = append(lines, line)
		}
		return geojson.NewMultiLineStringGeometry(lines...), nil
	case TypePolygon:
		arcs, err := unmarshalArcs[[][]int](g)
		if err != nil {
			return nil, err
		}
		poly, err := t.polygon(arcs)
		if err != nil {
			return nil, err
		}
		return geojson.NewPolygonGeometry(poly), nil
	case TypeMultiPolygon:
		arcs, err := unmarshalArcs[[][][]int](g)
		if err != nil {
			return nil, err
		}
		polys := make([][][][]float64, 0, len(arcs))
		for _, p := range arcs {
			poly, err := t.polygon(p)
			if err != nil {
				return nil, err
			}
			polys = append(polys, poly)
		}
		return geojson.NewMultiPolygonGeometry(polys...), nil
	case TypeGeometryCollection:
		geoms := make([]*geojson.Geometry, 0, len(g.Geometries))
		for _, member := range g.Geometries {
			geom, err := t.Geometry(member)
			if err != nil {
				return nil, err
			}
			if geom != nil {
				geoms = append(geoms, geom)
			}
		}
		return geojson.NewCollectionGeometry(geoms...), nil
	default:
		return nil, fmt.Errorf("unsupported geometry type %q", g.Type)
	}
}
