// Package dataset loads the world geometry and the circuits table.
package dataset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/circuitglobe/internal/geo"
	"github.com/roach88/circuitglobe/internal/topo"
)

const (
	// DefaultWorld is the 110m world-atlas countries topology.
	DefaultWorld = "https://cdn.jsdelivr.net/npm/world-atlas@2/countries-110m.json"

	// DefaultCircuits is the circuits table next to the working directory.
	DefaultCircuits = "circuits_new.csv"

	// CountriesObject is the topology object holding country geometries.
	CountriesObject = "countries"
)

// Dataset is everything the scene needs, decoded and read-only.
type Dataset struct {
	Countries []geo.Country
	Borders   geo.Mesh
	Circuits  []Circuit
}

// Loader fetches the world topology and the circuits table. Each source is
// an http(s) URL or a local file path.
type Loader struct {
	World    string
	Circuits string

	// Client performs HTTP requests; http.DefaultClient when nil.
	Client *http.Client
}

// Load fetches both sources concurrently and decodes them. Both must
// succeed; any failure is returned as a *LoadError and no partial dataset
// is returned.
func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	world, circuits := l.World, l.Circuits
	if world == "" {
		world = DefaultWorld
	}
	if circuits == "" {
		circuits = DefaultCircuits
	}

	var (
		ds       Dataset
		worldRaw []byte
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := l.fetch(gctx, world)
		if err != nil {
			return err
		}
		worldRaw = b
		return nil
	})
	g.Go(func() error {
		b, err := l.fetch(gctx, circuits)
		if err != nil {
			return err
		}
		rows, err := ParseCircuits(bytes.NewReader(b))
		if err != nil {
			return &LoadError{Source: circuits, Stage: StageParse, Err: err}
		}
		ds.Circuits = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	countries, borders, err := DecodeWorld(bytes.NewReader(worldRaw))
	if err != nil {
		return nil, &LoadError{Source: world, Stage: StageDecode, Err: err}
	}
	ds.Countries = countries
	ds.Borders = borders

	slog.Debug("dataset loaded",
		"countries", len(ds.Countries),
		"borders", len(ds.Borders),
		"circuits", len(ds.Circuits),
	)
	return &ds, nil
}

// LoadCircuits fetches and parses only the circuits table.
func (l *Loader) LoadCircuits(ctx context.Context) ([]Circuit, error) {
	source := l.Circuits
	if source == "" {
		source = DefaultCircuits
	}
	b, err := l.fetch(ctx, source)
	if err != nil {
		return nil, err
	}
	rows, err := ParseCircuits(bytes.NewReader(b))
	if err != nil {
		return nil, &LoadError{Source: source, Stage: StageParse, Err: err}
	}
	return rows, nil
}

// DecodeWorld decodes a TopoJSON document into country shapes and the
// mesh of borders shared by two different countries.
func DecodeWorld(r io.Reader) ([]geo.Country, geo.Mesh, error) {
	t, err := topo.Decode(r)
	if err != nil {
		return nil, nil, err
	}
	fc, err := topo.Feature(t, CountriesObject)
	if err != nil {
		return nil, nil, err
	}
	countries, err := geo.NewCountries(fc)
	if err != nil {
		return nil, nil, err
	}
	mesh, err := topo.Mesh(t, CountriesObject, topo.Interior)
	if err != nil {
		return nil, nil, err
	}
	borders, err := geo.NewMesh(mesh)
	if err != nil {
		return nil, nil, err
	}
	return countries, borders, nil
}

func (l *Loader) fetch(ctx context.Context, source string) ([]byte, error) {
	rc, err := l.open(ctx, source)
	if err != nil {
		return nil, &LoadError{Source: source, Stage: StageFetch, Err: err}
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, &LoadError{Source: source, Stage: StageFetch, Err: err}
	}
	slog.Debug("fetched", "source", source, "bytes", len(b))
	return b, nil
}

func (l *Loader) open(ctx context.Context, source string) (io.ReadCloser, error) {
	if !isURL(source) {
		return os.Open(source)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return resp.Body, nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
