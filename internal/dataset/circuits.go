package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/roach88/circuitglobe/internal/geo"
)

// Circuit is one row of the circuits table.
type Circuit struct {
	Country     string  `json:"country"`
	Name        string  `json:"name"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	YearsActive string  `json:"years_active"`
}

// Location returns the circuit position.
func (c Circuit) Location() geo.LngLat {
	return geo.LngLat{Lng: c.Lng, Lat: c.Lat}
}

// Column names of the circuits table, compared case-insensitively after
// trimming.
const (
	ColumnCountry     = "country"
	ColumnName        = "name"
	ColumnLat         = "lat"
	ColumnLng         = "lng"
	ColumnYearsActive = "years active"
)

var requiredColumns = []string{ColumnCountry, ColumnName, ColumnLat, ColumnLng}

// ParseCircuits reads a CSV table with a header row. Columns are located by
// name, so their order and any extra columns do not matter. Years Active
// may be absent; the other columns are required and lat/lng must be
// numbers.
func ParseCircuits(r io.Reader) ([]Circuit, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty circuits table")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("missing column %q", c)
		}
	}

	var out []Circuit
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", len(out)+1, err)
		}
		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		c := Circuit{
			Country:     field(ColumnCountry),
			Name:        field(ColumnName),
			YearsActive: field(ColumnYearsActive),
		}
		if c.Lat, err = parseCoordinate(field(ColumnLat)); err != nil {
			return nil, fmt.Errorf("row %d (%s): lat: %w", len(out)+1, c.Name, err)
		}
		if c.Lng, err = parseCoordinate(field(ColumnLng)); err != nil {
			return nil, fmt.Errorf("row %d (%s): lng: %w", len(out)+1, c.Name, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func parseCoordinate(s string) (float64, error) {
	if s == "" {
		return 0, errors.New("empty value")
	}
	return strconv.ParseFloat(s, 64)
}
