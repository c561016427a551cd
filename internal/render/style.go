package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Style holds the colors and stroke widths of the scene.
type Style struct {
	Sphere       color.NRGBA
	SphereStroke color.NRGBA
	Land         color.NRGBA
	Highlight    color.NRGBA
	Border       color.NRGBA
	Arc          color.NRGBA
	Marker       color.NRGBA
	Label        color.NRGBA

	SphereWidth  float64
	BorderWidth  float64
	ArcWidth     float64
	MarkerRadius float64
	LabelOffset  float64
	LabelSize    float64
}

// DefaultStyle returns the reference look: dark sphere, grey land, red
// highlight, white borders and a light grey arc.
func DefaultStyle() Style {
	return Style{
		Sphere:       mustColor("#1b1b1b"),
		SphereStroke: mustColor("white"),
		Land:         mustColor("#444"),
		Highlight:    mustColor("red"),
		Border:       mustColor("white"),
		Arc:          mustColor("#bbb"),
		Marker:       mustColor("red"),
		Label:        mustColor("white"),

		SphereWidth:  2,
		BorderWidth:  0.5,
		ArcWidth:     2,
		MarkerRadius: 5,
		LabelOffset:  7,
		LabelSize:    14,
	}
}

// ParseColor parses a CSS color name ("red", "white") or a hex color in
// #rgb, #rrggbb or #rrggbbaa form.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return color.NRGBA{}, fmt.Errorf("empty color")
	}
	if !strings.HasPrefix(s, "#") {
		c, ok := colornames.Map[s]
		if !ok {
			return color.NRGBA{}, fmt.Errorf("unknown color name %q", s)
		}
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, nil
	}

	hex := s[1:]
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		fallthrough
	case 6:
		hex += "ff"
	case 8:
	default:
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// FormatColor renders c as #rrggbb, or #rrggbbaa when not opaque.
func FormatColor(c color.NRGBA) string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

func mustColor(s string) color.NRGBA {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}
