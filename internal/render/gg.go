package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
)

// GGCanvas rasterizes onto an RGBA image with fogleman/gg.
type GGCanvas struct {
	dc *gg.Context
}

var _ Canvas = (*GGCanvas)(nil)

// NewGGCanvas returns a transparent width x height canvas drawing text with
// face. A nil face selects the bold Go font at 14px.
func NewGGCanvas(width, height int, face font.Face) (*GGCanvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", width, height)
	}
	if face == nil {
		var err error
		if face, err = LabelFace(14); err != nil {
			return nil, err
		}
	}
	dc := gg.NewContext(width, height)
	dc.SetFillRule(gg.FillRuleEvenOdd)
	dc.SetFontFace(face)
	return &GGCanvas{dc: dc}, nil
}

// LabelFace loads the bold Go font at size pixels.
func LabelFace(size float64) (font.Face, error) {
	f, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse label font: %w", err)
	}
	return truetype.NewFace(f, &truetype.Options{Size: size}), nil
}

func (g *GGCanvas) Clear() {
	g.dc.ClearPath()
	g.dc.SetColor(color.Transparent)
	g.dc.Clear()
}

func (g *GGCanvas) BeginPath()          { g.dc.ClearPath() }
func (g *GGCanvas) MoveTo(x, y float64) { g.dc.MoveTo(x, y) }
func (g *GGCanvas) LineTo(x, y float64) { g.dc.LineTo(x, y) }
func (g *GGCanvas) ClosePath()          { g.dc.ClosePath() }

func (g *GGCanvas) Circle(x, y, r float64) {
	g.dc.DrawCircle(x, y, r)
}

func (g *GGCanvas) Fill(c color.NRGBA) {
	g.dc.SetColor(c)
	g.dc.FillPreserve()
}

func (g *GGCanvas) Stroke(c color.NRGBA, width float64) {
	g.dc.SetColor(c)
	g.dc.SetLineWidth(width)
	g.dc.StrokePreserve()
}

// FillText draws text with its baseline at y.
func (g *GGCanvas) FillText(text string, x, y float64, c color.NRGBA) {
	g.dc.SetColor(c)
	g.dc.DrawString(text, x, y)
}

// Image returns the canvas backing image. It is overwritten by the next
// render; callers keeping frames must copy it.
func (g *GGCanvas) Image() image.Image {
	return g.dc.Image()
}

// Snapshot returns a copy of the current image.
func (g *GGCanvas) Snapshot() *image.RGBA {
	src := g.dc.Image()
	dst := image.NewRGBA(src.Bounds())
	copy(dst.Pix, src.(*image.RGBA).Pix)
	return dst
}

// Size returns the canvas dimensions.
func (g *GGCanvas) Size() (int, int) {
	return g.dc.Width(), g.dc.Height()
}
