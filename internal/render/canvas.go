// Package render draws the globe scene onto a 2D canvas.
package render

import (
	"image/color"
)

// Canvas is the subset of 2D canvas calls the scene needs. Paths are built
// with BeginPath/MoveTo/LineTo/ClosePath/Circle and painted by Fill and
// Stroke, which keep the current path so a shape can be filled and then
// outlined. Fill uses the even-odd rule.
type Canvas interface {
	Clear()
	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	ClosePath()
	Circle(x, y, r float64)
	Fill(c color.NRGBA)
	Stroke(c color.NRGBA, width float64)
	FillText(text string, x, y float64, c color.NRGBA)
}
