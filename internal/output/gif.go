package output

import (
	"errors"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
	"time"
)

// DefaultHold is how long the last frame stays on screen.
const DefaultHold = 2 * time.Second

// GIFWriter buffers frames and encodes an animated GIF on Close. Each
// frame is shown until the next frame's offset; the last one for Hold.
// A frame with the same offset as its predecessor replaces it.
//
// image/gif only encodes complete animations, so every paletted frame
// (one byte per pixel) is held until Close.
type GIFWriter struct {
	w      io.Writer
	hold   time.Duration
	frames []*image.Paletted
	ats    []time.Duration
	closed bool
}

// NewGIFWriter returns a writer encoding to w. A non-positive hold
// selects DefaultHold.
func NewGIFWriter(w io.Writer, hold time.Duration) *GIFWriter {
	if hold <= 0 {
		hold = DefaultHold
	}
	return &GIFWriter{w: w, hold: hold}
}

func (g *GIFWriter) WriteFrame(f Frame) error {
	if g.closed {
		return errors.New("gif writer closed")
	}
	if n := len(g.ats); n > 0 && f.At < g.ats[n-1] {
		return fmt.Errorf("frame at %s precedes previous frame at %s", f.At, g.ats[n-1])
	}

	b := f.Image.Bounds()
	pm := image.NewPaletted(b, palette.Plan9)
	draw.Draw(pm, b, f.Image, b.Min, draw.Src)

	if n := len(g.ats); n > 0 && f.At == g.ats[n-1] {
		g.frames[n-1] = pm
		return nil
	}
	g.frames = append(g.frames, pm)
	g.ats = append(g.ats, f.At)
	return nil
}

// Len returns the number of buffered frames.
func (g *GIFWriter) Len() int { return len(g.frames) }

// Delays returns the per-frame delays in hundredths of a second. Offsets
// are rounded to the GIF time unit before differencing so rounding errors
// do not accumulate.
func (g *GIFWriter) Delays() []int {
	delays := make([]int, len(g.ats))
	for i := range g.ats {
		if i == len(g.ats)-1 {
			delays[i] = centis(g.hold)
			continue
		}
		delays[i] = centis(g.ats[i+1]) - centis(g.ats[i])
	}
	return delays
}

func (g *GIFWriter) Close() error {
	if g.closed {
		return nil
	}
	g.closed = true
	if len(g.frames) == 0 {
		return errors.New("no frames to encode")
	}
	anim := &gif.GIF{
		Image:     g.frames,
		Delay:     g.Delays(),
		LoopCount: 0,
	}
	if err := gif.EncodeAll(g.w, anim); err != nil {
		return fmt.Errorf("encoding gif: %w", err)
	}
	return nil
}

func centis(d time.Duration) int {
	return int(d.Round(10*time.Millisecond) / (10 * time.Millisecond))
}
