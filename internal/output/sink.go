// Package output writes rendered frames: an animated GIF, a numbered PNG
// sequence, or several sinks at once.
package output

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fogleman/gg"
	"github.com/schollz/progressbar/v3"
)

// Frame is one rendered image and its offset in the animation.
type Frame struct {
	At    time.Duration
	Image image.Image
}

// Sink consumes frames in offset order.
type Sink interface {
	WriteFrame(f Frame) error
	Close() error
}

// PNGSequence writes each frame as dir/frame_00000.png, frame_00001.png, ...
type PNGSequence struct {
	dir string
	n   int
}

// NewPNGSequence creates dir if needed.
func NewPNGSequence(dir string) (*PNGSequence, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating frames dir: %w", err)
	}
	return &PNGSequence{dir: dir}, nil
}

func (p *PNGSequence) WriteFrame(f Frame) error {
	path := filepath.Join(p.dir, fmt.Sprintf("frame_%05d.png", p.n))
	if err := gg.SavePNG(path, f.Image); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	p.n++
	return nil
}

// Count returns the number of frames written.
func (p *PNGSequence) Count() int { return p.n }

func (p *PNGSequence) Close() error { return nil }

// Progress advances a progress bar for every frame passed to the wrapped
// sink.
type Progress struct {
	sink Sink
	bar  *progressbar.ProgressBar
}

// NewProgress wraps sink with a bar of total frames drawn on w.
func NewProgress(sink Sink, total int, description string, w io.Writer) *Progress {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)
	return &Progress{sink: sink, bar: bar}
}

func (p *Progress) WriteFrame(f Frame) error {
	if err := p.sink.WriteFrame(f); err != nil {
		return err
	}
	return p.bar.Add(1)
}

func (p *Progress) Close() error {
	return errors.Join(p.sink.Close(), p.bar.Finish())
}

// Multi writes every frame to all sinks.
type Multi []Sink

func (m Multi) WriteFrame(f Frame) error {
	for _, s := range m {
		if err := s.WriteFrame(f); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}
