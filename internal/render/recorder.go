package render

import (
	"fmt"
	"image/color"
	"strings"
)

// Recorder is a Canvas that logs every call as a line of text. Two renders
// with the same inputs produce the same log.
type Recorder struct {
	calls []string
}

var _ Canvas = (*Recorder)(nil)

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Clear()     { r.add("clear") }
func (r *Recorder) BeginPath() { r.add("begin") }
func (r *Recorder) ClosePath() { r.add("close") }

func (r *Recorder) MoveTo(x, y float64) { r.add("move %.2f %.2f", x, y) }
func (r *Recorder) LineTo(x, y float64) { r.add("line %.2f %.2f", x, y) }

func (r *Recorder) Circle(x, y, radius float64) {
	r.add("circle %.2f %.2f %.2f", x, y, radius)
}

func (r *Recorder) Fill(c color.NRGBA) { r.add("fill %s", FormatColor(c)) }

func (r *Recorder) Stroke(c color.NRGBA, width float64) {
	r.add("stroke %s %.2f", FormatColor(c), width)
}

func (r *Recorder) FillText(text string, x, y float64, c color.NRGBA) {
	r.add("text %.2f %.2f %s %q", x, y, FormatColor(c), text)
}

// Calls returns the recorded calls.
func (r *Recorder) Calls() []string {
	return append([]string(nil), r.calls...)
}

// Count returns how many recorded calls start with op.
func (r *Recorder) Count(op string) int {
	n := 0
	for _, c := range r.calls {
		if c == op || strings.HasPrefix(c, op+" ") {
			n++
		}
	}
	return n
}

// String returns the log, one call per line.
func (r *Recorder) String() string {
	if len(r.calls) == 0 {
		return ""
	}
	return strings.Join(r.calls, "\n") + "\n"
}

// Reset discards the log.
func (r *Recorder) Reset() {
	r.calls = r.calls[:0]
}

func (r *Recorder) add(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}
