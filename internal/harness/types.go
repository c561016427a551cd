package harness

import (
	"fmt"
	"time"

	"github.com/roach88/circuitglobe/internal/geo"
	"github.com/roach88/circuitglobe/internal/sequence"
)

// Trace event types.
const (
	EventStatus = "status"
	EventRender = "render"
)

// TraceEvent is one status update or scene render, stamped with its
// timeline offset.
type TraceEvent struct {
	Type string        `json:"type"`
	At   time.Duration `json:"at"`

	// Text is the status line; status events only.
	Text string `json:"text,omitempty"`

	// Render arguments; render events only.
	Rotation geo.Rotation `json:"rotation"`
	Country  string       `json:"country,omitempty"`
	Marker   *geo.LngLat  `json:"marker,omitempty"`
	Arc      *geo.Arc     `json:"arc,omitempty"`
	Label    string       `json:"label,omitempty"`
}

func (e TraceEvent) String() string {
	if e.Type == EventStatus {
		return fmt.Sprintf("%s status %q", e.At, e.Text)
	}
	marker, arc := "none", "none"
	if e.Marker != nil {
		marker = e.Marker.String()
	}
	if e.Arc != nil {
		arc = fmt.Sprintf("[%s,%s]", e.Arc.From, e.Arc.To)
	}
	return fmt.Sprintf("%s render rot=%s country=%q marker=%s arc=%s label=%q",
		e.At, e.Rotation, e.Country, marker, arc, e.Label)
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	Session     string          `json:"session"`
	Plan        []sequence.Step `json:"plan"`
	Trace       []TraceEvent    `json:"trace"`
	Interrupted int             `json:"interrupted"`
	Final       geo.Rotation    `json:"final"`

	// Errors holds one message per failed assertion.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Plan:   []sequence.Step{},
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failed assertion and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Statuses returns the status events in order.
func (r *Result) Statuses() []TraceEvent {
	var out []TraceEvent
	for _, e := range r.Trace {
		if e.Type == EventStatus {
			out = append(out, e)
		}
	}
	return out
}

// Renders returns how many times the scene was drawn.
func (r *Result) Renders() int {
	n := 0
	for _, e := range r.Trace {
		if e.Type == EventRender {
			n++
		}
	}
	return n
}
