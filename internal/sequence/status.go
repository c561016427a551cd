package sequence

import (
	"fmt"
	"log/slog"

	"github.com/roach88/circuitglobe/internal/dataset"
)

// StatusDisplay shows the status line of the focused circuit.
type StatusDisplay interface {
	SetStatus(text string)
}

// StatusFunc adapts a function to StatusDisplay.
type StatusFunc func(text string)

func (f StatusFunc) SetStatus(text string) { f(text) }

// LogStatus writes the status line to a logger at info level.
type LogStatus struct {
	Logger *slog.Logger
}

func (s LogStatus) SetStatus(text string) {
	l := s.Logger
	if l == nil {
		l = slog.Default()
	}
	l.Info("status", "text", text)
}

// StatusText formats the status line for c.
func StatusText(c dataset.Circuit) string {
	return fmt.Sprintf("Country: %s | Circuit: %s | Years Active: %s", c.Country, c.Name, c.YearsActive)
}
