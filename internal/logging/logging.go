// Package logging installs the slog handler used by the command line.
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

const timeFormat = time.TimeOnly

// Options select the handler.
type Options struct {
	Verbose bool

	// JSON emits JSON records instead of tinted text.
	JSON bool

	// NoColor disables colors even on a terminal.
	NoColor bool
}

// New returns a logger writing to w. Text output is colored only when w
// is a terminal.
func New(w io.Writer, opts Options) *slog.Logger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}

	var h slog.Handler
	if opts.JSON {
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	} else {
		h = tint.NewHandler(w, &tint.Options{
			AddSource:  opts.Verbose,
			Level:      level,
			TimeFormat: timeFormat,
			NoColor:    opts.NoColor || !IsTerminal(w),
		})
	}
	return slog.New(h)
}

// Setup builds a logger with New and makes it the default.
func Setup(w io.Writer, opts Options) *slog.Logger {
	l := New(w, opts)
	slog.SetDefault(l)
	return l
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
