package dataset

import (
	"errors"
	"fmt"
)

// ErrDataLoad matches every *LoadError via errors.Is.
var ErrDataLoad = errors.New("data load failed")

// LoadStage identifies where loading a resource failed.
type LoadStage string

const (
	// StageFetch covers opening the file or performing the HTTP request.
	StageFetch LoadStage = "fetch"

	// StageDecode covers TopoJSON decoding and feature assembly.
	StageDecode LoadStage = "decode"

	// StageParse covers the circuits table.
	StageParse LoadStage = "parse"
)

// LoadError reports a failure to load one of the input resources. Nothing
// is returned alongside it: loading either succeeds completely or not at
// all.
type LoadError struct {
	// Source is the URL or path that failed.
	Source string

	// Stage is the step that failed.
	Stage LoadStage

	// Err is the underlying cause.
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is reports ErrDataLoad as a match so callers need not use errors.As.
func (e *LoadError) Is(target error) bool {
	return target == ErrDataLoad
}

// IsLoadError returns true if err wraps a *LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}
