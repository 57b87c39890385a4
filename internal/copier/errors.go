package copier

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptySelection is returned when no series is selected. Nothing is copied.
	ErrEmptySelection = errors.New("no series selected")
	// ErrNoDestination is returned when no destination folder was chosen. Callers treat it
	// as a cancelled operation rather than a failure.
	ErrNoDestination = errors.New("no destination folder chosen")
	// ErrUnknownSeries is returned when a selected UID is not in the table.
	ErrUnknownSeries = errors.New("unknown series")
)

// FileError reports one file that could not be copied.
type FileError struct {
	Source      string
	Destination string
	Err         error
}

func (e FileError) Error() string {
	return fmt.Sprintf("copy %s to %s: %v", e.Source, e.Destination, e.Err)
}

func (e FileError) Unwrap() error { return e.Err }

// PartialFailureError is returned by Result.Err when some files failed to copy.
type PartialFailureError struct {
	Failed []FileError
	Total  int
}

func (e *PartialFailureError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d of %d files failed to copy", len(e.Failed), e.Total)
	for _, f := range e.Failed {
		sb.WriteString("\n  ")
		sb.WriteString(f.Error())
	}
	return sb.String()
}

// Unwrap exposes every per-file error to errors.Is and errors.As.
func (e *PartialFailureError) Unwrap() []error {
	errs := make([]error, len(e.Failed))
	for i, f := range e.Failed {
		errs[i] = f
	}
	return errs
}

// IsPartialFailure reports whether err is (or wraps) a PartialFailureError.
func IsPartialFailure(err error) bool {
	var e *PartialFailureError
	return errors.As(err, &e)
}
