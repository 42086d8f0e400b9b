package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrStagingFailed        = errors.New("staging failed")
	ErrConversionFailed     = errors.New("conversion failed")
	ErrOutputNotFound       = errors.New("expected output missing")
	ErrConversionTimedOut   = errors.New("conversion timed out")
	ErrConverterUnavailable = errors.New("converter unavailable")
	ErrInvalidOutput        = errors.New("converter produced an invalid presentation")
	ErrEmptyUpload          = errors.New("uploaded file is empty")
	ErrUnknownMode          = errors.New("unknown normalization mode")
)

// Error kinds reported to HTTP callers.
const (
	KindInvalidRequest         = "invalid_request"
	KindStagingFailed          = "staging_failed"
	KindFirstConversionFailed  = "first_conversion_failed"
	KindSecondConversionFailed = "second_conversion_failed"
	KindOutputMissing          = "output_missing"
	KindConversionTimedOut     = "conversion_timed_out"
	KindConverterUnavailable   = "converter_unavailable"
	KindInvalidOutput          = "invalid_output"
	KindInternal               = "internal_error"
)

// ConversionError reports a converter pass that did not exit cleanly.
type ConversionError struct {
	Pass     int
	ExitCode int
	Stdout   string
	Stderr   string
	// TimedOut is set when the process was killed by its deadline.
	TimedOut bool
	// Started is false when the process could not be launched at all.
	Started bool
	Err     error
}

func (e *ConversionError) Error() string {
	var b strings.Builder
	switch {
	case e.TimedOut:
		fmt.Fprintf(&b, "%s: pass %d exceeded its deadline", ErrConversionTimedOut, e.Pass)
	case e.Pass == 2:
		fmt.Fprintf(&b, "second %s", ErrConversionFailed)
	default:
		fmt.Fprintf(&b, "first %s", ErrConversionFailed)
	}
	if !e.TimedOut && e.Started {
		fmt.Fprintf(&b, " (exit code %d)", e.ExitCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		fmt.Fprintf(&b, "; stderr: %s", s)
	}
	if s := strings.TrimSpace(e.Stdout); s != "" {
		fmt.Fprintf(&b, "; stdout: %s", s)
	}
	return b.String()
}

func (e *ConversionError) Unwrap() error { return e.Err }

func (e *ConversionError) Is(target error) bool {
	switch target {
	case ErrConversionFailed:
		return true
	case ErrConversionTimedOut:
		return e.TimedOut
	}
	return false
}

// Infrastructure reports whether the failure points at the converter
// installation rather than at the uploaded file.
func (e *ConversionError) Infrastructure() bool {
	return e.TimedOut || !e.Started
}

// OutputMissingError reports a pass that exited cleanly without leaving the
// expected file in its output directory.
type OutputMissingError struct {
	Pass     int
	Dir      string
	Format   string
	TimedOut bool
}

func (e *OutputMissingError) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("%s: no .%s appeared in %s after pass %d", ErrConversionTimedOut, e.Format, e.Dir, e.Pass)
	}
	return fmt.Sprintf("%s: no .%s found in %s after pass %d", ErrOutputNotFound, e.Format, e.Dir, e.Pass)
}

func (e *OutputMissingError) Is(target error) bool {
	switch target {
	case ErrOutputNotFound:
		return true
	case ErrConversionTimedOut:
		return e.TimedOut
	}
	return false
}

// Kind maps an orchestration error to its wire kind.
func Kind(err error) string {
	var convErr *ConversionError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyUpload), errors.Is(err, ErrUnknownMode):
		return KindInvalidRequest
	case errors.Is(err, ErrConversionTimedOut):
		return KindConversionTimedOut
	case errors.As(err, &convErr):
		if convErr.Pass == 2 {
			return KindSecondConversionFailed
		}
		return KindFirstConversionFailed
	case errors.Is(err, ErrOutputNotFound):
		return KindOutputMissing
	case errors.Is(err, ErrStagingFailed):
		return KindStagingFailed
	case errors.Is(err, ErrConverterUnavailable):
		return KindConverterUnavailable
	case errors.Is(err, ErrInvalidOutput):
		return KindInvalidOutput
	default:
		return KindInternal
	}
}

// JobError ties a failure to the job that produced it.
type JobError struct {
	JobID string
	Err   error
}

func (e *JobError) Error() string { return fmt.Sprintf("job %s: %v", e.JobID, e.Err) }

func (e *JobError) Unwrap() error { return e.Err }

// JobID extracts the job identifier from err, if any.
func JobID(err error) string {
	var jobErr *JobError
	if errors.As(err, &jobErr) {
		return jobErr.JobID
	}
	return ""
}
