package domain

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// PresentationMIME is the content type of an Office Open XML presentation.
const PresentationMIME = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

// Mode selects how many converter passes a normalization runs.
type Mode string

const (
	// ModeSingle converts the source format onto itself in one pass.
	ModeSingle Mode = "single"
	// ModeTwoPass converts source -> intermediate -> source.
	ModeTwoPass Mode = "two_pass"
)

// ParseMode resolves a user supplied mode, falling back to def when s is empty.
func ParseMode(s string, def Mode) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return def, nil
	case ModeSingle:
		return ModeSingle, nil
	case ModeTwoPass, "two-pass", "twopass":
		return ModeTwoPass, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Passes returns the number of converter invocations the mode needs.
func (m Mode) Passes() int {
	if m == ModeTwoPass {
		return 2
	}
	return 1
}

// NormalizeRequest carries one uploaded presentation.
type NormalizeRequest struct {
	// FileName is the client supplied name. It is only used for logging and
	// the download name, never for paths on disk.
	FileName string
	Content  io.Reader
	Mode     Mode
}

// NormalizeResult is the outcome of a successful normalization.
type NormalizeResult struct {
	JobID   string
	Data    []byte
	Mode    Mode
	Slides  int
	Digest  string
	Elapsed time.Duration
}

// ProcessOutput holds what a converter process wrote to its standard streams.
type ProcessOutput struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// ServiceStatus reports converter health for readiness probes.
type ServiceStatus struct {
	ConverterState string `json:"converter_state"`
	Converter      string `json:"converter"`
	Mode           Mode   `json:"mode"`
	Slots          int    `json:"slots"`
	SlotsBusy      int    `json:"slots_busy"`
}
