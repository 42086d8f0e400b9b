package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "Nil", err: nil, want: ""},
		{name: "EmptyUpload", err: ErrEmptyUpload, want: KindInvalidRequest},
		{name: "UnknownMode", err: fmt.Errorf("%w: %q", ErrUnknownMode, "x"), want: KindInvalidRequest},
		{name: "Staging", err: fmt.Errorf("%w: disk full", ErrStagingFailed), want: KindStagingFailed},
		{name: "FirstPass", err: &ConversionError{Pass: 1, ExitCode: 1, Started: true}, want: KindFirstConversionFailed},
		{name: "SecondPass", err: &ConversionError{Pass: 2, ExitCode: 1, Started: true}, want: KindSecondConversionFailed},
		{name: "ProcessTimedOut", err: &ConversionError{Pass: 2, TimedOut: true}, want: KindConversionTimedOut},
		{name: "IntermediateMissing", err: &OutputMissingError{Pass: 1, Format: "odp"}, want: KindOutputMissing},
		{name: "FinalNeverAppeared", err: &OutputMissingError{Pass: 1, Format: "pptx", TimedOut: true}, want: KindConversionTimedOut},
		{name: "Unavailable", err: fmt.Errorf("%w: circuit open", ErrConverterUnavailable), want: KindConverterUnavailable},
		{name: "InvalidOutput", err: fmt.Errorf("%w: not a zip", ErrInvalidOutput), want: KindInvalidOutput},
		{name: "WrappedInJob", err: &JobError{JobID: "1", Err: &ConversionError{Pass: 2, Started: true}}, want: KindSecondConversionFailed},
		{name: "Other", err: context.Canceled, want: KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Kind(tt.err))
		})
	}
}

func TestConversionError(t *testing.T) {
	cause := errors.New("signal: killed")
	err := error(&ConversionError{Pass: 1, ExitCode: 77, Started: true, Stderr: " bad input \n", Stdout: "convert deck", Err: cause})

	assert.ErrorIs(t, err, ErrConversionFailed)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrConversionTimedOut)
	assert.Equal(t, "first conversion failed (exit code 77): signal: killed; stderr: bad input; stdout: convert deck", err.Error())

	timedOut := &ConversionError{Pass: 2, TimedOut: true, Started: true}
	assert.ErrorIs(t, timedOut, ErrConversionTimedOut)
	assert.ErrorIs(t, timedOut, ErrConversionFailed)
	assert.Equal(t, "conversion timed out: pass 2 exceeded its deadline", timedOut.Error())

	second := &ConversionError{Pass: 2, ExitCode: 1, Started: true}
	assert.Equal(t, "second conversion failed (exit code 1)", second.Error())
}

func TestConversionError_Infrastructure(t *testing.T) {
	assert.False(t, (&ConversionError{ExitCode: 1, Started: true}).Infrastructure())
	assert.True(t, (&ConversionError{Started: true, TimedOut: true}).Infrastructure())
	assert.True(t, (&ConversionError{ExitCode: -1}).Infrastructure())
}

func TestOutputMissingError(t *testing.T) {
	missing := &OutputMissingError{Pass: 1, Dir: "/w/pass1", Format: "odp"}
	assert.ErrorIs(t, missing, ErrOutputNotFound)
	assert.NotErrorIs(t, missing, ErrConversionTimedOut)
	assert.Equal(t, "expected output missing: no .odp found in /w/pass1 after pass 1", missing.Error())

	late := &OutputMissingError{Pass: 2, Dir: "/w/pass2", Format: "pptx", TimedOut: true}
	assert.ErrorIs(t, late, ErrOutputNotFound)
	assert.ErrorIs(t, late, ErrConversionTimedOut)
}

func TestJobError(t *testing.T) {
	err := fmt.Errorf("handler: %w", &JobError{JobID: "abc", Err: ErrEmptyUpload})

	assert.Equal(t, "abc", JobID(err))
	assert.ErrorIs(t, err, ErrEmptyUpload)
	assert.Equal(t, "handler: job abc: uploaded file is empty", err.Error())
	assert.Empty(t, JobID(ErrEmptyUpload))
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		def     Mode
		want    Mode
		wantErr bool
	}{
		{in: "", def: ModeTwoPass, want: ModeTwoPass},
		{in: "single", def: ModeTwoPass, want: ModeSingle},
		{in: " Two_Pass ", def: ModeSingle, want: ModeTwoPass},
		{in: "two-pass", def: ModeSingle, want: ModeTwoPass},
		{in: "twopass", def: ModeSingle, want: ModeTwoPass},
		{in: "triple", def: ModeSingle, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in, tt.def)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownMode)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMode_Passes(t *testing.T) {
	assert.Equal(t, 1, ModeSingle.Passes())
	assert.Equal(t, 2, ModeTwoPass.Passes())
}
