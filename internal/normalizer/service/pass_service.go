package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthanhphan/go-pptx-normalizer/internal/normalizer/domain"
	"github.com/anthanhphan/go-pptx-normalizer/pkg/resilience"
	"github.com/anthanhphan/gosdk/logger"
)

// passService drives the converter passes of one job.
type passService struct {
	core *NormalizeServiceImpl
}

// newPassService creates conversion pass use-case service.
func newPassService(core *NormalizeServiceImpl) *passService {
	return &passService{core: core}
}

// run executes every pass the mode requires and returns the final output
// path inside ws together with its bytes.
func (s *passService) run(ctx context.Context, jobID string, ws *workspace, inputPath string, mode domain.Mode) (string, []byte, error) {
	source := s.core.sourceFormat()

	finalInput := inputPath
	if mode == domain.ModeTwoPass {
		intermediate, err := s.convert(ctx, jobID, 1, inputPath, ws.passDir(1), s.core.intermediateFormat(), false)
		if err != nil {
			return "", nil, err
		}
		defer func() {
			if rmErr := os.Remove(intermediate); rmErr != nil && !os.IsNotExist(rmErr) {
				logger.Warnw("Intermediate cleanup failed", "job_id", jobID, "path", intermediate, "error", rmErr.Error())
			}
		}()

		// A leftover final file would be mistaken for this pass's output.
		stale := filepath.Join(ws.passDir(2), baseName(intermediate)+"."+source)
		if err := os.Remove(stale); err != nil && !os.IsNotExist(err) {
			return "", nil, fmt.Errorf("%w: remove stale output: %w", domain.ErrStagingFailed, err)
		}
		finalInput = intermediate
	}

	finalPass := mode.Passes()
	outputPath, err := s.convert(ctx, jobID, finalPass, finalInput, ws.passDir(finalPass), source, true)
	if err != nil {
		return "", nil, err
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		return "", nil, fmt.Errorf("read converted output: %w", err)
	}
	return outputPath, data, nil
}

// convert runs one converter pass and waits for its output file.
func (s *passService) convert(ctx context.Context, jobID string, pass int, input, outDir, format string, final bool) (string, error) {
	logger.Infow("Conversion pass started", "job_id", jobID, "pass", pass, "target_format", format)

	var out *domain.ProcessOutput
	err := s.core.slots.Run(ctx, func(ctx context.Context) error {
		return s.core.breaker.Execute(ctx, func(ctx context.Context) error {
			var convErr error
			out, convErr = s.core.converter.Convert(ctx, input, outDir, format)
			return convErr
		})
	})
	if err != nil {
		return "", passError(pass, err)
	}
	if out == nil {
		out = &domain.ProcessOutput{}
	}

	logger.Debugw("Conversion pass finished",
		"job_id", jobID,
		"pass", pass,
		"duration_ms", out.Duration.Milliseconds(),
		"stdout", strings.TrimSpace(out.Stdout),
		"stderr", strings.TrimSpace(out.Stderr),
	)

	return s.core.locateOutput(ctx, pass, outDir, format, final)
}

// passError attaches the pass number and maps scheduling failures onto
// the domain taxonomy.
func passError(pass int, err error) error {
	var convErr *domain.ConversionError
	switch {
	case errors.As(err, &convErr):
		convErr.Pass = pass
		return convErr
	case errors.Is(err, resilience.ErrCircuitOpen), errors.Is(err, resilience.ErrWorkerPoolClosed):
		return fmt.Errorf("%w: %w", domain.ErrConverterUnavailable, err)
	case errors.Is(err, context.DeadlineExceeded):
		return &domain.ConversionError{Pass: pass, TimedOut: true, Err: err}
	default:
		return fmt.Errorf("pass %d: %w", pass, err)
	}
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
