package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthanhphan/go-pptx-normalizer/internal/normalizer/config"
	"github.com/anthanhphan/go-pptx-normalizer/internal/normalizer/domain"
	"github.com/anthanhphan/go-pptx-normalizer/internal/normalizer/port"
	"github.com/anthanhphan/go-pptx-normalizer/pkg/pptx"
	"github.com/anthanhphan/go-pptx-normalizer/pkg/resilience"
	"github.com/anthanhphan/gosdk/logger"
	"github.com/spaolacci/murmur3"
)

// IDGenerator defines job ID allocation capability.
type IDGenerator interface {
	NextString() (string, error)
}

// NormalizeServiceImpl is the facade that wires the normalization use cases.
type NormalizeServiceImpl struct {
	cfg         *config.Config
	converter   port.Converter
	idGen       IDGenerator
	breaker     *resilience.CircuitBreaker
	slots       *resilience.WorkerPool
	defaultMode domain.Mode

	passUseCase    *passService
	sweeperUseCase *sweeperService
}

// Ensure NormalizeServiceImpl implements port.NormalizeService.
var _ port.NormalizeService = (*NormalizeServiceImpl)(nil)

// NewNormalizeService builds the normalization facade and its use-case services.
func NewNormalizeService(cfg *config.Config, converter port.Converter, idGen IDGenerator) (*NormalizeServiceImpl, error) {
	mode, err := domain.ParseMode(cfg.Normalizer.Mode, domain.ModeSingle)
	if err != nil {
		return nil, fmt.Errorf("invalid normalizer.mode: %w", err)
	}
	// A live workspace is never older than the request budget, so the
	// sweeper must wait longer than that before removing one.
	if floor := cfg.Normalizer.RequestTimeout(); cfg.Sweeper.MaxAge() <= floor {
		raised := 2 * floor
		logger.Warnw("Sweeper max age does not exceed request timeout, raising it",
			"configured_max_age_ms", cfg.Sweeper.MaxAge().Milliseconds(),
			"request_timeout_ms", floor.Milliseconds(),
			"max_age_ms", raised.Milliseconds(),
		)
		cfg.Sweeper.MaxAgeMS = int(raised.Milliseconds())
	}
	if !cfg.Converter.IsolateProfile && cfg.Converter.MaxConcurrent > 1 {
		logger.Warnw("Converter profile isolation disabled, serializing conversions",
			"configured_max_concurrent", cfg.Converter.MaxConcurrent)
	}

	svc := &NormalizeServiceImpl{
		cfg:         cfg,
		converter:   converter,
		idGen:       idGen,
		defaultMode: mode,
		slots:       resilience.NewWorkerPool(cfg.Converter.Slots(), cfg.Converter.QueueSize),
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name:             converter.Name(),
			FailureThreshold: cfg.Converter.BreakerFailureThreshold,
			OpenTimeout:      cfg.Converter.BreakerOpenTimeout(),
			IsFailure:        isConverterFault,
			OnStateChange: func(name string, from, to resilience.CircuitBreakerState) {
				logger.Warnw("Converter circuit state changed", "converter", name, "from", from, "to", to)
			},
		}),
	}

	svc.passUseCase = newPassService(svc)
	svc.sweeperUseCase = newSweeperService(svc)

	return svc, nil
}

// Normalize stages the upload in a private workspace, runs the configured
// conversion passes and returns the final bytes. The workspace is removed
// on every exit path.
func (s *NormalizeServiceImpl) Normalize(ctx context.Context, req domain.NormalizeRequest) (*domain.NormalizeResult, error) {
	start := time.Now()

	mode := req.Mode
	if mode == "" {
		mode = s.defaultMode
	}
	if mode != domain.ModeSingle && mode != domain.ModeTwoPass {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownMode, mode)
	}

	jobID, err := s.idGen.NextString()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate job id: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Normalizer.RequestTimeout())
	defer cancel()

	logger.Infow("Normalization started", "job_id", jobID, "file_name", req.FileName, "mode", mode)

	result, err := s.normalize(ctx, jobID, mode, req)
	if err != nil {
		logger.Errorw("Normalization failed",
			"job_id", jobID,
			"kind", domain.Kind(err),
			"elapsed_ms", time.Since(start).Milliseconds(),
			"error", err.Error(),
		)
		return nil, &domain.JobError{JobID: jobID, Err: err}
	}

	result.Elapsed = time.Since(start)
	logger.Infow("Normalization completed",
		"job_id", jobID,
		"mode", mode,
		"size_bytes", len(result.Data),
		"slides", result.Slides,
		"elapsed_ms", result.Elapsed.Milliseconds(),
	)
	return result, nil
}

func (s *NormalizeServiceImpl) normalize(ctx context.Context, jobID string, mode domain.Mode, req domain.NormalizeRequest) (*domain.NormalizeResult, error) {
	ws, err := newWorkspace(s.cfg.Normalizer.WorkRoot(), jobID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rmErr := ws.remove(); rmErr != nil {
			logger.Warnw("Workspace cleanup failed", "job_id", jobID, "workspace", ws.root, "error", rmErr.Error())
		}
	}()

	inputPath, size, err := ws.stage(req.Content, s.sourceFormat())
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, domain.ErrEmptyUpload
	}
	logger.Debugw("Upload staged", "job_id", jobID, "path", inputPath, "size_bytes", size)

	outputPath, data, err := s.passUseCase.run(ctx, jobID, ws, inputPath, mode)
	if err != nil {
		return nil, err
	}

	result := &domain.NormalizeResult{
		JobID:  jobID,
		Data:   data,
		Mode:   mode,
		Digest: digest(data),
	}

	if s.cfg.Normalizer.VerifyOutput && s.sourceFormat() == "pptx" {
		summary, err := pptx.Inspect(outputPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidOutput, err)
		}
		result.Slides = summary.Slides
	}

	return result, nil
}

// Status reports converter health.
func (s *NormalizeServiceImpl) Status() domain.ServiceStatus {
	return domain.ServiceStatus{
		ConverterState: string(s.breaker.State()),
		Converter:      s.converter.Name(),
		Mode:           s.defaultMode,
		Slots:          s.slots.Workers(),
		SlotsBusy:      s.slots.InFlight(),
	}
}

// StartSweeper removes abandoned workspaces now and then every interval
// until ctx ends.
func (s *NormalizeServiceImpl) StartSweeper(ctx context.Context, interval time.Duration) {
	s.sweeperUseCase.start(ctx, interval)
}

// Close stops accepting conversions and waits for running ones.
func (s *NormalizeServiceImpl) Close() {
	s.slots.Close()
	s.slots.Wait()
}

// sourceFormat returns the format uploads are staged and returned in.
func (s *NormalizeServiceImpl) sourceFormat() string {
	if f := strings.TrimPrefix(strings.ToLower(s.cfg.Normalizer.SourceFormat), "."); f != "" {
		return f
	}
	return "pptx"
}

// intermediateFormat returns the format of the first two-pass hop.
func (s *NormalizeServiceImpl) intermediateFormat() string {
	if f := strings.TrimPrefix(strings.ToLower(s.cfg.Normalizer.IntermediateFormat), "."); f != "" {
		return f
	}
	return "odp"
}

// isConverterFault keeps upload-caused exits from tripping the breaker.
func isConverterFault(err error) bool {
	var convErr *domain.ConversionError
	return errors.As(err, &convErr) && convErr.Infrastructure()
}

// digest fingerprints the output for ETag and log correlation.
func digest(data []byte) string {
	h1, h2 := murmur3.Sum128(data)
	return fmt.Sprintf("%016x%016x", h1, h2)
}
