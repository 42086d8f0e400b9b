// Package soffice runs LibreOffice in headless mode as the document
// converter behind the normalizer.
package soffice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anthanhphan/go-pptx-normalizer/internal/normalizer/config"
	"github.com/anthanhphan/go-pptx-normalizer/internal/normalizer/domain"
	"github.com/anthanhphan/go-pptx-normalizer/internal/normalizer/port"
	"github.com/anthanhphan/gosdk/logger"
)

// Names tried on PATH, then well-known install locations.
var (
	pathCandidates    = []string{"soffice", "libreoffice"}
	installCandidates = []string{
		"/usr/bin/soffice",
		"/usr/lib/libreoffice/program/soffice",
		"/opt/libreoffice/program/soffice",
		"/opt/homebrew/bin/soffice",
		"/Applications/LibreOffice.app/Contents/MacOS/soffice",
	}
)

var ErrBinaryNotFound = errors.New("LibreOffice binary not found")

// Converter invokes soffice --convert-to. Each invocation gets its own user
// profile directory unless profile isolation is disabled, so concurrent
// conversions never share LibreOffice's instance lock.
type Converter struct {
	binary         string
	timeout        time.Duration
	isolateProfile bool
	exec           executor
}

// Ensure Converter implements port.Converter.
var _ port.Converter = (*Converter)(nil)

// New resolves the soffice binary and builds a converter.
func New(cfg config.ConverterConfig) (*Converter, error) {
	return newConverter(cfg, osExecutor{})
}

func newConverter(cfg config.ConverterConfig, exec executor) (*Converter, error) {
	binary, err := resolveBinary(cfg.Binary, exec)
	if err != nil {
		return nil, err
	}
	return &Converter{
		binary:         binary,
		timeout:        cfg.ProcessTimeout(),
		isolateProfile: cfg.IsolateProfile,
		exec:           exec,
	}, nil
}

func resolveBinary(configured string, exec executor) (string, error) {
	if configured != "" {
		if path, err := exec.LookPath(configured); err == nil {
			return path, nil
		}
		if exec.Exists(configured) {
			return configured, nil
		}
		return "", fmt.Errorf("%w: %s", ErrBinaryNotFound, configured)
	}

	for _, name := range pathCandidates {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	for _, path := range installCandidates {
		if exec.Exists(path) {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s and %s", ErrBinaryNotFound,
		strings.Join(pathCandidates, ", "), strings.Join(installCandidates, ", "))
}

func (c *Converter) Name() string { return c.binary }

// Convert runs one soffice conversion bounded by the configured timeout.
func (c *Converter) Convert(ctx context.Context, inputPath, outputDir, targetFormat string) (*domain.ProcessOutput, error) {
	absInput, err := filepath.Abs(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve input path: %w", err)
	}
	absOutputDir, err := filepath.Abs(outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output dir: %w", err)
	}

	args := make([]string, 0, 8)
	if c.isolateProfile {
		profileDir, err := os.MkdirTemp(filepath.Dir(absOutputDir), "profile-")
		if err != nil {
			return nil, fmt.Errorf("failed to create converter profile: %w", err)
		}
		defer func() {
			if err := os.RemoveAll(profileDir); err != nil {
				logger.Warnw("Converter profile cleanup failed", "profile", profileDir, "error", err.Error())
			}
		}()
		args = append(args, "-env:UserInstallation="+fileURL(profileDir))
	}
	args = append(args,
		"--headless",
		"--norestore",
		"--convert-to", targetFormat,
		"--outdir", absOutputDir,
		absInput,
	)

	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	logger.Debugw("Executing converter", "binary", c.binary, "args", strings.Join(args, " "))

	var stdout, stderr bytes.Buffer
	start := time.Now()
	exitCode, started, runErr := c.exec.Run(runCtx, c.binary, args, &stdout, &stderr)
	out := &domain.ProcessOutput{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
		Duration: time.Since(start),
	}
	if runErr == nil {
		return out, nil
	}

	// The parent context ending is the caller's cancellation, not a hung converter.
	if ctx.Err() != nil {
		return out, ctx.Err()
	}

	return out, &domain.ConversionError{
		ExitCode: exitCode,
		Stdout:   out.Stdout,
		Stderr:   out.Stderr,
		TimedOut: errors.Is(runCtx.Err(), context.DeadlineExceeded),
		Started:  started,
		Err:      runErr,
	}
}

// fileURL renders a local directory as the file:// URL LibreOffice expects.
func fileURL(path string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}
