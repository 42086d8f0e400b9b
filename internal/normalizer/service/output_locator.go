package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/anthanhphan/go-pptx-normalizer/internal/normalizer/domain"
	"github.com/anthanhphan/go-pptx-normalizer/pkg/poll"
	"github.com/anthanhphan/gosdk/logger"
)

// locateOutput polls outDir until a non-empty file with the format's
// extension shows up. The converter names its output after the input, so
// the directory is scanned instead of guessing the name.
func (s *NormalizeServiceImpl) locateOutput(ctx context.Context, pass int, outDir, format string, final bool) (string, error) {
	bound := poll.Bound{
		Interval: s.cfg.Normalizer.PollInterval(),
		Attempts: s.cfg.Normalizer.PollChecks(),
	}

	logger.Debugw("Awaiting pass output", "pass", pass, "dir", outDir, "format", format, "max_wait_ms", bound.Max().Milliseconds())

	path, err := poll.Until(ctx, bound, func() (string, bool, error) {
		found, err := findOutput(outDir, format)
		return found, found != "", err
	})
	switch {
	case err == nil:
		return path, nil
	case errors.Is(err, poll.ErrExhausted), errors.Is(err, context.DeadlineExceeded):
		return "", &domain.OutputMissingError{Pass: pass, Dir: outDir, Format: format, TimedOut: final || errors.Is(err, context.DeadlineExceeded)}
	default:
		return "", fmt.Errorf("scan pass %d output: %w", pass, err)
	}
}

// findOutput returns the first non-empty regular file in dir whose
// extension matches format, ignoring case.
func findOutput(dir, format string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	want := "." + strings.ToLower(format)
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.ToLower(filepath.Ext(entry.Name())) != want {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", err
		}
		if info.Size() > 0 {
			return filepath.Join(dir, name), nil
		}
	}
	return "", nil
}
