package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthanhphan/go-pptx-normalizer/internal/normalizer/config"
	"github.com/anthanhphan/go-pptx-normalizer/internal/normalizer/domain"
	"github.com/anthanhphan/gosdk/logger"
)

// ConvertFile normalizes one local presentation and writes the result to
// outputPath, or next to the input as <name>.normalized.pptx when empty.
func ConvertFile(ctx context.Context, configPath, inputPath, outputPath, mode string) (*domain.NormalizeResult, string, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config: %w", err)
	}
	logger.InitLogger(&cfg.Logger)

	parsedMode, err := domain.ParseMode(mode, "")
	if err != nil {
		return nil, "", err
	}

	svc, closeFn, err := NewService(cfg)
	if err != nil {
		return nil, "", err
	}
	defer closeFn()

	in, err := os.Open(inputPath)
	if err != nil {
		return nil, "", fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	result, err := svc.Normalize(ctx, domain.NormalizeRequest{
		FileName: filepath.Base(inputPath),
		Content:  in,
		Mode:     parsedMode,
	})
	if err != nil {
		return nil, "", err
	}

	if outputPath == "" {
		outputPath = defaultOutputPath(inputPath)
	}
	if err := os.WriteFile(outputPath, result.Data, 0o644); err != nil {
		return nil, "", fmt.Errorf("write output: %w", err)
	}
	return result, outputPath, nil
}

func defaultOutputPath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext) + ".normalized.pptx"
}
