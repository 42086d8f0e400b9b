package port

import (
	"context"

	"github.com/anthanhphan/go-pptx-normalizer/internal/normalizer/domain"
)

//go:generate mockgen -destination=../service/mocks/converter_mock.go -package=mocks -source=converter.go

// Converter runs one conversion pass of an external document converter.
type Converter interface {
	// Convert converts the file at inputPath into targetFormat, writing the
	// result into outputDir under a name the converter chooses. A non-zero
	// exit is reported as *domain.ConversionError with the captured output.
	Convert(ctx context.Context, inputPath, outputDir, targetFormat string) (*domain.ProcessOutput, error)

	// Name identifies the converter binary for logs and readiness output.
	Name() string
}
