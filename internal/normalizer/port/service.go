package port

import (
	"context"

	"github.com/anthanhphan/go-pptx-normalizer/internal/normalizer/domain"
)

//go:generate mockgen -destination=../service/mocks/normalize_service_mock.go -package=mocks -source=service.go

// NormalizeService defines the business logic behind the normalize endpoint.
type NormalizeService interface {
	// Normalize stages the upload, round-trips it through the converter and
	// returns the resulting bytes. No artifact of the call survives it.
	Normalize(ctx context.Context, req domain.NormalizeRequest) (*domain.NormalizeResult, error)

	// Status reports converter health.
	Status() domain.ServiceStatus
}
