package port

import (
	"context"

	"github.com/google/uuid"

	"reportingest/internal/domain"
)

// ReportRepository defines the contract for normalized report persistence.
// Reports are append-only: there is no update or delete.
type ReportRepository interface {
	Create(ctx context.Context, doc *domain.ReportDocument) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ReportDocument, error)
	List(ctx context.Context, filters domain.ReportFilters) ([]domain.ReportDocument, int, error)
}

// ScanRepository defines the contract for fallback scan persistence.
type ScanRepository interface {
	Create(ctx context.Context, scan *domain.ScanDocument) error
	List(ctx context.Context, offset, limit int) ([]domain.ScanDocument, int, error)
}
