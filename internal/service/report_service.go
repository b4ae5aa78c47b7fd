package service

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"reportingest/internal/domain"
	"reportingest/internal/export"
	"reportingest/internal/port"
)

const exportBatchSize = 200

// ReportService provides read access to stored reports and scans.
type ReportService interface {
	List(ctx context.Context, filters domain.ReportFilters) ([]domain.ReportDocument, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ReportDocument, error)
	ListScans(ctx context.Context, offset, limit int) ([]domain.ScanDocument, int, error)
	Export(ctx context.Context, w io.Writer, filters domain.ReportFilters, format export.Format) error
}

type reportService struct {
	reportRepo port.ReportRepository
	scanRepo   port.ScanRepository
}

func NewReportService(reportRepo port.ReportRepository, scanRepo port.ScanRepository) ReportService {
	return &reportService{reportRepo: reportRepo, scanRepo: scanRepo}
}

func (s *reportService) List(ctx context.Context, filters domain.ReportFilters) ([]domain.ReportDocument, int, error) {
	if filters.Offset < 0 || filters.Limit < 0 {
		return nil, 0, domain.ErrInvalidFilter
	}
	return s.reportRepo.List(ctx, filters)
}

func (s *reportService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ReportDocument, error) {
	return s.reportRepo.GetByID(ctx, id)
}

func (s *reportService) ListScans(ctx context.Context, offset, limit int) ([]domain.ScanDocument, int, error) {
	return s.scanRepo.List(ctx, offset, limit)
}

// Export writes every report matching filters, ignoring filters' pagination.
func (s *reportService) Export(ctx context.Context, w io.Writer, filters domain.ReportFilters, format export.Format) error {
	switch format {
	case export.FormatXLSX:
		xw, err := export.NewXLSXWriter()
		if err != nil {
			return err
		}
		defer func() { _ = xw.Close() }()
		if err := xw.WriteHeader(); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
		if err := s.eachBatch(ctx, filters, xw.WriteReports); err != nil {
			return err
		}
		if _, err := xw.WriteTo(w); err != nil {
			return fmt.Errorf("writing workbook: %w", err)
		}
		return nil
	default:
		if _, err := w.Write(export.BOM); err != nil {
			return fmt.Errorf("writing BOM: %w", err)
		}
		cw := export.NewCSVWriter(w)
		if err := cw.WriteHeader(); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
		if err := s.eachBatch(ctx, filters, cw.WriteReports); err != nil {
			return err
		}
		cw.Flush()
		return cw.Error()
	}
}

func (s *reportService) eachBatch(ctx context.Context, filters domain.ReportFilters, fn func([]domain.ReportDocument) error) error {
	filters.Offset = 0
	filters.Limit = exportBatchSize
	for {
		docs, total, err := s.reportRepo.List(ctx, filters)
		if err != nil {
			return fmt.Errorf("listing reports for export: %w", err)
		}
		if err := fn(docs); err != nil {
			return fmt.Errorf("writing reports: %w", err)
		}
		filters.Offset += len(docs)
		if len(docs) < exportBatchSize || filters.Offset >= total {
			return nil
		}
	}
}
