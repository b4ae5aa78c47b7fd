package mocks

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"reportingest/internal/domain"
	"reportingest/internal/export"
	"reportingest/internal/service"
)

// MockIngestService is a mock implementation of service.IngestService.
type MockIngestService struct {
	mock.Mock
}

func (m *MockIngestService) Process(ctx context.Context, event domain.UploadEvent) (*service.IngestResult, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.IngestResult), args.Error(1)
}

// MockReportService is a mock implementation of service.ReportService.
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) List(ctx context.Context, filters domain.ReportFilters) ([]domain.ReportDocument, int, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ReportDocument), args.Int(1), args.Error(2)
}

func (m *MockReportService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ReportDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReportDocument), args.Error(1)
}

func (m *MockReportService) ListScans(ctx context.Context, offset, limit int) ([]domain.ScanDocument, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ScanDocument), args.Int(1), args.Error(2)
}

// Export writes the string passed as the first Return value to w.
func (m *MockReportService) Export(ctx context.Context, w io.Writer, filters domain.ReportFilters, format export.Format) error {
	args := m.Called(ctx, w, filters, format)
	if body, ok := args.Get(0).(string); ok {
		_, _ = io.WriteString(w, body)
		return args.Error(1)
	}
	return args.Error(0)
}

// MockUploadService is a mock implementation of service.UploadService.
type MockUploadService struct {
	mock.Mock
}

func (m *MockUploadService) Upload(ctx context.Context, input service.UploadInput) (*service.UploadResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UploadResult), args.Error(1)
}
