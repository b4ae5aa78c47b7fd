package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"reportingest/internal/domain"
)

// MockScanRepo is a mock implementation of port.ScanRepository.
type MockScanRepo struct {
	mock.Mock
}

func (m *MockScanRepo) Create(ctx context.Context, scan *domain.ScanDocument) error {
	args := m.Called(ctx, scan)
	return args.Error(0)
}

func (m *MockScanRepo) List(ctx context.Context, offset, limit int) ([]domain.ScanDocument, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ScanDocument), args.Int(1), args.Error(2)
}
