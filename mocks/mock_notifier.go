package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"reportingest/internal/port"
)

// MockNotifier is a mock implementation of port.Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, outcome port.Outcome) error {
	args := m.Called(ctx, outcome)
	return args.Error(0)
}

// MockStatusSender is a mock implementation of notify.StatusSender.
type MockStatusSender struct {
	mock.Mock
}

func (m *MockStatusSender) SendStatus(ctx context.Context, message, conversationID string) error {
	args := m.Called(ctx, message, conversationID)
	return args.Error(0)
}
