package noop

import (
	"context"

	"go.uber.org/zap"

	"reportingest/internal/port"
)

type noopSender struct {
	log *zap.Logger
}

// NewNoopSender creates a no-op EmailSender that only logs the alert.
func NewNoopSender(log *zap.Logger) port.EmailSender {
	return &noopSender{log: log}
}

func (s *noopSender) SendAlert(_ context.Context, subject, body string) error {
	s.log.Info("noop email alert", zap.String("subject", subject), zap.String("body", body))
	return nil
}
