package port

import (
	"context"

	"reportingest/internal/domain"
)

// OutcomeStatus classifies how an ingestion ended.
type OutcomeStatus string

const (
	OutcomeSaved         OutcomeStatus = "saved"
	OutcomeNoToolCalls   OutcomeStatus = "no_tool_calls"
	OutcomeAnalyzeFailed OutcomeStatus = "analyze_failed"
	OutcomePersistFailed OutcomeStatus = "persist_failed"
)

// Outcome describes the result of ingesting one upload.
type Outcome struct {
	Status         OutcomeStatus
	ImagePath      string
	ReportTypes    []domain.ReportType
	ConversationID string
	Err            error
}

// Failed reports whether the outcome should be treated as an error by operators.
func (o Outcome) Failed() bool {
	return o.Status == OutcomeAnalyzeFailed || o.Status == OutcomePersistFailed
}

// Notifier reports ingestion outcomes. Implementations are best-effort: callers log
// and discard returned errors.
type Notifier interface {
	Notify(ctx context.Context, outcome Outcome) error
}

// EmailSender defines the contract for sending operator alert emails.
type EmailSender interface {
	SendAlert(ctx context.Context, subject, body string) error
}
