package notify

import (
	"context"
	"fmt"

	"reportingest/internal/port"
)

// EmailNotifier alerts operators about failed ingestions. Successful and soft
// failure outcomes are not mailed.
type EmailNotifier struct {
	sender port.EmailSender
}

// NewEmailNotifier creates an EmailNotifier.
func NewEmailNotifier(sender port.EmailSender) *EmailNotifier {
	return &EmailNotifier{sender: sender}
}

func (n *EmailNotifier) Notify(ctx context.Context, o port.Outcome) error {
	if !o.Failed() {
		return nil
	}
	subject := fmt.Sprintf("[report-ingest] %s: %s", o.Status, o.ImagePath)
	if err := n.sender.SendAlert(ctx, subject, Message(o)); err != nil {
		return fmt.Errorf("sending alert email: %w", err)
	}
	return nil
}
