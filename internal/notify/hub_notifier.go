package notify

import (
	"context"
	"fmt"

	"reportingest/internal/port"
)

// StatusSender posts a plain text status message to the hub.
type StatusSender interface {
	SendStatus(ctx context.Context, message, conversationID string) error
}

// HubNotifier sends every outcome back to the hub endpoint, threading the
// conversation id when the analysis response carried one.
type HubNotifier struct {
	sender StatusSender
}

// NewHubNotifier creates a HubNotifier.
func NewHubNotifier(sender StatusSender) *HubNotifier {
	return &HubNotifier{sender: sender}
}

func (n *HubNotifier) Notify(ctx context.Context, o port.Outcome) error {
	if err := n.sender.SendStatus(ctx, Message(o), o.ConversationID); err != nil {
		return fmt.Errorf("sending hub status: %w", err)
	}
	return nil
}
