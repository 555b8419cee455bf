package webchat

import (
	"context"
	"time"

	"github.com/hsalem/barberbook/pkg/logging"
)

// Notifier implements session.Notifier for the website widget. Reminders
// are pushed over the visitor's WebSocket when one is connected; the
// transcript keeps them either way, so a returning visitor still sees
// the reminder in history.
type Notifier struct {
	handler *Handler
	logger  *logging.Logger
}

// NewNotifier creates a webchat reminder notifier.
func NewNotifier(handler *Handler, logger *logging.Logger) *Notifier {
	if handler == nil {
		panic("webchat: handler required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Notifier{handler: handler, logger: logger}
}

// Notify pushes the reminder text to the visitor's WebSocket.
func (n *Notifier) Notify(_ context.Context, conversationID, text string) error {
	n.handler.SendToSession(conversationID, OutboundMessage{
		Type:      "message",
		Role:      "assistant",
		Text:      text,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	n.logger.Info("webchat: reminder pushed", "conversation_id", conversationID, "length", len(text))
	return nil
}
