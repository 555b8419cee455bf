package whatsapp

import (
	"context"
	"net/http"
	"strings"

	"github.com/hsalem/barberbook/internal/engine"
	"github.com/hsalem/barberbook/internal/session"
	"github.com/hsalem/barberbook/pkg/logging"
)

const conversationPrefix = "whatsapp:"

// Sender is the outbound side of the channel; *Client satisfies it.
type Sender interface {
	SendTextMessage(ctx context.Context, to, text string) (*SendResponse, error)
}

// Adapter is the WhatsApp channel adapter: inbound webhooks feed the
// conversation manager, replies go back out through the Cloud API. It
// also delivers reminders for this channel as a session.Notifier.
type Adapter struct {
	sender   Sender
	webhook  *WebhookHandler
	sessions *session.Manager
	logger   *logging.Logger
}

// NewAdapter wires the WhatsApp channel to the conversation manager.
func NewAdapter(sender Sender, verifyToken, appSecret string, sessions *session.Manager, logger *logging.Logger) *Adapter {
	if logger == nil {
		logger = logging.Default()
	}
	a := &Adapter{
		sender:   sender,
		sessions: sessions,
		logger:   logger,
	}
	a.webhook = NewWebhookHandler(verifyToken, appSecret, a.handleInbound)
	return a
}

// ConversationID builds the canonical conversation ID for a WhatsApp
// sender.
func ConversationID(waID string) string {
	return conversationPrefix + waID
}

// HandleVerification handles GET /webhooks/whatsapp.
func (a *Adapter) HandleVerification(w http.ResponseWriter, r *http.Request) {
	a.webhook.HandleVerification(w, r)
}

// HandleWebhook handles POST /webhooks/whatsapp.
func (a *Adapter) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	a.webhook.HandleInbound(w, r)
}

func (a *Adapter) handleInbound(msg ParsedInboundMessage) {
	ctx := context.Background()
	convID := ConversationID(msg.SenderID)

	// The sender's number is the customer identity on this channel, so
	// the dialogue never has to ask for contact details.
	replies, err := a.sessions.Handle(ctx, convID, engine.ChannelWhatsApp, msg.SenderID, msg.Text)
	if err != nil {
		a.logger.Error("whatsapp: turn failed", "sender_id", msg.SenderID, "error", err)
		a.sendText(ctx, msg.SenderID, "Sorry, something went wrong. Please try again. | عذراً، حدث خطأ ما. حاول مرة أخرى.")
		return
	}

	for _, reply := range replies {
		a.sendText(ctx, msg.SenderID, reply.Text)
	}
}

// Notify implements session.Notifier: reminder delivery for this channel.
func (a *Adapter) Notify(ctx context.Context, conversationID, text string) error {
	to := strings.TrimPrefix(conversationID, conversationPrefix)
	_, err := a.sender.SendTextMessage(ctx, to, text)
	if err != nil {
		a.logger.Error("whatsapp: reminder send failed", "to", to, "error", err)
	}
	return err
}

func (a *Adapter) sendText(ctx context.Context, to, text string) {
	if _, err := a.sender.SendTextMessage(ctx, to, text); err != nil {
		a.logger.Error("whatsapp: failed to send message", "to", to, "error", err)
	}
}
