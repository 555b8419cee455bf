package webchat

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/hsalem/barberbook/internal/engine"
	"github.com/hsalem/barberbook/pkg/logging"
)

const conversationPrefix = "webchat:"

// Sessions runs conversation turns; *session.Manager satisfies it.
type Sessions interface {
	Handle(ctx context.Context, conversationID string, ch engine.Channel, customer, text string) ([]engine.Message, error)
	History(ctx context.Context, conversationID string, limit int64) ([]engine.Message, error)
}

// Handler manages website-widget connections and messages. Replies are
// produced synchronously by the conversation engine, so each inbound
// message is answered on the same connection (or in the same HTTP
// response for the fallback endpoint).
type Handler struct {
	sessions Sessions
	logger   *logging.Logger
	widgetJS []byte

	mu    sync.RWMutex
	conns map[string]*wsConn // conversationID -> active connection
}

type wsConn struct {
	conn *websocket.Conn
	done chan struct{}
}

// InboundMessage is what the widget sends.
type InboundMessage struct {
	Type      string `json:"type"` // "message", "ping"
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

// OutboundMessage is what we send to the widget.
type OutboundMessage struct {
	Type      string           `json:"type"` // "message", "typing", "history", "session", "error", "pong"
	Text      string           `json:"text,omitempty"`
	Role      string           `json:"role,omitempty"` // "assistant" or "user"
	SessionID string           `json:"session_id,omitempty"`
	Timestamp string           `json:"timestamp,omitempty"`
	Messages  []HistoryMessage `json:"messages,omitempty"`
}

// HistoryMessage is a simplified message for history responses.
type HistoryMessage struct {
	Role      string `json:"role"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// NewHandler creates a website-widget chat handler.
func NewHandler(sessions Sessions, widgetJS []byte, logger *logging.Logger) *Handler {
	if sessions == nil {
		panic("webchat: sessions required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		sessions: sessions,
		logger:   logger,
		widgetJS: widgetJS,
		conns:    make(map[string]*wsConn),
	}
}

// ConversationID builds the canonical conversation ID for a widget session.
func ConversationID(sessionID string) string {
	return conversationPrefix + sessionID
}

// generateSessionID creates a random session identifier.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.New().String()
	}
	return hex.EncodeToString(b)
}

// HandleWebSocket upgrades to WebSocket and handles real-time messaging.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	fresh := sessionID == ""
	if fresh {
		sessionID = generateSessionID()
	}

	convID := ConversationID(sessionID)

	_ = websocket.JSON.Send(conn, OutboundMessage{
		Type:      "session",
		SessionID: sessionID,
	})

	// Returning visitors get their transcript replayed; new visitors get
	// the opening greeting instead.
	msgs, err := h.sessions.History(r.Context(), convID, 50)
	if err != nil {
		h.logger.Error("webchat: history load failed", "session_id", sessionID, "error", err)
	}
	if len(msgs) > 0 {
		_ = websocket.JSON.Send(conn, OutboundMessage{Type: "history", Messages: toHistory(msgs)})
	} else if fresh || err == nil {
		h.greet(r.Context(), conn, convID)
	}

	// Register connection
	wsc := &wsConn{conn: conn, done: make(chan struct{})}
	h.mu.Lock()
	h.conns[convID] = wsc
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		if h.conns[convID] == wsc {
			delete(h.conns, convID)
		}
		h.mu.Unlock()
		close(wsc.done)
	}()

	h.logger.Info("webchat: connection opened", "session_id", sessionID)

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("webchat: connection closed", "session_id", sessionID, "error", err)
			return
		}

		if msg.Type == "ping" {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "pong"})
			continue
		}

		if msg.Type != "message" || strings.TrimSpace(msg.Text) == "" {
			continue
		}

		h.SendToSession(convID, OutboundMessage{Type: "typing"})
		replies, err := h.sessions.Handle(r.Context(), convID, engine.ChannelWebsite, "", msg.Text)
		if err != nil {
			h.logger.Error("webchat: turn failed", "session_id", sessionID, "error", err)
			h.SendToSession(convID, OutboundMessage{
				Type: "error",
				Text: "Sorry, something went wrong. Please try again. | عذراً، حدث خطأ ما. حاول مرة أخرى.",
			})
			continue
		}
		for _, reply := range replies {
			h.SendToSession(convID, outbound(reply))
		}
	}
}

// greet runs the kickoff turn so a fresh widget session opens with the
// assistant's greeting.
func (h *Handler) greet(ctx context.Context, conn *websocket.Conn, convID string) {
	replies, err := h.sessions.Handle(ctx, convID, engine.ChannelWebsite, "", "")
	if err != nil {
		h.logger.Error("webchat: greeting failed", "conversation_id", convID, "error", err)
		return
	}
	for _, reply := range replies {
		_ = websocket.JSON.Send(conn, outbound(reply))
	}
}

// SendToSession sends a message to an active WebSocket session.
func (h *Handler) SendToSession(convID string, msg OutboundMessage) {
	h.mu.RLock()
	wsc, ok := h.conns[convID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	_ = websocket.JSON.Send(wsc.conn, msg)
}

// HandleMessage is the HTTP fallback for sending messages; the replies
// come back in the response body.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
		Text      string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		req.SessionID = generateSessionID()
	}

	convID := ConversationID(req.SessionID)
	replies, err := h.sessions.Handle(r.Context(), convID, engine.ChannelWebsite, "", req.Text)
	if err != nil {
		h.logger.Error("webchat: turn failed", "session_id", req.SessionID, "error", err)
		http.Error(w, "failed to process message", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"session_id": req.SessionID,
		"messages":   toHistory(replies),
	})
}

// HandleHistory returns chat history for a session.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	msgs, err := h.sessions.History(r.Context(), ConversationID(sessionID), 100)
	if err != nil {
		h.logger.Error("webchat: failed to load history", "error", err)
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"messages": toHistory(msgs)})
}

// HandleWidgetJS serves the embeddable widget JavaScript.
func (h *Handler) HandleWidgetJS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	_, _ = w.Write(h.widgetJS)
}

func outbound(msg engine.Message) OutboundMessage {
	return OutboundMessage{
		Type:      "message",
		Role:      string(msg.Role),
		Text:      msg.Text,
		Timestamp: msg.Timestamp.Format(time.RFC3339),
	}
}

func toHistory(msgs []engine.Message) []HistoryMessage {
	history := make([]HistoryMessage, 0, len(msgs))
	for _, m := range msgs {
		history = append(history, HistoryMessage{
			Role:      string(m.Role),
			Text:      m.Text,
			Timestamp: m.Timestamp.Format(time.RFC3339),
		})
	}
	return history
}
