package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hsalem/barberbook/internal/booking"
	"github.com/hsalem/barberbook/internal/channels/whatsapp"
	"github.com/hsalem/barberbook/internal/engine"
	"github.com/hsalem/barberbook/internal/session"
	"github.com/hsalem/barberbook/internal/webchat"
	"github.com/hsalem/barberbook/pkg/logging"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := logging.New("error")
	store := booking.NewFileStore(filepath.Join(t.TempDir(), "appointments.jsonl"))
	e := engine.New(store, logger)
	sessions := session.NewManager(e, session.NewMemoryTranscriptStore(), nil, nil, logger)
	sessions.Now = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }

	webchatHandler := webchat.NewHandler(sessions, webchat.WidgetJS, logger)
	waAdapter := whatsapp.NewAdapter(noopSender{}, "verify-me", "app-secret", sessions, logger)

	return New(&Config{
		Logger:   logger,
		Webchat:  webchatHandler,
		WhatsApp: waAdapter,
	})
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}

	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestRouterChatMessageEndpoint(t *testing.T) {
	router := newTestRouter(t)

	body := `{"session_id":"sess-1","text":"haircut"}`
	req := httptest.NewRequest(http.MethodPost, "/chat/message", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var resp struct {
		SessionID string `json:"session_id"`
		Messages  []struct {
			Role string `json:"role"`
			Text string `json:"text"`
		} `json:"messages"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.SessionID != "sess-1" {
		t.Errorf("expected session id echoed back, got %q", resp.SessionID)
	}
	if len(resp.Messages) == 0 {
		t.Fatalf("expected at least one reply message")
	}
	if resp.Messages[0].Role != "assistant" {
		t.Errorf("expected assistant reply, got %q", resp.Messages[0].Role)
	}
}

func TestRouterWidgetJSEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/chat/widget.js", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/javascript" {
		t.Fatalf("expected javascript response, got %s", ct)
	}
}

func TestRouterWhatsAppVerification(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/webhooks/whatsapp?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=777", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if rr.Body.String() != "777" {
		t.Fatalf("expected challenge echoed back, got %q", rr.Body.String())
	}
}

// TestRouterWhatsAppMissingWithoutHandler documents that the webhook
// routes are only mounted when the channel is configured; unconfigured
// deployments should 404 rather than accept unverifiable payloads.
func TestRouterWhatsAppMissingWithoutHandler(t *testing.T) {
	r := New(&Config{Logger: logging.New("error")})

	req := httptest.NewRequest(http.MethodPost, "/webhooks/whatsapp", strings.NewReader("{}"))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound && rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 404/405 when WhatsApp is not configured, got %d", rr.Code)
	}
}

func TestRouterChatRateLimit(t *testing.T) {
	logger := logging.New("error")
	store := booking.NewFileStore(filepath.Join(t.TempDir(), "appointments.jsonl"))
	e := engine.New(store, logger)
	sessions := session.NewManager(e, session.NewMemoryTranscriptStore(), nil, nil, logger)

	r := New(&Config{
		Logger:            logger,
		Webchat:           webchat.NewHandler(sessions, nil, logger),
		ChatRatePerSecond: 1,
		ChatBurst:         1,
	})

	body := `{"session_id":"sess-rl","text":"hi"}`
	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodPost, "/chat/message", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "10.0.0.1:1234"
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != want {
			t.Fatalf("request %d: expected status %d, got %d", i, want, rr.Code)
		}
	}
}

type noopSender struct{}

func (noopSender) SendTextMessage(_ context.Context, _, _ string) (*whatsapp.SendResponse, error) {
	return &whatsapp.SendResponse{}, nil
}
