package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/hsalem/barberbook/internal/http/middleware"
	"github.com/hsalem/barberbook/pkg/logging"
)

// WebchatHandler is the website-widget surface the router mounts.
type WebchatHandler interface {
	HandleWebSocket(w http.ResponseWriter, r *http.Request)
	HandleMessage(w http.ResponseWriter, r *http.Request)
	HandleHistory(w http.ResponseWriter, r *http.Request)
	HandleWidgetJS(w http.ResponseWriter, r *http.Request)
}

// WhatsAppHandler is the Meta webhook surface the router mounts.
type WhatsAppHandler interface {
	HandleVerification(w http.ResponseWriter, r *http.Request)
	HandleWebhook(w http.ResponseWriter, r *http.Request)
}

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	Webchat            WebchatHandler
	WhatsApp           WhatsAppHandler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// ChatRatePerSecond limits inbound chat messages per IP; zero
	// disables rate limiting.
	ChatRatePerSecond float64
	ChatBurst         int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.Webchat != nil {
		r.Route("/chat", func(chat chi.Router) {
			chat.Get("/widget.js", cfg.Webchat.HandleWidgetJS)
			chat.Get("/history", cfg.Webchat.HandleHistory)
			chat.Group(func(limited chi.Router) {
				if cfg.ChatRatePerSecond > 0 {
					limited.Use(httpmiddleware.RateLimit(cfg.ChatRatePerSecond, cfg.ChatBurst))
				}
				limited.Get("/ws", cfg.Webchat.HandleWebSocket)
				limited.Post("/message", cfg.Webchat.HandleMessage)
			})
		})
	}

	if cfg.WhatsApp != nil {
		r.Route("/webhooks/whatsapp", func(wh chi.Router) {
			wh.Get("/", cfg.WhatsApp.HandleVerification)
			wh.Post("/", cfg.WhatsApp.HandleWebhook)
		})
	}

	return r
}
