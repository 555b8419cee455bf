package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hsalem/barberbook/internal/api/router"
	"github.com/hsalem/barberbook/internal/app/bootstrap"
	"github.com/hsalem/barberbook/internal/booking"
	"github.com/hsalem/barberbook/internal/channels/whatsapp"
	appconfig "github.com/hsalem/barberbook/internal/config"
	"github.com/hsalem/barberbook/internal/engine"
	"github.com/hsalem/barberbook/internal/observability/metrics"
	"github.com/hsalem/barberbook/internal/reminder"
	"github.com/hsalem/barberbook/internal/session"
	"github.com/hsalem/barberbook/internal/webchat"
	"github.com/hsalem/barberbook/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting barberbook API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Storage
	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer redisClient.Close()
	}
	store := bootstrap.BuildAppointmentStore(redisClient, cfg, logger)
	transcripts := bootstrap.BuildTranscriptStore(redisClient, cfg)

	// Metrics
	registry := prometheus.NewRegistry()
	convMetrics := metrics.NewConversationMetrics(registry)
	remMetrics := metrics.NewReminderMetrics(registry)

	// Conversation engine and sessions
	e := engine.New(store, logger)
	e.Schedule = bootstrap.BuildSchedule(cfg, logger)

	scheduler := reminder.NewScheduler(logger, remMetrics)
	defer scheduler.Stop()

	sessions := session.NewManager(e, transcripts, scheduler, convMetrics, logger)

	// Channels
	webchatHandler := webchat.NewHandler(sessions, webchat.WidgetJS, logger)
	sessions.RegisterNotifier(engine.ChannelWebsite, webchat.NewNotifier(webchatHandler, logger))

	var waAdapter *whatsapp.Adapter
	if cfg.WhatsAppEnabled() {
		waClient := whatsapp.NewClient(cfg.WhatsAppAccessToken, cfg.WhatsAppPhoneNumberID)
		waAdapter = whatsapp.NewAdapter(waClient, cfg.WhatsAppVerifyToken, cfg.WhatsAppAppSecret, sessions, logger)
		sessions.RegisterNotifier(engine.ChannelWhatsApp, waAdapter)
		logger.Info("whatsapp channel enabled", "phone_number_id", cfg.WhatsAppPhoneNumberID)
	} else {
		logger.Warn("whatsapp channel disabled: missing credentials")
	}

	// Re-arm reminders for appointments that survived a restart. Only
	// WhatsApp bookings have a durable delivery route; widget visitors
	// see their reminder in the transcript on reconnect.
	if _, err := scheduler.RearmAll(ctx, store, func(appt booking.Appointment) {
		if waAdapter == nil || !looksLikePhone(appt.Customer) {
			logger.Warn("no delivery route for rearmed reminder", "appointment_id", appt.ID)
			return
		}
		convID := whatsapp.ConversationID(appt.Customer)
		if err := waAdapter.Notify(context.Background(), convID, reminder.Message(appt)); err != nil {
			logger.Error("rearmed reminder delivery failed", "appointment_id", appt.ID, "error", err)
		}
	}); err != nil {
		logger.Error("failed to rearm reminders", "error", err)
	}

	// Router
	routerCfg := &router.Config{
		Logger:             logger,
		Webchat:            webchatHandler,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: []string{"*"},
		ChatRatePerSecond:  5,
		ChatBurst:          10,
	}
	if waAdapter != nil {
		routerCfg.WhatsApp = waAdapter
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// looksLikePhone reports whether the stored customer identity is a
// WhatsApp number rather than a typed name.
func looksLikePhone(s string) bool {
	s = strings.TrimPrefix(strings.TrimSpace(s), "+")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
