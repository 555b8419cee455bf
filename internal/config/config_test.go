package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("REDIS_ADDR", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.RedisAddr != "" {
		t.Fatalf("expected redis addr empty by default, got %s", cfg.RedisAddr)
	}
	if cfg.StorePath != "appointments.jsonl" {
		t.Fatalf("expected default store path, got %s", cfg.StorePath)
	}
	if cfg.TranscriptTTL != 30*24*time.Hour {
		t.Fatalf("expected default transcript ttl, got %s", cfg.TranscriptTTL)
	}
	if cfg.OpenHour != 11 || cfg.CloseHour != 20 {
		t.Fatalf("expected default shop hours, got %d-%d", cfg.OpenHour, cfg.CloseHour)
	}
	if cfg.ClosedWeekday != int(time.Sunday) {
		t.Fatalf("expected shop closed on Sunday by default, got %d", cfg.ClosedWeekday)
	}
	if cfg.WhatsAppEnabled() {
		t.Fatalf("expected whatsapp disabled without credentials")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("TRANSCRIPT_TTL", "72h")
	t.Setenv("TRANSCRIPT_CAP", "100")
	t.Setenv("SHOP_OPEN_HOUR", "9")
	t.Setenv("SHOP_CLOSE_HOUR", "18")
	t.Setenv("SHOP_CLOSED_WEEKDAY", "5")
	t.Setenv("SHOP_TZ", "Asia/Dubai")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Fatalf("expected env override, got %s", cfg.Env)
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Fatalf("expected redis addr override, got %s", cfg.RedisAddr)
	}
	if !cfg.RedisTLS {
		t.Fatalf("expected redis tls enabled")
	}
	if cfg.TranscriptTTL != 72*time.Hour {
		t.Fatalf("expected transcript ttl override, got %s", cfg.TranscriptTTL)
	}
	if cfg.TranscriptCap != 100 {
		t.Fatalf("expected transcript cap override, got %d", cfg.TranscriptCap)
	}
	if cfg.OpenHour != 9 || cfg.CloseHour != 18 {
		t.Fatalf("expected shop hour overrides, got %d-%d", cfg.OpenHour, cfg.CloseHour)
	}
	if cfg.ClosedWeekday != int(time.Friday) {
		t.Fatalf("expected closed weekday override, got %d", cfg.ClosedWeekday)
	}
	if cfg.ShopTimezone != "Asia/Dubai" {
		t.Fatalf("expected timezone override, got %s", cfg.ShopTimezone)
	}
}

func TestWhatsAppEnabled(t *testing.T) {
	t.Setenv("WHATSAPP_ACCESS_TOKEN", "tok")
	t.Setenv("WHATSAPP_PHONE_NUMBER_ID", "pn-1")
	t.Setenv("WHATSAPP_VERIFY_TOKEN", "verify")
	t.Setenv("WHATSAPP_APP_SECRET", "secret")
	if !Load().WhatsAppEnabled() {
		t.Fatalf("expected whatsapp enabled with full credentials")
	}
	t.Setenv("WHATSAPP_APP_SECRET", "")
	if Load().WhatsAppEnabled() {
		t.Fatalf("expected whatsapp disabled without app secret")
	}
}
