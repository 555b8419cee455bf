package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hsalem/barberbook/internal/availability"
	"github.com/hsalem/barberbook/internal/booking"
	appconfig "github.com/hsalem/barberbook/internal/config"
	"github.com/hsalem/barberbook/internal/session"
	"github.com/hsalem/barberbook/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		return nil
	}
	return client
}

// BuildAppointmentStore picks the appointment store backend: Redis when a
// client is available, otherwise the JSON-lines file store.
func BuildAppointmentStore(redisClient *redis.Client, cfg *appconfig.Config, logger *logging.Logger) booking.Store {
	if logger == nil {
		logger = logging.Default()
	}
	if redisClient != nil {
		logger.Info("using redis appointment store", "addr", cfg.RedisAddr)
		return booking.NewRedisStore(redisClient)
	}
	logger.Info("using file appointment store", "path", cfg.StorePath)
	return booking.NewFileStore(cfg.StorePath)
}

// BuildTranscriptStore picks the transcript backend to match the
// appointment store: Redis with retention from config, else in-memory.
func BuildTranscriptStore(redisClient *redis.Client, cfg *appconfig.Config) session.TranscriptStore {
	if redisClient != nil {
		store := session.NewRedisTranscriptStore(redisClient)
		store.SetRetention(cfg.TranscriptTTL, cfg.TranscriptCap)
		return store
	}
	return session.NewMemoryTranscriptStore()
}

// BuildSchedule derives the shop schedule from config, falling back to
// the defaults on bad values.
func BuildSchedule(cfg *appconfig.Config, logger *logging.Logger) availability.Schedule {
	if logger == nil {
		logger = logging.Default()
	}
	sched := availability.Default()
	if cfg == nil {
		return sched
	}

	if cfg.OpenHour >= 0 && cfg.CloseHour <= 24 && cfg.OpenHour < cfg.CloseHour {
		sched.OpenHour = cfg.OpenHour
		sched.CloseHour = cfg.CloseHour
	} else {
		logger.Warn("invalid shop hours, using defaults", "open", cfg.OpenHour, "close", cfg.CloseHour)
	}
	if cfg.ClosedWeekday >= int(time.Sunday) && cfg.ClosedWeekday <= int(time.Saturday) {
		sched.ClosedWeekday = time.Weekday(cfg.ClosedWeekday)
	}
	if tz := strings.TrimSpace(cfg.ShopTimezone); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			logger.Warn("invalid shop timezone, using UTC", "tz", tz, "error", err)
		} else {
			sched.Location = loc
		}
	}
	return sched
}
