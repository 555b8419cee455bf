package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Appointment storage. Redis is used when REDIS_ADDR is set; the
	// JSON-lines file store is the fallback for single-node deployments.
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	StorePath     string

	// Transcript retention
	TranscriptTTL time.Duration
	TranscriptCap int64

	// WhatsApp Cloud API
	WhatsAppAccessToken   string
	WhatsAppPhoneNumberID string
	WhatsAppVerifyToken   string
	WhatsAppAppSecret     string

	// Shop schedule overrides
	OpenHour      int
	CloseHour     int
	ClosedWeekday int
	ShopTimezone  string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		StorePath:     getEnv("STORE_PATH", "appointments.jsonl"),

		TranscriptTTL: getEnvAsDuration("TRANSCRIPT_TTL", 30*24*time.Hour),
		TranscriptCap: int64(getEnvAsInt("TRANSCRIPT_CAP", 500)),

		WhatsAppAccessToken:   getEnv("WHATSAPP_ACCESS_TOKEN", ""),
		WhatsAppPhoneNumberID: getEnv("WHATSAPP_PHONE_NUMBER_ID", ""),
		WhatsAppVerifyToken:   getEnv("WHATSAPP_VERIFY_TOKEN", ""),
		WhatsAppAppSecret:     getEnv("WHATSAPP_APP_SECRET", ""),

		OpenHour:      getEnvAsInt("SHOP_OPEN_HOUR", 11),
		CloseHour:     getEnvAsInt("SHOP_CLOSE_HOUR", 20),
		ClosedWeekday: getEnvAsInt("SHOP_CLOSED_WEEKDAY", int(time.Sunday)),
		ShopTimezone:  getEnv("SHOP_TZ", "UTC"),
	}
}

// WhatsAppEnabled reports whether the WhatsApp channel has the
// credentials it needs to run.
func (c *Config) WhatsAppEnabled() bool {
	return c.WhatsAppAccessToken != "" && c.WhatsAppPhoneNumberID != "" &&
		c.WhatsAppVerifyToken != "" && c.WhatsAppAppSecret != ""
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
