// Package config provides configuration for the chat relay.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the relay configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Upstream webhook
	WebhookBaseURL       string
	WebhookPath          string
	WebhookAPIKey        string
	UpstreamTimeout      time.Duration
	UpstreamMaxBodyBytes int64
	Mode                 string

	// Request defaults
	DefaultTopK        int
	DefaultTemperature float64

	// Chunk window, in characters
	ChunkMin int
	ChunkMax int

	// Admission limits
	MaxMessageLength      int
	MaxTopK               int
	RequireConversationID bool

	// Ledger database
	DatabaseURL string

	// WebSocket settings
	WSWriteTimeout   time.Duration
	WSMaxMessageSize int64

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		HTTPPort:              getEnvInt("HTTP_PORT", 8080),
		WebhookBaseURL:        getEnv("N8N_BASE_URL", ""),
		WebhookPath:           getEnv("N8N_WEBHOOK_PATH", ""),
		WebhookAPIKey:         getEnv("N8N_API_KEY", ""),
		UpstreamTimeout:       time.Duration(getEnvInt("UPSTREAM_TIMEOUT_MS", 30000)) * time.Millisecond,
		UpstreamMaxBodyBytes:  int64(getEnvInt("UPSTREAM_MAX_BODY_BYTES", 4<<20)),
		Mode:                  getEnv("RELAY_MODE", ""),
		DefaultTopK:           getEnvInt("DEFAULT_TOP_K", 5),
		DefaultTemperature:    getEnvFloat("DEFAULT_TEMPERATURE", 0.7),
		ChunkMin:              getEnvInt("CHUNK_MIN", 600),
		ChunkMax:              getEnvInt("CHUNK_MAX", 800),
		MaxMessageLength:      getEnvInt("MAX_MESSAGE_LENGTH", 8000),
		MaxTopK:               getEnvInt("MAX_TOP_K", 50),
		RequireConversationID: getEnvBool("REQUIRE_CONVERSATION_ID", false),
		DatabaseURL:           getEnv("DATABASE_URL", "file:relay.db?cache=shared&mode=rwc"),
		WSWriteTimeout:        time.Duration(getEnvInt("WS_WRITE_TIMEOUT_MS", 10000)) * time.Millisecond,
		WSMaxMessageSize:      int64(getEnvInt("WS_MAX_MESSAGE_SIZE", 65536)),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
	}
}

// Validate checks the values that would make every relay fail in the same way.
// A missing webhook endpoint is not reported here: it is surfaced per request as
// CONFIG_ERROR so that clients can render it.
func (c *Config) Validate() error {
	if c.ChunkMin <= 0 || c.ChunkMax < c.ChunkMin {
		return fmt.Errorf("invalid chunk window [%d, %d]", c.ChunkMin, c.ChunkMax)
	}
	if c.DefaultTopK < 1 {
		return fmt.Errorf("DEFAULT_TOP_K must be >= 1, got %d", c.DefaultTopK)
	}
	if c.DefaultTemperature < 0 || c.DefaultTemperature > 1 {
		return fmt.Errorf("DEFAULT_TEMPERATURE must be in [0,1], got %g", c.DefaultTemperature)
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT_MS must be positive")
	}
	if c.UpstreamMaxBodyBytes <= 0 {
		return fmt.Errorf("UPSTREAM_MAX_BODY_BYTES must be positive")
	}
	return nil
}

// WebhookURL returns the full upstream URL, or "" when either part is missing.
func (c *Config) WebhookURL() string {
	if c.WebhookBaseURL == "" || c.WebhookPath == "" {
		return ""
	}
	return strings.TrimSuffix(c.WebhookBaseURL, "/") + "/" + strings.TrimPrefix(c.WebhookPath, "/")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
