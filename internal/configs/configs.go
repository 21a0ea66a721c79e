/*
Package configs loads and parses the application's configuration.

All settings come from environment variables, with development defaults for
local runs and hard requirements in other environments.
*/
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig contains every runtime setting the coordinator needs.
type AppConfig struct {
	// General Server Settings
	Environment string
	Port        int

	// Security Settings
	AllowedOrigins []string
	JWTSecret      string

	// AdminKey gates issuance of moderator and owner identity tokens. An
	// empty key disables elevated issuance entirely.
	AdminKey string

	// Chat Tuning
	// MessageRateLimit is the number of room messages an identity may send
	// within MessageRateWindow before being throttled.
	MessageRateLimit  int
	MessageRateWindow time.Duration

	// RoomCreateLimit is the number of rooms an identity may create within
	// RoomCreateWindow before being throttled.
	RoomCreateLimit  int
	RoomCreateWindow time.Duration

	// HistoryLimit bounds the per-room (and per-DM-thread) recent message buffer.
	HistoryLimit int

	// MaxMessageLength caps room message bodies, in characters.
	MaxMessageLength int

	// StrictUsernames rejects a second concurrent session for the same
	// username when set. The default allows multiple connections per name.
	StrictUsernames bool

	// Database Settings. An empty DSN disables persistence entirely.
	DatabaseDSN string
}

func intEnv(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", name, err)
	}
	return v, nil
}

func durationEnv(name string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", name, err)
	}
	return v, nil
}

// LoadConfig reads and validates the application configuration from
// environment variables, returning the populated AppConfig.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}

	// --- General Server Settings ---
	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	port, err := intEnv("PORT", 8080)
	if err != nil {
		return nil, err
	}
	cfg.Port = port

	if cfg.Port < 1024 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the allowed range (1024-65535)", cfg.Port)
	}

	// --- Security Settings ---
	if originsStr := os.Getenv("ALLOWED_ORIGINS"); originsStr != "" {
		for _, origin := range strings.Split(originsStr, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		if cfg.Environment != "development" {
			return nil, fmt.Errorf("JWT_SECRET environment variable is required in %s environment", cfg.Environment)
		}
		cfg.JWTSecret = "insecure_development_secret_change_me"
	}

	cfg.AdminKey = os.Getenv("ADMIN_KEY")

	// --- Chat Tuning ---
	if cfg.MessageRateLimit, err = intEnv("MESSAGE_RATE_LIMIT", 10); err != nil {
		return nil, err
	}
	if cfg.MessageRateWindow, err = durationEnv("MESSAGE_RATE_WINDOW", 4*time.Second); err != nil {
		return nil, err
	}
	if cfg.RoomCreateLimit, err = intEnv("ROOM_CREATE_LIMIT", 3); err != nil {
		return nil, err
	}
	if cfg.RoomCreateWindow, err = durationEnv("ROOM_CREATE_WINDOW", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.HistoryLimit, err = intEnv("HISTORY_LIMIT", 200); err != nil {
		return nil, err
	}
	if cfg.MaxMessageLength, err = intEnv("MAX_MESSAGE_LENGTH", 500); err != nil {
		return nil, err
	}
	cfg.StrictUsernames = os.Getenv("STRICT_USERNAMES") == "true"

	if cfg.MessageRateLimit < 1 || cfg.RoomCreateLimit < 1 {
		return nil, fmt.Errorf("rate limits must be at least 1")
	}
	if cfg.HistoryLimit < 1 {
		return nil, fmt.Errorf("HISTORY_LIMIT must be at least 1")
	}

	// --- Database Settings ---
	// Persistence is optional: the in-memory state is authoritative and an
	// empty DSN runs the coordinator without any store.
	cfg.DatabaseDSN = os.Getenv("DATABASE_URL")

	return cfg, nil
}
