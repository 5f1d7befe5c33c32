package config

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/reservut/room-reservation/internal/role"
)

const PROD_STRING = "prod"

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	HTTPAddr     string
	LogLevel     slog.Level

	// DBDSN is optional; empty runs on in-memory stores only.
	DBDSN string

	// RedisURL is optional; when set room locks are shared through redis.
	RedisURL     string
	RoomLockTTL  time.Duration
	RoomLockWait time.Duration

	JWTSecret         string
	JWTAccessTokenTTL time.Duration

	MaxReservationDuration time.Duration
	RolePriorities         role.PriorityTable
	RoomPolicyFile         string
	AllowedEmailDomains    []string
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		log.Printf("failed to load .env file: %v", err)
	}

	cfg := &Config{}

	// Production origin (default: empty)
	cfg.ProdOrigins = getEnv("PROD_ORIGINS", "")

	// Application environment (default: dev)
	appEnvStr := getEnv("APP_ENV", "dev")
	cfg.IsProduction = appEnvStr == PROD_STRING
	if cfg.IsProduction && strings.TrimSpace(cfg.ProdOrigins) == "" {
		return nil, fmt.Errorf("PROD_ORIGINS is required when APP_ENV=%s", PROD_STRING)
	}

	// HTTP listen address (default: :8080)
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")

	// Service log level (default: info)
	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	// Database DSN is optional
	cfg.DBDSN = os.Getenv("DB_DSN")

	// Redis URL is optional
	cfg.RedisURL = os.Getenv("REDIS_URL")

	if cfg.RoomLockTTL, err = getEnvAsDuration("ROOM_LOCK_TTL", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.RoomLockWait, err = getEnvAsDuration("ROOM_LOCK_WAIT", 3*time.Second); err != nil {
		return nil, err
	}

	// JWT secret is required for signing tokens
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	// JWT access token TTL, parse as time.Duration (e.g. "15m", "1h").
	if cfg.JWTAccessTokenTTL, err = getEnvAsDuration("JWT_ACCESS_TOKEN_TTL", 15*time.Minute); err != nil {
		return nil, err
	}

	// Reservation duration ceiling (default: 3h)
	if cfg.MaxReservationDuration, err = getEnvAsDuration("MAX_RESERVATION_DURATION", 3*time.Hour); err != nil {
		return nil, err
	}
	if cfg.MaxReservationDuration <= 0 {
		return nil, fmt.Errorf("invalid MAX_RESERVATION_DURATION: must be positive")
	}

	// Role priority table
	cfg.RolePriorities, err = role.ParsePriorities(getEnv("ROLE_PRIORITIES", role.DefaultPriorities().String()))
	if err != nil {
		return nil, fmt.Errorf("invalid ROLE_PRIORITIES: %w", err)
	}

	// Room policy seed file (default: built-in rooms)
	cfg.RoomPolicyFile = getEnv("ROOM_POLICY_FILE", "")

	// Login e-mail domains (empty accepts any domain)
	cfg.AllowedEmailDomains = splitList(getEnv("ALLOWED_EMAIL_DOMAINS", "vut.cz,vutbr.cz"))

	return cfg, nil
}

// getEnv returns the value of the environment variable if set,
// otherwise returns the provided default value.
func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

// getEnvAsDuration retrieves an environment variable as a time.Duration.
// It returns the default value if the variable is not set.
func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(valStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return val, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
