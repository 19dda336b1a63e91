package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Dosada05/pickleball-league/scoring"
	"github.com/Dosada05/pickleball-league/storage"
)

// Config holds every setting the service reads at startup.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int
	LogLevel     string

	CORSAllowedOrigins []string

	R2 storage.CloudflareR2Config

	DefaultGamesCount    int
	DefaultPointsPerGame int

	// SessionIdleTimeout is how long an unused umpire session stays in memory.
	SessionIdleTimeout time.Duration
}

// Load reads configuration from the environment. A .env file is loaded first
// when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := strconv.Atoi(envStr("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	cfg := &Config{
		DatabaseURL:        dbURL,
		JWTSecretKey:       jwtKey,
		ServerPort:         port,
		LogLevel:           envStr("LOG_LEVEL", "info"),
		CORSAllowedOrigins: splitList(envStr("CORS_ALLOWED_ORIGINS", "*")),
		R2: storage.CloudflareR2Config{
			AccountID:       os.Getenv("R2_ACCOUNT_ID"),
			AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
			BucketName:      os.Getenv("R2_BUCKET_NAME"),
			PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
		},
		DefaultGamesCount:    scoring.ClampGamesCount(envInt("DEFAULT_GAMES_COUNT", 3)),
		DefaultPointsPerGame: scoring.ClampPoints(envInt("DEFAULT_POINTS_PER_GAME", scoring.DefaultPointsPerGame)),
		SessionIdleTimeout:   time.Duration(envInt("SESSION_IDLE_MINUTES", 120)) * time.Minute,
	}
	if cfg.SessionIdleTimeout <= 0 {
		return nil, fmt.Errorf("SESSION_IDLE_MINUTES must be positive")
	}

	return cfg, nil
}

// ScoringDefaults are the setup values a fresh umpire session starts from.
func (c *Config) ScoringDefaults() scoring.Defaults {
	return scoring.Defaults{
		GamesCount:    c.DefaultGamesCount,
		PointsPerGame: c.DefaultPointsPerGame,
	}
}

// ParseLogLevel converts a string level name to slog.Level.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
