// Package config aggregates process configuration from the environment.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"holdings_backend/internal/platform/db"
	"holdings_backend/internal/platform/externalapi/fundsource"
	jwtmw "holdings_backend/internal/platform/jwt"
	"holdings_backend/internal/platform/redis"
)

// DefaultFund is used when HOLDINGS_DEFAULT_FUND is unset.
const DefaultFund = "YYY"

// Config is threaded explicitly through constructors.
type Config struct {
	DefaultFund string // also the fund of legacy single-fund tables
	FundsFile   string // optional YAML registry overrides

	DB    db.Config
	Fetch fundsource.Config
	Redis redis.Config

	CacheRefreshHour int
	CacheTZ          string

	// Ingestion pacing: at most IngestRateLimit funds per IngestRateInterval.
	IngestRateLimit    int
	IngestRateInterval time.Duration

	JWTSecret string
	HTTPAddr  string
	LogLevel  string
}

// Load reads .env (if present) and then the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug(".env not found; using system environment variables")
	}
	return FromEnv()
}

// FromEnv builds the configuration from the environment only.
func FromEnv() Config {
	return Config{
		DefaultFund:        strings.ToUpper(envOr("HOLDINGS_DEFAULT_FUND", DefaultFund)),
		FundsFile:          os.Getenv("HOLDINGS_FUNDS_FILE"),
		DB:                 db.LoadConfigFromEnv(),
		Fetch:              fundsource.LoadConfig(),
		Redis:              redis.LoadConfig(),
		CacheRefreshHour:   envInt("CACHE_REFRESH_HOUR", 8),
		CacheTZ:            envOr("CACHE_TZ", "America/New_York"),
		IngestRateLimit:    envInt("INGEST_RATE_LIMIT", 6),
		IngestRateInterval: envDuration("INGEST_RATE_INTERVAL", time.Minute),
		JWTSecret:          os.Getenv(jwtmw.EnvKeyJWTSecret),
		HTTPAddr:           envOr("HTTP_ADDR", ":8080"),
		LogLevel:           envOr("LOG_LEVEL", "info"),
	}
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return def
}
