// Package fundsource acquires raw holdings tables for a configured fund. Each
// fund is served by one of two strategies: the JSON holdings API or the
// scraped page/CSV fallback chain.
package fundsource

import (
	"os"
	"strconv"
	"time"
)

// BrowserUserAgent is sent to endpoints that reject non-browser requests.
const BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Config holds the acquisition settings shared by all sources.
type Config struct {
	Timeout        time.Duration // per request
	APIAttempts    int           // attempts against a JSON holdings API
	RetryBackoff   time.Duration // pause between failed API attempts
	UserAgent      string
	OtherThreshold float64 // weight sum (percent) below which an OTHER row is synthesized
}

// DefaultConfig returns the built-in acquisition settings.
func DefaultConfig() Config {
	return Config{
		Timeout:        30 * time.Second,
		APIAttempts:    4,
		RetryBackoff:   800 * time.Millisecond,
		UserAgent:      BrowserUserAgent,
		OtherThreshold: 95,
	}
}

// LoadConfig reads acquisition settings from the environment, keeping the
// defaults for unset or malformed values.
func LoadConfig() Config {
	cfg := DefaultConfig()
	if d, err := time.ParseDuration(os.Getenv("FETCH_TIMEOUT")); err == nil && d > 0 {
		cfg.Timeout = d
	}
	if n, err := strconv.Atoi(os.Getenv("FETCH_API_ATTEMPTS")); err == nil && n > 0 {
		cfg.APIAttempts = n
	}
	if d, err := time.ParseDuration(os.Getenv("FETCH_RETRY_BACKOFF")); err == nil && d >= 0 {
		cfg.RetryBackoff = d
	}
	if ua := os.Getenv("FETCH_USER_AGENT"); ua != "" {
		cfg.UserAgent = ua
	}
	if f, err := strconv.ParseFloat(os.Getenv("HOLDINGS_OTHER_THRESHOLD"), 64); err == nil && f > 0 {
		cfg.OtherThreshold = f
	}
	return cfg
}
