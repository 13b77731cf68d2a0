package fundsource

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("FETCH_TIMEOUT", "5s")
	t.Setenv("FETCH_API_ATTEMPTS", "2")
	t.Setenv("FETCH_RETRY_BACKOFF", "bogus")
	t.Setenv("FETCH_USER_AGENT", "")
	t.Setenv("HOLDINGS_OTHER_THRESHOLD", "90")

	cfg := LoadConfig()
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 2, cfg.APIAttempts)
	assert.Equal(t, 800*time.Millisecond, cfg.RetryBackoff)
	assert.Equal(t, BrowserUserAgent, cfg.UserAgent)
	assert.Equal(t, 90.0, cfg.OtherThreshold)
}
