package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, int64(3600), cfg.MaxConnectionLifetime)
	assert.Equal(t, 10*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, 10*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 8, cfg.MaxPoolSize)
	assert.Equal(t, "/metrics", cfg.MetricsPath)
}

func TestParseOverlaysOntoDefaults(t *testing.T) {
	cfg, err := Parse(`
user_agent = "custom-agent/2.0"
read_timeout_seconds = 30
max_pool_size = 16
`)
	require.NoError(t, err)

	assert.Equal(t, "custom-agent/2.0", cfg.UserAgent)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 16, cfg.MaxPoolSize)

	// Keys absent from the file keep their defaults
	assert.Equal(t, int64(3600), cfg.MaxConnectionLifetime)
	assert.Equal(t, 10*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, 4, cfg.MaxIdle)
}

func TestParseExplicitZeroWins(t *testing.T) {
	cfg, err := Parse(`max_connection_lifetime_seconds = 0`)
	require.NoError(t, err)
	assert.Equal(t, int64(0), cfg.MaxConnectionLifetime)
}

func TestParseNegativeLifetimeMeansUnbounded(t *testing.T) {
	cfg, err := Parse(`max_connection_lifetime_seconds = -1`)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), cfg.MaxConnectionLifetime)
}

func TestParseRejectsBadToml(t *testing.T) {
	_, err := Parse(`max_pool_size = "not a number"`)
	require.Error(t, err)
}
