package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 20, cfg.Anthropic.TimeoutSecs)
	assert.Equal(t, 2, cfg.Anthropic.MaxAttempts)
	assert.Equal(t, 24, cfg.Extract.CacheTTLHours)
	assert.Equal(t, 256, cfg.Extract.CacheCapacity)
	assert.Equal(t, 4, cfg.Extract.MaxProviderCalls)
	assert.Equal(t, 20, cfg.Extract.WindowSize)
	assert.Equal(t, 10, cfg.Extract.WindowMinSamples)
	assert.Equal(t, 0.5, cfg.Extract.TripThreshold)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("VOUCHER_SERVER_PORT", "9999")
	t.Setenv("VOUCHER_ANTHROPIC_KEY", "test-key")
	t.Setenv("VOUCHER_EXTRACT_TRIP_THRESHOLD", "0.75")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "test-key", cfg.Anthropic.Key)
	assert.Equal(t, 0.75, cfg.Extract.TripThreshold)
}

func TestInitLogger_BadLevel(t *testing.T) {
	assert.Error(t, InitLogger(LogConfig{Level: "nope", Format: "json"}))
	assert.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
}
