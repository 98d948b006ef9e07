package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "stockboard.db", cfg.DBPath)
	assert.Equal(t, 5*time.Minute, cfg.QuoteTTL)
	assert.Equal(t, 15*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, 5, cfg.Workers)
	assert.Contains(t, cfg.Collector.Symbols, "AAPL")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("QUOTE_TTL", "30s")
	t.Setenv("COLLECT_SYMBOLS", "NVDA,AMD")
	t.Setenv("ALPHAVANTAGE_API_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.QuoteTTL)
	assert.Equal(t, []string{"NVDA", "AMD"}, cfg.Collector.Symbols)
	assert.Equal(t, "secret", cfg.Provider.APIKey)
}
