package config_test

import (
	"testing"
	"time"

	"github.com/dom/orianna-bot/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("RIOT_API_KEY", "riot-key")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "token", cfg.DiscordToken)
	assert.Equal(t, "riot-key", cfg.RiotAPIKey)
	assert.Equal(t, "8080", cfg.APIPort)
	assert.Equal(t, 40*time.Second, cfg.MasteryInterval)
	assert.Equal(t, 10, cfg.MasteryBatchSize)
	assert.Equal(t, 120*time.Second, cfg.AccountInterval)
	assert.Equal(t, 4, cfg.WorkerCount)
	assert.Equal(t, 2*time.Minute, cfg.RefreshTimeout)
	assert.True(t, cfg.CacheEnabled)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("MASTERY_INTERVAL_SECONDS", "90")
	t.Setenv("MASTERY_BATCH_SIZE", "25")
	t.Setenv("REFRESH_WORKERS", "8")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 90*time.Second, cfg.MasteryInterval)
	assert.Equal(t, 25, cfg.MasteryBatchSize)
	assert.Equal(t, 8, cfg.WorkerCount)
	assert.False(t, cfg.CacheEnabled)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	setRequired(t)
	t.Setenv("MASTERY_INTERVAL_SECONDS", "soon")
	t.Setenv("MASTERY_BATCH_SIZE", "-not-a-number")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 40*time.Second, cfg.MasteryInterval)
	assert.Equal(t, 10, cfg.MasteryBatchSize)
}

func TestLoadRequiresCredentials(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("RIOT_API_KEY", "riot-key")
	_, err := config.Load()
	assert.Error(t, err)

	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("RIOT_API_KEY", "")
	_, err = config.Load()
	assert.Error(t, err)
}
