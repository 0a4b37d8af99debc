package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("BOT_USER_ID", "12345")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8080", cfg.OpsPort)
	assert.Equal(t, "koko.db", cfg.DatabasePath)
	assert.Equal(t, "feature_flags.yaml", cfg.FeatureFlagsPath)
	assert.Equal(t, "!", cfg.DefaultPrefix)
	assert.Equal(t, int64(10), cfg.DailyAmount)
	assert.Equal(t, 24*time.Hour, cfg.DailyPeriod)
	assert.Equal(t, 10*time.Second, cfg.SettingsCacheTTL)
	assert.Equal(t, int64(12345), cfg.BotUserID)
}

func TestLoad_MissingBotUserID(t *testing.T) {
	t.Setenv("BOT_USER_ID", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_CustomValues(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OPS_PORT", "9090")
	t.Setenv("DEFAULT_PREFIX", "?")
	t.Setenv("DAILY_PERIOD", "12h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.OpsPort)
	assert.Equal(t, "?", cfg.DefaultPrefix)
	assert.Equal(t, 12*time.Hour, cfg.DailyPeriod)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"whitespace prefix", "DEFAULT_PREFIX", "! "},
		{"negative daily amount", "DAILY_AMOUNT", "-5"},
		{"zero daily period", "DAILY_PERIOD", "0s"},
		{"negative cache ttl", "SETTINGS_CACHE_TTL", "-1s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
