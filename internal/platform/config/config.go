package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv           string `env:"APP_ENV" default:"development"`
	OpsPort          string `env:"OPS_PORT" default:"8080"`
	DatabasePath     string `env:"DATABASE_PATH" default:"koko.db"`
	FeatureFlagsPath string `env:"FEATURE_FLAGS_PATH" default:"feature_flags.yaml"`
	BotUserID        int64  `env:"BOT_USER_ID"`
	LogLevel         string `env:"LOG_LEVEL" default:"info"`
	LogFormat        string `env:"LOG_FORMAT" default:"text"`

	DefaultPrefix string `env:"DEFAULT_PREFIX" default:"!"`

	DailyAmount int64         `env:"DAILY_AMOUNT" default:"10"`
	DailyPeriod time.Duration `env:"DAILY_PERIOD" default:"24h"`

	SettingsCacheTTL time.Duration `env:"SETTINGS_CACHE_TTL" default:"10s"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.BotUserID <= 0 {
		return fmt.Errorf("BOT_USER_ID is required")
	}

	if strings.ContainsAny(cfg.DefaultPrefix, " \t\n") || cfg.DefaultPrefix == "" {
		return fmt.Errorf("DEFAULT_PREFIX must be non-empty and contain no whitespace")
	}

	if cfg.DailyAmount <= 0 {
		return fmt.Errorf("DAILY_AMOUNT must be positive, got %d", cfg.DailyAmount)
	}
	if cfg.DailyPeriod <= 0 {
		return fmt.Errorf("DAILY_PERIOD must be positive, got %s", cfg.DailyPeriod)
	}

	if cfg.SettingsCacheTTL < 0 {
		return fmt.Errorf("SETTINGS_CACHE_TTL must not be negative, got %s", cfg.SettingsCacheTTL)
	}

	return nil
}
