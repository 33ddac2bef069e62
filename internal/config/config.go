package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Core
	Port       int    `env:"PORT" envDefault:"3000"`
	BackendURL string `env:"BACKEND_URL" envDefault:"http://localhost:8080/api"`

	// Chat provider: Azure OpenAI deployment
	AzureAPIKey     string `env:"AZURE_OPENAI_API_KEY"`
	AzureEndpoint   string `env:"AZURE_OPENAI_ENDPOINT"`
	AzureDeployment string `env:"AZURE_OPENAI_DEPLOYMENT_NAME" envDefault:"gpt-4o"`
	AzureAPIVersion string `env:"AZURE_OPENAI_API_VERSION" envDefault:"2025-01-01-preview"`

	// Persistence: Postgres when DATABASE_URL is set, JSON file otherwise
	DatabaseURL string `env:"DATABASE_URL"`
	StateFile   string `env:"STATE_FILE" envDefault:"finmind-state.json"`

	// HTTP
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	// Telegram front end, disabled when empty
	BotToken        string `env:"BOT_TOKEN"`
	DefaultCurrency string `env:"DEFAULT_CURRENCY" envDefault:"USD"`

	// Logging
	LogLevel          string `env:"LOG_LEVEL" envDefault:"info"`
	LogTelegramChatID int64  `env:"LOG_TELEGRAM_CHAT_ID"`
	LogTopicError     int    `env:"LOG_TOPIC_ERROR"`
	LogTopicAuth      int    `env:"LOG_TOPIC_AUTH"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")
	cfg.AzureEndpoint = strings.TrimRight(cfg.AzureEndpoint, "/")
	cfg.DefaultCurrency = strings.ToUpper(cfg.DefaultCurrency)
	return cfg, nil
}

// BotEnabled reports whether the Telegram front end should start.
func (c *Config) BotEnabled() bool {
	return c.BotToken != ""
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
