// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	CamofoxPort    int
	NitterInstance string
	StatePath      string
	LogLevel       string

	// Telegram settings; new-reply notifications are enabled only when
	// both are set.
	TelegramBotToken string
	TelegramChatID   int64

	NoUpdateCheck bool
}

// Load reads configuration from the environment, with a .env file as an
// optional source for variables not already set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		CamofoxPort:    9377,
		NitterInstance: "nitter.net",
		StatePath:      "data/state.json",
		LogLevel:       "info",
	}

	if raw := os.Getenv("CAMOFOX_PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid CAMOFOX_PORT %q", raw)
		}
		cfg.CamofoxPort = port
	}
	if v := os.Getenv("NITTER_INSTANCE"); v != "" {
		cfg.NitterInstance = v
	}
	if v := os.Getenv("STATE_PATH"); v != "" {
		cfg.StatePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if raw := os.Getenv("TELEGRAM_CHAT_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", raw, err)
		}
		cfg.TelegramChatID = id
	}

	cfg.NoUpdateCheck = os.Getenv("NO_UPDATE_CHECK") != ""

	return cfg, nil
}

// NotificationsEnabled reports whether the Telegram settings are complete.
func (c *Config) NotificationsEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}
