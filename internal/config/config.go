package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config keeps runtime settings for the tracker.
type Config struct {
	ListenAddr        string
	DatabaseURL       string
	JWTSecret         string
	DefaultAccessCode string
	TelegramToken     string
	TelegramChatID    int64
}

// Load reads configuration from environment variables with sane defaults.
// The Telegram token is optional; without it notifications are dropped.
func Load() (Config, error) {
	cfg := Config{
		ListenAddr:        strings.TrimSpace(os.Getenv("LISTEN_ADDR")),
		DatabaseURL:       strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:         strings.TrimSpace(os.Getenv("JWT_SECRET")),
		DefaultAccessCode: strings.TrimSpace(os.Getenv("DEFAULT_ACCESS_CODE")),
		TelegramToken:     strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8000"
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "tasktracker.db"
	}
	if cfg.DefaultAccessCode == "" {
		cfg.DefaultAccessCode = "1234"
	}
	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("JWT_SECRET is required")
	}

	if raw := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); raw != "" {
		chatID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q", raw)
		}
		cfg.TelegramChatID = chatID
	}
	if cfg.TelegramToken != "" && cfg.TelegramChatID == 0 {
		return cfg, fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_TOKEN is set")
	}

	return cfg, nil
}
