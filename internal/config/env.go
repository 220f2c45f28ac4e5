package config

import (
	"os"
	"strconv"
)

// FromEnv overlays CHATLOG_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("CHATLOG_LOGS_DIR"); v != "" {
		cfg.LogsDir = v
	}
	if v := os.Getenv("CHATLOG_DATABASE_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("CHATLOG_PEBBLE_PATH"); v != "" {
		cfg.PebblePath = v
	}
	if v := os.Getenv("CHATLOG_STORAGE_MODLOG"); v != "" {
		cfg.Storage.Modlog = v
	}
	if v := os.Getenv("CHATLOG_LOG_CHAT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.LogChat = b
		}
	}
	if v := os.Getenv("CHATLOG_SCROLLBACK_LINES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ScrollbackLines = n
		}
	}
}
