package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Storage backends accepted for Storage.Modlog.
const (
	ModlogBackendTxt    = "txt"
	ModlogBackendSQLite = "sqlite"
	ModlogBackendPebble = "pebble"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	// LogsDir is the root of the on-disk log tree (modlog/, chat/, .modlog-backup/).
	LogsDir string `json:"logsDir"`
	// DatabasePath locates the SQLite database used by the sqlite backend and
	// the format converter.
	DatabasePath string `json:"databasePath"`
	// PebblePath locates the Pebble store used by the pebble backend.
	PebblePath string `json:"pebblePath"`
	// Storage selects per-log storage backends.
	Storage StorageConfig `json:"storage"`
	// LogChat globally enables or disables chat-history logging.
	LogChat bool `json:"logChat"`
	// ScrollbackLines caps the in-memory scrollback for auto-truncating rooms.
	ScrollbackLines int `json:"scrollbackLines"`
}

// StorageConfig selects the storage backend per logical log.
type StorageConfig struct {
	// Modlog is one of "txt", "sqlite", "pebble". Unknown values fall back to
	// "txt" with a logged warning.
	Modlog string `json:"modlog"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		LogsDir:         "logs",
		DatabasePath:    "databases/sqlite.db",
		PebblePath:      "databases/pebble",
		Storage:         StorageConfig{Modlog: ModlogBackendTxt},
		LogChat:         true,
		ScrollbackLines: 100,
	}
}

// Load reads configuration from a JSON file. If path is empty, returns
// defaults. Env overlays are applied by the caller via FromEnv.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
