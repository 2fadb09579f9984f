// Package config reads server settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port            string
	DataDir         string
	MaxUploadBytes  int64
	PreviewDebounce time.Duration
	HistoryLimit    int

	// MaxSessions caps live editing sessions; SessionIdleTimeout expires
	// sessions nobody has touched for that long.
	MaxSessions        int
	SessionIdleTimeout time.Duration
}

func Default() Config {
	return Config{
		Port:            "8080",
		DataDir:         "data",
		MaxUploadBytes:  32 << 20,
		PreviewDebounce: 300 * time.Millisecond,
		HistoryLimit:    50,

		MaxSessions:        100,
		SessionIdleTimeout: 30 * time.Minute,
	}
}

// Load starts from Default and applies PORT, DATA_DIR, MAX_UPLOAD_MB,
// PREVIEW_DEBOUNCE, HISTORY_LIMIT, MAX_SESSIONS and SESSION_IDLE_TIMEOUT when
// set.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	cfg := Default()
	if v := getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := getenv("DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := getenv("MAX_UPLOAD_MB"); v != "" {
		mb, err := strconv.Atoi(v)
		if err != nil || mb <= 0 {
			return cfg, fmt.Errorf("MAX_UPLOAD_MB: want a positive integer, got %q", v)
		}
		cfg.MaxUploadBytes = int64(mb) << 20
	}
	if v := getenv("PREVIEW_DEBOUNCE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return cfg, fmt.Errorf("PREVIEW_DEBOUNCE: want a duration, got %q", v)
		}
		cfg.PreviewDebounce = d
	}
	if v := getenv("HISTORY_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return cfg, fmt.Errorf("HISTORY_LIMIT: want a positive integer, got %q", v)
		}
		cfg.HistoryLimit = n
	}
	if v := getenv("MAX_SESSIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return cfg, fmt.Errorf("MAX_SESSIONS: want a positive integer, got %q", v)
		}
		cfg.MaxSessions = n
	}
	if v := getenv("SESSION_IDLE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return cfg, fmt.Errorf("SESSION_IDLE_TIMEOUT: want a positive duration, got %q", v)
		}
		cfg.SessionIdleTimeout = d
	}
	return cfg, nil
}
