// Package config reads scopesync settings from the environment.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all runtime settings for the scopesync binary.
type Config struct {
	SandboxDB       string
	LogCalls        bool
	Metrics         bool // print mirror metrics to stderr after each command
	ExportPollMs    int
	ExportTimeoutMs int // 0 waits until the export completes
	AssumeYes       bool
	AccountEmail    string
}

// Default returns a Config with sensible defaults. The sandbox database lives
// under the user's home directory when it can be found.
func Default() Config {
	dbPath := filepath.Join(".scopesync", "sandbox.db")
	if home, err := os.UserHomeDir(); err == nil {
		dbPath = filepath.Join(home, dbPath)
	}
	return Config{
		SandboxDB:       dbPath,
		ExportPollMs:    1000,
		ExportTimeoutMs: 0,
		AccountEmail:    "instructor@example.edu",
	}
}

// Load reads configuration from environment variables, falling back to
// defaults for unset or invalid values.
func Load() Config {
	cfg := Default()

	if v := os.Getenv("SCOPESYNC_SANDBOX_DB"); v != "" {
		cfg.SandboxDB = v
	}
	if v := os.Getenv("SCOPESYNC_LOG_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("SCOPESYNC_METRICS"); v != "" {
		cfg.Metrics, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("SCOPESYNC_EXPORT_POLL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ExportPollMs = n
		}
	}
	if v := os.Getenv("SCOPESYNC_EXPORT_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.ExportTimeoutMs = n
		}
	}
	if v := os.Getenv("SCOPESYNC_ASSUME_YES"); v != "" {
		cfg.AssumeYes, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("SCOPESYNC_ACCOUNT_EMAIL"); v != "" {
		cfg.AccountEmail = v
	}
	return cfg
}

// ExportPollInterval returns the delay between export status polls.
func (c Config) ExportPollInterval() time.Duration {
	return time.Duration(c.ExportPollMs) * time.Millisecond
}

// ExportTimeout returns the export deadline, zero meaning none.
func (c Config) ExportTimeout() time.Duration {
	return time.Duration(c.ExportTimeoutMs) * time.Millisecond
}
