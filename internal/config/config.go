// Package config handles Family Guardian configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v6"

	"github.com/familyguardian/guardian/internal/logging"
)

// FileName is the config file looked up inside the data directory
const FileName = "config.json"

// Config holds all configuration. Values are layered: defaults, then the
// JSON file, then GUARDIAN_* environment variables.
type Config struct {
	// Paths
	DataDir string `json:"data_dir" env:"GUARDIAN_DATA_DIR"`

	// Server
	Server ServerConfig `json:"server"`

	// Storage
	Storage StorageConfig `json:"storage"`

	// Screening and lifecycle
	Classifier ClassifierConfig `json:"classifier"`
	Alerts     AlertsConfig     `json:"alerts"`
	Digest     DigestConfig     `json:"digest"`

	// Logging
	Log LogConfig `json:"log"`
}

// ServerConfig for HTTP server
type ServerConfig struct {
	Port           int      `json:"port" env:"GUARDIAN_PORT"`
	Host           string   `json:"host" env:"GUARDIAN_HOST"`
	AllowedOrigins []string `json:"allowed_origins" env:"GUARDIAN_ALLOWED_ORIGINS" envSeparator:","`
}

// StorageConfig selects the persistence backend
type StorageConfig struct {
	Backend string `json:"backend" env:"GUARDIAN_STORAGE_BACKEND"` // file, sqlite or memory
}

// ClassifierConfig for message screening
type ClassifierConfig struct {
	PhrasesFile string `json:"phrases_file,omitempty" env:"GUARDIAN_PHRASES_FILE"` // YAML list; empty uses built-in phrases
}

// AlertsConfig for alert listing and the open alert gauges
type AlertsConfig struct {
	ListLimit    int    `json:"list_limit" env:"GUARDIAN_ALERT_LIMIT"`
	GaugeRefresh string `json:"gauge_refresh" env:"GUARDIAN_GAUGE_REFRESH"` // Go duration, e.g. "1m"
}

// DigestConfig for the daily summary job
type DigestConfig struct {
	Enabled  bool   `json:"enabled" env:"GUARDIAN_DIGEST_ENABLED"`
	Schedule string `json:"schedule" env:"GUARDIAN_DIGEST_SCHEDULE"`
	At       string `json:"at,omitempty" env:"GUARDIAN_DIGEST_AT"` // "HH:MM"; replaces schedule when set
	Timezone string `json:"timezone" env:"GUARDIAN_DIGEST_TIMEZONE"`
}

// LogConfig for the global logger
type LogConfig struct {
	Level string `json:"level" env:"GUARDIAN_LOG_LEVEL"`
	JSON  bool   `json:"json" env:"GUARDIAN_LOG_JSON"`
}

// Default returns default configuration
func Default() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		DataDir: filepath.Join(home, ".guardian"),
		Server: ServerConfig{
			Port:           3000,
			Host:           "localhost",
			AllowedOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			Backend: "file",
		},
		Alerts: AlertsConfig{
			ListLimit:    20,
			GaugeRefresh: "1m",
		},
		Digest: DigestConfig{
			Enabled:  true,
			Schedule: "0 21 * * *",
			Timezone: "Local",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads config from file, falling back to defaults, then applies
// environment overrides
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		// the data dir may itself come from the environment
		if dir := os.Getenv("GUARDIAN_DATA_DIR"); dir != "" {
			cfg.DataDir = dir
		}
		path = filepath.Join(cfg.DataDir, FileName)
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// defaults only
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that would otherwise fail later at startup
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	switch c.Storage.Backend {
	case "file", "sqlite", "memory":
	default:
		return fmt.Errorf("storage.backend %q must be file, sqlite or memory", c.Storage.Backend)
	}
	if _, err := c.GaugeRefreshInterval(); err != nil {
		return err
	}
	if c.Digest.At != "" {
		if _, err := time.Parse("15:04", c.Digest.At); err != nil {
			return fmt.Errorf("digest.at %q must be HH:MM", c.Digest.At)
		}
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// GaugeRefreshInterval parses alerts.gauge_refresh
func (c *Config) GaugeRefreshInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Alerts.GaugeRefresh)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("alerts.gauge_refresh %q must be a positive duration", c.Alerts.GaugeRefresh)
	}
	return d, nil
}

// Addr returns the host:port the server listens on
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Save saves config to file
func (c *Config) Save(path string) error {
	if path == "" {
		path = filepath.Join(c.DataDir, FileName)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}
