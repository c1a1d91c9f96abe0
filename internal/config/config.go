package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultPort               = 3001
	DefaultPersistenceBaseURL = "http://localhost:3001"
	DefaultRestSeconds        = 60
)

type Config struct {
	Environment string `toml:"-"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	LogMaxBackups int    `toml:"log_max_backups"`
	LogMaxAgeDays int    `toml:"log_max_age_days"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// catalog and persisted sessions
	CatalogPath      string   `toml:"catalog_path"`
	PublicDir        string   `toml:"public_dir"`
	HistoryPath      string   `toml:"history_path"`
	CSVMirrorEnabled bool     `toml:"csv_mirror_enabled"`
	CSVMirrorPath    string   `toml:"csv_mirror_path"`
	AllowedOrigins   []string `toml:"allowed_origins"`

	// client side
	PersistenceBaseURL  string `toml:"persistence_base_url"`
	RestSeconds         int    `toml:"rest_seconds"`
	DateLocale          string `toml:"date_locale"`
	HistorySnapshotPath string `toml:"history_snapshot_path"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}
	return cfg, nil
}

// Load reads the TOML file at path, picks the section for env and applies
// env var overrides (TRAININGAPP_PORT, TRAININGAPP_API_URL) and defaults.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	cfg.Environment = strings.ToLower(env)

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("TRAININGAPP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid TRAININGAPP_PORT [%s]: %w", v, err)
		}
		cfg.Port = port
	}
	if v := os.Getenv("TRAININGAPP_API_URL"); v != "" {
		cfg.PersistenceBaseURL = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.PersistenceBaseURL == "" {
		c.PersistenceBaseURL = DefaultPersistenceBaseURL
	}
	if c.RestSeconds <= 0 {
		c.RestSeconds = DefaultRestSeconds
	}
	if c.DateLocale == "" {
		c.DateLocale = "ru"
	}
	if c.PublicDir == "" {
		c.PublicDir = "./public"
	}
}

func (c *Config) validate() error {
	if c.CatalogPath == "" {
		return fmt.Errorf("catalog_path is required")
	}
	if c.HistoryPath == "" {
		return fmt.Errorf("history_path is required")
	}
	if c.CSVMirrorEnabled && c.CSVMirrorPath == "" {
		return fmt.Errorf("csv_mirror_path is required when csv mirror is enabled")
	}
	if c.LogMaxBackups < 0 || c.LogMaxAgeDays < 0 {
		return fmt.Errorf("log_max_backups and log_max_age_days must not be negative")
	}
	switch strings.ToLower(c.DateLocale) {
	case "ru", "en":
	default:
		return fmt.Errorf("unsupported date_locale: %s", c.DateLocale)
	}
	return nil
}
