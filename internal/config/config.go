// Package config loads process configuration from the environment and an optional
// JSON or YAML file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Storage drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Log formats
const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)

// Duration is a time.Duration written as "60s" or "1m30s" in config files
type Duration struct {
	time.Duration
}

// UnmarshalJSON accepts a duration string or a number of seconds
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return d.parse(s)
	}
	var secs float64
	if err := json.Unmarshal(data, &secs); err != nil {
		return fmt.Errorf("invalid duration %s", data)
	}
	d.Duration = time.Duration(secs * float64(time.Second))
	return nil
}

// MarshalJSON writes the duration string
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalYAML accepts the same forms as UnmarshalJSON
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if secs, err := strconv.ParseFloat(value.Value, 64); err == nil {
		d.Duration = time.Duration(secs * float64(time.Second))
		return nil
	}
	return d.parse(value.Value)
}

func (d *Duration) parse(s string) error {
	v, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = v
	return nil
}

// Config is the server and CLI configuration.
// Zero values mean "not set"; Load fills them from the config file and then from Defaults.
type Config struct {
	Port string `json:"port,omitempty" yaml:"port,omitempty"`

	// Storage
	StorageDriver string `json:"storage_driver,omitempty" yaml:"storage_driver,omitempty"`
	DatabaseURL   string `json:"database_url,omitempty" yaml:"database_url,omitempty"`
	SQLitePath    string `json:"sqlite_path,omitempty" yaml:"sqlite_path,omitempty"`

	// Scraper service
	ScraperURL          string   `json:"scraper_api_url,omitempty" yaml:"scraper_api_url,omitempty"`
	ScraperTimeout      Duration `json:"scraper_timeout,omitempty" yaml:"scraper_timeout,omitempty"`
	ScraperMaxAttempts  int      `json:"scraper_max_attempts,omitempty" yaml:"scraper_max_attempts,omitempty"`
	ScraperRetryBackoff Duration `json:"scraper_retry_backoff,omitempty" yaml:"scraper_retry_backoff,omitempty"`

	// Optional Redis for ingestion events
	RedisURL string `json:"redis_url,omitempty" yaml:"redis_url,omitempty"`

	LogLevel  string `json:"log_level,omitempty" yaml:"log_level,omitempty"`
	LogFormat string `json:"log_format,omitempty" yaml:"log_format,omitempty"`
}

// Defaults returns the built-in configuration
func Defaults() Config {
	return Config{
		Port:                "8080",
		StorageDriver:       DriverPostgres,
		SQLitePath:          "data/job_tracker.db",
		ScraperURL:          "http://0.0.0.0:8000",
		ScraperTimeout:      Duration{60 * time.Second},
		ScraperMaxAttempts:  1,
		ScraperRetryBackoff: Duration{2 * time.Second},
		LogLevel:            "info",
		LogFormat:           LogFormatJSON,
	}
}

// Load builds the configuration: environment first, then the file at path (if any),
// then Defaults. The result is validated.
func Load(path string) (*Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}

	if path != "" {
		file, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		merged := cfg.MergeWithDefaults(*file)
		cfg = &merged
	}

	merged := cfg.MergeWithDefaults(Defaults())
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// FromEnv reads the configuration from environment variables. Unset variables stay zero.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:          os.Getenv("PORT"),
		StorageDriver: strings.ToLower(strings.TrimSpace(os.Getenv("STORAGE_DRIVER"))),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		SQLitePath:    os.Getenv("SQLITE_PATH"),
		ScraperURL:    os.Getenv("SCRAPER_API_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		LogFormat:     strings.ToLower(os.Getenv("LOG_FORMAT")),
	}

	if v := os.Getenv("SCRAPER_TIMEOUT"); v != "" {
		if err := cfg.ScraperTimeout.parse(v); err != nil {
			return nil, fmt.Errorf("invalid SCRAPER_TIMEOUT: %w", err)
		}
	}
	if v := os.Getenv("SCRAPER_RETRY_BACKOFF"); v != "" {
		if err := cfg.ScraperRetryBackoff.parse(v); err != nil {
			return nil, fmt.Errorf("invalid SCRAPER_RETRY_BACKOFF: %w", err)
		}
	}
	if v := os.Getenv("SCRAPER_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SCRAPER_MAX_ATTEMPTS: %v", err)
		}
		cfg.ScraperMaxAttempts = n
	}

	return cfg, nil
}

// LoadFile loads configuration from a JSON or YAML file, chosen by extension.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	return &cfg, nil
}

// Validate checks that the configuration has usable values.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config error: 'database_url' is required for the postgres driver")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("config error: 'sqlite_path' is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("config error: unknown storage driver %q (want %s or %s)", c.StorageDriver, DriverPostgres, DriverSQLite)
	}

	if c.ScraperURL == "" {
		return fmt.Errorf("config error: 'scraper_api_url' is required")
	}
	if c.ScraperTimeout.Duration <= 0 {
		return fmt.Errorf("config error: 'scraper_timeout' must be positive")
	}
	if c.ScraperMaxAttempts < 1 {
		return fmt.Errorf("config error: 'scraper_max_attempts' must be at least 1")
	}
	if c.ScraperRetryBackoff.Duration < 0 {
		return fmt.Errorf("config error: 'scraper_retry_backoff' must be non-negative")
	}

	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("config error: invalid log level %q", c.LogLevel)
	}
	if c.LogFormat != LogFormatJSON && c.LogFormat != LogFormatConsole {
		return fmt.Errorf("config error: unknown log format %q", c.LogFormat)
	}

	return nil
}

// MergeWithDefaults returns a new Config with zero fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Port == "" {
		result.Port = defaults.Port
	}
	if result.StorageDriver == "" {
		result.StorageDriver = defaults.StorageDriver
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.SQLitePath == "" {
		result.SQLitePath = defaults.SQLitePath
	}
	if result.ScraperURL == "" {
		result.ScraperURL = defaults.ScraperURL
	}
	if result.ScraperTimeout.Duration == 0 {
		result.ScraperTimeout = defaults.ScraperTimeout
	}
	if result.ScraperMaxAttempts == 0 {
		result.ScraperMaxAttempts = defaults.ScraperMaxAttempts
	}
	if result.ScraperRetryBackoff.Duration == 0 {
		result.ScraperRetryBackoff = defaults.ScraperRetryBackoff
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}

	return result
}

// Addr is the listen address for the HTTP server
func (c *Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
