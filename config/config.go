// Package config loads exporter settings from defaults, an optional YAML
// file and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"omdbexport/services"
	"omdbexport/sqlgen"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrMissingAPIKey is returned when no OMDb API key is configured.
var ErrMissingAPIKey = errors.New("OMDB_API_KEY environment variable is required")

// Config holds the exporter settings
type Config struct {
	// APIKey only comes from the environment so it never lands in a config file.
	APIKey       string        `yaml:"-"`
	BaseURL      string        `yaml:"base_url"`
	RequestDelay time.Duration `yaml:"request_delay"`
	HTTPTimeout  time.Duration `yaml:"http_timeout"`
	Tables       sqlgen.Tables `yaml:"tables"`
	LogLevel     string        `yaml:"log_level"`
	LogFormat    string        `yaml:"log_format"`
}

// Default returns the built-in settings
func Default() *Config {
	return &Config{
		BaseURL:      services.DefaultOMDBBaseURL,
		RequestDelay: time.Second,
		HTTPTimeout:  services.DefaultTimeout,
		Tables:       sqlgen.DefaultTables(),
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// LoadDotEnv loads variables from .env files without overriding ones
// already set. With no arguments it reads ./.env.
func LoadDotEnv(files ...string) error {
	return godotenv.Load(files...)
}

// Load builds the configuration. path may be empty.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		content, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(content, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.APIKey = getEnv("OMDB_API_KEY", cfg.APIKey)
	cfg.BaseURL = getEnv("OMDB_BASE_URL", cfg.BaseURL)
	cfg.Tables.Movies = getEnv("OMDB_MOVIES_TABLE", cfg.Tables.Movies)
	cfg.Tables.Ratings = getEnv("OMDB_RATINGS_TABLE", cfg.Tables.Ratings)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)

	var err error
	if cfg.RequestDelay, err = getDurationEnv("OMDB_REQUEST_DELAY", cfg.RequestDelay); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getDurationEnv("OMDB_HTTP_TIMEOUT", cfg.HTTPTimeout); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks everything an export run needs
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid OMDb base URL %q", c.BaseURL)
	}
	if c.RequestDelay < 0 {
		return fmt.Errorf("request delay must not be negative, got %s", c.RequestDelay)
	}
	return c.Tables.Validate()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
