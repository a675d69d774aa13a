// Package config provides configuration loading for the zipeasy CLI.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the full configuration for zipeasy.
type Config struct {
	// Archive layout
	Method    string `yaml:"method"`
	Level     int    `yaml:"level"`
	Recursive bool   `yaml:"recursive"`
	Suffix    string `yaml:"suffix"`

	// Verification
	Workers int `yaml:"workers"`

	// Remote archives
	CacheSize int        `yaml:"cache_size"`
	S3        S3Config   `yaml:"s3"`
	GCS       GCSConfig  `yaml:"gcs"`
	HTTP      HTTPConfig `yaml:"http"`

	// Observability
	Log         LogConfig `yaml:"log"`
	MetricsFile string    `yaml:"metrics_file"`
}

// S3Config holds S3 backend settings.
type S3Config struct {
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
	Prefix   string `yaml:"prefix"`
	TempDir  string `yaml:"temp_dir"`
}

// GCSConfig holds Google Cloud Storage backend settings.
type GCSConfig struct {
	Prefix string `yaml:"prefix"`
}

// HTTPConfig holds download settings.
type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout"`
	Retries int           `yaml:"retries"`
	TempDir string        `yaml:"temp_dir"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Verbose bool   `yaml:"verbose"`
	Format  string `yaml:"format"` // "console" or "json"
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Method:    "store",
		Level:     -1,
		Suffix:    "zip",
		Workers:   4,
		CacheSize: 8,
		HTTP: HTTPConfig{
			Retries: 2,
		},
		Log: LogConfig{
			Format: "console",
		},
	}
}

// LoadFromFile loads configuration from a YAML file on top of Defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Load returns Defaults when path is empty and LoadFromFile otherwise.
func Load(path string) (Config, error) {
	if path == "" {
		return Defaults(), nil
	}
	return LoadFromFile(path)
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache_size must not be negative, got %d", c.CacheSize)
	}
	if c.HTTP.Retries < 0 {
		return fmt.Errorf("http.retries must not be negative, got %d", c.HTTP.Retries)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}
