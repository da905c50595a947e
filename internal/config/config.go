// Package config loads process configuration: an optional YAML file, a .env
// file when present, and environment variable overrides.
package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvDatabaseURL is the environment variable consulted when no explicit
// database URL override is given.
const EnvDatabaseURL = "GROUPSCHOLAR_INTAKE_DB_URL"

// ErrMissingDatabaseURL is returned when the relational export is requested
// but no connection string could be resolved.
var ErrMissingDatabaseURL = errors.New(
	"missing database URL: set " + EnvDatabaseURL + " or pass --db-url")

// Config holds all configuration for the intake normalizer.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Intake   IntakeConfig   `yaml:"intake"`
}

// DatabaseConfig holds relational export settings.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// IntakeConfig holds batch-level defaults.
type IntakeConfig struct {
	DefaultBatchLabel string `yaml:"default_batch_label"`
	StaleAfterDays    int    `yaml:"stale_after_days"`
}

// Load reads the YAML config at path. A missing file is not an error; every
// field has a usable zero value.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides. A
// .env file (if present) is loaded first so secrets can live there locally.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if url := os.Getenv(EnvDatabaseURL); url != "" {
		cfg.Database.URL = url
	}
	return cfg, nil
}

// ResolveDatabaseURL applies the connection-string precedence: explicit
// override first, then the environment/config value, else an error telling
// the operator both options.
func (c *Config) ResolveDatabaseURL(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if c.Database.URL != "" {
		return c.Database.URL, nil
	}
	return "", ErrMissingDatabaseURL
}
