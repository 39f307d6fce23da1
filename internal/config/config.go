// Package config loads the server configuration from a YAML file.
//
// Every field has a default, so an absent or partial file is valid.
// Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/erazemk/najdeno/internal/matching"
)

// Config is the complete server configuration.
type Config struct {
	// Database is the SQLite database path.
	Database string `yaml:"database"`

	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`

	// AdminUser is the username of the administrator created on first run.
	AdminUser string `yaml:"admin_user"`

	// LogFile, if set, receives a copy of every log line.
	LogFile string `yaml:"log_file"`

	// RequestTimeout bounds how long a single API request may run.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// TokenTTL is the lifetime of issued login tokens.
	TokenTTL time.Duration `yaml:"token_ttl"`

	// LoginRate limits login and registration attempts per client.
	LoginRate RateConfig `yaml:"login_rate"`

	// Matching holds the candidate scoring weights.
	Matching matching.Weights `yaml:"matching"`

	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// RateConfig is a token bucket: one token every Every, up to Burst.
type RateConfig struct {
	Every time.Duration `yaml:"every"`
	Burst int           `yaml:"burst"`
}

// TelemetryConfig configures trace export.
type TelemetryConfig struct {
	// OTLPEndpoint is the host:port of an OTLP/HTTP collector.
	// Empty disables export.
	OTLPEndpoint string `yaml:"otlp_endpoint"`

	// Insecure sends traces over plain HTTP.
	Insecure bool `yaml:"insecure"`

	ServiceName string `yaml:"service_name"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Database:       "najdeno.sqlite3",
		Listen:         ":8080",
		AdminUser:      "Admin",
		RequestTimeout: 15 * time.Second,
		TokenTTL:       24 * time.Hour,
		LoginRate: RateConfig{
			Every: 12 * time.Second,
			Burst: 5,
		},
		Matching: matching.DefaultWeights(),
		Telemetry: TelemetryConfig{
			ServiceName: "najdeno",
		},
	}
}

// LoadFile reads path over the defaults and validates the result.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every problem with the configuration.
func (c *Config) Validate() error {
	var errs []error
	if c.Database == "" {
		errs = append(errs, errors.New("database must be set"))
	}
	if c.Listen == "" {
		errs = append(errs, errors.New("listen must be set"))
	}
	if c.AdminUser == "" {
		errs = append(errs, errors.New("admin_user must be set"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request_timeout must be positive"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("token_ttl must be positive"))
	}
	if c.LoginRate.Every <= 0 || c.LoginRate.Burst <= 0 {
		errs = append(errs, errors.New("login_rate every and burst must be positive"))
	}
	if err := c.Matching.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
