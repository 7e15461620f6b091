// Package config defines the replay tool's configuration and how it is loaded.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Record output formats.
const (
	FormatJSON    = "json"
	FormatMsgpack = "msgpack"
	FormatPretty  = "pretty"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// AppName is reported in every InstanceCreated record.
	AppName string `koanf:"app_name"`

	// UserAgent overrides the generated user agent when set.
	UserAgent string `koanf:"user_agent"`

	// Format selects how records are written: json, msgpack or pretty.
	Format string `koanf:"format"`

	// MetricsAddr enables the HTTP surface when non-empty, e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr"`

	// Trace exports delivery spans to stderr.
	Trace bool `koanf:"trace"`

	// Hold keeps the HTTP surface up for this long after the replay.
	Hold time.Duration `koanf:"hold"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel: "info",
		AppName:  "ampdiag",
		Format:   FormatJSON,
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Format) {
	case FormatJSON, FormatMsgpack, FormatPretty:
	default:
		return fmt.Errorf("%w: unknown format %q", ErrInvalidConfig, c.Format)
	}
	if strings.TrimSpace(c.AppName) == "" {
		return fmt.Errorf("%w: app_name must not be empty", ErrInvalidConfig)
	}
	if c.Hold < 0 {
		return fmt.Errorf("%w: hold must not be negative", ErrInvalidConfig)
	}
	return nil
}
