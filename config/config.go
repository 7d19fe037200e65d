// Package config provides configuration loading and management for liftview.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete liftview configuration
type Config struct {
	Server ServerConfig `yaml:"server"`
	Poll   PollConfig   `yaml:"poll"`
	Log    LogConfig    `yaml:"log"`
}

// Duration wraps time.Duration so YAML files can use strings like
// "500ms"; yaml.v3 only decodes bare integers into time.Duration.
type Duration time.Duration

// UnmarshalYAML accepts either a duration string or a nanosecond count.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration %q", value.Value)
	}
	*d = Duration(n)
	return nil
}

// MarshalYAML emits the duration in string form.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// ServerConfig configures the elevator simulator endpoint
type ServerConfig struct {
	// URL is the simulator base URL (default: http://127.0.0.1:8000)
	URL string `yaml:"url"`
	// Timeout is the per-request timeout
	Timeout Duration `yaml:"timeout"`
}

// PollConfig configures the state polling loop
type PollConfig struct {
	// Interval is the fixed poll period
	Interval Duration `yaml:"interval"`
}

// LogConfig configures the event log and diagnostics
type LogConfig struct {
	// Retention is the number of event log entries kept on screen
	Retention int `yaml:"retention"`
	// Level is the slog level for the debug log (debug, info, warn, error)
	Level string `yaml:"level"`
	// File is the debug log destination; empty discards debug output
	// because the terminal belongs to the panel
	File string `yaml:"file"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL:     "http://127.0.0.1:8000",
			Timeout: Duration(10 * time.Second),
		},
		Poll: PollConfig{
			Interval: Duration(500 * time.Millisecond),
		},
		Log: LogConfig{
			Retention: 80,
			Level:     "info",
			File:      "",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server.url is required")
	}
	u, err := url.Parse(c.Server.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("server.url %q is not a valid URL", c.Server.URL)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive")
	}
	if c.Poll.Interval <= 0 {
		return fmt.Errorf("poll.interval must be positive")
	}
	if c.Log.Retention < 1 {
		return fmt.Errorf("log.retention must be at least 1")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Server
	if other.Server.URL != "" {
		c.Server.URL = other.Server.URL
	}
	if other.Server.Timeout != 0 {
		c.Server.Timeout = other.Server.Timeout
	}

	// Poll
	if other.Poll.Interval != 0 {
		c.Poll.Interval = other.Poll.Interval
	}

	// Log
	if other.Log.Retention != 0 {
		c.Log.Retention = other.Log.Retention
	}
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.Log.File != "" {
		c.Log.File = other.Log.File
	}
}
