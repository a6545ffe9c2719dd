// Package config holds the YAML configuration of the wpilogdump tool.
// The decoder library itself takes no configuration files; everything
// here drives the command-line surface around it.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values
const (
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "console"
	DefaultFormat         = "json"
	DefaultCompression    = "none"
	DefaultReloadInterval = time.Second
)

// Config represents the tool configuration
type Config struct {
	Files   []string      `yaml:"files"`
	Output  OutputConfig  `yaml:"output,omitempty"`
	Dump    DumpConfig    `yaml:"dump,omitempty"`
	Watch   WatchConfig   `yaml:"watch,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// OutputConfig controls where and how dumps are written
type OutputConfig struct {
	Path        string `yaml:"path,omitempty"`        // empty means stdout
	Format      string `yaml:"format,omitempty"`      // json or yaml
	Compression string `yaml:"compression,omitempty"` // none, gzip, snappy
}

// DumpConfig selects what to include in a dump
type DumpConfig struct {
	Entries  []string `yaml:"entries,omitempty"` // entry names; empty means listing only
	From     int64    `yaml:"from,omitempty"`    // range start, microseconds
	To       int64    `yaml:"to,omitempty"`      // range end; 0 means end of log
	Warnings bool     `yaml:"warnings"`
}

// WatchConfig enables reload-on-change for files still being written
type WatchConfig struct {
	Enabled        bool          `yaml:"enabled"`
	ReloadInterval time.Duration `yaml:"reload_interval,omitempty"`
	MetricsAddress string        `yaml:"metrics_address,omitempty"` // serve /metrics when set
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// Load loads configuration from a YAML file with environment variable
// expansion
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(expanded, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is given
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
	if c.Output.Format == "" {
		c.Output.Format = DefaultFormat
	}
	if c.Output.Compression == "" {
		c.Output.Compression = DefaultCompression
	}
	if c.Watch.ReloadInterval == 0 {
		c.Watch.ReloadInterval = DefaultReloadInterval
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	validFormats := map[string]bool{"json": true, "yaml": true}
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("invalid output format: %s", c.Output.Format)
	}

	validCompression := map[string]bool{"none": true, "gzip": true, "snappy": true}
	if !validCompression[c.Output.Compression] {
		return fmt.Errorf("invalid compression: %s", c.Output.Compression)
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	validLogFormats := map[string]bool{"json": true, "console": true}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	if c.Dump.From > c.Dump.To && c.Dump.To != 0 {
		return fmt.Errorf("dump range start %d is after end %d", c.Dump.From, c.Dump.To)
	}
	if c.Watch.Enabled && len(c.Files) != 1 {
		return fmt.Errorf("watch mode requires exactly one file, got %d", len(c.Files))
	}
	return nil
}
