package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/logship/pkg/logship"
	"github.com/bft-labs/logship/pkg/registry"
)

// DefaultEndpoint is the collector address used when none is configured.
const DefaultEndpoint = "localhost:8099"

// Config holds CLI configuration for logship.
type Config struct {
	// Bridge settings.
	Endpoint        string
	DefaultLevel    string
	LevelOverrides  string // JSON object of logger name to level
	CloseTimeout    time.Duration
	MaxBatchEntries int
	MaxQueueEntries int
	Compression     string

	// LogLevel gates logship's own diagnostics.
	LogLevel string

	// forward
	File        string
	Follow      bool
	LoggerName  string
	RecordLevel string

	// collect
	ListenAddr  string
	FailWith    string
	MetricsAddr string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Endpoint:     DefaultEndpoint,
		DefaultLevel: "INFO",
		LogLevel:     "info",
		LoggerName:   "forward",
		RecordLevel:  "INFO",
		ListenAddr:   DefaultEndpoint,
	}
}

// Validate checks the settings shared by every command.
func (c *Config) Validate() error {
	if _, err := registry.ParseLevel(c.DefaultLevel); err != nil {
		return fmt.Errorf("default-level: %w", err)
	}
	if _, err := logship.ParseLevelOverrides(c.LevelOverrides); err != nil {
		return fmt.Errorf("level-overrides: %w", err)
	}
	if c.CloseTimeout < 0 {
		return fmt.Errorf("close timeout must not be negative")
	}
	if c.MaxBatchEntries < 0 {
		return fmt.Errorf("max batch entries must not be negative")
	}
	if c.MaxQueueEntries < 0 {
		return fmt.Errorf("max queue entries must not be negative")
	}
	switch c.Compression {
	case "", "none", "zstd":
	default:
		return fmt.Errorf("unsupported compression %q", c.Compression)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("log-level: %w", err)
	}
	return nil
}

// ValidateForward checks the settings used by the forward command.
func (c *Config) ValidateForward() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	if c.Follow && c.File == "" {
		return fmt.Errorf("follow requires a file")
	}
	if _, err := registry.ParseLevel(c.RecordLevel); err != nil {
		return fmt.Errorf("record-level: %w", err)
	}
	return nil
}

// ValidateCollect checks the settings used by the collect command.
func (c *Config) ValidateCollect() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("log-level: %w", err)
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("listen address is required")
	}
	if _, err := ParseFailure(c.FailWith); err != nil {
		return err
	}
	return nil
}

// BridgeConfig converts the CLI settings into a client configuration.
func (c *Config) BridgeConfig() (logship.Config, error) {
	overrides, err := logship.ParseLevelOverrides(c.LevelOverrides)
	if err != nil {
		return logship.Config{}, err
	}
	compression := c.Compression
	if compression == "none" {
		compression = ""
	}
	return logship.Config{
		Endpoint:        c.Endpoint,
		DefaultLevel:    c.DefaultLevel,
		LevelOverrides:  overrides,
		CloseTimeout:    c.CloseTimeout,
		MaxBatchEntries: c.MaxBatchEntries,
		MaxQueueEntries: c.MaxQueueEntries,
		Compression:     compression,
	}, nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString accepts "true" and "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
