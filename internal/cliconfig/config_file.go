package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Endpoint        string `toml:"endpoint"`
	DefaultLevel    string `toml:"default_level"`
	LevelOverrides  string `toml:"level_overrides"`
	CloseTimeout    string `toml:"close_timeout"`
	MaxBatchEntries int    `toml:"max_batch_entries"`
	MaxQueueEntries int    `toml:"max_queue_entries"`
	Compression     string `toml:"compression"`
	LogLevel        string `toml:"log_level"`

	Forward struct {
		File        string `toml:"file"`
		Follow      *bool  `toml:"follow"`
		LoggerName  string `toml:"logger_name"`
		RecordLevel string `toml:"record_level"`
	} `toml:"forward"`

	Collect struct {
		ListenAddr  string `toml:"listen_addr"`
		FailWith    string `toml:"fail_with"`
		MetricsAddr string `toml:"metrics_addr"`
	} `toml:"collect"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.logship/config.toml, or "" when the home
// directory is unknown.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".logship", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("endpoint", fc.Endpoint, &cfg.Endpoint)
	s.setString("default-level", fc.DefaultLevel, &cfg.DefaultLevel)
	s.setString("level-overrides", fc.LevelOverrides, &cfg.LevelOverrides)
	s.setString("compression", fc.Compression, &cfg.Compression)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	if err := s.setDuration("close-timeout", fc.CloseTimeout, &cfg.CloseTimeout); err != nil {
		return err
	}

	s.setInt("max-batch-entries", fc.MaxBatchEntries, &cfg.MaxBatchEntries)
	s.setInt("max-queue-entries", fc.MaxQueueEntries, &cfg.MaxQueueEntries)

	s.setString("file", fc.Forward.File, &cfg.File)
	s.setBool("follow", fc.Forward.Follow, &cfg.Follow)
	s.setString("logger", fc.Forward.LoggerName, &cfg.LoggerName)
	s.setString("record-level", fc.Forward.RecordLevel, &cfg.RecordLevel)

	s.setString("listen", fc.Collect.ListenAddr, &cfg.ListenAddr)
	s.setString("fail-with", fc.Collect.FailWith, &cfg.FailWith)
	s.setString("metrics-addr", fc.Collect.MetricsAddr, &cfg.MetricsAddr)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
