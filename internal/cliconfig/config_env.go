package cliconfig

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads variables from a .env file into the process environment.
// Variables that are already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// ApplyEnvConfig applies configuration from environment variables (LOGSHIP_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("endpoint", os.Getenv("LOGSHIP_ENDPOINT"), &cfg.Endpoint)
	s.setString("default-level", os.Getenv("LOGSHIP_DEFAULT_LEVEL"), &cfg.DefaultLevel)
	s.setString("level-overrides", os.Getenv("LOGSHIP_LEVEL_OVERRIDES"), &cfg.LevelOverrides)
	s.setString("compression", os.Getenv("LOGSHIP_COMPRESSION"), &cfg.Compression)
	s.setString("log-level", os.Getenv("LOGSHIP_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setDuration("close-timeout", os.Getenv("LOGSHIP_CLOSE_TIMEOUT"), &cfg.CloseTimeout); err != nil {
		return err
	}
	if err := s.setIntFromString("max-batch-entries", os.Getenv("LOGSHIP_MAX_BATCH_ENTRIES"), &cfg.MaxBatchEntries); err != nil {
		return err
	}
	if err := s.setIntFromString("max-queue-entries", os.Getenv("LOGSHIP_MAX_QUEUE_ENTRIES"), &cfg.MaxQueueEntries); err != nil {
		return err
	}

	s.setString("file", os.Getenv("LOGSHIP_FILE"), &cfg.File)
	s.setBoolFromString("follow", os.Getenv("LOGSHIP_FOLLOW"), &cfg.Follow)
	s.setString("logger", os.Getenv("LOGSHIP_LOGGER"), &cfg.LoggerName)
	s.setString("record-level", os.Getenv("LOGSHIP_RECORD_LEVEL"), &cfg.RecordLevel)

	s.setString("listen", os.Getenv("LOGSHIP_LISTEN_ADDR"), &cfg.ListenAddr)
	s.setString("fail-with", os.Getenv("LOGSHIP_FAIL_WITH"), &cfg.FailWith)
	s.setString("metrics-addr", os.Getenv("LOGSHIP_METRICS_ADDR"), &cfg.MetricsAddr)

	return nil
}
