package logship

import (
	"encoding/json"
	"fmt"
	"time"

	grpcadapter "github.com/bft-labs/logship/internal/adapters/grpc"
	"github.com/bft-labs/logship/internal/domain"
	"github.com/bft-labs/logship/pkg/registry"
)

// Config holds the settings applied when a Client is created.
type Config struct {
	// Endpoint is the collector address, e.g. "localhost:8099".
	Endpoint string

	// DefaultLevel is the root logger level while the client is open.
	// Defaults to INFO.
	DefaultLevel string

	// LevelOverrides sets per-logger levels while the client is open.
	LevelOverrides map[string]string

	// CloseTimeout bounds how long Close waits for the collector to end the
	// stream. Zero waits indefinitely.
	CloseTimeout time.Duration

	// MaxBatchEntries caps the entries per outbound message. Zero sends
	// everything queued.
	MaxBatchEntries int

	// MaxQueueEntries bounds the outbound queue. Records arriving while it
	// is full are dropped. Zero means unbounded.
	MaxQueueEntries int

	// Compression names the gRPC compressor ("zstd") or is empty.
	Compression string
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.DefaultLevel == "" {
		c.DefaultLevel = registry.LevelInfo.String()
	}
}

// Validate checks the configuration. Level names are checked when the
// client applies them.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("%w: endpoint is required", domain.ErrConfiguration)
	}
	if c.CloseTimeout < 0 {
		return fmt.Errorf("%w: negative close timeout", domain.ErrConfiguration)
	}
	if c.MaxBatchEntries < 0 || c.MaxQueueEntries < 0 {
		return fmt.Errorf("%w: negative entry limit", domain.ErrConfiguration)
	}
	switch c.Compression {
	case "", grpcadapter.CompressionZstd:
	default:
		return fmt.Errorf("%w: unsupported compression %q", domain.ErrConfiguration, c.Compression)
	}
	return nil
}

// ParseLevelOverrides decodes a JSON object of logger name to level name,
// e.g. {"ConfiguredLogger":"DEBUG"}. An empty string yields nil.
func ParseLevelOverrides(s string) (map[string]string, error) {
	if s == "" {
		return nil, nil
	}
	var out map[string]string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("%w: level overrides: %w", domain.ErrConfiguration, err)
	}
	return out, nil
}
