// Package logship bridges a process's logger registry to a remote log
// collector.
//
// Example usage:
//
//	client, err := logship.Open(ctx, "collector:8099", "INFO",
//	    map[string]string{"db": "DEBUG"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	logship.GetLogger("db").Debug("connected")
//
// The client lives in github.com/bft-labs/logship/pkg/logship; the registry
// and diagnostic context in pkg/registry and pkg/mdc.
package logship

import (
	"context"
	"runtime/debug"

	client "github.com/bft-labs/logship/pkg/logship"
	"github.com/bft-labs/logship/pkg/registry"
)

// Config holds the settings applied when a Client is created.
type Config = client.Config

// Client ships registry records to a collector.
type Client = client.Client

// Option configures optional behavior of a Client.
type Option = client.Option

// Open creates a client for endpoint with the given root level and
// per-logger overrides, using the process-wide registry.
func Open(ctx context.Context, endpoint, defaultLevel string, overrides map[string]string, opts ...Option) (*Client, error) {
	return client.New(ctx, Config{
		Endpoint:       endpoint,
		DefaultLevel:   defaultLevel,
		LevelOverrides: overrides,
	}, opts...)
}

// GetLogger returns the named logger of the process-wide registry.
func GetLogger(name string) *registry.Logger {
	return registry.GetLogger(name)
}

// Version returns the module version from build info, or "dev".
func Version() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}
