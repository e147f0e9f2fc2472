// Package logship ships the records of a process's logger registry to a
// remote collector over a single duplex gRPC stream.
//
// # Basic Usage
//
//	client, err := logship.New(ctx, logship.Config{
//	    Endpoint:       "collector:8099",
//	    DefaultLevel:   "INFO",
//	    LevelOverrides: map[string]string{"db": "DEBUG"},
//	})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	registry.GetLogger("db").Debug("connected")
//
// New applies the configured levels to the registry, installs a handler on
// its root logger and opens the stream. Every record that passes the
// registry's level filtering is converted to a wire entry and queued; a
// background goroutine drains the queue into the stream in emission order.
//
// # Shutdown
//
// Close flushes the queue, signals completion and waits for the collector's
// verdict. Whatever the outcome, it restores every logger level it changed
// and removes its handler before returning. A collector error is returned as
// a [*RemoteError] carrying the collector's description unchanged.
//
// # Diagnostic Context
//
// Each entry carries the instruction id and key/value pairs of the context
// store (mdc.Default() unless [WithContextStore] is given), captured when
// the record is emitted.
//
// # Dependency Injection
//
// For testing, the registry, the context store and the transport can be
// replaced:
//
//	client, err := logship.New(ctx, cfg,
//	    logship.WithRegistry(registry.New()),
//	    logship.WithChannelProvider(fakeProvider),
//	)
package logship
