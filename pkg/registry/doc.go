// Package registry provides a process-wide, hierarchical registry of named
// loggers.
//
// Each logger may carry an explicit Level; loggers without one inherit from
// their nearest dotted ancestor, ending at the root logger (the empty name),
// which defaults to LevelInfo. Records that pass a logger's effective level
// are published to the handlers of that logger and, unless disabled, of all
// its ancestors.
//
// # Usage
//
//	log := registry.GetLogger("com.example.worker")
//	log.Info("started")
//	log.LogErr(registry.LevelWarn, registry.WithStack(err), "retrying")
//
// slog users can route through the registry:
//
//	slog.SetDefault(slog.New(registry.NewSlogHandler(registry.GetLogger("app"))))
//
// Levels and handlers may be changed at any time from any goroutine.
package registry
