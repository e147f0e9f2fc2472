// Package log is the structured logging facade used by logship's own
// components.
//
// The bridge never reports its own diagnostics through the registry it
// intercepts; doing so would feed its output back into the stream it ships.
// Components take a Logger instead and default to a no-op.
//
// # Usage
//
//	logger := log.NewZerologAdapter(os.Stderr, zerolog.InfoLevel)
//	client, err := logship.New(cfg, logship.WithLogger(logger))
//
// Implement Logger to route diagnostics elsewhere.
package log
