package log

var _ Logger = NoopLogger{}

// NoopLogger drops everything. Components fall back to it when no logger
// was configured.
type NoopLogger struct{}

var noop = &NoopLogger{}

// NewNoopLogger returns the shared no-op logger.
func NewNoopLogger() *NoopLogger { return noop }

func (NoopLogger) Debug(string, ...Field) {}
func (NoopLogger) Info(string, ...Field)  {}
func (NoopLogger) Warn(string, ...Field)  {}
func (NoopLogger) Error(string, ...Field) {}
