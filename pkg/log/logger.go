package log

import "time"

// Logger is the diagnostics sink for logship components. It is never the
// registry the bridge intercepts, so nothing logged here is shipped.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field is one structured key/value attached to a message. The zerolog
// adapter writes known value types natively and falls back to reflection.
type Field struct {
	Key   string
	Value any
}

// Field constructors.
func String(key, value string) Field                 { return Field{key, value} }
func Strings(key string, value []string) Field       { return Field{key, value} }
func Int(key string, value int) Field                { return Field{key, value} }
func Int64(key string, value int64) Field            { return Field{key, value} }
func Uint64(key string, value uint64) Field          { return Field{key, value} }
func Bool(key string, value bool) Field              { return Field{key, value} }
func Duration(key string, value time.Duration) Field { return Field{key, value} }
func Time(key string, value time.Time) Field         { return Field{key, value} }
func Any(key string, value any) Field                { return Field{key, value} }

// Err attaches err under "error".
func Err(err error) Field { return Field{"error", err} }
