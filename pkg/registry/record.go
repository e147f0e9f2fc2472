package registry

import (
	"bytes"
	"fmt"
	"runtime"
	"runtime/debug"
	"strconv"
	"time"
)

// Record is a single log event travelling through the registry.
type Record struct {
	// Level is the local verbosity of the record.
	Level Level

	// Message is the raw, unformatted message text.
	Message string

	// LoggerName identifies the originating logger or code location.
	// Logger.Log fills it with the logger's own name when empty.
	LoggerName string

	// Time is the emission time.
	Time time.Time

	// ThreadID identifies the emitting goroutine; zero means unknown.
	ThreadID int64

	// Err is an optional failure associated with the record.
	Err error
}

// NewRecord returns a record stamped with the current time and goroutine.
func NewRecord(level Level, msg string) Record {
	return Record{
		Level:    level,
		Message:  msg,
		Time:     time.Now(),
		ThreadID: GoroutineID(),
	}
}

// StackTrace renders err the way failures are attached to wire entries.
// Errors created with WithStack print their message followed by the captured
// stack; other errors print through their %+v verb.
func StackTrace(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%+v", err)
}

type stackError struct {
	err   error
	stack []byte
}

// WithStack annotates err with the stack of the calling goroutine.
func WithStack(err error) error {
	if err == nil {
		return nil
	}
	return &stackError{err: err, stack: debug.Stack()}
}

func (e *stackError) Error() string { return e.err.Error() }

func (e *stackError) Unwrap() error { return e.err }

// Format implements fmt.Formatter; %+v includes the stack.
func (e *stackError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			fmt.Fprintf(s, "%+v\n%s", e.err, e.stack)
			return
		}
		fallthrough
	case 's':
		_, _ = s.Write([]byte(e.err.Error()))
	case 'q':
		fmt.Fprintf(s, "%q", e.err.Error())
	}
}

var goroutinePrefix = []byte("goroutine ")

// GoroutineID returns the id of the calling goroutine, or 0 if it cannot be
// determined.
func GoroutineID() int64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, goroutinePrefix)
	if i := bytes.IndexByte(b, ' '); i > 0 {
		b = b[:i]
	}
	id, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
