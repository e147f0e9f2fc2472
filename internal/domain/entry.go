package domain

import (
	"sort"
	"time"
)

// LogEntry is one intercepted record in the shape the collector receives.
type LogEntry struct {
	InstructionID string
	Severity      Severity
	Message       string
	Thread        string

	// Seconds and Nanos split the emission time.
	Seconds int64
	Nanos   int32

	LogLocation string

	// Trace is empty unless the record carried a failure.
	Trace string

	// CustomData is nil unless the diagnostic context held values.
	CustomData map[string]string
}

// SetTime splits t into Seconds and Nanos.
func (e *LogEntry) SetTime(t time.Time) {
	e.Seconds = t.Unix()
	e.Nanos = int32(t.Nanosecond())
}

// Time reassembles the emission time.
func (e LogEntry) Time() time.Time {
	return time.Unix(e.Seconds, int64(e.Nanos))
}

// CustomKeys returns the custom data keys in sorted order.
func (e LogEntry) CustomKeys() []string {
	keys := make([]string, 0, len(e.CustomData))
	for k := range e.CustomData {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
