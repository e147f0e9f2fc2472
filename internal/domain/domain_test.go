package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bft-labs/logship/pkg/registry"
)

func TestSeverityFor(t *testing.T) {
	tests := []struct {
		level  registry.Level
		want   Severity
		wantOK bool
	}{
		{registry.LevelAll, SeverityTrace, true},
		{registry.LevelTrace, SeverityTrace, true},
		{registry.LevelTrace + 2, SeverityTrace, true},
		{registry.LevelDebug, SeverityDebug, true},
		{registry.LevelInfo - 1, SeverityDebug, true},
		{registry.LevelInfo, SeverityInfo, true},
		{registry.LevelWarn, SeverityWarn, true},
		{registry.LevelError, SeverityError, true},
		{registry.LevelError + 100, SeverityError, true},
		{registry.LevelOff, SeverityUnspecified, false},
	}

	for _, tt := range tests {
		got, ok := SeverityFor(tt.level)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("SeverityFor(%v) = %v,%v, want %v,%v", tt.level, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestSeverity_WireValues(t *testing.T) {
	tests := []struct {
		s    Severity
		num  int32
		name string
	}{
		{SeverityUnspecified, 0, "UNSPECIFIED"},
		{SeverityTrace, 1, "TRACE"},
		{SeverityDebug, 2, "DEBUG"},
		{SeverityInfo, 3, "INFO"},
		{SeverityWarn, 5, "WARN"},
		{SeverityError, 6, "ERROR"},
	}

	for _, tt := range tests {
		if int32(tt.s) != tt.num {
			t.Errorf("%s = %d, want %d", tt.name, int32(tt.s), tt.num)
		}
		if tt.s.String() != tt.name {
			t.Errorf("Severity(%d).String() = %s, want %s", tt.num, tt.s.String(), tt.name)
		}
	}
}

func TestSeverity_LevelRoundTrip(t *testing.T) {
	for _, s := range []Severity{SeverityTrace, SeverityDebug, SeverityInfo, SeverityWarn, SeverityError} {
		got, ok := SeverityFor(s.Level())
		if !ok || got != s {
			t.Errorf("SeverityFor(%v.Level()) = %v,%v", s, got, ok)
		}
	}
}

func TestEnabled(t *testing.T) {
	if !Enabled(registry.LevelDebug, registry.LevelDebug) {
		t.Error("DEBUG should pass a DEBUG threshold")
	}
	if Enabled(registry.LevelError, registry.LevelOff) {
		t.Error("nothing passes an OFF threshold")
	}
	if Enabled(registry.LevelTrace, registry.LevelInfo) {
		t.Error("TRACE should not pass an INFO threshold")
	}
}

func TestLogEntry_SetTime(t *testing.T) {
	var e LogEntry
	e.SetTime(time.UnixMilli(1234567890))

	if e.Seconds != 1234567 || e.Nanos != 890000000 {
		t.Errorf("split = %d/%d, want 1234567/890000000", e.Seconds, e.Nanos)
	}
	if !e.Time().Equal(time.UnixMilli(1234567890)) {
		t.Errorf("Time() = %v", e.Time())
	}
}

func TestLogEntry_CustomKeys(t *testing.T) {
	e := LogEntry{CustomData: map[string]string{"b": "2", "a": "1"}}
	keys := e.CustomKeys()
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Errorf("CustomKeys() = %v", keys)
	}
}

func TestSessionState(t *testing.T) {
	tests := []struct {
		s        SessionState
		name     string
		terminal bool
	}{
		{SessionUnopened, "Unopened", false},
		{SessionOpen, "Open", false},
		{SessionLocalCompleting, "LocalCompleting", false},
		{SessionSucceeded, "Terminated(success)", true},
		{SessionFailed, "Terminated(error)", true},
		{SessionState(42), "Unknown", false},
	}

	for _, tt := range tests {
		if tt.s.String() != tt.name {
			t.Errorf("String() = %s, want %s", tt.s.String(), tt.name)
		}
		if tt.s.Terminal() != tt.terminal {
			t.Errorf("%s.Terminal() = %v", tt.name, tt.s.Terminal())
		}
	}
}

func TestRemoteError(t *testing.T) {
	var err error = &RemoteError{Code: "Internal", Description: "TEST ERROR"}
	if err.Error() != "Internal: TEST ERROR" {
		t.Errorf("Error() = %q", err.Error())
	}

	wrapped := fmt.Errorf("close: %w", err)
	if !IsRemote(wrapped) {
		t.Error("IsRemote should see through wrapping")
	}
	var re *RemoteError
	if !errors.As(wrapped, &re) || re.Description != "TEST ERROR" {
		t.Errorf("errors.As = %v", re)
	}
	if IsRemote(ErrConnection) {
		t.Error("ErrConnection is not remote")
	}
	if (&RemoteError{Description: "bare"}).Error() != "bare" {
		t.Error("code-less error should print the description only")
	}
}
