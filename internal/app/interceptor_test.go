package app

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bft-labs/logship/internal/domain"
	"github.com/bft-labs/logship/pkg/registry"
)

func drainAll(q *Queue) []domain.LogEntry {
	entries, _ := q.DrainAvailable(0)
	return entries
}

func TestInterceptor_ConvertsRecord(t *testing.T) {
	q := NewQueue(0)
	store := &staticContext{instructionID: "instruction-1"}
	i := NewInterceptor(q, store, &mockLogger{})

	i.Publish(registry.Record{
		Level:      registry.LevelDebug,
		Message:    "Message",
		LoggerName: "LoggerName",
		Time:       time.UnixMilli(1234567890),
		ThreadID:   12345,
	})

	got := drainAll(q)
	if len(got) != 1 {
		t.Fatalf("queued %d entries, want 1", len(got))
	}
	want := domain.LogEntry{
		InstructionID: "instruction-1",
		Severity:      domain.SeverityDebug,
		Message:       "Message",
		Thread:        "12345",
		Seconds:       1234567,
		Nanos:         890000000,
		LogLocation:   "LoggerName",
	}
	e := got[0]
	if e.InstructionID != want.InstructionID || e.Severity != want.Severity ||
		e.Message != want.Message || e.Thread != want.Thread ||
		e.Seconds != want.Seconds || e.Nanos != want.Nanos ||
		e.LogLocation != want.LogLocation || e.Trace != "" || e.CustomData != nil {
		t.Errorf("entry = %+v, want %+v", e, want)
	}
}

func TestInterceptor_TraceLeavesMessage(t *testing.T) {
	q := NewQueue(0)
	i := NewInterceptor(q, &staticContext{}, &mockLogger{})
	failure := registry.WithStack(errors.New("ExceptionMessage"))

	i.Publish(registry.Record{
		Level:   registry.LevelWarn,
		Message: "MessageWithException",
		Err:     failure,
	})

	e := drainAll(q)[0]
	if e.Severity != domain.SeverityWarn {
		t.Errorf("Severity = %v, want WARN", e.Severity)
	}
	if e.Message != "MessageWithException" {
		t.Errorf("Message = %q", e.Message)
	}
	if e.Trace != registry.StackTrace(failure) {
		t.Errorf("Trace = %q, want formatted stack", e.Trace)
	}
	if !strings.HasPrefix(e.Trace, "ExceptionMessage") {
		t.Errorf("Trace does not start with the failure message: %q", e.Trace)
	}
}

func TestInterceptor_ContextAndLiveFormatter(t *testing.T) {
	q := NewQueue(0)
	store := &staticContext{}
	i := NewInterceptor(q, store, &mockLogger{})

	i.Publish(registry.Record{Level: registry.LevelInfo, Message: "Message"})

	store.put("testMdcKey", "testMdcValue")
	i.SetFormatter(registry.FormatterFunc(func(r registry.Record) string {
		v := store.Snapshot()["testMdcKey"]
		return v + ":" + r.Message
	}))
	i.Publish(registry.Record{Level: registry.LevelInfo, Message: "Message"})

	got := drainAll(q)
	if len(got) != 2 {
		t.Fatalf("queued %d entries, want 2", len(got))
	}
	if got[0].CustomData != nil || got[0].Message != "Message" {
		t.Errorf("first entry = %+v, want raw message without custom data", got[0])
	}
	if got[1].Message != "testMdcValue:Message" {
		t.Errorf("second message = %q", got[1].Message)
	}
	if len(got[1].CustomData) != 1 || got[1].CustomData["testMdcKey"] != "testMdcValue" {
		t.Errorf("second custom data = %v", got[1].CustomData)
	}

	i.SetFormatter(nil)
	if i.Formatter() != nil {
		t.Error("formatter not cleared")
	}
}

func TestInterceptor_BestEffortFields(t *testing.T) {
	q := NewQueue(0)
	i := NewInterceptor(q, &staticContext{}, &mockLogger{})
	fixed := time.Unix(1700000000, 5)
	i.now = func() time.Time { return fixed }

	i.Publish(registry.Record{Level: registry.LevelError, Message: "no thread, no time"})

	e := drainAll(q)[0]
	if e.Thread != "" {
		t.Errorf("Thread = %q, want empty", e.Thread)
	}
	if e.Seconds != 1700000000 || e.Nanos != 5 {
		t.Errorf("time = %d/%d, want emission time", e.Seconds, e.Nanos)
	}
}

func TestInterceptor_PanickingFormatter(t *testing.T) {
	q := NewQueue(0)
	i := NewInterceptor(q, &staticContext{}, &mockLogger{})
	i.SetFormatter(registry.FormatterFunc(func(registry.Record) string { panic("bad formatter") }))

	i.Publish(registry.Record{Level: registry.LevelInfo, Message: "raw"})

	if e := drainAll(q); len(e) != 1 || e[0].Message != "raw" {
		t.Errorf("entries = %+v, want raw message", e)
	}
}

func TestInterceptor_NoContextStore(t *testing.T) {
	q := NewQueue(0)
	i := NewInterceptor(q, nil, &mockLogger{})

	i.Publish(registry.Record{Level: registry.LevelWarn, Message: "no context"})

	e := drainAll(q)
	if len(e) != 1 || e[0].InstructionID != "" || e[0].CustomData != nil {
		t.Errorf("entries = %+v, want one entry without context", e)
	}
}

func TestInterceptor_OffNeverQueued(t *testing.T) {
	q := NewQueue(0)
	i := NewInterceptor(q, &staticContext{}, &mockLogger{})

	i.Publish(registry.Record{Level: registry.LevelOff, Message: "never"})

	if q.Len() != 0 {
		t.Errorf("queued %d entries for an OFF record", q.Len())
	}
}

func TestInterceptor_InstalledOnRegistry(t *testing.T) {
	reg := registry.New()
	q := NewQueue(0)
	i := NewInterceptor(q, &staticContext{}, &mockLogger{})
	reg.Root().AddHandler(i)

	reg.SetLevel("", registry.LevelOff)
	reg.SetLevel("ConfiguredLogger", registry.LevelDebug)

	reg.Root().Error("filtered by root")
	reg.Logger("ConfiguredLogger").Trace("below threshold")
	reg.Logger("ConfiguredLogger").Debug("Message")

	got := drainAll(q)
	if len(got) != 1 || got[0].Message != "Message" || got[0].LogLocation != "ConfiguredLogger" {
		t.Errorf("entries = %+v, want one DEBUG entry", got)
	}
	if got[0].Thread == "" {
		t.Error("Thread should carry the goroutine id")
	}
}
