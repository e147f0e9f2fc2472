package app

import (
	"strconv"
	"sync"
	"time"

	"github.com/bft-labs/logship/internal/domain"
	"github.com/bft-labs/logship/internal/ports"
	"github.com/bft-labs/logship/pkg/registry"
)

// Interceptor is the registry handler that turns accepted records into
// entries on the outbound queue.
type Interceptor struct {
	queue   *Queue
	context ports.ContextStore
	logger  ports.Logger
	now     func() time.Time

	mu        sync.RWMutex
	formatter registry.Formatter
}

var (
	_ registry.Handler     = (*Interceptor)(nil)
	_ registry.Formattable = (*Interceptor)(nil)
)

// NewInterceptor creates an interceptor pushing onto q.
func NewInterceptor(q *Queue, store ports.ContextStore, logger ports.Logger) *Interceptor {
	return &Interceptor{
		queue:   q,
		context: store,
		logger:  logger,
		now:     time.Now,
	}
}

// SetFormatter installs the formatter applied to subsequent records. nil
// restores the raw message.
func (i *Interceptor) SetFormatter(f registry.Formatter) {
	i.mu.Lock()
	i.formatter = f
	i.mu.Unlock()
}

// Formatter returns the installed formatter, if any.
func (i *Interceptor) Formatter() registry.Formatter {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.formatter
}

// Publish converts rec and queues it. It never blocks on the network and
// never panics.
func (i *Interceptor) Publish(rec registry.Record) {
	severity, ok := domain.SeverityFor(rec.Level)
	if !ok {
		return
	}

	entry := domain.LogEntry{
		Severity:    severity,
		Message:     i.message(rec),
		LogLocation: rec.LoggerName,
		Trace:       registry.StackTrace(rec.Err),
	}
	if i.context != nil {
		entry.InstructionID = i.context.InstructionID()
		entry.CustomData = i.context.Snapshot()
	}

	ts := rec.Time
	if ts.IsZero() {
		ts = i.now()
	}
	entry.SetTime(ts)

	if rec.ThreadID != 0 {
		entry.Thread = strconv.FormatInt(rec.ThreadID, 10)
	}

	i.queue.Push(entry)
}

func (i *Interceptor) message(rec registry.Record) (msg string) {
	f := i.Formatter()
	if f == nil {
		return rec.Message
	}

	defer func() {
		if r := recover(); r != nil {
			i.logger.Warn("formatter panicked, using raw message",
				ports.Any("panic", r),
				ports.String("logger", rec.LoggerName),
			)
			msg = rec.Message
		}
	}()
	return f.FormatMessage(rec)
}
