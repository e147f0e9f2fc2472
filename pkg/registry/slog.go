package registry

import (
	"context"
	"log/slog"
	"strings"
)

// SlogHandler is a slog.Handler that publishes records through a registry
// logger, so slog users are subject to the registry's levels and handlers.
//
// Attributes are appended to the message as key=value pairs. An attribute
// holding an error under the key "err" or "error" becomes the record failure.
type SlogHandler struct {
	logger *Logger
	attrs  []slog.Attr
	group  string
}

// NewSlogHandler returns a handler publishing to l.
func NewSlogHandler(l *Logger) *SlogHandler {
	return &SlogHandler{logger: l}
}

// Enabled gates by the logger's effective level.
func (h *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.logger.Enabled(Level(level))
}

// Handle converts r into a Record and logs it.
func (h *SlogHandler) Handle(_ context.Context, r slog.Record) error {
	rec := Record{
		Level:    Level(r.Level),
		Time:     r.Time,
		ThreadID: GoroutineID(),
	}

	var b strings.Builder
	b.WriteString(r.Message)
	for _, a := range h.attrs {
		b.WriteByte(' ')
		b.WriteString(a.Key)
		b.WriteByte('=')
		b.WriteString(a.Value.String())
	}
	r.Attrs(func(a slog.Attr) bool {
		if err, ok := a.Value.Any().(error); ok && (a.Key == "err" || a.Key == "error") && rec.Err == nil {
			rec.Err = err
			return true
		}
		b.WriteByte(' ')
		b.WriteString(h.qualify(a.Key))
		b.WriteByte('=')
		b.WriteString(a.Value.String())
		return true
	})
	rec.Message = b.String()

	h.logger.Log(rec)
	return nil
}

// WithAttrs returns a copy of the handler with additional attributes. Keys
// are qualified by the groups opened so far.
func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	if len(attrs) > 0 {
		nh.attrs = append([]slog.Attr{}, h.attrs...)
		for _, a := range attrs {
			nh.attrs = append(nh.attrs, slog.Attr{Key: h.qualify(a.Key), Value: a.Value})
		}
	}
	return &nh
}

func (h *SlogHandler) qualify(key string) string {
	if h.group == "" {
		return key
	}
	return h.group + "." + key
}

// WithGroup returns a copy of the handler that prefixes attribute keys.
func (h *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	nh := *h
	if nh.group != "" {
		nh.group += "." + name
	} else {
		nh.group = name
	}
	return &nh
}
