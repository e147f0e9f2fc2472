package registry

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Registry is a hierarchical set of named loggers. Names are dot separated;
// a logger without an explicit level inherits the level of its nearest
// ancestor, ending at the root logger (the empty name).
type Registry struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
	root    *Logger
}

// Logger is a named node of a Registry.
type Logger struct {
	name string
	reg  *Registry

	// guarded by reg.mu
	level             Level
	hasLevel          bool
	handlers          []Handler
	useParentHandlers bool
}

// New returns a registry whose root logger is set to LevelInfo and has no
// handlers.
func New() *Registry {
	r := &Registry{loggers: make(map[string]*Logger)}
	r.root = &Logger{name: "", reg: r, level: LevelInfo, hasLevel: true}
	r.loggers[""] = r.root
	return r
}

var std = New()

// Default returns the process-wide registry.
func Default() *Registry { return std }

// GetLogger returns the named logger of the process-wide registry.
func GetLogger(name string) *Logger { return std.Logger(name) }

// Root returns the root logger.
func (r *Registry) Root() *Logger { return r.root }

// Logger returns the logger with the given name, creating it if needed.
func (r *Registry) Logger(name string) *Logger {
	r.mu.RLock()
	l, ok := r.loggers[name]
	r.mu.RUnlock()
	if ok {
		return l
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.loggers[name]; ok {
		return l
	}
	l = &Logger{name: name, reg: r, useParentHandlers: true}
	r.loggers[name] = l
	return l
}

// Lookup returns the named logger if it exists.
func (r *Registry) Lookup(name string) (*Logger, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.loggers[name]
	return l, ok
}

// Level returns the explicit level of the named logger. The second result is
// false when the logger does not exist or its level is unset.
func (r *Registry) Level(name string) (Level, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.loggers[name]
	if !ok || !l.hasLevel {
		return 0, false
	}
	return l.level, true
}

// SetLevel sets the explicit level of the named logger, creating it if needed.
func (r *Registry) SetLevel(name string, level Level) {
	r.Logger(name).SetLevel(level)
}

// UnsetLevel clears the explicit level of the named logger so that it
// inherits again. Unknown names are ignored.
func (r *Registry) UnsetLevel(name string) {
	if l, ok := r.Lookup(name); ok {
		l.UnsetLevel()
	}
}

// Names returns the names of all known loggers.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.loggers))
	for name := range r.loggers {
		names = append(names, name)
	}
	return names
}

func parentName(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return ""
}

// effectiveLevel walks the hierarchy; r.mu must be held.
func (r *Registry) effectiveLevel(name string) Level {
	for {
		if l, ok := r.loggers[name]; ok && l.hasLevel {
			return l.level
		}
		if name == "" {
			return r.root.level
		}
		name = parentName(name)
	}
}

// handlersFor collects handlers from name up the hierarchy; r.mu must be held.
func (r *Registry) handlersFor(name string) []Handler {
	var out []Handler
	for {
		l, ok := r.loggers[name]
		if ok {
			out = append(out, l.handlers...)
			if !l.useParentHandlers {
				return out
			}
		}
		if name == "" {
			return out
		}
		name = parentName(name)
	}
}

// Name returns the logger name; the root logger has the empty name.
func (l *Logger) Name() string { return l.name }

// Level returns the explicit level and whether one is set.
func (l *Logger) Level() (Level, bool) {
	l.reg.mu.RLock()
	defer l.reg.mu.RUnlock()
	return l.level, l.hasLevel
}

// SetLevel sets the explicit level.
func (l *Logger) SetLevel(level Level) {
	l.reg.mu.Lock()
	l.level, l.hasLevel = level, true
	l.reg.mu.Unlock()
}

// UnsetLevel clears the explicit level. The root logger cannot be unset and
// falls back to LevelInfo instead.
func (l *Logger) UnsetLevel() {
	l.reg.mu.Lock()
	defer l.reg.mu.Unlock()
	if l == l.reg.root {
		l.level = LevelInfo
		return
	}
	l.level, l.hasLevel = 0, false
}

// EffectiveLevel returns the level used to filter records of this logger.
func (l *Logger) EffectiveLevel() Level {
	l.reg.mu.RLock()
	defer l.reg.mu.RUnlock()
	return l.reg.effectiveLevel(l.name)
}

// Enabled reports whether a record at level would be published.
func (l *Logger) Enabled(level Level) bool {
	return level.Enabled(l.EffectiveLevel())
}

// Enabled reports whether a record at level l passes threshold. OFF on
// either side never passes.
func (l Level) Enabled(threshold Level) bool {
	if l == LevelOff || threshold == LevelOff {
		return false
	}
	return l >= threshold
}

// SetUseParentHandlers controls whether records are also published to the
// handlers of ancestor loggers. It defaults to true.
func (l *Logger) SetUseParentHandlers(use bool) {
	l.reg.mu.Lock()
	l.useParentHandlers = use
	l.reg.mu.Unlock()
}

// AddHandler attaches h to this logger.
func (l *Logger) AddHandler(h Handler) {
	if h == nil {
		return
	}
	l.reg.mu.Lock()
	l.handlers = append(l.handlers, h)
	l.reg.mu.Unlock()
}

// RemoveHandler detaches h. Non-comparable handlers such as HandlerFunc are
// never matched.
func (l *Logger) RemoveHandler(h Handler) {
	if h == nil || !reflect.TypeOf(h).Comparable() {
		return
	}
	l.reg.mu.Lock()
	defer l.reg.mu.Unlock()
	for i, cur := range l.handlers {
		if reflect.TypeOf(cur).Comparable() && cur == h {
			l.handlers = append(l.handlers[:i:i], l.handlers[i+1:]...)
			return
		}
	}
}

// Handlers returns a copy of the handlers attached directly to this logger.
func (l *Logger) Handlers() []Handler {
	l.reg.mu.RLock()
	defer l.reg.mu.RUnlock()
	return append([]Handler(nil), l.handlers...)
}

// Log publishes rec if its level passes the logger's effective level.
func (l *Logger) Log(rec Record) {
	if rec.LoggerName == "" {
		rec.LoggerName = l.name
	}

	l.reg.mu.RLock()
	if !rec.Level.Enabled(l.reg.effectiveLevel(l.name)) {
		l.reg.mu.RUnlock()
		return
	}
	handlers := l.reg.handlersFor(l.name)
	l.reg.mu.RUnlock()

	for _, h := range handlers {
		h.Publish(rec)
	}
}

// Logf formats and publishes a message at level.
func (l *Logger) Logf(level Level, format string, args ...any) {
	if !l.Enabled(level) {
		return
	}
	l.Log(NewRecord(level, fmt.Sprintf(format, args...)))
}

// LogErr publishes msg at level with err attached.
func (l *Logger) LogErr(level Level, err error, msg string) {
	if !l.Enabled(level) {
		return
	}
	rec := NewRecord(level, msg)
	rec.Err = err
	l.Log(rec)
}

func (l *Logger) Trace(msg string) { l.Logf(LevelTrace, "%s", msg) }
func (l *Logger) Debug(msg string) { l.Logf(LevelDebug, "%s", msg) }
func (l *Logger) Info(msg string)  { l.Logf(LevelInfo, "%s", msg) }
func (l *Logger) Warn(msg string)  { l.Logf(LevelWarn, "%s", msg) }
func (l *Logger) Error(msg string) { l.Logf(LevelError, "%s", msg) }
