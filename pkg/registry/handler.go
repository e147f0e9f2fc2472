package registry

// Handler receives records that passed a logger's level filter.
// Implementations must be safe for concurrent use.
type Handler interface {
	Publish(rec Record)
}

// HandlerFunc adapts a function to Handler. Function handlers are not
// comparable, so they cannot be removed with RemoveHandler.
type HandlerFunc func(rec Record)

// Publish calls f(rec).
func (f HandlerFunc) Publish(rec Record) { f(rec) }

// Formatter renders the message text of a record.
type Formatter interface {
	FormatMessage(rec Record) string
}

// FormatterFunc adapts a function to Formatter.
type FormatterFunc func(rec Record) string

// FormatMessage calls f(rec).
func (f FormatterFunc) FormatMessage(rec Record) string { return f(rec) }

// Formattable is implemented by handlers whose formatter can be swapped at
// runtime.
type Formattable interface {
	SetFormatter(f Formatter)
	Formatter() Formatter
}
