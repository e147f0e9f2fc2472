package ports

// ContextStore exposes the ambient diagnostic context. The bridge only reads
// from it.
type ContextStore interface {
	// Snapshot copies the current key/value pairs. An empty context returns
	// nil.
	Snapshot() map[string]string

	// InstructionID returns the identifier of the current unit of work.
	InstructionID() string
}
