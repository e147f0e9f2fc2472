package ports

import "github.com/bft-labs/logship/pkg/registry"

// LevelRegistry is the capability to read and mutate logger levels by name.
// The root logger is the empty name.
type LevelRegistry interface {
	// Level returns the explicit level of name. ok is false when the logger
	// has no level of its own.
	Level(name string) (level registry.Level, ok bool)

	// SetLevel gives name an explicit level.
	SetLevel(name string, level registry.Level)

	// UnsetLevel removes the explicit level of name.
	UnsetLevel(name string)
}

// HandlerHost is the logger that receives every record passing the
// registry's own filtering, normally the root.
type HandlerHost interface {
	AddHandler(h registry.Handler)
	RemoveHandler(h registry.Handler)
}
