package ports

import "github.com/bft-labs/logship/pkg/log"

// Logger is the component's own diagnostics sink.
type Logger = log.Logger

// Field is a structured logging key-value pair.
type Field = log.Field

// Field constructors re-exported for the application layer.
var (
	String   = log.String
	Int      = log.Int
	Int64    = log.Int64
	Uint64   = log.Uint64
	Bool     = log.Bool
	Duration = log.Duration
	Strings  = log.Strings
	Err      = log.Err
	Any      = log.Any
)
