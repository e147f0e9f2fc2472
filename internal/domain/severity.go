package domain

import "github.com/bft-labs/logship/pkg/registry"

// Severity is the collector's verbosity classification. Values are the wire
// enum numbers.
type Severity int32

const (
	SeverityUnspecified Severity = 0
	SeverityTrace       Severity = 1
	SeverityDebug       Severity = 2
	SeverityInfo        Severity = 3
	SeverityWarn        Severity = 5
	SeverityError       Severity = 6
)

// String returns the wire name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityTrace:
		return "TRACE"
	case SeverityDebug:
		return "DEBUG"
	case SeverityInfo:
		return "INFO"
	case SeverityWarn:
		return "WARN"
	case SeverityError:
		return "ERROR"
	default:
		return "UNSPECIFIED"
	}
}

// SeverityFor maps a local level onto the wire severity. Levels between two
// named levels take the lower one. LevelOff has no severity.
func SeverityFor(level registry.Level) (Severity, bool) {
	switch {
	case level == registry.LevelOff:
		return SeverityUnspecified, false
	case level >= registry.LevelError:
		return SeverityError, true
	case level >= registry.LevelWarn:
		return SeverityWarn, true
	case level >= registry.LevelInfo:
		return SeverityInfo, true
	case level >= registry.LevelDebug:
		return SeverityDebug, true
	default:
		return SeverityTrace, true
	}
}

// Level returns the local level a severity corresponds to.
func (s Severity) Level() registry.Level {
	switch s {
	case SeverityTrace:
		return registry.LevelTrace
	case SeverityDebug:
		return registry.LevelDebug
	case SeverityWarn:
		return registry.LevelWarn
	case SeverityError:
		return registry.LevelError
	default:
		return registry.LevelInfo
	}
}

// Enabled reports whether a record at level passes threshold.
func Enabled(level, threshold registry.Level) bool {
	return level.Enabled(threshold)
}
