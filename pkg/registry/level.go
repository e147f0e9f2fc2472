package registry

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Level is a local logging verbosity. Values use slog spacing so that a
// slog.Level converts directly; any integer between the named levels is valid.
type Level int

const (
	// LevelAll enables every record.
	LevelAll Level = math.MinInt32

	// LevelTrace is the most verbose named level ("finest").
	LevelTrace Level = -8

	// LevelDebug is fine-grained debugging output ("fine").
	LevelDebug Level = -4

	// LevelInfo is informational output.
	LevelInfo Level = 0

	// LevelWarn marks warnings.
	LevelWarn Level = 4

	// LevelError is the most severe named level ("severe").
	LevelError Level = 8

	// LevelOff disables a logger entirely.
	LevelOff Level = math.MaxInt32
)

// String returns the canonical name of the level. Levels between the named
// constants render as NAME+n, like slog.
func (l Level) String() string {
	switch l {
	case LevelAll:
		return "ALL"
	case LevelOff:
		return "OFF"
	}
	name := func(base string, val Level) string {
		if l == val {
			return base
		}
		return base + "+" + strconv.Itoa(int(l-val))
	}
	switch {
	case l < LevelDebug:
		if l < LevelTrace {
			return "TRACE" + strconv.Itoa(int(l-LevelTrace))
		}
		return name("TRACE", LevelTrace)
	case l < LevelInfo:
		return name("DEBUG", LevelDebug)
	case l < LevelWarn:
		return name("INFO", LevelInfo)
	case l < LevelError:
		return name("WARN", LevelWarn)
	default:
		return name("ERROR", LevelError)
	}
}

// ParseLevel resolves a configured level name. Names are case-insensitive.
// FINEST, FINE, WARNING and SEVERE are accepted as aliases.
func ParseLevel(name string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "ALL":
		return LevelAll, nil
	case "TRACE", "FINEST":
		return LevelTrace, nil
	case "DEBUG", "FINE":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "ERROR", "SEVERE":
		return LevelError, nil
	case "OFF":
		return LevelOff, nil
	default:
		return 0, fmt.Errorf("unknown level %q", name)
	}
}
