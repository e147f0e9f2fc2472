package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent error conditions in logship.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrConfiguration is returned when a level name or option is invalid.
	ErrConfiguration = errors.New("logship: invalid configuration")

	// ErrConnection is returned when the duplex stream cannot be established.
	ErrConnection = errors.New("logship: connection failed")

	// ErrProtocolAnomaly marks an unexpected message from the collector.
	// It is logged, never returned from Close.
	ErrProtocolAnomaly = errors.New("logship: unexpected message from collector")

	// ErrCloseTimeout is returned when the collector did not terminate the
	// stream within the configured close timeout.
	ErrCloseTimeout = errors.New("logship: close timeout")
)

// RemoteError is the error status reported by the collector.
type RemoteError struct {
	// Code is the transport status code name, e.g. "Internal".
	Code string

	// Description is the collector-supplied text, unmodified.
	Description string
}

// Error returns the description prefixed by the code.
func (e *RemoteError) Error() string {
	if e.Code == "" {
		return e.Description
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// IsRemote reports whether err carries a collector error status.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}

// Session transition errors.
var (
	// ErrInvalidTransition is returned for a session transition the state
	// machine does not allow.
	ErrInvalidTransition = errors.New("logship: invalid session transition")

	// ErrSessionTerminated is returned when a transition is attempted after
	// the session reached a terminal state.
	ErrSessionTerminated = errors.New("logship: session already terminated")
)
