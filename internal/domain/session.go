package domain

// SessionState is the lifecycle state of one duplex stream.
type SessionState int

const (
	SessionUnopened SessionState = iota
	SessionOpen
	SessionLocalCompleting
	SessionSucceeded
	SessionFailed
)

// String returns a human-readable representation of the state.
func (s SessionState) String() string {
	switch s {
	case SessionUnopened:
		return "Unopened"
	case SessionOpen:
		return "Open"
	case SessionLocalCompleting:
		return "LocalCompleting"
	case SessionSucceeded:
		return "Terminated(success)"
	case SessionFailed:
		return "Terminated(error)"
	default:
		return "Unknown"
	}
}

// Terminal reports whether s is absorbing.
func (s SessionState) Terminal() bool {
	return s == SessionSucceeded || s == SessionFailed
}
