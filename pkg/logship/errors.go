package logship

import "github.com/bft-labs/logship/internal/domain"

// Errors returned by the client. Check them with errors.Is.
var (
	ErrConfiguration = domain.ErrConfiguration
	ErrConnection    = domain.ErrConnection
	ErrCloseTimeout  = domain.ErrCloseTimeout
)

// RemoteError is the error status reported by the collector. Close returns
// it wrapped; use errors.As.
type RemoteError = domain.RemoteError
