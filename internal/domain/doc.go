// Package domain contains the core entities and value objects of logship.
//
// This package is the innermost layer. It has no dependencies on the
// transport, the logger registry implementation or the component's own
// diagnostics, and contains only pure rules.
//
// # Entities
//
//   - [Severity]: the collector's verbosity classification of an entry
//   - [LogEntry]: one record in its wire shape
//   - [Batch]: the ordered unit of transmission
//   - [SessionState]: the lifecycle of one duplex stream
//
// Errors returned by the public API are declared in errors.go and can be
// checked with errors.Is and errors.As.
package domain
