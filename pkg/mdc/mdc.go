// Package mdc holds the process-wide diagnostic context: a key/value map
// snapshotted onto every shipped log entry, and the identifier of the unit of
// work currently being processed.
//
// The package-level functions operate on a default Store. Components that need
// isolation (tests, multiple bridges) can create their own Store.
package mdc

import "sync"

// Store is a concurrency-safe diagnostic context.
type Store struct {
	mu            sync.RWMutex
	values        map[string]string
	instructionID string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{values: make(map[string]string)}
}

// Put sets key to value.
func (s *Store) Put(key, value string) {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
}

// Get returns the value stored under key.
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Remove deletes key.
func (s *Store) Remove(key string) {
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
}

// Clear removes every key. The instruction id is kept.
func (s *Store) Clear() {
	s.mu.Lock()
	s.values = make(map[string]string)
	s.mu.Unlock()
}

// Snapshot returns a copy of the current values, or nil when the store is
// empty.
func (s *Store) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.values) == 0 {
		return nil
	}
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// SetInstructionID records the identifier of the current unit of work.
func (s *Store) SetInstructionID(id string) {
	s.mu.Lock()
	s.instructionID = id
	s.mu.Unlock()
}

// InstructionID returns the identifier of the current unit of work.
func (s *Store) InstructionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.instructionID
}

var std = NewStore()

// Default returns the process-wide store.
func Default() *Store { return std }

// Put sets key in the default store.
func Put(key, value string) { std.Put(key, value) }

// Get reads key from the default store.
func Get(key string) (string, bool) { return std.Get(key) }

// Remove deletes key from the default store.
func Remove(key string) { std.Remove(key) }

// Clear empties the default store.
func Clear() { std.Clear() }

// Snapshot copies the default store.
func Snapshot() map[string]string { return std.Snapshot() }

// SetInstructionID sets the default store's instruction id.
func SetInstructionID(id string) { std.SetInstructionID(id) }

// InstructionID returns the default store's instruction id.
func InstructionID() string { return std.InstructionID() }
