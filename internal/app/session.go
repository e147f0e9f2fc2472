package app

import (
	"sync"
	"time"

	"github.com/bft-labs/logship/internal/domain"
	"github.com/bft-labs/logship/internal/ports"
)

// WorkerShutdownTimeout bounds how long Close waits for the stream workers
// after the channel has been shut down.
const WorkerShutdownTimeout = 5 * time.Second

// EventEmitter is called when the session state changes.
type EventEmitter interface {
	OnStateChange(previous, current domain.SessionState, reason string)
}

// Session is the state machine of one duplex stream. Terminal states are
// absorbing and the first terminal outcome wins.
type Session struct {
	mu           sync.RWMutex
	state        domain.SessionState
	outcome      error
	done         chan struct{}
	wg           sync.WaitGroup
	logger       ports.Logger
	eventEmitter EventEmitter
}

// NewSession creates an unopened session.
func NewSession(logger ports.Logger, emitter EventEmitter) *Session {
	return &Session{
		state:        domain.SessionUnopened,
		done:         make(chan struct{}),
		logger:       logger,
		eventEmitter: emitter,
	}
}

// State returns the current session state.
func (s *Session) State() domain.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// TransitionTo moves the session to a non-terminal state.
// Use Terminate to reach a terminal state.
func (s *Session) TransitionTo(newState domain.SessionState, reason string) error {
	s.mu.Lock()
	oldState := s.state

	if oldState.Terminal() {
		s.mu.Unlock()
		return domain.ErrSessionTerminated
	}

	valid := false
	switch oldState {
	case domain.SessionUnopened:
		valid = newState == domain.SessionOpen
	case domain.SessionOpen:
		valid = newState == domain.SessionLocalCompleting
	}
	if !valid {
		s.mu.Unlock()
		return domain.ErrInvalidTransition
	}

	s.state = newState
	s.mu.Unlock()

	s.emit(oldState, newState, reason)
	return nil
}

// Terminate records the outcome of the session: success when err is nil,
// failure otherwise. It returns false if the session had already terminated,
// in which case the earlier outcome stands.
func (s *Session) Terminate(err error, reason string) bool {
	s.mu.Lock()
	oldState := s.state
	if oldState.Terminal() {
		s.mu.Unlock()
		return false
	}

	newState := domain.SessionSucceeded
	if err != nil {
		newState = domain.SessionFailed
	}
	s.state = newState
	s.outcome = err
	close(s.done)
	s.mu.Unlock()

	s.emit(oldState, newState, reason)
	return true
}

func (s *Session) emit(oldState, newState domain.SessionState, reason string) {
	// Emit event outside of lock
	if s.eventEmitter != nil {
		s.eventEmitter.OnStateChange(oldState, newState, reason)
	}

	s.logger.Debug("session transition",
		ports.String("from", oldState.String()),
		ports.String("to", newState.String()),
		ports.String("reason", reason),
	)
}

// Done is closed once the session reaches a terminal state.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Outcome returns the recorded failure, or nil on success or while the
// session is still live.
func (s *Session) Outcome() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.outcome
}

// Await blocks until the session terminates. A zero timeout waits
// indefinitely; otherwise ErrCloseTimeout is returned on expiry.
func (s *Session) Await(timeout time.Duration) error {
	if timeout <= 0 {
		<-s.done
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-s.done:
		return nil
	case <-timer.C:
		return domain.ErrCloseTimeout
	}
}

// AddWorker increments the worker count.
func (s *Session) AddWorker() {
	s.wg.Add(1)
}

// WorkerDone decrements the worker count.
func (s *Session) WorkerDone() {
	s.wg.Done()
}

// WaitWorkers waits for all workers to finish with a timeout.
// Returns false if the timeout expires.
func (s *Session) WaitWorkers(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		s.logger.Warn("stream workers did not exit",
			ports.Duration("timeout", timeout),
		)
		return false
	}
}
