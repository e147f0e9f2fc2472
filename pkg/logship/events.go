package logship

import (
	"time"

	"github.com/bft-labs/logship/internal/domain"
	"github.com/bft-labs/logship/internal/metrics"
)

// State is the lifecycle state of a client's stream.
type State int

const (
	// StateUnopened is the state before the stream is established.
	StateUnopened State = iota
	// StateOpen accepts and ships records.
	StateOpen
	// StateCompleting has finished sending and waits for the collector.
	StateCompleting
	// StateSucceeded is terminal: the collector completed the stream.
	StateSucceeded
	// StateFailed is terminal: the stream ended with an error.
	StateFailed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateUnopened:
		return "unopened"
	case StateOpen:
		return "open"
	case StateCompleting:
		return "completing"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// StateChangeEvent is emitted on every stream state transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// BatchSentEvent is emitted after an outbound message is written.
type BatchSentEvent struct {
	Entries  int
	Duration time.Duration
}

// SendErrorEvent is emitted when writing to the stream fails.
type SendErrorEvent struct {
	Error     error
	Discarded int
}

// EventHandler receives client notifications. Methods are called
// synchronously from the client's goroutines and must return quickly.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
	OnBatchSent(event BatchSentEvent)
	OnSendError(event SendErrorEvent)
}

// BaseEventHandler implements EventHandler with no-ops. Embed it to handle
// only some events.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(StateChangeEvent) {}
func (BaseEventHandler) OnBatchSent(BatchSentEvent)     {}
func (BaseEventHandler) OnSendError(SendErrorEvent)     {}

// eventEmitterWrapper adapts EventHandler and Metrics to the internal
// emitter interfaces.
type eventEmitterWrapper struct {
	handler EventHandler
	metrics *metrics.Metrics
}

func (e *eventEmitterWrapper) OnStateChange(previous, current domain.SessionState, reason string) {
	if e.metrics != nil {
		e.metrics.ObserveState(convertState(current).String())
	}
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: convertState(previous),
		Current:  convertState(current),
		Reason:   reason,
	})
}

func (e *eventEmitterWrapper) OnBatchSent(entries int, duration time.Duration) {
	if e.metrics != nil {
		e.metrics.ObserveBatch(entries, duration)
	}
	if e.handler == nil {
		return
	}
	e.handler.OnBatchSent(BatchSentEvent{Entries: entries, Duration: duration})
}

func (e *eventEmitterWrapper) OnSendError(err error, discarded int) {
	if e.metrics != nil {
		e.metrics.ObserveSendError(discarded)
	}
	if e.handler == nil {
		return
	}
	e.handler.OnSendError(SendErrorEvent{Error: err, Discarded: discarded})
}

func (e *eventEmitterWrapper) OnEntriesDropped(reason string, n int) {
	if e.metrics != nil {
		e.metrics.ObserveDropped(reason, n)
	}
}

func convertState(s domain.SessionState) State {
	switch s {
	case domain.SessionUnopened:
		return StateUnopened
	case domain.SessionOpen:
		return StateOpen
	case domain.SessionLocalCompleting:
		return StateCompleting
	case domain.SessionSucceeded:
		return StateSucceeded
	case domain.SessionFailed:
		return StateFailed
	default:
		return StateUnopened
	}
}
