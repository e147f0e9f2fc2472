package app

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/logship/internal/domain"
	"github.com/bft-labs/logship/internal/ports"
	"github.com/bft-labs/logship/pkg/registry"
)

// mockLogger implements ports.Logger for testing.
type mockLogger struct{}

func (mockLogger) Debug(msg string, fields ...ports.Field) {}
func (mockLogger) Info(msg string, fields ...ports.Field)  {}
func (mockLogger) Warn(msg string, fields ...ports.Field)  {}
func (mockLogger) Error(msg string, fields ...ports.Field) {}

// memRegistry is an in-memory ports.LevelRegistry.
type memRegistry struct {
	mu     sync.Mutex
	levels map[string]registry.Level
	calls  []string
}

func newMemRegistry() *memRegistry {
	return &memRegistry{levels: map[string]registry.Level{"": registry.LevelInfo}}
}

func (m *memRegistry) Level(name string) (registry.Level, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.levels[name]
	return l, ok
}

func (m *memRegistry) SetLevel(name string, level registry.Level) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.levels[name] = level
	m.calls = append(m.calls, "set:"+name)
}

func (m *memRegistry) UnsetLevel(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.levels, name)
	m.calls = append(m.calls, "unset:"+name)
}

// staticContext is a fixed ports.ContextStore.
type staticContext struct {
	mu            sync.Mutex
	values        map[string]string
	instructionID string
}

func (s *staticContext) Snapshot() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.values) == 0 {
		return nil
	}
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

func (s *staticContext) InstructionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.instructionID
}

func (s *staticContext) put(k, v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = make(map[string]string)
	}
	s.values[k] = v
}

// fakeStream is a scriptable ports.Stream.
type fakeStream struct {
	ctx context.Context

	mu         sync.Mutex
	batches    [][]domain.LogEntry
	closedSend bool
	sendErr    error
	ready      bool
	readyCh    chan struct{}
	sentCh     chan struct{}

	// completeOnCloseSend makes the peer finish after local completion.
	completeOnCloseSend bool
	peer                chan error
}

func newFakeStream(ctx context.Context) *fakeStream {
	return &fakeStream{
		ctx:                 ctx,
		ready:               true,
		readyCh:             make(chan struct{}),
		sentCh:              make(chan struct{}, 64),
		completeOnCloseSend: true,
		peer:                make(chan error, 4),
	}
}

func (s *fakeStream) WaitReady(ctx context.Context) error {
	for {
		s.mu.Lock()
		ready, ch := s.ready, s.readyCh
		s.mu.Unlock()
		if ready {
			return nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *fakeStream) setReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
	if ready {
		close(s.readyCh)
		s.readyCh = make(chan struct{})
	}
}

func (s *fakeStream) Send(entries []domain.LogEntry) error {
	s.mu.Lock()
	if s.sendErr != nil {
		err := s.sendErr
		s.mu.Unlock()
		return err
	}
	s.batches = append(s.batches, entries)
	s.mu.Unlock()

	select {
	case s.sentCh <- struct{}{}:
	default:
	}
	return nil
}

func (s *fakeStream) CloseSend() error {
	s.mu.Lock()
	s.closedSend = true
	complete := s.completeOnCloseSend
	s.mu.Unlock()
	if complete {
		s.peer <- io.EOF
	}
	return nil
}

func (s *fakeStream) Recv() error {
	select {
	case err := <-s.peer:
		return err
	case <-s.ctx.Done():
		return errors.New("stream canceled")
	}
}

func (s *fakeStream) Batches() [][]domain.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]domain.LogEntry(nil), s.batches...)
}

func (s *fakeStream) Entries() []domain.LogEntry {
	var out []domain.LogEntry
	for _, b := range s.Batches() {
		out = append(out, b...)
	}
	return out
}

func (s *fakeStream) ClosedSend() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closedSend
}

// fakeChannel hands out one fakeStream.
type fakeChannel struct {
	mu       sync.Mutex
	stream   *fakeStream
	openErr  error
	shutdown bool
	setup    func(*fakeStream)
}

func (c *fakeChannel) OpenStream(ctx context.Context) (ports.Stream, error) {
	if c.openErr != nil {
		return nil, c.openErr
	}
	s := newFakeStream(ctx)
	if c.setup != nil {
		c.setup(s)
	}
	c.mu.Lock()
	c.stream = s
	c.mu.Unlock()
	return s, nil
}

func (c *fakeChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shutdown = true
	return nil
}

func (c *fakeChannel) IsShutdown() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shutdown
}

func (c *fakeChannel) Stream() *fakeStream {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stream
}

func (c *fakeChannel) provider() ports.ChannelProvider {
	return func(ctx context.Context, endpoint string) (ports.Channel, error) {
		return c, nil
	}
}

// mockEmitter tracks session events for testing.
type mockEmitter struct {
	mu     sync.Mutex
	events []stateChangeEvent
}

type stateChangeEvent struct {
	previous domain.SessionState
	current  domain.SessionState
	reason   string
}

func (m *mockEmitter) OnStateChange(previous, current domain.SessionState, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, stateChangeEvent{previous, current, reason})
}

func (m *mockEmitter) Events() []stateChangeEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]stateChangeEvent{}, m.events...)
}

// sendRecorder counts send events.
type sendRecorder struct {
	mu        sync.Mutex
	sent      int
	failures  int
	discarded int
	dropped   map[string]int
}

func (r *sendRecorder) OnBatchSent(entries int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent += entries
}

func (r *sendRecorder) OnSendError(_ error, discarded int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures++
	r.discarded += discarded
}

func (r *sendRecorder) OnEntriesDropped(reason string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dropped == nil {
		r.dropped = make(map[string]int)
	}
	r.dropped[reason] += n
}

func (r *sendRecorder) Dropped(reason string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped[reason]
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}
