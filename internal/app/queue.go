package app

import (
	"sync"

	"github.com/bft-labs/logship/internal/domain"
)

// Queue is the FIFO between emitting goroutines and the single stream
// writer. Push never blocks on the consumer.
type Queue struct {
	mu      sync.Mutex
	entries []domain.LogEntry
	closed  bool
	maxSize int
	dropped uint64
	ready   chan struct{}

	onOverflow func()
}

// NewQueue creates a queue. maxSize bounds the number of waiting entries;
// zero means unbounded. When full, new entries are dropped.
func NewQueue(maxSize int) *Queue {
	return &Queue{
		maxSize: maxSize,
		ready:   make(chan struct{}, 1),
	}
}

// Push appends e. It returns false if the queue is closed or full.
func (q *Queue) Push(e domain.LogEntry) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	if q.maxSize > 0 && len(q.entries) >= q.maxSize {
		q.dropped++
		q.mu.Unlock()
		if q.onOverflow != nil {
			q.onOverflow()
		}
		return false
	}
	q.entries = append(q.entries, e)
	q.mu.Unlock()

	q.signal()
	return true
}

// OnOverflow sets fn to run, outside the queue lock, for each entry the
// size bound rejects. It must be set before the queue is shared.
func (q *Queue) OnOverflow(fn func()) {
	q.onOverflow = fn
}

// DrainAvailable removes up to max entries in FIFO order; max <= 0 takes
// everything present. The returned slice belongs to the caller. closed is
// true once the queue is closed and nothing is left to drain.
func (q *Queue) DrainAvailable(max int) (entries []domain.LogEntry, closed bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.entries)
	if max > 0 && n > max {
		entries = q.entries[:max:max]
		q.entries = q.entries[max:]
		q.signal()
	} else {
		entries = q.entries
		q.entries = nil
	}
	return entries, q.closed && len(q.entries) == 0
}

// Ready delivers a wake-up after entries were pushed or the queue closed.
func (q *Queue) Ready() <-chan struct{} {
	return q.ready
}

// Close stops accepting entries and wakes the consumer. Entries already
// queued remain drainable.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()
}

// Discard drops everything queued and returns how many entries were lost.
func (q *Queue) Discard() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.entries)
	q.entries = nil
	q.dropped += uint64(n)
	return n
}

// countDropped records n entries lost after leaving the queue.
func (q *Queue) countDropped(n int) {
	q.mu.Lock()
	q.dropped += uint64(n)
	q.mu.Unlock()
}

// Len returns the number of waiting entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Dropped returns the number of entries lost to the size bound or to
// Discard.
func (q *Queue) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

func (q *Queue) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}
