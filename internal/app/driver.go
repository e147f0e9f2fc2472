package app

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/bft-labs/logship/internal/domain"
	"github.com/bft-labs/logship/internal/ports"
)

// DriverConfig contains configuration for the stream driver.
type DriverConfig struct {
	// MaxBatchEntries caps the entries per outbound message. Zero sends
	// everything available.
	MaxBatchEntries int

	// CloseTimeout bounds the wait for the collector to terminate the
	// stream. Zero waits indefinitely.
	CloseTimeout time.Duration
}

// Reasons reported to SendEventEmitter.OnEntriesDropped.
const (
	DropQueueFull   = "queue_full"
	DropStreamEnded = "stream_ended"
)

// SendEventEmitter is called after each outbound message and whenever
// accepted entries are lost without a send error.
type SendEventEmitter interface {
	OnBatchSent(entries int, duration time.Duration)
	OnSendError(err error, discarded int)
	OnEntriesDropped(reason string, n int)
}

// SendFailureGrace is how long a failed write waits for the collector's
// status before the write error itself ends the session.
const SendFailureGrace = 500 * time.Millisecond

// Driver owns the duplex stream: one goroutine drains the queue into it and
// another observes the collector's replies.
type Driver struct {
	config  DriverConfig
	queue   *Queue
	session *Session
	logger  ports.Logger
	emitter SendEventEmitter

	channel ports.Channel
	stream  ports.Stream
	cancel  context.CancelFunc

	finishOnce   sync.Once
	finishErr    error
	shutdownOnce sync.Once
}

// NewDriver creates a driver for queue. Start must be called before use.
func NewDriver(config DriverConfig, queue *Queue, session *Session, logger ports.Logger, emitter SendEventEmitter) *Driver {
	return &Driver{
		config:  config,
		queue:   queue,
		session: session,
		logger:  logger,
		emitter: emitter,
	}
}

// Start opens the stream on channel and launches the workers. The driver
// takes ownership of channel. ctx bounds stream establishment only.
func (d *Driver) Start(ctx context.Context, channel ports.Channel) error {
	streamCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	stream, err := openStream(ctx, streamCtx, channel)
	if err != nil {
		cancel()
		return err
	}

	d.channel = channel
	d.stream = stream
	d.cancel = cancel

	if err := d.session.TransitionTo(domain.SessionOpen, "stream opened"); err != nil {
		cancel()
		return err
	}

	d.session.AddWorker()
	go d.observe()

	d.session.AddWorker()
	go d.drain(streamCtx)

	return nil
}

// openStream opens a stream that outlives ctx while still honoring ctx's
// deadline during establishment.
func openStream(ctx, streamCtx context.Context, channel ports.Channel) (ports.Stream, error) {
	type result struct {
		stream ports.Stream
		err    error
	}
	ch := make(chan result, 1)
	go func() {
		s, err := channel.OpenStream(streamCtx)
		ch <- result{s, err}
	}()

	select {
	case r := <-ch:
		return r.stream, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// State returns the session state.
func (d *Driver) State() domain.SessionState {
	return d.session.State()
}

// Finish flushes the queue, signals local completion and waits for the
// collector to terminate the stream. It returns the session outcome and is
// safe to call more than once.
func (d *Driver) Finish() error {
	d.finishOnce.Do(func() {
		d.queue.Close()

		if err := d.session.Await(d.config.CloseTimeout); err != nil {
			d.logger.Warn("collector did not terminate the stream",
				ports.Duration("timeout", d.config.CloseTimeout),
			)
			d.session.Terminate(err, "close timeout")
		}

		d.finishErr = d.session.Outcome()
	})
	return d.finishErr
}

// Shutdown cancels the stream, closes the channel and waits for the workers.
func (d *Driver) Shutdown() {
	d.shutdownOnce.Do(func() {
		if d.cancel != nil {
			d.cancel()
		}
		if d.channel != nil {
			if err := d.channel.Close(); err != nil {
				d.logger.Warn("channel close failed", ports.Err(err))
			}
		}
		d.session.WaitWorkers(WorkerShutdownTimeout)
	})
}

// observe records the collector's terminal signal.
func (d *Driver) observe() {
	defer d.session.WorkerDone()

	for {
		err := d.stream.Recv()
		switch {
		case err == nil:
			d.logger.Debug("control message from collector")
		case errors.Is(err, domain.ErrProtocolAnomaly):
			d.logger.Warn("ignoring collector message", ports.Err(err))
		case errors.Is(err, io.EOF):
			d.session.Terminate(nil, "collector completed")
			return
		default:
			if d.session.Terminate(err, "collector error") {
				d.logger.Error("stream failed", ports.Err(err))
			}
			return
		}
	}
}

// drain is the only writer on the stream.
func (d *Driver) drain(ctx context.Context) {
	defer d.session.WorkerDone()

	for {
		entries, closed := d.queue.DrainAvailable(d.config.MaxBatchEntries)

		if len(entries) > 0 {
			if err := d.send(ctx, entries); err != nil {
				// Stop writing; failSend settles the session.
				d.queue.Close()
				d.queue.countDropped(len(entries))
				discarded := len(entries) + d.queue.Discard()
				d.logger.Warn("send failed, discarding queued entries",
					ports.Err(err),
					ports.Int("discarded", discarded),
				)
				if d.emitter != nil {
					d.emitter.OnSendError(err, discarded)
				}
				d.failSend(err)
				return
			}
			continue
		}

		if closed {
			// Transition first so the collector's reply always follows it.
			if err := d.session.TransitionTo(domain.SessionLocalCompleting, "local completion sent"); err != nil {
				d.logger.Debug("session already terminated at local completion",
					ports.String("state", d.session.State().String()),
				)
			}
			if err := d.stream.CloseSend(); err != nil {
				d.logger.Warn("close send failed", ports.Err(err))
			}
			return
		}

		select {
		case <-d.queue.Ready():
		case <-d.session.Done():
			// Collector ended the stream first: nothing more can be sent.
			d.queue.Close()
			if n := d.queue.Discard(); n > 0 {
				d.logger.Warn("stream ended by collector, discarding queued entries",
					ports.Int("discarded", n),
				)
				if d.emitter != nil {
					d.emitter.OnEntriesDropped(DropStreamEnded, n)
				}
			}
			_ = d.stream.CloseSend()
			return
		}
	}
}

// failSend ends the session after a write error. A status the collector
// reports within SendFailureGrace takes precedence over err.
func (d *Driver) failSend(err error) {
	timer := time.NewTimer(SendFailureGrace)
	defer timer.Stop()

	select {
	case <-d.session.Done():
	case <-timer.C:
		d.session.Terminate(err, "send failed")
	}
	// Unblocks the observer when the stream never reports a status.
	d.cancel()
}

func (d *Driver) send(ctx context.Context, entries []domain.LogEntry) error {
	if err := d.stream.WaitReady(ctx); err != nil {
		return err
	}

	start := time.Now()
	if err := d.stream.Send(entries); err != nil {
		return err
	}
	duration := time.Since(start)

	d.logger.Debug("sent batch",
		ports.Int("entries", len(entries)),
		ports.Duration("duration", duration),
	)
	if d.emitter != nil {
		d.emitter.OnBatchSent(len(entries), duration)
	}
	return nil
}
