package grpc

import (
	"context"
	"errors"
	"io"
	"net"
	"sync/atomic"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bft-labs/logship/internal/domain"
	"github.com/bft-labs/logship/internal/ports"
)

// BatchHandler receives each batch a client sends. session identifies the
// stream. A returned error fails the stream with codes.Internal.
type BatchHandler func(ctx context.Context, session string, entries []domain.LogEntry) error

// Collector is a logging service implementation that hands received batches
// to a BatchHandler.
type Collector struct {
	handler  BatchHandler
	logger   ports.Logger
	failWith *status.Status
	onStream func(session string)
	grpc     *grpc.Server
	lis      net.Listener

	streams atomic.Int64
	entries atomic.Int64
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithFailure makes every stream fail immediately with st.
func WithFailure(st *status.Status) CollectorOption {
	return func(c *Collector) { c.failWith = st }
}

// WithStreamObserver calls fn with the session id of every accepted stream.
func WithStreamObserver(fn func(session string)) CollectorOption {
	return func(c *Collector) { c.onStream = fn }
}

// NewCollector constructs a collector and its gRPC server.
func NewCollector(handler BatchHandler, logger ports.Logger, opts []CollectorOption, serverOpts ...grpc.ServerOption) *Collector {
	c := &Collector{handler: handler, logger: logger}
	for _, opt := range opts {
		opt(c)
	}
	c.grpc = grpc.NewServer(append(ServerOptions(), serverOpts...)...)
	RegisterLoggingServer(c.grpc, c)
	return c
}

// Server returns the underlying gRPC server.
func (c *Collector) Server() *grpc.Server {
	return c.grpc
}

// Serve accepts connections on lis until Close.
func (c *Collector) Serve(lis net.Listener) error {
	c.lis = lis
	return c.grpc.Serve(lis)
}

// ListenAndServe binds to addr and serves until ctx is done.
func (c *Collector) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	c.lis = l
	errCh := make(chan error, 1)
	go func() { errCh <- c.grpc.Serve(l) }()
	select {
	case <-ctx.Done():
		c.grpc.GracefulStop()
		return nil
	case err := <-errCh:
		return err
	}
}

// Close stops the server and closes the listener.
func (c *Collector) Close() {
	if c.grpc != nil {
		c.grpc.GracefulStop()
	}
	if c.lis != nil {
		_ = c.lis.Close()
	}
}

// Streams returns the number of streams accepted so far.
func (c *Collector) Streams() int64 { return c.streams.Load() }

// Entries returns the number of entries received so far.
func (c *Collector) Entries() int64 { return c.entries.Load() }

// Logging implements LoggingServer. It completes the stream once the client
// has completed its side.
func (c *Collector) Logging(stream *ServerStream) error {
	c.streams.Add(1)
	session := uuid.NewString()
	c.logger.Info("log stream accepted", ports.String("session", session))
	if c.onStream != nil {
		c.onStream(session)
	}

	if c.failWith != nil {
		c.logger.Warn("failing log stream",
			ports.String("session", session),
			ports.String("code", c.failWith.Code().String()),
		)
		return c.failWith.Err()
	}

	for {
		entries, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			c.logger.Info("log stream completed", ports.String("session", session))
			return nil
		}
		if err != nil {
			c.logger.Warn("log stream aborted", ports.String("session", session), ports.Err(err))
			return err
		}

		c.entries.Add(int64(len(entries)))
		if err := c.handler(stream.Context(), session, entries); err != nil {
			return status.Error(codes.Internal, err.Error())
		}
	}
}
