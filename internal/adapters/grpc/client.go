package grpc

import (
	"context"
	"errors"
	"fmt"
	"io"

	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/bft-labs/logship/internal/domain"
	"github.com/bft-labs/logship/internal/ports"
)

// DialConfig configures client connections.
type DialConfig struct {
	// Compression names a registered compressor ("zstd") or is
	// empty for none.
	Compression string

	// DialOptions are appended after the defaults. Callers needing TLS pass
	// their transport credentials here.
	DialOptions []grpc.DialOption
}

// Provider returns a ports.ChannelProvider dialing with cfg.
func Provider(cfg DialConfig) ports.ChannelProvider {
	return func(ctx context.Context, endpoint string) (ports.Channel, error) {
		return Dial(ctx, endpoint, cfg)
	}
}

// Channel is a ports.Channel over a grpc.ClientConn.
type Channel struct {
	conn     *grpc.ClientConn
	callOpts []grpc.CallOption
}

// Dial creates a channel to endpoint. The connection is established lazily
// when the first stream is opened.
func Dial(ctx context.Context, endpoint string, cfg DialConfig) (*Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if endpoint == "" {
		return nil, errors.New("empty endpoint")
	}

	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, cfg.DialOptions...)

	conn, err := grpc.NewClient(endpoint, opts...)
	if err != nil {
		return nil, err
	}

	callOpts := []grpc.CallOption{grpc.ForceCodec(Codec{})}
	if cfg.Compression != "" {
		callOpts = append(callOpts, grpc.UseCompressor(cfg.Compression))
	}
	return &Channel{conn: conn, callOpts: callOpts}, nil
}

// NewChannel wraps an existing connection.
func NewChannel(conn *grpc.ClientConn, compression string) *Channel {
	callOpts := []grpc.CallOption{grpc.ForceCodec(Codec{})}
	if compression != "" {
		callOpts = append(callOpts, grpc.UseCompressor(compression))
	}
	return &Channel{conn: conn, callOpts: callOpts}
}

// OpenStream starts a logging stream.
func (c *Channel) OpenStream(ctx context.Context) (ports.Stream, error) {
	cs, err := c.conn.NewStream(ctx, &loggingStreamDesc, LoggingMethod, c.callOpts...)
	if err != nil {
		return nil, err
	}
	return &stream{cs: cs}, nil
}

// Close shuts down the connection.
func (c *Channel) Close() error {
	if c.IsShutdown() {
		return nil
	}
	return c.conn.Close()
}

// IsShutdown reports whether the connection has been closed.
func (c *Channel) IsShutdown() bool {
	return c.conn.GetState() == connectivity.Shutdown
}

// stream adapts a grpc.ClientStream to ports.Stream.
type stream struct {
	cs grpc.ClientStream
}

// WaitReady only honors ctx: SendMsg applies the transport's flow control
// itself and blocks the writer while the peer's window is exhausted.
func (s *stream) WaitReady(ctx context.Context) error {
	return ctx.Err()
}

func (s *stream) Send(entries []domain.LogEntry) error {
	return s.cs.SendMsg(&entryList{entries: entries})
}

func (s *stream) CloseSend() error {
	return s.cs.CloseSend()
}

func (s *stream) Recv() error {
	var m controlMessage
	err := s.cs.RecvMsg(&m)
	switch {
	case err == nil:
		if len(m.unknown) > 0 {
			return fmt.Errorf("%w: control message carries %d bytes", domain.ErrProtocolAnomaly, len(m.unknown))
		}
		return nil
	case errors.Is(err, io.EOF):
		return io.EOF
	default:
		return remoteError(err)
	}
}

// remoteError converts a gRPC status into a RemoteError keeping the
// collector's description verbatim.
func remoteError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	return &domain.RemoteError{Code: st.Code().String(), Description: st.Message()}
}
