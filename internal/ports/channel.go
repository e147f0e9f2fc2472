package ports

import (
	"context"

	"github.com/bft-labs/logship/internal/domain"
)

// Stream is one open duplex session with the collector.
// Send and CloseSend are called from a single goroutine; Recv from another.
type Stream interface {
	// WaitReady blocks until the stream can accept another message without
	// unbounded buffering, or ctx is done.
	WaitReady(ctx context.Context) error

	// Send transmits one batch as a single outbound message.
	Send(entries []domain.LogEntry) error

	// CloseSend signals local completion.
	CloseSend() error

	// Recv blocks for the next peer event. It returns nil for a control
	// message, io.EOF when the peer completed, and any other error when the
	// peer failed the stream.
	Recv() error
}

// Channel is an established connection able to open streams.
type Channel interface {
	// OpenStream starts a duplex session. The stream lives until ctx is
	// canceled or the session terminates.
	OpenStream(ctx context.Context) (Stream, error)

	// Close shuts the connection down. It is safe to call more than once.
	Close() error

	// IsShutdown reports whether Close has completed.
	IsShutdown() bool
}

// ChannelProvider resolves an endpoint descriptor into a Channel.
type ChannelProvider func(ctx context.Context, endpoint string) (Channel, error)
