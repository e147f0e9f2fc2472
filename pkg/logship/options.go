package logship

import (
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"

	"github.com/bft-labs/logship/internal/domain"
	"github.com/bft-labs/logship/internal/ports"
	"github.com/bft-labs/logship/pkg/log"
	"github.com/bft-labs/logship/pkg/mdc"
	"github.com/bft-labs/logship/pkg/registry"
)

// Re-exported transport types, for callers supplying their own channel.
type (
	// Channel is a connection to a collector.
	Channel = ports.Channel

	// Stream is one duplex logging stream.
	Stream = ports.Stream

	// ChannelProvider creates a Channel for an endpoint.
	ChannelProvider = ports.ChannelProvider

	// LogEntry is one shipped record.
	LogEntry = domain.LogEntry
)

// ContextStore supplies the diagnostic context attached to each entry.
// *mdc.Store satisfies it.
type ContextStore = ports.ContextStore

// Option configures optional behavior of a Client.
type Option func(*options)

type options struct {
	logger       log.Logger
	registry     *registry.Registry
	context      ContextStore
	provider     ChannelProvider
	dialOptions  []grpc.DialOption
	eventHandler EventHandler
	registerer   prometheus.Registerer
}

func defaultOptions() options {
	return options{
		logger:   log.NewNoopLogger(),
		registry: registry.Default(),
		context:  mdc.Default(),
	}
}

// WithLogger sets the logger for the client's own diagnostics.
// If not provided or nil, a no-op logger is used. It must not write into the
// registry the client intercepts.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRegistry sets the logger registry whose levels and records the client
// manages. Defaults to registry.Default(); nil keeps the default.
func WithRegistry(r *registry.Registry) Option {
	return func(o *options) {
		if r != nil {
			o.registry = r
		}
	}
}

// WithContextStore sets the diagnostic context source. Defaults to
// mdc.Default(); nil keeps the default.
func WithContextStore(store ContextStore) Option {
	return func(o *options) {
		if store != nil {
			o.context = store
		}
	}
}

// WithChannelProvider replaces the gRPC transport. A nil provider keeps it.
func WithChannelProvider(p ChannelProvider) Option {
	return func(o *options) {
		if p != nil {
			o.provider = p
		}
	}
}

// WithDialOptions adds gRPC dial options to the default transport, e.g.
// transport credentials or a custom dialer.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(o *options) {
		o.dialOptions = append(o.dialOptions, opts...)
	}
}

// WithEventHandler sets a handler for client events.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithMetrics registers client metrics on registerer.
func WithMetrics(registerer prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = registerer
	}
}
