package logship

import (
	"context"
	"fmt"

	grpcadapter "github.com/bft-labs/logship/internal/adapters/grpc"
	"github.com/bft-labs/logship/internal/app"
	"github.com/bft-labs/logship/internal/metrics"
	"github.com/bft-labs/logship/pkg/registry"
)

// Client ships every record of a logger registry to a collector over one
// duplex stream. Use New to open it and Close to flush and release it.
type Client struct {
	config     Config
	controller *app.Controller
}

// New applies the configured levels, installs the record interceptor on the
// registry root and opens the stream. It returns once the stream is open.
//
// Failures return an error wrapping ErrConfiguration or ErrConnection, and
// leave the registry as it was.
func New(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	provider := o.provider
	if provider == nil {
		provider = grpcadapter.Provider(grpcadapter.DialConfig{
			Compression: cfg.Compression,
			DialOptions: o.dialOptions,
		})
	}

	emitter := &eventEmitterWrapper{handler: o.eventHandler}
	if o.registerer != nil {
		m, err := metrics.New(o.registerer)
		if err != nil {
			return nil, fmt.Errorf("%w: metrics: %w", ErrConfiguration, err)
		}
		emitter.metrics = m
	}

	ctrl, err := app.NewController(ctx, app.ControllerConfig{
		Endpoint:        cfg.Endpoint,
		DefaultLevel:    cfg.DefaultLevel,
		LevelOverrides:  cfg.LevelOverrides,
		MaxBatchEntries: cfg.MaxBatchEntries,
		MaxQueueEntries: cfg.MaxQueueEntries,
		CloseTimeout:    cfg.CloseTimeout,
	}, app.Dependencies{
		Levels:        o.registry,
		Root:          o.registry.Root(),
		Context:       o.context,
		Provider:      provider,
		Logger:        o.logger,
		SessionEvents: emitter,
		SendEvents:    emitter,
	})
	if err != nil {
		return nil, err
	}

	return &Client{config: cfg, controller: ctrl}, nil
}

// Close flushes queued records, completes the stream and waits for the
// collector to end it, then restores levels and removes the interceptor.
// It returns the collector's *RemoteError if the stream failed. Close is
// idempotent; later calls return the same result.
func (c *Client) Close() error {
	return c.controller.Close()
}

// Status returns the current stream state.
// Safe to call concurrently from any goroutine.
func (c *Client) Status() State {
	return convertState(c.controller.State())
}

// Dropped returns the number of records that were accepted but never
// reached the stream.
func (c *Client) Dropped() uint64 {
	return c.controller.Dropped()
}

// SetFormatter sets the formatter used to render record messages. A nil
// formatter uses the raw message.
func (c *Client) SetFormatter(f registry.Formatter) {
	c.controller.Interceptor().SetFormatter(f)
}

// Config returns the configuration the client was created with.
func (c *Client) Config() Config {
	return c.config
}
