package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bft-labs/logship/internal/domain"
	"github.com/bft-labs/logship/internal/ports"
)

// ControllerConfig contains the settings applied at construction.
type ControllerConfig struct {
	Endpoint        string
	DefaultLevel    string
	LevelOverrides  map[string]string
	MaxBatchEntries int
	MaxQueueEntries int
	CloseTimeout    time.Duration
}

// Dependencies are the capabilities a Controller is built from.
type Dependencies struct {
	Levels   ports.LevelRegistry
	Root     ports.HandlerHost
	Context  ports.ContextStore
	Provider ports.ChannelProvider
	Logger   ports.Logger

	// Optional.
	SessionEvents EventEmitter
	SendEvents    SendEventEmitter
}

// Controller is one running bridge: configured levels, an installed
// interceptor and an open stream. Close undoes all of it.
type Controller struct {
	levels      *LevelConfigurator
	interceptor *Interceptor
	root        ports.HandlerHost
	queue       *Queue
	driver      *Driver
	logger      ports.Logger

	closeOnce sync.Once
	closeErr  error
}

// NewController applies levels, installs the interceptor and opens the
// stream, in that order. On failure everything already done is undone and
// the error wraps ErrConfiguration or ErrConnection.
func NewController(ctx context.Context, cfg ControllerConfig, deps Dependencies) (*Controller, error) {
	logger := deps.Logger

	root, overrides, err := ParseLevelConfig(cfg.DefaultLevel, cfg.LevelOverrides)
	if err != nil {
		return nil, err
	}
	if deps.Provider == nil {
		return nil, fmt.Errorf("%w: no channel provider", domain.ErrConfiguration)
	}

	levels := NewLevelConfigurator(deps.Levels, logger)
	levels.ApplyLevels(root, overrides)

	queue := NewQueue(cfg.MaxQueueEntries)
	if deps.SendEvents != nil {
		queue.OnOverflow(func() { deps.SendEvents.OnEntriesDropped(DropQueueFull, 1) })
	}
	interceptor := NewInterceptor(queue, deps.Context, logger)
	deps.Root.AddHandler(interceptor)

	rollback := func() {
		deps.Root.RemoveHandler(interceptor)
		levels.Restore()
	}

	channel, err := deps.Provider(ctx, cfg.Endpoint)
	if err != nil {
		rollback()
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrConnection, cfg.Endpoint, err)
	}

	session := NewSession(logger, deps.SessionEvents)
	driver := NewDriver(DriverConfig{
		MaxBatchEntries: cfg.MaxBatchEntries,
		CloseTimeout:    cfg.CloseTimeout,
	}, queue, session, logger, deps.SendEvents)

	if err := driver.Start(ctx, channel); err != nil {
		rollback()
		if cerr := channel.Close(); cerr != nil {
			logger.Warn("channel close failed", ports.Err(cerr))
		}
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrConnection, cfg.Endpoint, err)
	}

	logger.Info("log stream opened",
		ports.String("endpoint", cfg.Endpoint),
		ports.String("default_level", root.String()),
		ports.Int("overrides", len(overrides)),
	)

	return &Controller{
		levels:      levels,
		interceptor: interceptor,
		root:        deps.Root,
		queue:       queue,
		driver:      driver,
		logger:      logger,
	}, nil
}

// Interceptor returns the installed record handler.
func (c *Controller) Interceptor() *Interceptor {
	return c.interceptor
}

// State returns the stream session state.
func (c *Controller) State() domain.SessionState {
	return c.driver.State()
}

// Dropped returns the number of entries that never reached the stream.
func (c *Controller) Dropped() uint64 {
	return c.queue.Dropped()
}

// Close flushes and completes the stream, waits for the collector's
// outcome, then restores levels, removes the interceptor and shuts the
// channel down. The collector's error, if any, is returned after all of that
// has happened. Later calls return the same result.
func (c *Controller) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.close()
	})
	return c.closeErr
}

func (c *Controller) close() error {
	defer func() {
		c.levels.Restore()
		c.root.RemoveHandler(c.interceptor)
		c.driver.Shutdown()

		c.logger.Info("log stream closed",
			ports.String("state", c.driver.State().String()),
			ports.Uint64("dropped", c.queue.Dropped()),
		)
	}()

	return c.driver.Finish()
}
