package app

import (
	"fmt"
	"sort"
	"sync"

	"github.com/bft-labs/logship/internal/domain"
	"github.com/bft-labs/logship/internal/ports"
	"github.com/bft-labs/logship/pkg/registry"
)

// RootLogger is the name of the registry's root logger.
const RootLogger = ""

// priorLevel is a logger's explicit level before it was first touched.
type priorLevel struct {
	level registry.Level
	set   bool
}

// LevelConfigurator applies a default level and per-logger overrides to a
// registry and remembers what it changed so Restore can undo it.
type LevelConfigurator struct {
	mu       sync.Mutex
	registry ports.LevelRegistry
	logger   ports.Logger
	snapshot map[string]priorLevel
	order    []string
}

// NewLevelConfigurator creates a configurator over reg.
func NewLevelConfigurator(reg ports.LevelRegistry, logger ports.Logger) *LevelConfigurator {
	return &LevelConfigurator{
		registry: reg,
		logger:   logger,
		snapshot: make(map[string]priorLevel),
	}
}

// ParseLevelConfig validates a default level name and an override map.
func ParseLevelConfig(defaultLevel string, overrides map[string]string) (registry.Level, map[string]registry.Level, error) {
	root, err := registry.ParseLevel(defaultLevel)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: default level: %w", domain.ErrConfiguration, err)
	}

	parsed := make(map[string]registry.Level, len(overrides))
	for name, levelName := range overrides {
		level, err := registry.ParseLevel(levelName)
		if err != nil {
			return 0, nil, fmt.Errorf("%w: level override for logger %q: %w", domain.ErrConfiguration, name, err)
		}
		parsed[name] = level
	}
	return root, parsed, nil
}

// Apply sets the root logger to defaultLevel and each override onto its
// logger. All names are validated before the registry is touched.
func (c *LevelConfigurator) Apply(defaultLevel string, overrides map[string]string) error {
	root, parsed, err := ParseLevelConfig(defaultLevel, overrides)
	if err != nil {
		return err
	}
	c.ApplyLevels(root, parsed)
	return nil
}

// ApplyLevels is Apply for already parsed levels. Overrides are applied in
// name order.
func (c *LevelConfigurator) ApplyLevels(root registry.Level, overrides map[string]registry.Level) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.set(RootLogger, root)

	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c.set(name, overrides[name])
	}

	c.logger.Debug("levels applied",
		ports.String("default", root.String()),
		ports.Int("overrides", len(overrides)),
	)
}

// set must be called with c.mu held.
func (c *LevelConfigurator) set(name string, level registry.Level) {
	if _, seen := c.snapshot[name]; !seen {
		prior, ok := c.registry.Level(name)
		c.snapshot[name] = priorLevel{level: prior, set: ok}
		c.order = append(c.order, name)
	}
	c.registry.SetLevel(name, level)
}

// Restore puts every touched logger back to its level before the first
// Apply, unsetting loggers that had no level of their own. Calling it again
// is a no-op.
func (c *LevelConfigurator) Restore() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.order) == 0 {
		return
	}

	for i := len(c.order) - 1; i >= 0; i-- {
		name := c.order[i]
		prior := c.snapshot[name]
		if prior.set {
			c.registry.SetLevel(name, prior.level)
		} else {
			c.registry.UnsetLevel(name)
		}
	}

	c.logger.Debug("levels restored", ports.Strings("loggers", c.order))

	c.snapshot = make(map[string]priorLevel)
	c.order = nil
}

// Touched returns the loggers currently held for restoration, in the order
// they were first changed.
func (c *LevelConfigurator) Touched() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.order...)
}
