// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// # Port Interfaces
//
//   - [LevelRegistry]: reads and mutates per-logger levels
//   - [HandlerHost]: installs and removes a record handler on the root logger
//   - [ContextStore]: diagnostic-context snapshots and the instruction id
//   - [Channel] and [Stream]: the duplex connection to the collector
//   - [ChannelProvider]: resolves an endpoint into a Channel
//   - [Logger]: structured logging abstraction
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// pkg/registry and pkg/mdc satisfy the registry and context ports directly;
// internal/adapters/grpc implements the channel ports. Tests substitute
// in-memory fakes.
package ports
