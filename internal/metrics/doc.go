// Package metrics defines the Prometheus collectors exported by logship
// clients and by the collect command.
package metrics
