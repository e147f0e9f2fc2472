package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collector bundles the prometheus collectors of the collect command.
type Collector struct {
	StreamsAccepted prometheus.Counter
	EntriesReceived *prometheus.CounterVec
	BatchesReceived prometheus.Counter
}

// NewCollector creates the collector-side metrics and registers them.
func NewCollector(registerer prometheus.Registerer) *Collector {
	c := &Collector{
		StreamsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "logship_collector_streams_total",
			Help: "Total number of logging streams accepted.",
		}),
		EntriesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "logship_collector_entries_total",
			Help: "Total number of log entries received by severity.",
		}, []string{"severity"}),
		BatchesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "logship_collector_batches_total",
			Help: "Total number of batches received.",
		}),
	}

	registerer.MustRegister(c.StreamsAccepted, c.EntriesReceived, c.BatchesReceived)
	return c
}
