package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the prometheus collectors of a logship client.
type Metrics struct {
	EntriesSent      prometheus.Counter
	BatchesSent      prometheus.Counter
	SendDurationSec  prometheus.Histogram
	SendErrors       prometheus.Counter
	EntriesDiscarded prometheus.Counter
	EntriesDropped   *prometheus.CounterVec
	SessionStates    *prometheus.CounterVec
}

// New creates the client collectors and registers them on registerer.
// Collectors already registered by an earlier client are shared.
func New(registerer prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		EntriesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "logship_entries_sent_total",
			Help: "Total number of log entries written to the stream.",
		}),
		BatchesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "logship_batches_sent_total",
			Help: "Total number of outbound messages written to the stream.",
		}),
		SendDurationSec: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "logship_send_duration_seconds",
			Help:    "Time spent writing one outbound message.",
			Buckets: prometheus.DefBuckets,
		}),
		SendErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "logship_send_errors_total",
			Help: "Total number of failed stream writes.",
		}),
		EntriesDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "logship_entries_discarded_total",
			Help: "Total number of queued entries discarded after a stream failure.",
		}),
		EntriesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "logship_entries_dropped_total",
			Help: "Total number of accepted entries that never reached the stream, by reason.",
		}, []string{"reason"}),
		SessionStates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "logship_session_transitions_total",
			Help: "Total number of stream session transitions by target state.",
		}, []string{"state"}),
	}

	var err error
	if m.EntriesSent, err = register(registerer, m.EntriesSent); err != nil {
		return nil, err
	}
	if m.BatchesSent, err = register(registerer, m.BatchesSent); err != nil {
		return nil, err
	}
	if m.SendDurationSec, err = register(registerer, m.SendDurationSec); err != nil {
		return nil, err
	}
	if m.SendErrors, err = register(registerer, m.SendErrors); err != nil {
		return nil, err
	}
	if m.EntriesDiscarded, err = register(registerer, m.EntriesDiscarded); err != nil {
		return nil, err
	}
	if m.EntriesDropped, err = register(registerer, m.EntriesDropped); err != nil {
		return nil, err
	}
	if m.SessionStates, err = register(registerer, m.SessionStates); err != nil {
		return nil, err
	}
	return m, nil
}

// register registers c, or returns the equivalent collector registered
// before it.
func register[T prometheus.Collector](registerer prometheus.Registerer, c T) (T, error) {
	err := registerer.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(T); ok {
			return existing, nil
		}
	}
	return c, err
}

// ObserveBatch records one successful outbound message.
func (m *Metrics) ObserveBatch(entries int, duration time.Duration) {
	m.BatchesSent.Inc()
	m.EntriesSent.Add(float64(entries))
	m.SendDurationSec.Observe(duration.Seconds())
}

// ObserveSendError records a failed write and the entries lost with it.
func (m *Metrics) ObserveSendError(discarded int) {
	m.SendErrors.Inc()
	m.EntriesDiscarded.Add(float64(discarded))
}

// ObserveDropped records n entries lost for reason.
func (m *Metrics) ObserveDropped(reason string, n int) {
	m.EntriesDropped.WithLabelValues(reason).Add(float64(n))
}

// ObserveState records a session transition.
func (m *Metrics) ObserveState(state string) {
	m.SessionStates.WithLabelValues(state).Inc()
}
