package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Metric) float64 {
	t.Helper()
	var pb dto.Metric
	if err := c.Write(&pb); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return pb.GetCounter().GetValue()
}

func TestMetrics_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	m.ObserveBatch(3, 10*time.Millisecond)
	m.ObserveBatch(2, 5*time.Millisecond)
	m.ObserveSendError(4)
	m.ObserveDropped("queue_full", 2)
	m.ObserveDropped("queue_full", 1)
	m.ObserveState("Open")
	m.ObserveState("Open")
	m.ObserveState("Terminated(success)")

	tests := []struct {
		name   string
		metric prometheus.Metric
		want   float64
	}{
		{"entries sent", m.EntriesSent, 5},
		{"batches sent", m.BatchesSent, 2},
		{"send errors", m.SendErrors, 1},
		{"discarded", m.EntriesDiscarded, 4},
		{"dropped on full queue", m.EntriesDropped.WithLabelValues("queue_full"), 3},
		{"open transitions", m.SessionStates.WithLabelValues("Open"), 2},
		{"success transitions", m.SessionStates.WithLabelValues("Terminated(success)"), 1},
	}
	for _, tt := range tests {
		if got := counterValue(t, tt.metric); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}

	var pb dto.Metric
	if err := m.SendDurationSec.Write(&pb); err != nil {
		t.Fatalf("histogram Write() error = %v", err)
	}
	if pb.GetHistogram().GetSampleCount() != 2 {
		t.Errorf("histogram samples = %d, want 2", pb.GetHistogram().GetSampleCount())
	}
}

func TestNew_RegistersAll(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	m.ObserveState("Open")
	m.ObserveDropped("stream_ended", 1)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	if len(families) != 7 {
		t.Errorf("gathered %d families, want 7", len(families))
	}
}

func TestNew_SharesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := New(reg)
	if err != nil {
		t.Fatalf("first New() error = %v", err)
	}
	second, err := New(reg)
	if err != nil {
		t.Fatalf("second New() error = %v", err)
	}

	first.ObserveBatch(2, time.Millisecond)
	second.ObserveBatch(3, time.Millisecond)

	if got := counterValue(t, first.EntriesSent); got != 5 {
		t.Errorf("entries sent = %v, want 5 across both clients", got)
	}
}

func TestNewCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.StreamsAccepted.Inc()
	c.BatchesReceived.Inc()
	c.EntriesReceived.WithLabelValues("INFO").Add(3)

	if got := counterValue(t, c.EntriesReceived.WithLabelValues("INFO")); got != 3 {
		t.Errorf("INFO entries = %v, want 3", got)
	}
	if got := counterValue(t, c.StreamsAccepted); got != 1 {
		t.Errorf("streams = %v, want 1", got)
	}
}
