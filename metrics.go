package settings

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes store activity as Prometheus counters. A nil *Metrics is a
// valid no-op collector.
type Metrics struct {
	changes        prometheus.Counter
	saves          prometheus.Counter
	saveFailures   prometheus.Counter
	decodeFailures prometheus.Counter
}

// NewMetrics builds the counter set under namespace and registers it with
// reg. Pass prometheus.DefaultRegisterer for the process-wide registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		changes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settings_changes_total",
			Help:      "Total number of applied value changes.",
		}),
		saves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settings_saves_total",
			Help:      "Total number of successful persisted saves.",
		}),
		saveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settings_save_failures_total",
			Help:      "Total number of failed save attempts.",
		}),
		decodeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settings_decode_failures_total",
			Help:      "Total number of stored values that failed to decode.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.changes, m.saves, m.saveFailures, m.decodeFailures)
	}
	return m
}

func (m *Metrics) incChanges() {
	if m == nil {
		return
	}
	m.changes.Inc()
}

func (m *Metrics) incSaves() {
	if m == nil {
		return
	}
	m.saves.Inc()
}

func (m *Metrics) incSaveFailures() {
	if m == nil {
		return
	}
	m.saveFailures.Inc()
}

func (m *Metrics) incDecodeFailures() {
	if m == nil {
		return
	}
	m.decodeFailures.Inc()
}
