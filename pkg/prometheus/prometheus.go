// Package prometheus provides a latch.MetricsProvider backed by Prometheus
// collectors.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/zoobzio/latch"
)

const subsystem = "field"

// Metrics records field activity. One Metrics may be shared by many fields;
// their activity is aggregated.
type Metrics struct {
	transitions    *prometheus.CounterVec
	commits        prometheus.Counter
	commitFailures *prometheus.CounterVec
	commitDuration prometheus.Histogram
	discards       prometheus.Counter
	valueChanges   prometheus.Counter
}

// New creates the collectors under namespace and registers them with
// registerer. It panics if a collector is already registered.
func New(namespace string, registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "state_transitions_total",
			Help:      "total number of field state transitions",
		}, []string{"from", "to"}),

		commits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "commits_total",
			Help:      "total number of commits that wrote to the data source",
		}),

		commitFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "commit_failures_total",
			Help:      "total number of failed commits by stage",
		}, []string{"stage"}),

		commitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "commit_duration_seconds",
			Help:      "duration of successful commits",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),

		discards: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "discards_total",
			Help:      "total number of discarded changes",
		}),

		valueChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "value_changes_total",
			Help:      "total number of value change notifications",
		}),
	}

	registerer.MustRegister(
		m.transitions,
		m.commits,
		m.commitFailures,
		m.commitDuration,
		m.discards,
		m.valueChanges,
	)
	return m
}

// OnStateChange implements latch.MetricsProvider.
func (m *Metrics) OnStateChange(from, to latch.State) {
	m.transitions.WithLabelValues(from.String(), to.String()).Inc()
}

// OnCommit implements latch.MetricsProvider.
func (m *Metrics) OnCommit(duration time.Duration) {
	m.commits.Inc()
	m.commitDuration.Observe(duration.Seconds())
}

// OnCommitFailure implements latch.MetricsProvider.
func (m *Metrics) OnCommitFailure(stage string, _ time.Duration) {
	m.commitFailures.WithLabelValues(stage).Inc()
}

// OnDiscard implements latch.MetricsProvider.
func (m *Metrics) OnDiscard() {
	m.discards.Inc()
}

// OnValueChange implements latch.MetricsProvider.
func (m *Metrics) OnValueChange() {
	m.valueChanges.Inc()
}

// Ensure Metrics implements latch.MetricsProvider.
var _ latch.MetricsProvider = (*Metrics)(nil)
