package behavior

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus collectors for manager ticking. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	treeTicks    *prometheus.CounterVec
	tickFailures *prometheus.CounterVec
	tickDuration prometheus.Histogram
	runningTrees prometheus.Gauge
}

// NewMetrics creates tick metrics registered with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		treeTicks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "behave_tree_ticks_total",
				Help: "Total number of query/update passes per tree",
			},
			[]string{"tree"},
		),
		tickFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "behave_tree_tick_failures_total",
				Help: "Total number of tree ticks aborted by a panicking callback",
			},
			[]string{"tree"},
		),
		tickDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "behave_tick_duration_seconds",
				Help:    "Duration of a single tree's query/update pass",
				Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
			},
		),
		runningTrees: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "behave_running_trees",
				Help: "Number of trees ticked in the last manager update",
			},
		),
	}
}

func (m *Metrics) observeTick(tree string, d time.Duration) {
	if m == nil {
		return
	}
	m.treeTicks.WithLabelValues(tree).Inc()
	m.tickDuration.Observe(d.Seconds())
}

func (m *Metrics) observeFailure(tree string) {
	if m == nil {
		return
	}
	m.tickFailures.WithLabelValues(tree).Inc()
}

func (m *Metrics) observeRunning(n int) {
	if m == nil {
		return
	}
	m.runningTrees.Set(float64(n))
}
