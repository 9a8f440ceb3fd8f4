// Package metrics publishes the three counters spec'd for the routing
// engine: rule evaluations, rule timeouts, and rules dropped at
// construction. It wraps plain prometheus.Counter/CounterVec values rather
// than using promauto's global registry, since the engine accepts a
// caller-supplied prometheus.Registerer instead of assuming one process-wide
// registry.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the counters a single Engine publishes.
type Metrics struct {
	Evaluations *prometheus.CounterVec // labeled by rule type
	Timeouts    *prometheus.CounterVec // labeled by rule type
	Dropped     prometheus.Counter     // rules dropped at construction
}

// New builds and registers a fresh set of counters against reg. reg must
// not be shared between two live Engines without namespacing, since
// registering the same metric name twice on one registerer fails. A nil
// reg leaves the counters unregistered; engine.New passes a nil
// engine.Config.Registerer through unchanged, so engines built for tests
// or benchmarks get unregistered counters that way.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "streamrouter",
			Subsystem: "engine",
			Name:      "rule_evaluations_total",
			Help:      "Total rule evaluations performed by the engine, labeled by rule type.",
		}, []string{"rule_type"}),
		Timeouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "streamrouter",
			Subsystem: "engine",
			Name:      "rule_timeouts_total",
			Help:      "Total rule evaluations that exceeded the per-rule timeout, labeled by rule type.",
		}, []string{"rule_type"}),
		Dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "streamrouter",
			Subsystem: "engine",
			Name:      "rules_dropped_total",
			Help:      "Total rules dropped at engine construction (unrecognized type or invalid regex).",
		}),
	}

	if reg == nil {
		return m, nil
	}

	for _, c := range []prometheus.Collector{m.Evaluations, m.Timeouts, m.Dropped} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Noop returns a Metrics whose counters are never registered; it is
// New(nil) without the error return.
func Noop() *Metrics {
	m, _ := New(nil)
	return m
}
