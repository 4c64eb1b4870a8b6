package engine

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the resolve pipeline.
type Metrics struct {
	ResolvesTotal     *prometheus.CounterVec
	ResolveDuration   prometheus.Histogram
	ResolveScore      prometheus.Histogram
	TopicMatchesTotal *prometheus.CounterVec
}

// NewMetrics registers and returns engine metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ResolvesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salus_resolves_total",
			Help: "Total resolve calls by terminal outcome.",
		}, []string{"outcome"}),
		ResolveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "salus_resolve_duration_seconds",
			Help:    "Duration of resolve calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10), // 1µs .. ~260ms
		}),
		ResolveScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "salus_resolve_score",
			Help:    "Winning topic score per matched resolve.",
			Buckets: prometheus.LinearBuckets(2, 2, 12), // one keyword .. 12 weight units
		}),
		TopicMatchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "salus_topic_matches_total",
			Help: "Total matched resolves by winning topic category.",
		}, []string{"category"}),
	}

	reg.MustRegister(
		m.ResolvesTotal,
		m.ResolveDuration,
		m.ResolveScore,
		m.TopicMatchesTotal,
	)

	return m
}

// Hooks returns engine Hooks that record the corresponding metrics.
func (m *Metrics) Hooks() Hooks {
	return Hooks{
		OnResolve: func(outcome Outcome, category string, score int, duration float64) {
			m.ResolvesTotal.WithLabelValues(string(outcome)).Inc()
			m.ResolveDuration.Observe(duration)
			if outcome == OutcomeMatched {
				m.ResolveScore.Observe(float64(score))
				m.TopicMatchesTotal.WithLabelValues(category).Inc()
			}
		},
	}
}
