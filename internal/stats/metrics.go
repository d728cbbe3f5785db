package stats

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "mapfreach"

// Metrics holds the Prometheus collectors of the engine.
type Metrics struct {
	PhaseSeconds *prometheus.HistogramVec
	ReachEntries prometheus.Counter
	Infeasible   *prometheus.CounterVec
	Resolutions  *prometheus.CounterVec
	CacheLookups *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PhaseSeconds: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "phase_duration_seconds",
				Help:      "Duration of engine phases in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"phase"},
		),
		ReachEntries: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "reach_entries_total",
			Help:      "Total reach entries produced",
		}),
		Infeasible: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "infeasible_total",
				Help:      "Infeasible outcomes by reason",
			},
			[]string{"reason"},
		),
		Resolutions: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "budget_resolutions_total",
				Help:      "Budget resolutions by objective and kind (auto or fixed)",
			},
			[]string{"objective", "kind"},
		),
		CacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "cache_lookups_total",
				Help:      "Reach cache lookups by result",
			},
			[]string{"result"},
		),
	}
}
