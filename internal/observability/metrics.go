package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "avalanche_stats"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Dataset refresh metrics.
	Refreshes         prometheus.Counter
	RefreshErrors     prometheus.Counter
	StaleDiscards     prometheus.Counter
	RefreshDuration   prometheus.Histogram
	RefresherRunning  prometheus.Gauge
	DatasetRegions    prometheus.Gauge
	DatasetGeneration prometheus.Gauge

	// Publishing of super-region totals.
	MessagesProduced prometheus.Counter
	PublishErrors    prometheus.Counter

	// Style resolution metrics.
	StyleResolutions *prometheus.CounterVec // labels: kind={suppressed,outline,default,filled}
	SessionCache     *prometheus.CounterVec // labels: result={hit,miss}
	ActiveSessions   prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Refreshes,
		m.RefreshErrors,
		m.StaleDiscards,
		m.RefreshDuration,
		m.RefresherRunning,
		m.DatasetRegions,
		m.DatasetGeneration,
		m.MessagesProduced,
		m.PublishErrors,
		m.StyleResolutions,
		m.SessionCache,
		m.ActiveSessions,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Refreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refreshes_total",
			Help:      "Datasets fetched and installed as the current snapshot.",
		}),
		RefreshErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_errors_total",
			Help:      "Dataset fetches that failed; the previous snapshot stays in place.",
		}),
		StaleDiscards: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_discards_total",
			Help:      "Fetched datasets dropped because a newer fetch had started.",
		}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a fetch-build-install cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		RefresherRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "refresher_running",
			Help:      "1 when the refresh loop is active, 0 when shut down.",
		}),
		DatasetRegions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_regions",
			Help:      "Region summaries in the current snapshot.",
		}),
		DatasetGeneration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_generation",
			Help:      "Generation of the current snapshot.",
		}),
		MessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_produced_total",
			Help:      "Super-region total messages written to the sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed attempts to publish super-region totals.",
		}),
		StyleResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "style_resolutions_total",
			Help:      "Feature styles resolved, by resulting kind.",
		}, []string{"kind"}),
		SessionCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_cache_total",
			Help:      "Session style cache lookups by result.",
		}, []string{"result"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Map sessions currently holding a cache.",
		}),
	}
}
