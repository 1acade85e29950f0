package observability

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/i474232898/tempus/internal/weather"
)

// Metrics holds the Prometheus collectors for provider fetches and view refreshes.
// It implements weather.Observer.
type Metrics struct {
	ProviderFetches  *prometheus.CounterVec   // labels: provider, kind={current,forecast}, outcome={success,error,not_found}
	ProviderDuration *prometheus.HistogramVec // labels: provider, kind
	ViewRefreshes    prometheus.Counter
	ForecastDays     prometheus.Histogram
	AdviceCategory   *prometheus.CounterVec // labels: category
}

func newMetrics() *Metrics {
	return &Metrics{
		ProviderFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tempus",
			Name:      "provider_fetches_total",
			Help:      "Upstream weather API calls by provider, kind and outcome.",
		}, []string{"provider", "kind", "outcome"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tempus",
			Name:      "provider_fetch_duration_seconds",
			Help:      "Upstream weather API call duration including retries.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"provider", "kind"}),
		ViewRefreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tempus",
			Name:      "view_refreshes_total",
			Help:      "Views recomputed and published.",
		}),
		ForecastDays: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tempus",
			Name:      "forecast_days",
			Help:      "Daily summaries per published view.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 6, 7},
		}),
		AdviceCategory: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tempus",
			Name:      "advice_category_total",
			Help:      "Advice categories selected for published views.",
		}, []string{"category"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.ProviderFetches,
		m.ProviderDuration,
		m.ViewRefreshes,
		m.ForecastDays,
		m.AdviceCategory,
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting registers with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() (*Metrics, *prometheus.Registry) {
	m := newMetrics()
	reg := prometheus.NewRegistry()
	reg.MustRegister(m.collectors()...)
	return m, reg
}

// ObserveFetch records one provider call.
func (m *Metrics) ObserveFetch(provider, kind string, err error, elapsed time.Duration) {
	outcome := "success"
	switch {
	case errors.Is(err, weather.ErrLocationNotFound):
		outcome = "not_found"
	case err != nil:
		outcome = "error"
	}
	m.ProviderFetches.WithLabelValues(provider, kind, outcome).Inc()
	m.ProviderDuration.WithLabelValues(provider, kind).Observe(elapsed.Seconds())
}

// ObserveRefresh records a published view.
func (m *Metrics) ObserveRefresh(view weather.View) {
	m.ViewRefreshes.Inc()
	m.ForecastDays.Observe(float64(len(view.Daily)))
	m.AdviceCategory.WithLabelValues(string(view.Advice.Category)).Inc()
}
