package handlers

import (
	"net/http"

	"github.com/lehigh-university-libraries/partmatch/internal/scoring"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "partmatch"

// Outcome labels for the comparisons counter.
const (
	outcomeAcceptable = "acceptable"
	outcomeRejected   = "rejected"
	outcomeVetoed     = "vetoed"
)

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry       *prometheus.Registry
	comparisons    *prometheus.CounterVec
	scores         *prometheus.HistogramVec
	requestErrors  *prometheus.CounterVec
	catalogTypes   *prometheus.GaugeVec
	catalogReloads prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		comparisons: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comparisons_total",
			Help:      "Comparisons scored, by component type, profile and outcome.",
		}, []string{"component_type", "profile", "outcome"}),
		scores: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "comparison_score",
			Help:      "Distribution of overall compatibility scores.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}, []string{"component_type"}),
		requestErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "request_errors_total",
			Help:      "API requests rejected, by HTTP status.",
		}, []string{"status"}),
		catalogTypes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_component_types",
			Help:      "Component types in the loaded catalog, by profile.",
		}, []string{"profile"}),
		catalogReloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_reloads_total",
			Help:      "Successful catalog reloads from disk.",
		}),
	}

	m.registry.MustRegister(
		m.comparisons,
		m.scores,
		m.requestErrors,
		m.catalogTypes,
		m.catalogReloads,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// CatalogReloaded records a successful hot reload.
func (m *Metrics) CatalogReloaded() {
	m.catalogReloads.Inc()
}

func (m *Metrics) observe(profile string, result *scoring.Result) {
	outcome := outcomeRejected
	switch {
	case result.Vetoed:
		outcome = outcomeVetoed
	case result.Acceptable:
		outcome = outcomeAcceptable
	}
	m.comparisons.WithLabelValues(result.ComponentType, profile, outcome).Inc()
	m.scores.WithLabelValues(result.ComponentType).Observe(result.Score)
}
