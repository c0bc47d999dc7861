package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks chat traffic on a private registry so tests can run several
// servers without duplicate-registration panics.
type Metrics struct {
	registry *prometheus.Registry

	queriesTotal  *prometheus.CounterVec
	queryDuration prometheus.Histogram
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	queriesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cdpchat",
			Subsystem: "chat",
			Name:      "queries_total",
			Help:      "Total chat queries processed, by response type.",
		},
		[]string{"type"},
	)
	queryDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "cdpchat",
			Subsystem: "chat",
			Name:      "query_duration_seconds",
			Help:      "Chat pipeline duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	registry.MustRegister(queriesTotal, queryDuration)

	return &Metrics{
		registry:      registry,
		queriesTotal:  queriesTotal,
		queryDuration: queryDuration,
	}
}

func (m *Metrics) ObserveQuery(responseType string, duration time.Duration) {
	m.queriesTotal.WithLabelValues(responseType).Inc()
	m.queryDuration.Observe(duration.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
