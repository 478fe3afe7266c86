// Package metrics holds the Prometheus collectors for the store, the
// migration and the API client. A private registry is used so tests can
// build as many as they like.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "clientcore"

type Metrics struct {
	registry *prometheus.Registry

	dispatchTotal      *prometheus.CounterVec
	migrationRuns      *prometheus.CounterVec
	migrationItems     *prometheus.CounterVec
	apiRequestsTotal   *prometheus.CounterVec
	apiRequestDuration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		dispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_dispatch_total",
			Help:      "Actions applied to the central store.",
		}, []string{"action"}),
		migrationRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "migration_runs_total",
			Help:      "Legacy migration attempts by result.",
		}, []string{"result"}),
		migrationItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "migration_items_total",
			Help:      "Legacy entries folded into the central store.",
		}, []string{"kind"}),
		apiRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Requests sent to the storefront API.",
		}, []string{"endpoint", "status"}),
		apiRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Storefront API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
	m.registry.MustRegister(
		m.dispatchTotal,
		m.migrationRuns,
		m.migrationItems,
		m.apiRequestsTotal,
		m.apiRequestDuration,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveDispatch(action string) {
	m.dispatchTotal.WithLabelValues(action).Inc()
}

func (m *Metrics) ObserveMigration(result string, cartLines, favorites int) {
	m.migrationRuns.WithLabelValues(result).Inc()
	if cartLines > 0 {
		m.migrationItems.WithLabelValues("cart").Add(float64(cartLines))
	}
	if favorites > 0 {
		m.migrationItems.WithLabelValues("favorites").Add(float64(favorites))
	}
}

// ObserveRequest records one API call. Status 0 is reported as "network".
func (m *Metrics) ObserveRequest(endpoint string, status int, elapsed time.Duration) {
	label := "network"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.apiRequestsTotal.WithLabelValues(endpoint, label).Inc()
	m.apiRequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}
