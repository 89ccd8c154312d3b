package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/aussiebroadwan/registry/internal/registry/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Mutation labels for ClientMutations.
const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
	OpToggled = "toggled"
)

// Metrics provides observability for the registry. Every instance owns its
// registry so tests can build as many as they like.
//
// All methods are safe to call on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	ClientsTotal           prometheus.Gauge
	ClientsActive          prometheus.Gauge
	ClientsInactive        prometheus.Gauge
	ClientsWithFiscal      prometheus.Gauge
	ClientsPercentActive   prometheus.Gauge
	ClientMutations        *prometheus.CounterVec
	ValidationFailures     *prometheus.CounterVec
	HTTPRequests           *prometheus.CounterVec
	HTTPRequestDuration    *prometheus.HistogramVec
	StatisticsLastComputed prometheus.Gauge
}

// New creates a Metrics instance with all registry metrics registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ClientsTotal: f.NewGauge(prometheus.GaugeOpts{
			Name: "registry_clients",
			Help: "Number of client records",
		}),
		ClientsActive: f.NewGauge(prometheus.GaugeOpts{
			Name: "registry_clients_active",
			Help: "Number of active client records",
		}),
		ClientsInactive: f.NewGauge(prometheus.GaugeOpts{
			Name: "registry_clients_inactive",
			Help: "Number of inactive client records",
		}),
		ClientsWithFiscal: f.NewGauge(prometheus.GaugeOpts{
			Name: "registry_clients_with_fiscal_credential",
			Help: "Number of clients holding a fiscal credential",
		}),
		ClientsPercentActive: f.NewGauge(prometheus.GaugeOpts{
			Name: "registry_clients_active_percent",
			Help: "Share of active clients, 0 to 100",
		}),
		ClientMutations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_client_mutations_total",
			Help: "Client writes by operation",
		}, []string{"op"}),
		ValidationFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_validation_failures_total",
			Help: "Rejected client writes by offending field",
		}, []string{"field"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_http_requests_total",
			Help: "HTTP requests by route pattern, method and status code",
		}, []string{"route", "method", "code"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "registry_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"route"}),
		StatisticsLastComputed: f.NewGauge(prometheus.GaugeOpts{
			Name: "registry_statistics_last_computed_timestamp_seconds",
			Help: "Unix time of the last statistics refresh",
		}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveStatistics publishes a statistics snapshot.
func (m *Metrics) ObserveStatistics(s domain.Statistics, at time.Time) {
	if m == nil {
		return
	}
	m.ClientsTotal.Set(float64(s.Total))
	m.ClientsActive.Set(float64(s.Active))
	m.ClientsInactive.Set(float64(s.Inactive))
	m.ClientsWithFiscal.Set(float64(s.WithFiscalCredential))
	m.ClientsPercentActive.Set(s.PercentActive)
	m.StatisticsLastComputed.Set(float64(at.Unix()))
}

// IncMutation counts one successful client write.
func (m *Metrics) IncMutation(op string) {
	if m == nil {
		return
	}
	m.ClientMutations.WithLabelValues(op).Inc()
}

// IncValidationFailures counts each rejected field once.
func (m *Metrics) IncValidationFailures(fields map[string]string) {
	if m == nil {
		return
	}
	for field := range fields {
		m.ValidationFailures.WithLabelValues(field).Inc()
	}
}

// ObserveHTTP records one served request. route is the mux pattern, never
// the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveHTTP(route, method string, code int, start time.Time) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
}
