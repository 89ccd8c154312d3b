package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/registry/internal/registry/domain"
	"github.com/aussiebroadwan/registry/internal/registry/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveStatistics(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	m.ObserveStatistics(domain.Statistics{
		Total:                4,
		Active:               3,
		Inactive:             1,
		WithFiscalCredential: 2,
		PercentActive:        75,
	}, time.Unix(1700000000, 0))

	require.Equal(t, 4.0, testutil.ToFloat64(m.ClientsTotal))
	require.Equal(t, 3.0, testutil.ToFloat64(m.ClientsActive))
	require.Equal(t, 1.0, testutil.ToFloat64(m.ClientsInactive))
	require.Equal(t, 2.0, testutil.ToFloat64(m.ClientsWithFiscal))
	require.Equal(t, 75.0, testutil.ToFloat64(m.ClientsPercentActive))
	require.Equal(t, 1700000000.0, testutil.ToFloat64(m.StatisticsLastComputed))
}

func TestCounters(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	m.IncMutation(metrics.OpCreated)
	m.IncMutation(metrics.OpCreated)
	m.IncValidationFailures(map[string]string{"name": "x", "tax_id": "y"})

	require.Equal(t, 2.0, testutil.ToFloat64(m.ClientMutations.WithLabelValues(metrics.OpCreated)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.ValidationFailures.WithLabelValues("tax_id")))
}

func TestIndependentInstances(t *testing.T) {
	t.Parallel()

	// Two instances must not collide on registration.
	a, b := metrics.New(), metrics.New()
	a.IncMutation(metrics.OpDeleted)
	require.Equal(t, 0.0, testutil.ToFloat64(b.ClientMutations.WithLabelValues(metrics.OpDeleted)))
}

func TestNilMetrics(t *testing.T) {
	t.Parallel()

	var m *metrics.Metrics
	require.NotPanics(t, func() {
		m.IncMutation(metrics.OpUpdated)
		m.IncValidationFailures(map[string]string{"name": "x"})
		m.ObserveStatistics(domain.Statistics{}, time.Now())
		m.ObserveHTTP("GET /livez", http.MethodGet, 200, time.Now())
	})
}

func TestHandler(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	m.ObserveHTTP("GET /v1/clients", http.MethodGet, 200, time.Now())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `registry_http_requests_total{code="200",method="GET",route="GET /v1/clients"} 1`)
}
