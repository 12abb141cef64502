package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// histogramCount returns the sample count of one series of a histogram vec.
func histogramCount(t *testing.T, vec *prometheus.HistogramVec, labels ...string) uint64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, vec.WithLabelValues(labels...).(prometheus.Histogram).Write(&m))
	return m.GetHistogram().GetSampleCount()
}

func meteredRouter(service string, status int, body string) http.Handler {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics(service))
	r.Get("/review/{id}", func(w http.ResponseWriter, _ *http.Request) {
		if status != 0 {
			w.WriteHeader(status)
		}
		_, _ = w.Write([]byte(body))
	})
	return r
}

func TestPrometheusMetrics_CountsByRouteAndStatus(t *testing.T) {
	tests := []struct {
		name    string
		service string
		status  int
		want    string
	}{
		{"implicit 200", "m-implicit", 0, "200"},
		{"not found", "m-notfound", http.StatusNotFound, "404"},
		{"server error", "m-error", http.StatusInternalServerError, "500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := meteredRouter(tt.service, tt.status, "{}")
			for _, id := range []string{"p-1", "p-2"} {
				h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/review/"+id, nil))
			}

			counter := httpRequestsTotal.WithLabelValues(tt.service, http.MethodGet, "/review/{id}", tt.want)
			assert.Equal(t, float64(2), testutil.ToFloat64(counter))
			assert.Equal(t, uint64(2), histogramCount(t, httpRequestDuration, tt.service, http.MethodGet, "/review/{id}"))
		})
	}
}

func TestPrometheusMetrics_ResponseSize(t *testing.T) {
	h := meteredRouter("m-size", 0, `{"status":"success","data":[]}`)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/review/p-1", nil))

	var m dto.Metric
	require.NoError(t, httpResponseSize.WithLabelValues("m-size", "/review/{id}").(prometheus.Histogram).Write(&m))
	assert.Equal(t, uint64(1), m.GetHistogram().GetSampleCount())
	assert.Equal(t, float64(len(`{"status":"success","data":[]}`)), m.GetHistogram().GetSampleSum())
}

func TestPrometheusMetrics_UnmatchedRoute(t *testing.T) {
	h := meteredRouter("m-unmatched", 0, "")
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope/1", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope/2", nil))

	counter := httpRequestsTotal.WithLabelValues("m-unmatched", http.MethodGet, unmatchedRoute, "404")
	assert.Equal(t, float64(2), testutil.ToFloat64(counter))
}

func TestPrometheusMetrics_InFlight(t *testing.T) {
	gauge := httpRequestsInFlight.WithLabelValues("m-inflight")
	var during float64

	r := chi.NewRouter()
	r.Use(PrometheusMetrics("m-inflight"))
	r.Get("/slow", func(w http.ResponseWriter, _ *http.Request) {
		during = testutil.ToFloat64(gauge)
		w.WriteHeader(http.StatusOK)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/slow", nil))

	assert.Equal(t, float64(1), during)
	assert.Equal(t, float64(0), testutil.ToFloat64(gauge))
}
