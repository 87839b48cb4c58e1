package exporter

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCounterTwiceReturnsSameCollector(t *testing.T) {
	first := GetCounter("test_requests_total", "test counter", []string{"op"})
	second := GetCounter("test_requests_total", "test counter", []string{"op"})

	first.With(prometheus.Labels{"op": "a"}).Inc()
	second.With(prometheus.Labels{"op": "a"}).Inc()

	assert.Equal(t, float64(2), testutil.ToFloat64(first.With(prometheus.Labels{"op": "a"})))
}

func TestHandlerExposesRegisteredMetrics(t *testing.T) {
	GetGauge("test_last_value", "test gauge", []string{"market"}).
		With(prometheus.Labels{"market": "BTCUSDT"}).Set(42)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `exadapter_test_last_value{hostname=`)
	assert.Contains(t, rec.Body.String(), `market="BTCUSDT"`)
}
