package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"ctrwatch/internal/infrastructure"
)

func testBusinessMetrics(t *testing.T) *infrastructure.BusinessMetrics {
	t.Helper()
	mp := sdkmetric.NewMeterProvider()
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	metrics, err := infrastructure.CreateBusinessMetrics(mp.Meter("test"))
	require.NoError(t, err)
	return metrics
}

func TestBusinessMetricsMiddleware(t *testing.T) {
	metrics := testBusinessMetrics(t)

	var captured *infrastructure.BusinessMetrics
	handler := BusinessMetricsMiddleware(metrics)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetBusinessMetricsFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/data/summary", nil))

	assert.Same(t, metrics, captured)
}

func TestGetBusinessMetricsFromContextMissing(t *testing.T) {
	assert.Nil(t, GetBusinessMetricsFromContext(context.Background()))
}

func TestPipelineTraceHandler(t *testing.T) {
	called := false
	handler := PipelineTraceHandler("refresh", func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusAccepted)
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/api/data/refresh", nil))

	assert.True(t, called)
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestTraceMiddlewarePassesThrough(t *testing.T) {
	handler := TraceMiddleware("data.drop_workbook")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/data/export/drops.xlsx", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
