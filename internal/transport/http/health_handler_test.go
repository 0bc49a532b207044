package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctrwatch/internal/config"
	"ctrwatch/internal/services"
)

func newTestHealthHandler(t *testing.T, withSource bool) *HealthHandler {
	t.Helper()

	base := t.TempDir()
	sourceFile := filepath.Join(base, "logs.csv")
	if withSource {
		require.NoError(t, os.WriteFile(sourceFile, []byte("partner_id,timestamp,clicks,impressions\n"), 0o644))
	}

	cfg := &config.Config{}
	cfg.Pipeline.SourceFile = sourceFile

	paths := &config.Paths{
		ExecutableDir: base,
		DataDir:       filepath.Join(base, "data"),
		ReportsDir:    filepath.Join(base, "data", "reports"),
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHealthHandler(services.NewHealthService("test", cfg, paths, logger), logger)
}

func TestHealthEndpoint(t *testing.T) {
	handler := newTestHealthHandler(t, true)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var status services.HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "test", status.Version)
}

func TestReadinessEndpoint(t *testing.T) {
	handler := newTestHealthHandler(t, true)

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var status services.HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "ready", status.Status)
}

func TestReadinessEndpointMissingSource(t *testing.T) {
	handler := newTestHealthHandler(t, false)

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var status services.HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "not_ready", status.Status)
}

func TestLivenessEndpoint(t *testing.T) {
	handler := newTestHealthHandler(t, true)

	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var status services.HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "alive", status.Status)
	assert.NotEmpty(t, status.Runtime)
}

func TestVersionEndpoint(t *testing.T) {
	handler := newTestHealthHandler(t, true)

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "test", body["version"])
}

func TestMetricsEndpoint(t *testing.T) {
	prom := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		_, _ = w.Write([]byte("# HELP ctrwatch_http_requests_total\n"))
	})
	handler := NewMetricsHandler(prom)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ctrwatch_http_requests_total")
}
