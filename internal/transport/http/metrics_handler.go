package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MetricsHandler exposes the Prometheus scrape endpoint backed by the
// OpenTelemetry meter provider.
type MetricsHandler struct {
	promHandler http.Handler
}

// NewMetricsHandler creates a metrics handler around the Prometheus exporter
func NewMetricsHandler(promHandler http.Handler) *MetricsHandler {
	return &MetricsHandler{promHandler: promHandler}
}

// Routes returns the metrics routes
func (h *MetricsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Metrics)
	return r
}

// Metrics handles GET /metrics
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	h.promHandler.ServeHTTP(w, r)
}
