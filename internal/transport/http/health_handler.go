package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"ctrwatch/internal/services"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	healthService *services.HealthService
	logger        *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(healthService *services.HealthService, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		healthService: healthService,
		logger:        logger.With(slog.String("component", "health_handler")),
	}
}

// Routes returns the health check routes
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.HealthCheck)
	r.Get("/ready", h.ReadinessCheck)
	r.Get("/live", h.LivenessCheck)
	r.Get("/version", h.Version)
	r.Get("/stats", h.SystemStats)

	return r
}

// HealthCheck handles GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := h.healthService.HealthCheck(r.Context())
	render.JSON(w, r, status)
}

// ReadinessCheck handles GET /api/health/ready. A 503 means the service is
// up but the campaign log or report directories are not usable yet.
func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	status := h.healthService.ReadinessCheck(r.Context())
	if status.Status != "ready" {
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, status)
}

// LivenessCheck handles GET /api/health/live
func (h *HealthHandler) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	status := h.healthService.LivenessCheck(r.Context())
	render.JSON(w, r, status)
}

// Version handles GET /api/health/version
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.healthService.Version())
}

// SystemStats handles GET /api/health/stats
func (h *HealthHandler) SystemStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.healthService.SystemStats(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to collect system stats",
			slog.String("error", err.Error()))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": "failed to collect system stats"})
		return
	}
	render.JSON(w, r, stats)
}
