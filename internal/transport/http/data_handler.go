package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "ctrwatch/internal/errors"
	customMiddleware "ctrwatch/internal/middleware"
	"ctrwatch/internal/services"
)

// DataHandler handles dataset HTTP requests with RFC 7807 compliance
type DataHandler struct {
	service      DataServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	queryParams  *customMiddleware.QueryParamValidator
}

// NewDataHandler creates a new data handler with RFC 7807 error handling
func NewDataHandler(service DataServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DataHandler {
	return &DataHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "data_handler")),
		errorHandler: errorHandler,
		queryParams:  customMiddleware.NewQueryParamValidator(logger, errorHandler),
	}
}

// Routes returns the data routes with proper Chi patterns
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()

	// Use render for consistent JSON responses
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/summary", h.GetSummary)
	r.Get("/daily", h.GetDailyMetrics)
	r.Get("/drops", h.GetDropEvents)
	r.Get("/partners", h.GetPartners)
	r.Get("/partners/summary", h.GetPartnerSummaries)
	r.Get("/diagnostics", h.GetDiagnostics)

	// Pipeline-triggering routes get audit entries and dedicated spans.
	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.AuditLog(h.logger))
		r.Post("/refresh", customMiddleware.PipelineTraceHandler("refresh", h.Refresh))
		r.Post("/export", customMiddleware.PipelineTraceHandler("export", h.ExportReports))
	})
	r.Get("/reports", h.ListReports)

	// Workbook download
	r.With(customMiddleware.TraceMiddleware("data.drop_workbook")).
		Get("/export/drops.xlsx", h.DownloadDropWorkbook)

	return r
}

// GetSummary handles GET /api/data/summary
func (h *DataHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.GetSummary(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err, "fetching summary")
		return
	}
	render.JSON(w, r, summary)
}

// GetDailyMetrics handles GET /api/data/daily?partner=<id>
func (h *DataHandler) GetDailyMetrics(w http.ResponseWriter, r *http.Request) {
	partner := r.URL.Query().Get("partner")

	metrics, err := h.service.GetDailyMetrics(r.Context(), partner)
	if err != nil {
		h.handleServiceError(w, r, err, "fetching daily metrics")
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"daily": metrics,
		"count": len(metrics),
	})
}

// GetDropEvents handles GET /api/data/drops?partner=<id>&severity=<tier>
func (h *DataHandler) GetDropEvents(w http.ResponseWriter, r *http.Request) {
	partner := r.URL.Query().Get("partner")
	severity, ok := h.queryParams.ValidateSeverity(w, r, "severity")
	if !ok {
		return
	}

	events, err := h.service.GetDropEvents(r.Context(), partner, severity)
	if err != nil {
		h.handleServiceError(w, r, err, "fetching drop events")
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"drops": events,
		"count": len(events),
	})
}

// GetPartners handles GET /api/data/partners
func (h *DataHandler) GetPartners(w http.ResponseWriter, r *http.Request) {
	partners, err := h.service.GetPartners(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err, "fetching partners")
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"partners": partners,
		"count":    len(partners),
	})
}

// GetPartnerSummaries handles GET /api/data/partners/summary
func (h *DataHandler) GetPartnerSummaries(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.GetPartnerSummaries(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err, "fetching partner summaries")
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"summaries": summaries,
		"count":     len(summaries),
	})
}

// GetDiagnostics handles GET /api/data/diagnostics
func (h *DataHandler) GetDiagnostics(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.queryParams.ValidateInt(w, r, "limit", 1, 10000, 0)
	if !ok {
		return
	}

	diagnostics, err := h.service.GetDiagnostics(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err, "fetching diagnostics")
		return
	}

	total := len(diagnostics)
	if limit > 0 && limit < total {
		diagnostics = diagnostics[:limit]
	}

	render.JSON(w, r, map[string]interface{}{
		"diagnostics": diagnostics,
		"count":       len(diagnostics),
		"total":       total,
	})
}

// Refresh handles POST /api/data/refresh and forces a pipeline rerun
func (h *DataHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	h.logger.InfoContext(r.Context(), "dataset refresh requested",
		slog.String("request_id", reqID))

	dataset, err := h.service.Refresh(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "dataset refresh failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID))
		// Structural errors already map to a dataset problem type.
		if apierrors.IsStructural(err) {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.ErrPipelineRun(err))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":      "refreshed",
		"source_path": dataset.SourcePath,
		"loaded_at":   dataset.LoadedAt,
		"rows_loaded": len(dataset.Cleaned),
		"drop_events": len(dataset.Drops),
	})
}

// ExportReports handles POST /api/data/export and writes all report files
func (h *DataHandler) ExportReports(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	h.logger.InfoContext(r.Context(), "report export requested",
		slog.String("request_id", reqID))

	if err := h.service.ExportReports(r.Context()); err != nil {
		h.handleServiceError(w, r, err, "exporting reports")
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "exported",
	})
}

// ListReports handles GET /api/data/reports and lists exported report files
func (h *DataHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.queryParams.ValidateEnum(w, r, "kind",
		[]string{"all", "combined", "daily", "drops", "workbooks"}, "all")
	if !ok {
		return
	}

	listing, err := h.service.ListReportFiles(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err, "listing report files")
		return
	}

	switch kind {
	case "combined":
		listing = &services.ReportListing{Combined: listing.Combined}
	case "daily":
		listing = &services.ReportListing{Daily: listing.Daily}
	case "drops":
		listing = &services.ReportListing{Drops: listing.Drops}
	case "workbooks":
		listing = &services.ReportListing{Workbooks: listing.Workbooks}
	}

	render.JSON(w, r, listing)
}

// DownloadDropWorkbook handles GET /api/data/export/drops.xlsx and streams
// the Excel drop report.
func (h *DataHandler) DownloadDropWorkbook(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="ctr_drop_report.xlsx"`)

	if err := h.service.WriteDropWorkbook(r.Context(), w); err != nil {
		// Headers may already be written; log rather than double-respond.
		h.logger.ErrorContext(r.Context(), "failed to stream drop workbook",
			slog.String("error", err.Error()))
	}
}

// handleServiceError maps service errors to API errors
func (h *DataHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	reqID := middleware.GetReqID(r.Context())
	h.logger.ErrorContext(r.Context(), "service call failed",
		slog.String("action", action),
		slog.String("error", err.Error()),
		slog.String("request_id", reqID),
	)

	switch {
	case errors.Is(err, services.ErrPartnerNotFound):
		h.errorHandler.HandleError(w, r, apierrors.NotFoundError("partner"))
	case errors.Is(err, services.ErrInvalidSeverity):
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("severity", "severity must be one of: 10%, 20%, 30%"))
	case errors.Is(err, services.ErrServiceUnavailable):
		h.errorHandler.HandleError(w, r, apierrors.DatasetUnavailableError(err))
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}
