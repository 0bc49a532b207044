package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// ErrorHandler translates errors into RFC 7807 responses and logs them with
// the request context. When includeStack is set (development mode) the stack
// trace rides along as a problem extension.
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError logs err and writes it as a problem document.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := middleware.GetReqID(r.Context())
	h.logger.ErrorContext(r.Context(), "request failed",
		slog.String("error", err.Error()),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("remote_addr", r.RemoteAddr),
	)

	problem := h.ErrorToProblem(err, r).WithExtension("trace_id", reqID)
	if h.includeStack {
		problem.WithExtension("stack", stackTrace())
	}
	render.Render(w, r, problem)
}

// ErrorToProblem classifies err and builds the matching problem document.
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	instance := r.URL.Path

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(http.StatusGatewayTimeout, TypeTimeout, "Request Timeout",
			"The request took too long to process and was cancelled", instance)
	}

	// Pipeline errors carry their own classification.
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrTypeStructural, ErrTypeParsing:
			// Malformed input means the dataset cannot be served at all.
			return NewProblemDetails(http.StatusServiceUnavailable, TypeDatasetStructural,
				"Dataset Malformed", appErr.Message, instance)
		case ErrTypeNotFound:
			return NewProblemDetails(http.StatusNotFound, TypeNotFound,
				"Resource Not Found", appErr.Message, instance)
		case ErrTypeValidation:
			return NewProblemDetails(http.StatusBadRequest, TypeValidation,
				"Validation Failed", appErr.Message, instance)
		}
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		problem := NewProblemDetails(apiErr.StatusCode, problemTypeForCode(apiErr.ErrorCode),
			http.StatusText(apiErr.StatusCode), apiErr.Message, instance).
			WithExtension("error_code", apiErr.ErrorCode)
		if apiErr.Details != nil {
			problem.WithExtension("details", apiErr.Details)
		}
		return problem
	}

	// Plain errors get classified by message as a last resort.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not found"):
		return NewProblemDetails(http.StatusNotFound, TypeNotFound,
			"Resource Not Found", msg, instance)
	case strings.Contains(msg, "rate limit"):
		return NewProblemDetails(http.StatusTooManyRequests, TypeRateLimit,
			"Rate Limit Exceeded", "Too many requests. Please try again later.", instance).
			WithExtension("retry_after", 60)
	case strings.Contains(msg, "payload too large"):
		return NewProblemDetails(http.StatusRequestEntityTooLarge, TypePayloadTooLarge,
			"Payload Too Large", "The request body exceeds the maximum allowed size", instance)
	default:
		return NewProblemDetails(http.StatusInternalServerError, TypeInternal,
			"Internal Server Error", "An unexpected error occurred while processing your request", instance)
	}
}

// problemTypeForCode maps API error codes to problem types.
func problemTypeForCode(code string) string {
	switch code {
	case CodeValidationFailed, CodeInvalidRequest, CodeInvalidParameter:
		return TypeValidation
	case CodeNotFound, CodeDatasetNotFound:
		return TypeNotFound
	case CodeDatasetUnavailable:
		return TypeDatasetUnavailable
	case CodeRateLimitExceeded:
		return TypeRateLimit
	case CodeServiceUnavailable:
		return TypeServiceDown
	default:
		return TypeInternal
	}
}

// HandlePanic renders a recovered panic as a 500 problem document.
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	reqID := middleware.GetReqID(r.Context())
	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", recovered),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", string(debug.Stack())),
	)

	problem := NewProblemDetails(http.StatusInternalServerError, TypeInternal,
		"Internal Server Error", "An unexpected error occurred", r.URL.Path).
		WithExtension("trace_id", reqID)
	if h.includeStack {
		problem.WithExtension("panic", fmt.Sprintf("%v", recovered))
		problem.WithExtension("stack", stackTrace())
	}
	render.Render(w, r, problem)
}

// NotFound serves as the router's fallback 404 handler.
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(http.StatusNotFound, TypeNotFound,
		"Not Found", "The requested resource was not found", r.URL.Path).
		WithExtension("trace_id", middleware.GetReqID(r.Context()))
	render.Render(w, r, problem)
}

// MethodNotAllowed serves as the router's fallback 405 handler.
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(http.StatusMethodNotAllowed, TypeInternal,
		"Method Not Allowed", fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method), r.URL.Path).
		WithExtension("trace_id", middleware.GetReqID(r.Context()))
	render.Render(w, r, problem)
}

func stackTrace() string {
	buf := make([]byte, 8*1024)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
