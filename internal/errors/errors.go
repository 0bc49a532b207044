package errors

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// Machine-readable error codes carried in API error payloads. The RFC 7807
// handler maps each code onto a problem type.
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeInvalidParameter   = "INVALID_PARAMETER"
	CodeNotFound           = "NOT_FOUND"
	CodeDatasetNotFound    = "DATASET_NOT_FOUND"
	CodeDatasetUnavailable = "DATASET_UNAVAILABLE"
	CodePipelineFailed     = "PIPELINE_FAILED"
	CodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	CodeInternalServer     = "INTERNAL_SERVER_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// APIError is a structured error carried from handlers to the error handler.
// It implements both error and render.Renderer.
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// New builds an APIError without details.
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{StatusCode: statusCode, ErrorCode: errorCode, Message: message}
}

// NewWithDetails builds an APIError carrying a details payload.
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	e := New(statusCode, errorCode, message)
	e.Details = details
	return e
}

// ErrDatasetNotFound is returned when no dataset has been loaded yet.
var ErrDatasetNotFound = New(http.StatusNotFound, CodeDatasetNotFound, "Campaign log dataset not found")

// ValidationError describes a single failed field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrValidation reports one failed field.
func ErrValidation(field, message string) *APIError {
	return NewValidationErrors([]ValidationError{{Field: field, Message: message}})
}

// NewValidationErrors reports one or more failed fields.
func NewValidationErrors(errs []ValidationError) *APIError {
	details := interface{}(errs)
	if len(errs) == 1 {
		details = errs[0]
	}
	return NewWithDetails(http.StatusBadRequest, CodeValidationFailed, "Request validation failed", details)
}

// InvalidRequestWithError reports an unparseable request body.
func InvalidRequestWithError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format", err.Error())
}

// NotFoundError reports a missing resource by name.
func NotFoundError(resource string) *APIError {
	return NewWithDetails(http.StatusNotFound, CodeNotFound, fmt.Sprintf("%s not found", resource), resource)
}

// DatasetUnavailableError reports that the campaign log could not be loaded.
func DatasetUnavailableError(err error) *APIError {
	return NewWithDetails(http.StatusServiceUnavailable, CodeDatasetUnavailable,
		"Campaign log dataset could not be loaded", err.Error())
}

// ErrPipelineRun reports a failed cleaning pipeline run.
func ErrPipelineRun(err error) *APIError {
	return NewWithDetails(http.StatusInternalServerError, CodePipelineFailed,
		"Cleaning pipeline run failed", err.Error())
}
