package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies pipeline and service errors.
type ErrorType string

const (
	ErrTypeStructural ErrorType = "STRUCTURAL"
	ErrTypeParsing    ErrorType = "PARSING"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
)

// AppError is the error type produced inside the cleaning pipeline. It keeps
// the classification alongside the wrapped cause so callers can decide
// whether a run is salvageable.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("[%s] %s", e.Type, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
}

func (e *AppError) Unwrap() error { return e.Cause }

// NewAppError builds a classified application error wrapping cause.
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{Type: errType, Message: message, Cause: cause}
}

// NewStructuralError marks malformed input structure. Structural errors are
// the only fatal class in the cleaning pipeline: an unreadable file or an
// absent required column aborts the run.
func NewStructuralError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStructural, message, cause)
}

// NewParsingError marks a row- or cell-level parse failure.
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewNotFoundError marks a missing resource.
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, resource+" not found", nil)
}

// IsStructural reports whether err is (or wraps) a structural input error.
func IsStructural(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == ErrTypeStructural
}
