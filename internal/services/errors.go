package services

import "errors"

// Data service errors
var (
	// Partner errors
	ErrPartnerNotFound = errors.New("partner not found")

	// Filter errors
	ErrInvalidSeverity = errors.New("invalid drop severity")

	// Dataset errors
	ErrNoMetricsFound = errors.New("no daily metrics found")

	// General errors
	ErrInvalidInput       = errors.New("invalid input")
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)
