// Package services implements the business logic layer of the CTR Watch
// application. It provides a clean separation between HTTP handlers and the
// data pipeline, ensuring that business rules are centralized and testable.
//
// # Architecture
//
// Services follow these architectural principles:
//
//	1. Interface-driven design for testability
//	2. Context propagation for cancellation and tracing
//	3. Dependency injection for loose coupling
//	4. Domain-focused methods that encapsulate business rules
//
// # Available Services
//
// The package provides these core services:
//
//	- DataService: serves cleaned datasets, daily CTR metrics, drop events
//	  and batch diagnostics, and drives the report exporters
//	- HealthService: provides system health and readiness checks
//
// # Error Handling
//
// Services return domain-specific errors that handlers can transform:
//
//	- Validation errors for invalid input
//	- Not found errors for missing resources
//	- Unavailability errors when the source log cannot be processed
package services
