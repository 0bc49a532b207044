// Package app wires the ctrwatch HTTP service together: configuration,
// logging, OpenTelemetry, the cleaning pipeline services and the chi
// router with its middleware chain.
//
// The entry point is NewApplication, which loads configuration, resolves
// the data directories, builds the DataService and HealthService and
// assembles the router. Run starts the HTTP server and blocks until the
// process receives SIGINT or SIGTERM, then shuts down gracefully within
// the configured shutdown timeout.
//
// Route layout:
//
//	/api/health/*   liveness, readiness, version, system stats
//	/api/data/*     dataset summary, daily metrics, drop events, exports
//	/metrics        Prometheus scrape endpoint
package app
