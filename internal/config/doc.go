// Package config provides centralized configuration management for CTR Watch.
// It handles loading configuration from multiple sources, validation, and
// provides a type-safe API for accessing configuration values throughout the
// application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration file (YAML)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern CTRW_* for namespacing:
//
//	CTRW_SERVER_PORT=8080
//	CTRW_LOGGING_LEVEL=info
//	CTRW_PIPELINE_SOURCE_FILE=data/sample_campaign_logs.csv
//
// # Pipeline Data Tables
//
// The partner alias table, the canonical partner set and the missing-token
// list are configuration data, not code. They default to the built-in
// tables (DefaultPartnerAliases, DefaultCanonicalPartners) and can be
// overridden from the YAML config file to onboard new partners without a
// rebuild.
//
// # Path Management
//
// The package provides centralized path management through the Paths type,
// which handles all file system paths relative to the executable location:
//
//	paths, err := config.GetPaths()
//	reportPath := paths.DropsCSV
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
