// Package exporter writes pipeline results to files for offline review.
//
// This package contains three main components:
//
// CSVWriter: Core CSV writing functionality with support for headers,
// streaming, and UTF-8 BOM for Excel compatibility.
//
// DailyExporter: Generates per-day CTR metric files, the combined daily
// metrics file and the drop event CSV.
//
// PartnerExporter: Generates per-partner CTR history files and the partner
// summary file.
//
// WorkbookExporter: Builds the multi-sheet Excel drop report handed to
// account managers.
package exporter
