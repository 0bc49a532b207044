package exporter

import (
	"fmt"
	"path/filepath"
	"sort"

	"ctrwatch/internal/config"
	"ctrwatch/pkg/contracts/domain"
)

// DailyExporter handles daily report generation
type DailyExporter struct {
	csvWriter *CSVWriter
}

// NewDailyExporter creates a new daily report exporter
func NewDailyExporter(paths *config.Paths) *DailyExporter {
	return &DailyExporter{
		csvWriter: NewCSVWriter(paths),
	}
}

// ExportDailyReports generates one CSV file per calendar day, each holding
// that day's per-partner CTR metrics.
func (d *DailyExporter) ExportDailyReports(metrics []domain.DailyMetric, outputDir string) error {
	// Group metrics by date
	metricsByDate := make(map[string][]domain.DailyMetric)
	for _, m := range metrics {
		dateKey := m.Date.Format("2006_01_02")
		metricsByDate[dateKey] = append(metricsByDate[dateKey], m)
	}

	// Get sorted dates
	var dates []string
	for date := range metricsByDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	// Export each day's data
	for _, dateKey := range dates {
		dayMetrics := metricsByDate[dateKey]

		// Sort by partner for consistent output
		sort.Slice(dayMetrics, func(i, j int) bool {
			return dayMetrics[i].PartnerID < dayMetrics[j].PartnerID
		})

		filename := fmt.Sprintf("ctr_daily_%s.csv", dateKey)
		filePath := filepath.Join(outputDir, filename)

		var csvRecords [][]string
		for _, m := range dayMetrics {
			csvRecords = append(csvRecords, d.metricToCSVRow(m))
		}

		if err := d.csvWriter.WriteSimpleCSV(filePath, d.metricHeaders(), csvRecords); err != nil {
			return fmt.Errorf("failed to write daily report for %s: %w", dateKey, err)
		}
	}

	return nil
}

// ExportCombinedMetrics exports all daily metrics to a single CSV file,
// ordered by (partner, date).
func (d *DailyExporter) ExportCombinedMetrics(metrics []domain.DailyMetric, outputPath string) error {
	sorted := make([]domain.DailyMetric, len(metrics))
	copy(sorted, metrics)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].PartnerID != sorted[j].PartnerID {
			return sorted[i].PartnerID < sorted[j].PartnerID
		}
		return sorted[i].Date.Before(sorted[j].Date)
	})

	var csvRecords [][]string
	for _, m := range sorted {
		csvRecords = append(csvRecords, d.metricToCSVRow(m))
	}

	// No BOM for the combined CSV: it feeds analysis tools, not Excel
	return d.csvWriter.WriteCSV(outputPath, WriteOptions{
		Headers:   d.metricHeaders(),
		Records:   csvRecords,
		Append:    false,
		BOMPrefix: false,
	})
}

// ExportDropEvents exports classified drop events to a single CSV file in
// (partner, date) order.
func (d *DailyExporter) ExportDropEvents(events []domain.DropEvent, outputPath string) error {
	sorted := make([]domain.DropEvent, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].PartnerID != sorted[j].PartnerID {
			return sorted[i].PartnerID < sorted[j].PartnerID
		}
		return sorted[i].Date.Before(sorted[j].Date)
	})

	var csvRecords [][]string
	for _, e := range sorted {
		csvRecords = append(csvRecords, d.eventToCSVRow(e))
	}

	return d.csvWriter.WriteCSV(outputPath, WriteOptions{
		Headers:   d.eventHeaders(),
		Records:   csvRecords,
		Append:    false,
		BOMPrefix: false,
	})
}

// ExportDailyReportsStreaming exports daily reports using streaming for
// large datasets, skipping dates already present on disk.
func (d *DailyExporter) ExportDailyReportsStreaming(metrics []domain.DailyMetric, outputDir string, existingDates map[string]bool) error {
	metricsByDate := make(map[string][]domain.DailyMetric)
	for _, m := range metrics {
		dateKey := m.Date.Format("2006_01_02")
		metricsByDate[dateKey] = append(metricsByDate[dateKey], m)
	}

	for dateKey, dayMetrics := range metricsByDate {
		// Skip if already exists
		if existingDates != nil && existingDates[dateKey] {
			continue
		}

		sort.Slice(dayMetrics, func(i, j int) bool {
			return dayMetrics[i].PartnerID < dayMetrics[j].PartnerID
		})

		filename := fmt.Sprintf("ctr_daily_%s.csv", dateKey)
		filePath := filepath.Join(outputDir, filename)

		stream, err := d.csvWriter.CreateStreamWriter(filePath, d.metricHeaders())
		if err != nil {
			return fmt.Errorf("failed to create stream writer for %s: %w", dateKey, err)
		}

		for _, m := range dayMetrics {
			if err := stream.WriteRecord(d.metricToCSVRow(m)); err != nil {
				stream.Close()
				return fmt.Errorf("failed to write metric: %w", err)
			}
		}

		if err := stream.Close(); err != nil {
			return fmt.Errorf("failed to close stream for %s: %w", dateKey, err)
		}
	}

	return nil
}

// metricHeaders returns the CSV headers for daily metrics
func (d *DailyExporter) metricHeaders() []string {
	return []string{"partner_id", "date", "clicks", "impressions", "ctr"}
}

// metricToCSVRow converts a daily metric to a CSV row
func (d *DailyExporter) metricToCSVRow(m domain.DailyMetric) []string {
	return []string{
		m.PartnerID,
		m.Date.Format(domain.DateFormat),
		formatCount(m.Clicks),
		formatCount(m.Impressions),
		formatRatio(m.CTR),
	}
}

// eventHeaders returns the CSV headers for drop events
func (d *DailyExporter) eventHeaders() []string {
	return []string{"partner_id", "date", "ctr_before", "ctr_after", "pct_change", "severity"}
}

// eventToCSVRow converts a drop event to a CSV row
func (d *DailyExporter) eventToCSVRow(e domain.DropEvent) []string {
	return []string{
		e.PartnerID,
		e.Date.Format(domain.DateFormat),
		formatRatio(e.CTRBefore),
		formatRatio(e.CTRAfter),
		formatPercent(e.PctChange),
		string(e.Severity),
	}
}
