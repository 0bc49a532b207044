package exporter

import (
	"fmt"
	"path/filepath"
	"sort"

	"ctrwatch/internal/config"
	"ctrwatch/pkg/contracts/domain"
)

// PartnerExporter handles partner-specific report generation
type PartnerExporter struct {
	csvWriter *CSVWriter
}

// NewPartnerExporter creates a new partner report exporter
func NewPartnerExporter(paths *config.Paths) *PartnerExporter {
	return &PartnerExporter{
		csvWriter: NewCSVWriter(paths),
	}
}

// PartnerSummary represents summary statistics for one partner across the
// whole observed window.
type PartnerSummary struct {
	PartnerID        string
	FirstDate        string
	LastDate         string
	ObservedDays     int
	TotalClicks      float64
	TotalImpressions float64
	OverallCTR       float64
	BestCTR          float64
	WorstCTR         float64
	DropEvents       int
}

// ExportPartnerFiles generates an individual CTR history CSV for each partner
func (p *PartnerExporter) ExportPartnerFiles(metrics []domain.DailyMetric, outputDir string) error {
	// Group metrics by partner
	metricsByPartner := make(map[string][]domain.DailyMetric)
	for _, m := range metrics {
		metricsByPartner[m.PartnerID] = append(metricsByPartner[m.PartnerID], m)
	}

	for partner, partnerMetrics := range metricsByPartner {
		// Sort by date (oldest to newest)
		sort.Slice(partnerMetrics, func(i, j int) bool {
			return partnerMetrics[i].Date.Before(partnerMetrics[j].Date)
		})

		filename := fmt.Sprintf("%s_ctr_history.csv", partner)
		filePath := filepath.Join(outputDir, filename)

		var csvRecords [][]string
		for _, m := range partnerMetrics {
			csvRecords = append(csvRecords, []string{
				m.Date.Format(domain.DateFormat),
				formatCount(m.Clicks),
				formatCount(m.Impressions),
				formatRatio(m.CTR),
			})
		}

		headers := []string{"date", "clicks", "impressions", "ctr"}
		if err := p.csvWriter.WriteSimpleCSV(filePath, headers, csvRecords); err != nil {
			return fmt.Errorf("failed to write partner file for %s: %w", partner, err)
		}
	}

	return nil
}

// GeneratePartnerSummaries computes per-partner summary statistics from the
// daily metrics and classified drop events.
func (p *PartnerExporter) GeneratePartnerSummaries(metrics []domain.DailyMetric, events []domain.DropEvent) []PartnerSummary {
	dropsByPartner := make(map[string]int)
	for _, e := range events {
		dropsByPartner[e.PartnerID]++
	}

	metricsByPartner := make(map[string][]domain.DailyMetric)
	for _, m := range metrics {
		metricsByPartner[m.PartnerID] = append(metricsByPartner[m.PartnerID], m)
	}

	var summaries []PartnerSummary
	for partner, partnerMetrics := range metricsByPartner {
		sort.Slice(partnerMetrics, func(i, j int) bool {
			return partnerMetrics[i].Date.Before(partnerMetrics[j].Date)
		})

		summary := PartnerSummary{
			PartnerID:    partner,
			FirstDate:    partnerMetrics[0].Date.Format(domain.DateFormat),
			LastDate:     partnerMetrics[len(partnerMetrics)-1].Date.Format(domain.DateFormat),
			ObservedDays: len(partnerMetrics),
			BestCTR:      partnerMetrics[0].CTR,
			WorstCTR:     partnerMetrics[0].CTR,
			DropEvents:   dropsByPartner[partner],
		}

		for _, m := range partnerMetrics {
			summary.TotalClicks += m.Clicks
			summary.TotalImpressions += m.Impressions
			if m.CTR > summary.BestCTR {
				summary.BestCTR = m.CTR
			}
			if m.CTR < summary.WorstCTR {
				summary.WorstCTR = m.CTR
			}
		}

		// Impressions are positive on every contributing day
		summary.OverallCTR = summary.TotalClicks / summary.TotalImpressions

		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].PartnerID < summaries[j].PartnerID
	})

	return summaries
}

// ExportPartnerSummary exports a summary CSV with statistics for all partners
func (p *PartnerExporter) ExportPartnerSummary(summaries []PartnerSummary, outputPath string) error {
	sorted := make([]PartnerSummary, len(summaries))
	copy(sorted, summaries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].PartnerID < sorted[j].PartnerID
	})

	headers := []string{
		"partner_id", "first_date", "last_date", "observed_days",
		"total_clicks", "total_impressions", "overall_ctr",
		"best_ctr", "worst_ctr", "drop_events",
	}

	var csvRecords [][]string
	for _, s := range sorted {
		csvRecords = append(csvRecords, []string{
			s.PartnerID,
			s.FirstDate,
			s.LastDate,
			formatInt(s.ObservedDays),
			formatCount(s.TotalClicks),
			formatCount(s.TotalImpressions),
			formatRatio(s.OverallCTR),
			formatRatio(s.BestCTR),
			formatRatio(s.WorstCTR),
			formatInt(s.DropEvents),
		})
	}

	return p.csvWriter.WriteSimpleCSV(outputPath, headers, csvRecords)
}
