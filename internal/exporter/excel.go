package exporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/xuri/excelize/v2"

	"ctrwatch/pkg/contracts/domain"
)

// Workbook sheet names, in tab order.
const (
	sheetSummary = "Summary"
	sheetDrops   = "Drop Events"
	sheetDaily   = "Daily Metrics"
)

// WorkbookExporter builds the multi-sheet Excel drop report. Account
// managers get one workbook per pipeline run: an overview sheet, the
// classified drop events and the full daily metric table behind them.
type WorkbookExporter struct{}

// NewWorkbookExporter creates a new workbook exporter
func NewWorkbookExporter() *WorkbookExporter {
	return &WorkbookExporter{}
}

// ExportDropWorkbook writes the drop report workbook for dataset to
// outputPath, creating parent directories as needed.
func (w *WorkbookExporter) ExportDropWorkbook(dataset *domain.Dataset, outputPath string) error {
	f, err := w.BuildDropWorkbook(dataset)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// WriteDropWorkbook streams the drop report workbook for dataset to wr.
// Used by the HTTP export endpoint.
func (w *WorkbookExporter) WriteDropWorkbook(dataset *domain.Dataset, wr io.Writer) error {
	f, err := w.BuildDropWorkbook(dataset)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(wr); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// BuildDropWorkbook assembles the in-memory workbook for dataset.
func (w *WorkbookExporter) BuildDropWorkbook(dataset *domain.Dataset) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName(f.GetSheetName(0), sheetSummary)

	if err := w.writeSummarySheet(f, dataset); err != nil {
		f.Close()
		return nil, err
	}
	if err := w.writeDropsSheet(f, dataset.Drops); err != nil {
		f.Close()
		return nil, err
	}
	if err := w.writeDailySheet(f, dataset.Daily); err != nil {
		f.Close()
		return nil, err
	}

	return f, nil
}

func (w *WorkbookExporter) writeSummarySheet(f *excelize.File, dataset *domain.Dataset) error {
	bySeverity := make(map[domain.DropSeverity]int)
	for _, e := range dataset.Drops {
		bySeverity[e.Severity]++
	}

	rows := [][]interface{}{
		{"CTR Drop Report"},
		{},
		{"Source file", dataset.SourcePath},
		{"Generated at", dataset.LoadedAt.Format("2006-01-02 15:04:05 MST")},
		{},
		{"Rows loaded", len(dataset.Cleaned)},
		{"Rows served", len(dataset.Served)},
		{"Partners observed", len(dataset.Partners())},
		{"Daily metrics", len(dataset.Daily)},
		{},
		{"Drop events", len(dataset.Drops)},
		{"  30% tier", bySeverity[domain.DropSeverity30]},
		{"  20% tier", bySeverity[domain.DropSeverity20]},
		{"  10% tier", bySeverity[domain.DropSeverity10]},
	}

	for _, d := range dataset.Diagnostics {
		rows = append(rows, []interface{}{}, []interface{}{
			fmt.Sprintf("Diagnostic: %s", d.Kind), len(d.Values),
		})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetSummary, cell, &row); err != nil {
			return err
		}
	}

	title, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err := f.SetCellStyle(sheetSummary, "A1", "A1", title); err != nil {
		return err
	}
	return f.SetColWidth(sheetSummary, "A", "A", 24)
}

func (w *WorkbookExporter) writeDropsSheet(f *excelize.File, events []domain.DropEvent) error {
	if _, err := f.NewSheet(sheetDrops); err != nil {
		return err
	}

	sorted := make([]domain.DropEvent, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].PartnerID != sorted[j].PartnerID {
			return sorted[i].PartnerID < sorted[j].PartnerID
		}
		return sorted[i].Date.Before(sorted[j].Date)
	})

	header := []interface{}{"Partner", "Date", "CTR Before", "CTR After", "Change", "Severity"}
	if err := f.SetSheetRow(sheetDrops, "A1", &header); err != nil {
		return err
	}

	for i, e := range sorted {
		row := []interface{}{
			e.PartnerID,
			e.Date.Format(domain.DateFormat),
			e.CTRBefore,
			e.CTRAfter,
			formatPercent(e.PctChange),
			string(e.Severity),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetDrops, cell, &row); err != nil {
			return err
		}
	}

	return w.styleHeader(f, sheetDrops, "F1")
}

func (w *WorkbookExporter) writeDailySheet(f *excelize.File, metrics []domain.DailyMetric) error {
	if _, err := f.NewSheet(sheetDaily); err != nil {
		return err
	}

	header := []interface{}{"Partner", "Date", "Clicks", "Impressions", "CTR"}
	if err := f.SetSheetRow(sheetDaily, "A1", &header); err != nil {
		return err
	}

	for i, m := range metrics {
		row := []interface{}{
			m.PartnerID,
			m.Date.Format(domain.DateFormat),
			m.Clicks,
			m.Impressions,
			m.CTR,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetDaily, cell, &row); err != nil {
			return err
		}
	}

	return w.styleHeader(f, sheetDaily, "E1")
}

func (w *WorkbookExporter) styleHeader(f *excelize.File, sheet, lastCell string) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", lastCell, style)
}
