package exporter

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctrwatch/internal/config"
	"ctrwatch/pkg/contracts/domain"
)

func testPaths(t *testing.T) *config.Paths {
	t.Helper()
	base := t.TempDir()
	return &config.Paths{
		ExecutableDir:   base,
		DataDir:         filepath.Join(base, "data"),
		ReportsDir:      filepath.Join(base, "data", "reports"),
		CacheDir:        filepath.Join(base, "data", "cache"),
		LogsDir:         filepath.Join(base, "logs"),
		DailyReportsDir: filepath.Join(base, "data", "reports", "daily"),
		DropReportsDir:  filepath.Join(base, "data", "reports", "drops"),
		DropsCSV:        filepath.Join(base, "data", "reports", "drops", "ctr_drops.csv"),
		DropsWorkbook:   filepath.Join(base, "data", "reports", "drops", "ctr_drop_report.xlsx"),
	}
}

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
}

func sampleMetrics() []domain.DailyMetric {
	return []domain.DailyMetric{
		{PartnerID: "toonjoy", Date: day(1), Clicks: 10, Impressions: 100, CTR: 0.10},
		{PartnerID: "toonjoy", Date: day(2), Clicks: 15, Impressions: 200, CTR: 0.075},
		{PartnerID: "kidzsy", Date: day(1), Clicks: 5, Impressions: 100, CTR: 0.05},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := strings.TrimPrefix(string(data), "\xef\xbb\xbf")
	rows, err := csv.NewReader(strings.NewReader(content)).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestExportDailyReports(t *testing.T) {
	paths := testPaths(t)
	exporter := NewDailyExporter(paths)

	err := exporter.ExportDailyReports(sampleMetrics(), paths.DailyReportsDir)
	require.NoError(t, err)

	rows := readCSV(t, filepath.Join(paths.DailyReportsDir, "ctr_daily_2024_03_01.csv"))
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"partner_id", "date", "clicks", "impressions", "ctr"}, rows[0])
	// Partners sorted within the day.
	assert.Equal(t, "kidzsy", rows[1][0])
	assert.Equal(t, "toonjoy", rows[2][0])
	assert.Equal(t, "0.100000", rows[2][4])

	rows = readCSV(t, filepath.Join(paths.DailyReportsDir, "ctr_daily_2024_03_02.csv"))
	require.Len(t, rows, 2)
	assert.Equal(t, "0.075000", rows[1][4])
}

func TestExportCombinedMetrics(t *testing.T) {
	paths := testPaths(t)
	exporter := NewDailyExporter(paths)
	outputPath := filepath.Join(paths.ReportsDir, "ctr_daily_metrics.csv")

	err := exporter.ExportCombinedMetrics(sampleMetrics(), outputPath)
	require.NoError(t, err)

	// Combined export carries no BOM.
	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(string(data), "\xef\xbb\xbf"))

	rows := readCSV(t, outputPath)
	require.Len(t, rows, 4)
	assert.Equal(t, "kidzsy", rows[1][0])
	assert.Equal(t, "toonjoy", rows[2][0])
	assert.Equal(t, "2024-03-01", rows[2][1])
	assert.Equal(t, "2024-03-02", rows[3][1])
}

func TestExportDropEvents(t *testing.T) {
	paths := testPaths(t)
	exporter := NewDailyExporter(paths)

	events := []domain.DropEvent{
		{PartnerID: "toonjoy", Date: day(2), CTRBefore: 0.10, CTRAfter: 0.075,
			PctChange: -0.25, Severity: domain.DropSeverity20},
	}

	err := exporter.ExportDropEvents(events, paths.DropsCSV)
	require.NoError(t, err)

	rows := readCSV(t, paths.DropsCSV)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"partner_id", "date", "ctr_before", "ctr_after", "pct_change", "severity"}, rows[0])
	assert.Equal(t, []string{"toonjoy", "2024-03-02", "0.100000", "0.075000", "-25.00%", "20%"}, rows[1])
}

func TestExportDailyReportsStreamingSkipsExisting(t *testing.T) {
	paths := testPaths(t)
	exporter := NewDailyExporter(paths)

	existing := map[string]bool{"2024_03_01": true}
	err := exporter.ExportDailyReportsStreaming(sampleMetrics(), paths.DailyReportsDir, existing)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(paths.DailyReportsDir, "ctr_daily_2024_03_01.csv"))
	assert.True(t, os.IsNotExist(err))

	rows := readCSV(t, filepath.Join(paths.DailyReportsDir, "ctr_daily_2024_03_02.csv"))
	assert.Len(t, rows, 2)
}
