package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "ctrwatch/internal/errors"
	"ctrwatch/internal/exporter"
	"ctrwatch/internal/files"
	"ctrwatch/internal/services"
	"ctrwatch/pkg/contracts/domain"
)

// mockDataService implements DataServiceInterface for handler tests.
type mockDataService struct {
	summary     *services.DatasetSummary
	daily       []domain.DailyMetric
	drops       []domain.DropEvent
	partners    []string
	summaries   []exporter.PartnerSummary
	diagnostics []domain.Diagnostic
	dataset     *domain.Dataset
	err         error
	exported    bool
	refreshed   bool
}

func (m *mockDataService) GetSummary(ctx context.Context) (*services.DatasetSummary, error) {
	return m.summary, m.err
}

func (m *mockDataService) GetDailyMetrics(ctx context.Context, partnerID string) ([]domain.DailyMetric, error) {
	if m.err != nil {
		return nil, m.err
	}
	if partnerID == "" {
		return m.daily, nil
	}
	var out []domain.DailyMetric
	for _, dm := range m.daily {
		if dm.PartnerID == partnerID {
			out = append(out, dm)
		}
	}
	if out == nil {
		return nil, services.ErrPartnerNotFound
	}
	return out, nil
}

func (m *mockDataService) GetDropEvents(ctx context.Context, partnerID, severity string) ([]domain.DropEvent, error) {
	if m.err != nil {
		return nil, m.err
	}
	if severity != "" && !domain.DropSeverity(severity).Valid() {
		return nil, services.ErrInvalidSeverity
	}
	return m.drops, nil
}

func (m *mockDataService) GetPartners(ctx context.Context) ([]string, error) {
	return m.partners, m.err
}

func (m *mockDataService) GetPartnerSummaries(ctx context.Context) ([]exporter.PartnerSummary, error) {
	return m.summaries, m.err
}

func (m *mockDataService) GetDiagnostics(ctx context.Context) ([]domain.Diagnostic, error) {
	return m.diagnostics, m.err
}

func (m *mockDataService) Refresh(ctx context.Context) (*domain.Dataset, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.refreshed = true
	return m.dataset, nil
}

func (m *mockDataService) ExportReports(ctx context.Context) error {
	if m.err != nil {
		return m.err
	}
	m.exported = true
	return nil
}

func (m *mockDataService) ListReportFiles(ctx context.Context) (*services.ReportListing, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &services.ReportListing{
		Combined: []files.FileInfo{{Name: "ctr_daily_metrics.csv"}},
		Daily:    []files.FileInfo{{Name: "ctr_daily_2024_03_01.csv"}},
	}, nil
}

func (m *mockDataService) WriteDropWorkbook(ctx context.Context, w io.Writer) error {
	if m.err != nil {
		return m.err
	}
	_, err := w.Write([]byte("PK\x03\x04workbook"))
	return err
}

func newTestDataHandler(mock *mockDataService) *DataHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewDataHandler(mock, logger, apierrors.NewErrorHandler(logger, false))
}

func sampleMock() *mockDataService {
	d1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	return &mockDataService{
		summary: &services.DatasetSummary{
			SourceFile:   "campaign_log.csv",
			RowsLoaded:   6,
			RowsServed:   5,
			Partners:     2,
			DailyMetrics: 3,
			DropEvents:   1,
			DropsByTier:  map[string]int{"20%": 1},
		},
		daily: []domain.DailyMetric{
			{PartnerID: "kidzsy", Date: d1, Clicks: 5, Impressions: 100, CTR: 0.05},
			{PartnerID: "toonjoy", Date: d1, Clicks: 20, Impressions: 100, CTR: 0.20},
			{PartnerID: "toonjoy", Date: d2, Clicks: 15, Impressions: 100, CTR: 0.15},
		},
		drops: []domain.DropEvent{
			{PartnerID: "toonjoy", Date: d2, CTRBefore: 0.20, CTRAfter: 0.15, PctChange: -0.25, Severity: domain.DropSeverity20},
		},
		partners: []string{"kidzsy", "toonjoy"},
		dataset: &domain.Dataset{
			SourcePath: "campaign_log.csv",
			LoadedAt:   time.Now(),
			Cleaned:    make([]domain.CleanedRow, 6),
		},
	}
}

func TestGetSummary(t *testing.T) {
	handler := newTestDataHandler(sampleMock())

	req := httptest.NewRequest(http.MethodGet, "/summary", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var summary services.DatasetSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 6, summary.RowsLoaded)
	assert.Equal(t, 5, summary.RowsServed)
	assert.Equal(t, 1, summary.DropsByTier["20%"])
}

func TestGetDailyMetrics(t *testing.T) {
	handler := newTestDataHandler(sampleMock())

	req := httptest.NewRequest(http.MethodGet, "/daily?partner=toonjoy", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Daily []domain.DailyMetric `json:"daily"`
		Count int                  `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	for _, m := range body.Daily {
		assert.Equal(t, "toonjoy", m.PartnerID)
	}
}

func TestGetDailyMetricsUnknownPartner(t *testing.T) {
	handler := newTestDataHandler(sampleMock())

	req := httptest.NewRequest(http.MethodGet, "/daily?partner=ghostnet", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var problem map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.EqualValues(t, http.StatusNotFound, problem["status"])
}

func TestGetDropEventsInvalidSeverity(t *testing.T) {
	handler := newTestDataHandler(sampleMock())

	req := httptest.NewRequest(http.MethodGet, "/drops?severity=50%25", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var problem map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.EqualValues(t, http.StatusBadRequest, problem["status"])
}

func TestGetDropEvents(t *testing.T) {
	handler := newTestDataHandler(sampleMock())

	req := httptest.NewRequest(http.MethodGet, "/drops?severity=20%25", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Drops []domain.DropEvent `json:"drops"`
		Count int                `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, domain.DropSeverity20, body.Drops[0].Severity)
	assert.InDelta(t, -0.25, body.Drops[0].PctChange, 1e-9)
}

func TestGetPartners(t *testing.T) {
	handler := newTestDataHandler(sampleMock())

	req := httptest.NewRequest(http.MethodGet, "/partners", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Partners []string `json:"partners"`
		Count    int      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"kidzsy", "toonjoy"}, body.Partners)
	assert.Equal(t, 2, body.Count)
}

func TestGetDiagnosticsEmpty(t *testing.T) {
	mock := sampleMock()
	mock.diagnostics = []domain.Diagnostic{}
	handler := newTestDataHandler(mock)

	req := httptest.NewRequest(http.MethodGet, "/diagnostics", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 0, body.Count)
}

func TestRefresh(t *testing.T) {
	mock := sampleMock()
	handler := newTestDataHandler(mock)

	req := httptest.NewRequest(http.MethodPost, "/refresh", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, mock.refreshed)

	var body struct {
		Status     string `json:"status"`
		RowsLoaded int    `json:"rows_loaded"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "refreshed", body.Status)
	assert.Equal(t, 6, body.RowsLoaded)
}

func TestRefreshServiceError(t *testing.T) {
	mock := sampleMock()
	mock.err = services.ErrServiceUnavailable
	handler := newTestDataHandler(mock)

	req := httptest.NewRequest(http.MethodPost, "/refresh", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestExportReports(t *testing.T) {
	mock := sampleMock()
	handler := newTestDataHandler(mock)

	req := httptest.NewRequest(http.MethodPost, "/export", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, mock.exported)
}

func TestListReports(t *testing.T) {
	handler := newTestDataHandler(sampleMock())

	req := httptest.NewRequest(http.MethodGet, "/reports", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var listing services.ReportListing
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Len(t, listing.Combined, 1)
	assert.Equal(t, "ctr_daily_metrics.csv", listing.Combined[0].Name)
}

func TestDownloadDropWorkbook(t *testing.T) {
	handler := newTestDataHandler(sampleMock())

	req := httptest.NewRequest(http.MethodGet, "/export/drops.xlsx", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "ctr_drop_report.xlsx")
	assert.NotZero(t, rec.Body.Len())
}

func TestListReportsKindFilter(t *testing.T) {
	handler := newTestDataHandler(sampleMock())

	req := httptest.NewRequest(http.MethodGet, "/reports?kind=daily", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var listing services.ReportListing
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.Empty(t, listing.Combined)
	require.Len(t, listing.Daily, 1)
	assert.Equal(t, "ctr_daily_2024_03_01.csv", listing.Daily[0].Name)
}

func TestListReportsUnknownKind(t *testing.T) {
	handler := newTestDataHandler(sampleMock())

	req := httptest.NewRequest(http.MethodGet, "/reports?kind=archive", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.EqualValues(t, http.StatusBadRequest, problem["status"])
}

func TestGetDiagnosticsLimit(t *testing.T) {
	mock := sampleMock()
	mock.diagnostics = []domain.Diagnostic{
		{Kind: domain.DiagnosticUnrecognizedPartner, Values: []string{"mystery_ads"}},
		{Kind: domain.DiagnosticUnparseableTimestamp, Values: []string{"not-a-date"}},
	}
	handler := newTestDataHandler(mock)

	req := httptest.NewRequest(http.MethodGet, "/diagnostics?limit=1", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count int `json:"count"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, 2, body.Total)
}

func TestSummaryDatasetUnavailable(t *testing.T) {
	mock := sampleMock()
	mock.err = services.ErrServiceUnavailable
	handler := newTestDataHandler(mock)

	req := httptest.NewRequest(http.MethodGet, "/summary", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var problem map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, apierrors.CodeDatasetUnavailable, problem["error_code"])
}
