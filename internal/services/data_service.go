package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"ctrwatch/internal/config"
	"ctrwatch/internal/dataprocessing"
	"ctrwatch/internal/exporter"
	"ctrwatch/internal/files"
	"ctrwatch/internal/infrastructure"
	"ctrwatch/pkg/contracts/domain"
)

// DataService provides access to the cleaned campaign dataset and derived
// CTR analytics. All read methods load through the dataset cache, so
// repeated calls against an unchanged source file cost one pipeline run.
type DataService struct {
	config *config.Config
	paths  *config.Paths
	logger *slog.Logger
	cache  *dataprocessing.Cache

	dailyExporter    *exporter.DailyExporter
	partnerExporter  *exporter.PartnerExporter
	workbookExporter *exporter.WorkbookExporter
	discovery        *files.Discovery
}

// ReportListing enumerates the report files currently on disk.
type ReportListing struct {
	Combined  []files.FileInfo `json:"combined"`
	Daily     []files.FileInfo `json:"daily"`
	Drops     []files.FileInfo `json:"drops"`
	Workbooks []files.FileInfo `json:"workbooks"`
}

// DatasetSummary is the top-level overview of one pipeline run.
type DatasetSummary struct {
	SourceFile   string         `json:"source_file"`
	LoadedAt     string         `json:"loaded_at"`
	RowsLoaded   int            `json:"rows_loaded"`
	RowsServed   int            `json:"rows_served"`
	Partners     int            `json:"partners"`
	DailyMetrics int            `json:"daily_metrics"`
	DropEvents   int            `json:"drop_events"`
	DropsByTier  map[string]int `json:"drops_by_tier"`
	Diagnostics  int            `json:"diagnostics"`
}

// NewDataService creates a new data service using the default logger
func NewDataService(cfg *config.Config, metrics *infrastructure.BusinessMetrics) (*DataService, error) {
	return NewDataServiceWithLogger(cfg, metrics, slog.Default())
}

// NewDataServiceWithLogger creates a new data service with a specific logger
func NewDataServiceWithLogger(cfg *config.Config, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) (*DataService, error) {
	paths, err := config.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}
	return NewDataServiceWithPaths(cfg, paths, metrics, logger), nil
}

// NewDataServiceWithPaths creates a new data service against explicit paths
func NewDataServiceWithPaths(cfg *config.Config, paths *config.Paths, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *DataService {
	if logger == nil {
		logger = slog.Default()
	}
	svcLogger := infrastructure.WithComponent(logger, "data_service")

	svcLogger.Info("DataService initialized with paths",
		slog.String("source_file", cfg.GetSourceFile()),
		slog.String("data_dir", paths.DataDir),
		slog.String("reports_dir", paths.ReportsDir))

	processor := dataprocessing.NewProcessor(logger, dataprocessing.CleanerConfig{
		MissingTokens:     cfg.Pipeline.MissingTokens,
		PartnerAliases:    cfg.Pipeline.PartnerAliases,
		CanonicalPartners: cfg.Pipeline.CanonicalPartners,
		DateFormats:       cfg.Pipeline.DateFormats,
	}, metrics)

	return &DataService{
		config:           cfg,
		paths:            paths,
		logger:           svcLogger,
		cache:            dataprocessing.NewCache(logger, processor, metrics),
		dailyExporter:    exporter.NewDailyExporter(paths),
		partnerExporter:  exporter.NewPartnerExporter(paths),
		workbookExporter: exporter.NewWorkbookExporter(),
		discovery:        files.NewDiscovery(paths.ReportsDir),
	}
}

// Dataset returns the current dataset, running the pipeline if the source
// file changed since the last load.
func (ds *DataService) Dataset(ctx context.Context) (*domain.Dataset, error) {
	dataset, err := ds.cache.Load(ctx, ds.config.GetSourceFile())
	if err != nil {
		infrastructure.WithError(ds.logger, err).ErrorContext(ctx, "failed to load dataset",
			slog.String("source_file", ds.config.GetSourceFile()))
		return nil, err
	}
	return dataset, nil
}

// Refresh discards any cached dataset and reruns the pipeline.
func (ds *DataService) Refresh(ctx context.Context) (*domain.Dataset, error) {
	ds.cache.Invalidate(ds.config.GetSourceFile())
	return ds.Dataset(ctx)
}

// GetSummary returns the dataset overview.
func (ds *DataService) GetSummary(ctx context.Context) (*DatasetSummary, error) {
	dataset, err := ds.Dataset(ctx)
	if err != nil {
		return nil, err
	}

	byTier := map[string]int{}
	for _, e := range dataset.Drops {
		byTier[string(e.Severity)]++
	}

	return &DatasetSummary{
		SourceFile:   dataset.SourcePath,
		LoadedAt:     dataset.LoadedAt.Format("2006-01-02T15:04:05Z07:00"),
		RowsLoaded:   len(dataset.Cleaned),
		RowsServed:   len(dataset.Served),
		Partners:     len(dataset.Partners()),
		DailyMetrics: len(dataset.Daily),
		DropEvents:   len(dataset.Drops),
		DropsByTier:  byTier,
		Diagnostics:  len(dataset.Diagnostics),
	}, nil
}

// GetDailyMetrics returns daily CTR metrics, optionally filtered to a single
// partner. An unknown partner filter is an error rather than an empty result
// so callers can distinguish a typo from a quiet partner.
func (ds *DataService) GetDailyMetrics(ctx context.Context, partnerID string) ([]domain.DailyMetric, error) {
	dataset, err := ds.Dataset(ctx)
	if err != nil {
		return nil, err
	}

	if partnerID == "" {
		return dataset.Daily, nil
	}
	if !ds.partnerExists(dataset, partnerID) {
		return nil, ErrPartnerNotFound
	}

	var metrics []domain.DailyMetric
	for _, m := range dataset.Daily {
		if m.PartnerID == partnerID {
			metrics = append(metrics, m)
		}
	}
	return metrics, nil
}

// GetDropEvents returns classified drop events, optionally filtered by
// partner and severity tier.
func (ds *DataService) GetDropEvents(ctx context.Context, partnerID, severity string) ([]domain.DropEvent, error) {
	dataset, err := ds.Dataset(ctx)
	if err != nil {
		return nil, err
	}

	if severity != "" && !domain.DropSeverity(severity).Valid() {
		return nil, ErrInvalidSeverity
	}
	if partnerID != "" && !ds.partnerExists(dataset, partnerID) {
		return nil, ErrPartnerNotFound
	}

	events := make([]domain.DropEvent, 0, len(dataset.Drops))
	for _, e := range dataset.Drops {
		if partnerID != "" && e.PartnerID != partnerID {
			continue
		}
		if severity != "" && string(e.Severity) != severity {
			continue
		}
		events = append(events, e)
	}
	return events, nil
}

// GetPartners returns the distinct partner ids present in the daily metrics,
// sorted ascending.
func (ds *DataService) GetPartners(ctx context.Context) ([]string, error) {
	dataset, err := ds.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return dataset.Partners(), nil
}

// GetDiagnostics returns the batch diagnostics from the last pipeline run.
func (ds *DataService) GetDiagnostics(ctx context.Context) ([]domain.Diagnostic, error) {
	dataset, err := ds.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	if dataset.Diagnostics == nil {
		return []domain.Diagnostic{}, nil
	}
	return dataset.Diagnostics, nil
}

// GetPartnerSummaries returns per-partner aggregate statistics.
func (ds *DataService) GetPartnerSummaries(ctx context.Context) ([]exporter.PartnerSummary, error) {
	dataset, err := ds.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return ds.partnerExporter.GeneratePartnerSummaries(dataset.Daily, dataset.Drops), nil
}

// ExportReports writes the full report set for the current dataset: per-day
// metric files, the combined metrics CSV, per-partner histories, the partner
// summary, the drop event CSV and the Excel drop workbook.
func (ds *DataService) ExportReports(ctx context.Context) error {
	return ds.exportReports(ctx, false)
}

// ExportReportsIncremental is ExportReports, but leaves per-day metric
// files that already exist alone. The aggregate files are always rewritten
// since any new day changes them.
func (ds *DataService) ExportReportsIncremental(ctx context.Context) error {
	return ds.exportReports(ctx, true)
}

func (ds *DataService) exportReports(ctx context.Context, skipExistingDaily bool) error {
	dataset, err := ds.Dataset(ctx)
	if err != nil {
		return err
	}

	if skipExistingDaily {
		existing, err := ds.discovery.FindDailyReportFiles(ds.paths.DailyReportsDir)
		if err != nil {
			return fmt.Errorf("discovering existing daily reports: %w", err)
		}
		existingDates := make(map[string]bool, len(existing))
		for dateKey := range existing {
			existingDates[dateKey] = true
		}
		if err := ds.dailyExporter.ExportDailyReportsStreaming(dataset.Daily, ds.paths.DailyReportsDir, existingDates); err != nil {
			return fmt.Errorf("exporting daily reports: %w", err)
		}
	} else if err := ds.dailyExporter.ExportDailyReports(dataset.Daily, ds.paths.DailyReportsDir); err != nil {
		return fmt.Errorf("exporting daily reports: %w", err)
	}
	if err := ds.dailyExporter.ExportCombinedMetrics(dataset.Daily, "ctr_daily_metrics.csv"); err != nil {
		return fmt.Errorf("exporting combined metrics: %w", err)
	}
	if err := ds.partnerExporter.ExportPartnerFiles(dataset.Daily, ds.paths.ReportsDir); err != nil {
		return fmt.Errorf("exporting partner histories: %w", err)
	}

	summaries := ds.partnerExporter.GeneratePartnerSummaries(dataset.Daily, dataset.Drops)
	if err := ds.partnerExporter.ExportPartnerSummary(summaries, "partner_summary.csv"); err != nil {
		return fmt.Errorf("exporting partner summary: %w", err)
	}

	if err := ds.dailyExporter.ExportDropEvents(dataset.Drops, ds.paths.DropsCSV); err != nil {
		return fmt.Errorf("exporting drop events: %w", err)
	}
	if err := ds.workbookExporter.ExportDropWorkbook(dataset, ds.paths.DropsWorkbook); err != nil {
		return fmt.Errorf("exporting drop workbook: %w", err)
	}

	ds.logger.InfoContext(ctx, "report export complete",
		slog.String("reports_dir", ds.paths.ReportsDir),
		slog.Int("daily_metrics", len(dataset.Daily)),
		slog.Int("drop_events", len(dataset.Drops)))

	return nil
}

// WriteDropWorkbook streams the Excel drop workbook for the current dataset
// to w. Used by the HTTP export endpoint.
func (ds *DataService) WriteDropWorkbook(ctx context.Context, w io.Writer) error {
	dataset, err := ds.Dataset(ctx)
	if err != nil {
		return err
	}
	return ds.workbookExporter.WriteDropWorkbook(dataset, w)
}

// ListReportFiles enumerates the exported report files currently on disk.
// It never runs the pipeline; an empty listing just means nothing has been
// exported yet.
func (ds *DataService) ListReportFiles(ctx context.Context) (*ReportListing, error) {
	combined, err := ds.discovery.FindCSVFiles(ds.paths.ReportsDir)
	if err != nil {
		return nil, fmt.Errorf("listing combined reports: %w", err)
	}
	daily, err := ds.discovery.FindCSVFiles(ds.paths.DailyReportsDir)
	if err != nil {
		return nil, fmt.Errorf("listing daily reports: %w", err)
	}
	drops, err := ds.discovery.FindCSVFiles(ds.paths.DropReportsDir)
	if err != nil {
		return nil, fmt.Errorf("listing drop reports: %w", err)
	}
	workbooks, err := ds.discovery.FindWorkbookFiles(ds.paths.DropReportsDir)
	if err != nil {
		return nil, fmt.Errorf("listing drop workbooks: %w", err)
	}

	return &ReportListing{
		Combined:  combined,
		Daily:     daily,
		Drops:     drops,
		Workbooks: workbooks,
	}, nil
}

func (ds *DataService) partnerExists(dataset *domain.Dataset, partnerID string) bool {
	for _, p := range dataset.Partners() {
		if p == partnerID {
			return true
		}
	}
	return false
}
