package http

import (
	"context"
	"io"

	"ctrwatch/internal/exporter"
	"ctrwatch/internal/services"
	"ctrwatch/pkg/contracts/domain"
)

// DataServiceInterface defines the interface for dataset operations
type DataServiceInterface interface {
	GetSummary(ctx context.Context) (*services.DatasetSummary, error)
	GetDailyMetrics(ctx context.Context, partnerID string) ([]domain.DailyMetric, error)
	GetDropEvents(ctx context.Context, partnerID, severity string) ([]domain.DropEvent, error)
	GetPartners(ctx context.Context) ([]string, error)
	GetPartnerSummaries(ctx context.Context) ([]exporter.PartnerSummary, error)
	GetDiagnostics(ctx context.Context) ([]domain.Diagnostic, error)
	Refresh(ctx context.Context) (*domain.Dataset, error)
	ExportReports(ctx context.Context) error
	ListReportFiles(ctx context.Context) (*services.ReportListing, error)
	WriteDropWorkbook(ctx context.Context, w io.Writer) error
}
