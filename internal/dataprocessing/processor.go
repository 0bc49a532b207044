package dataprocessing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"ctrwatch/internal/infrastructure"
	"ctrwatch/pkg/contracts/domain"
)

// Processor orchestrates the full cleaning and classification pipeline over
// one campaign log file. It holds no cross-run state: every Run is an
// independent, idempotent batch over its complete input.
type Processor struct {
	logger  *slog.Logger
	cleaner *Cleaner
	metrics *infrastructure.BusinessMetrics
}

// NewProcessor creates a pipeline processor over the given cleaning tables.
// metrics may be nil when observability is not wired (CLI runs, tests).
func NewProcessor(logger *slog.Logger, cfg CleanerConfig, metrics *infrastructure.BusinessMetrics) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		logger:  logger.With(slog.String("component", "processor")),
		cleaner: NewCleaner(logger, cfg),
		metrics: metrics,
	}
}

// Run executes the pipeline over the campaign log at filePath.
// Structural problems abort with an error; value-level anomalies surface as
// diagnostics on the returned dataset.
func (p *Processor) Run(ctx context.Context, filePath string) (*domain.Dataset, error) {
	start := time.Now()

	rows, err := ParseFile(filePath)
	if err != nil {
		infrastructure.RecordPipelineRun(ctx, p.metrics, filePath, time.Since(start), 0, 0, 0, 0, err)
		return nil, fmt.Errorf("loading campaign log: %w", err)
	}

	dataset := p.process(ctx, rows)
	dataset.SourcePath = filePath

	infrastructure.RecordPipelineRun(ctx, p.metrics, filePath, time.Since(start),
		len(dataset.Cleaned), len(dataset.Served), len(dataset.Diagnostics), len(dataset.Drops), nil)

	return dataset, nil
}

// RunReader executes the pipeline over an in-memory campaign log.
func (p *Processor) RunReader(ctx context.Context, r io.Reader) (*domain.Dataset, error) {
	rows, err := ParseReader(r)
	if err != nil {
		return nil, fmt.Errorf("loading campaign log: %w", err)
	}
	return p.process(ctx, rows), nil
}

func (p *Processor) process(ctx context.Context, rows []domain.LogRow) *domain.Dataset {
	cleaned, diagnostics := p.cleaner.Clean(rows)
	served := FilterServed(cleaned)
	daily := AggregateDaily(served)
	drops := ClassifyDrops(daily)

	p.logger.InfoContext(ctx, "pipeline run complete",
		slog.Int("raw_rows", len(rows)),
		slog.Int("served_rows", len(served)),
		slog.Int("daily_metrics", len(daily)),
		slog.Int("drop_events", len(drops)),
		slog.Int("diagnostics", len(diagnostics)))

	return &domain.Dataset{
		LoadedAt:    time.Now().UTC(),
		Cleaned:     cleaned,
		Served:      served,
		Daily:       daily,
		Drops:       drops,
		Diagnostics: diagnostics,
	}
}
