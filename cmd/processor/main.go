package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"ctrwatch/internal/config"
	apierrors "ctrwatch/internal/errors"
	"ctrwatch/internal/infrastructure"
	"ctrwatch/internal/services"
	"ctrwatch/internal/validation"
)

func main() {
	inFile := flag.String("in", "", "campaign log CSV (defaults to the configured source file)")
	outDir := flag.String("out", "", "output directory for reports (defaults to data/reports relative to executable)")
	fullRework := flag.Bool("full", false, "rewrite per-day report files that already exist")
	flag.Parse()

	paths, err := config.GetPaths()
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = fallbackConfig(paths)
	}

	if *inFile != "" {
		abs, err := filepath.Abs(*inFile)
		if err != nil {
			slog.Error("Invalid input path", "error", err)
			os.Exit(1)
		}
		cfg.Pipeline.SourceFile = abs
	}
	if *outDir != "" {
		paths = rebaseReports(paths, *outDir)
	}

	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	logger.Info("Starting campaign log processing",
		slog.String("source_file", cfg.GetSourceFile()),
		slog.String("reports_dir", paths.ReportsDir))

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateSourceLog(cfg.GetSourceFile()); err != nil {
		logger.Error("Campaign log validation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := validator.ValidateOutputDirectory(paths.ReportsDir); err != nil {
		logger.Error("Reports directory validation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Batch runs get a trace id too, so their log lines correlate.
	ctx := infrastructure.EnsureTraceID(context.Background())

	if err := run(ctx, cfg, paths, logger, *fullRework); err != nil {
		logger.Error("Processing failed", slog.String("error", err.Error()))
		if apierrors.IsStructural(err) {
			fmt.Fprintf(os.Stderr, "campaign log is malformed: %v\n", err)
		}
		os.Exit(1)
	}
}

// run executes the cleaning pipeline once and writes the report set. The
// default run skips per-day files that are already on disk; full rewrites
// everything.
func run(ctx context.Context, cfg *config.Config, paths *config.Paths, logger *slog.Logger, full bool) error {
	service := services.NewDataServiceWithPaths(cfg, paths, nil, logger)

	dataset, err := service.Dataset(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Loaded %d rows from %s\n", len(dataset.Cleaned), dataset.SourcePath)
	fmt.Printf("Served rows: %d\n", len(dataset.Served))
	fmt.Printf("Daily metrics: %d across %d partners\n", len(dataset.Daily), len(dataset.Partners()))
	fmt.Printf("Drop events: %d\n", len(dataset.Drops))
	for _, diag := range dataset.Diagnostics {
		fmt.Printf("Warning: %s: %v\n", diag.Kind, diag.Values)
	}

	exportFn := service.ExportReportsIncremental
	if full {
		exportFn = service.ExportReports
	}
	if err := exportFn(ctx); err != nil {
		return err
	}

	fmt.Printf("Reports written to %s\n", paths.ReportsDir)
	return nil
}

// fallbackConfig covers running the processor without a config file or
// CTRW_* environment, e.g. ad hoc against an explicit -in file.
func fallbackConfig(paths *config.Paths) *config.Config {
	cfg := &config.Config{}
	cfg.Logging = config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "both",
		FilePath: filepath.Join(paths.LogsDir, "processor.log"),
	}
	cfg.Paths.ExecutableDir = paths.ExecutableDir
	cfg.Pipeline.SourceFile = "data/sample_campaign_logs.csv"
	cfg.Pipeline.MissingTokens = []string{"", "NULL", "null", "N/A", "NA"}
	cfg.Pipeline.PartnerAliases = config.DefaultPartnerAliases()
	cfg.Pipeline.CanonicalPartners = config.DefaultCanonicalPartners()
	cfg.Pipeline.DateFormats = config.DefaultDateFormats()
	return cfg
}

// rebaseReports points every report path at outDir while leaving the data
// and log directories alone.
func rebaseReports(paths *config.Paths, outDir string) *config.Paths {
	rebased := *paths
	rebased.ReportsDir = outDir
	rebased.DailyReportsDir = filepath.Join(outDir, "daily")
	rebased.DropReportsDir = filepath.Join(outDir, "drops")
	rebased.DropsCSV = filepath.Join(outDir, "drops", "ctr_drops.csv")
	rebased.DropsWorkbook = filepath.Join(outDir, "drops", "ctr_drop_report.xlsx")
	return &rebased
}
