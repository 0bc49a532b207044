package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths is the single source of truth for file locations. Everything hangs
// off the executable directory, never the working directory, so the binaries
// behave the same no matter where they are launched from.
//
// Layout:
//
//	<exe dir>/
//	  config.yaml
//	  data/
//	    sample_campaign_logs.csv
//	    reports/daily/       per-day CTR reports
//	    reports/drops/       drop report CSV and workbook
//	    cache/               pipeline cache
//	  logs/
type Paths struct {
	ExecutableDir string
	DataDir       string
	ReportsDir    string
	CacheDir      string
	LogsDir       string

	DailyReportsDir string
	DropReportsDir  string

	// Well-known report files
	DropsCSV      string
	DropsWorkbook string
}

// GetPaths resolves the layout around the running executable.
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %v", err)
	}
	if exe, err = filepath.EvalSymlinks(exe); err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %v", err)
	}

	exeDir := filepath.Dir(exe)
	dataDir := filepath.Join(exeDir, "data")
	reportsDir := filepath.Join(dataDir, "reports")
	dropsDir := filepath.Join(reportsDir, "drops")

	return &Paths{
		ExecutableDir:   exeDir,
		DataDir:         dataDir,
		ReportsDir:      reportsDir,
		CacheDir:        filepath.Join(dataDir, "cache"),
		LogsDir:         filepath.Join(exeDir, "logs"),
		DailyReportsDir: filepath.Join(reportsDir, "daily"),
		DropReportsDir:  dropsDir,
		DropsCSV:        filepath.Join(dropsDir, "ctr_drops.csv"),
		DropsWorkbook:   filepath.Join(dropsDir, "ctr_drop_report.xlsx"),
	}, nil
}

// EnsureDirectories creates the full directory layout.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{
		p.DataDir, p.ReportsDir, p.CacheDir, p.LogsDir,
		p.DailyReportsDir, p.DropReportsDir,
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
	}
	return nil
}

// LogPathResolution logs the resolved layout at startup.
func (p *Paths) LogPathResolution() {
	slog.Default().Info("Resolved application paths",
		slog.Group("paths",
			slog.String("executable_dir", p.ExecutableDir),
			slog.String("data_dir", p.DataDir),
			slog.String("reports_dir", p.ReportsDir),
			slog.String("cache_dir", p.CacheDir),
			slog.String("logs_dir", p.LogsDir),
		),
	)
}

// FileExists reports whether path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
