package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileInfo describes a discovered report file.
type FileInfo struct {
	Path    string    `json:"path"`
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Discovery provides report file discovery rooted at a base directory.
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindCSVFiles finds all CSV files in the specified directory, sorted by
// name. A missing directory yields an empty result, not an error: reports
// that were never exported simply do not exist yet.
func (d *Discovery) FindCSVFiles(dir string) ([]FileInfo, error) {
	return d.findByExtension(dir, ".csv")
}

// FindWorkbookFiles finds all Excel workbooks in the specified directory,
// sorted by name.
func (d *Discovery) FindWorkbookFiles(dir string) ([]FileInfo, error) {
	return d.findByExtension(dir, ".xlsx")
}

func (d *Discovery) findByExtension(dir, ext string) ([]FileInfo, error) {
	fullPath := dir
	if !filepath.IsAbs(dir) {
		fullPath = filepath.Join(d.basePath, dir)
	}

	entries, err := os.ReadDir(fullPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasSuffix(strings.ToLower(name), ext) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}

// FindDailyReportFiles finds per-day metric files (ctr_daily_YYYY_MM_DD.csv)
// keyed by their date string. Exports use the keys to skip days that are
// already on disk.
func (d *Discovery) FindDailyReportFiles(dir string) (map[string]FileInfo, error) {
	files, err := d.FindCSVFiles(dir)
	if err != nil {
		return nil, err
	}

	dailyFiles := make(map[string]FileInfo)
	for _, file := range files {
		if strings.HasPrefix(file.Name, "ctr_daily_") && strings.HasSuffix(file.Name, ".csv") {
			dateStr := strings.TrimPrefix(file.Name, "ctr_daily_")
			dateStr = strings.TrimSuffix(dateStr, ".csv")
			dailyFiles[dateStr] = file
		}
	}

	return dailyFiles, nil
}

// GetLatestFile returns the most recently modified file from a list
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if file.ModTime.After(latest.ModTime) {
			latest = file
		}
	}

	return latest, true
}
