// Command validate prints an exploratory profile of a raw campaign log:
// the sorted distinct values of each categorical column and the missing
// counts of the numeric columns. It reads the file as text and applies no
// cleaning, so the output shows exactly what the pipeline will face.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"ctrwatch/internal/config"
	"ctrwatch/internal/dataprocessing"
	"ctrwatch/internal/validation"
	"ctrwatch/pkg/contracts/domain"
)

// The validator is deliberately stricter about missingness than the
// pipeline: it also flags lowercase "na" and "--" so that new token
// spellings surface here before they skew the cleaned numbers.
var missingTokens = []string{"", "NULL", "null", "N/A", "NA", "na", "--"}

var categoricalColumns = []string{"partner_id", "campaign_id", "timestamp", "ad_slot"}

var numericColumns = []string{"clicks", "impressions"}

func main() {
	inFile := flag.String("in", "", "campaign log CSV (defaults to the configured source file)")
	flag.Parse()

	path := *inFile
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			slog.Error("Failed to load config", "error", err)
			os.Exit(1)
		}
		path = cfg.GetSourceFile()
	}

	if err := validation.NewFileValidator(slog.Default()).ValidateSourceLog(path); err != nil {
		slog.Error("Campaign log validation failed", "path", path, "error", err)
		os.Exit(1)
	}

	rows, err := dataprocessing.ParseFile(path)
	if err != nil {
		slog.Error("Failed to parse campaign log", "path", path, "error", err)
		os.Exit(1)
	}

	report(os.Stdout, rows)
}

// report writes the column profile for the parsed rows.
func report(w io.Writer, rows []domain.LogRow) {
	for _, col := range categoricalColumns {
		values := uniqueValues(rows, col)
		fmt.Fprintf(w, "\n=== %s (%d unique) ===\n", col, len(values))
		for _, v := range values {
			fmt.Fprintf(w, "  %s\n", v)
		}
	}

	for _, col := range numericColumns {
		missing := missingCount(rows, col)
		total := len(rows)
		pct := 0.0
		if total > 0 {
			pct = float64(missing) / float64(total) * 100
		}
		fmt.Fprintf(w, "\n*** %s missing count: %d of %d rows (%.1f%%) ***\n", col, missing, total, pct)
	}
}

// uniqueValues returns the sorted distinct non-missing values of a column.
func uniqueValues(rows []domain.LogRow, column string) []string {
	seen := make(map[string]struct{})
	for _, row := range rows {
		v := strings.TrimSpace(columnValue(row, column))
		if isMissing(v) {
			continue
		}
		seen[v] = struct{}{}
	}

	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// missingCount counts rows whose column value is a missing token.
func missingCount(rows []domain.LogRow, column string) int {
	count := 0
	for _, row := range rows {
		if isMissing(strings.TrimSpace(columnValue(row, column))) {
			count++
		}
	}
	return count
}

func isMissing(value string) bool {
	for _, token := range missingTokens {
		if value == token {
			return true
		}
	}
	return false
}

func columnValue(row domain.LogRow, column string) string {
	switch column {
	case "partner_id":
		return row.PartnerID
	case "campaign_id":
		return row.CampaignID
	case "timestamp":
		return row.Timestamp
	case "clicks":
		return row.Clicks
	case "impressions":
		return row.Impressions
	case "ad_slot":
		return row.AdSlot
	default:
		return ""
	}
}
