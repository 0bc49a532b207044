package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	apperrors "ctrwatch/internal/errors"
	"ctrwatch/pkg/contracts/domain"
)

// requiredColumns are the header names the loader refuses to run without.
var requiredColumns = []string{
	"partner_id", "campaign_id", "timestamp", "clicks", "impressions", "ad_slot",
}

// ParseFile reads a campaign log CSV and returns its rows as raw text.
// Header lookup is by column name, so column order in the file is free.
// A missing required column or an unreadable file is a structural error and
// aborts the run; everything below the header row is taken as-is.
func ParseFile(filePath string) ([]domain.LogRow, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, apperrors.NewStructuralError(
			fmt.Sprintf("failed to open campaign log %s", filePath), err)
	}
	defer f.Close()

	return ParseReader(f)
}

// ParseReader reads campaign log rows from r. Split out from ParseFile so
// tests and HTTP uploads can feed in-memory data.
func ParseReader(r io.Reader) ([]domain.LogRow, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	// Ragged rows are a value problem, not a structural one: short records
	// read as missing cells and the cleaning stage deals with them.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.NewStructuralError("failed to read CSV header", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	for _, required := range requiredColumns {
		if _, ok := columns[required]; !ok {
			return nil, apperrors.NewStructuralError(
				fmt.Sprintf("required column %q missing from header", required), nil)
		}
	}

	cell := func(record []string, name string) string {
		idx := columns[name]
		if idx >= len(record) {
			return ""
		}
		return record[idx]
	}

	var rows []domain.LogRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewStructuralError("failed to read CSV record", err)
		}

		rows = append(rows, domain.LogRow{
			PartnerID:   cell(record, "partner_id"),
			CampaignID:  cell(record, "campaign_id"),
			Timestamp:   cell(record, "timestamp"),
			Impressions: cell(record, "impressions"),
			Clicks:      cell(record, "clicks"),
			AdSlot:      cell(record, "ad_slot"),
		})
	}

	return rows, nil
}
