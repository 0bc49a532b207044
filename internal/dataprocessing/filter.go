package dataprocessing

import (
	"ctrwatch/pkg/contracts/domain"
)

// FilterServed applies the served-impression business rule to a cleaned
// batch, in order:
//
//  1. impressions must be present and positive, otherwise the row is
//     discarded outright - a row with clicks but no impressions is invalid
//     telemetry, not a candidate for zero-filling;
//  2. once impressions pass, missing clicks default to 0;
//  3. the date must be present, otherwise the row is discarded.
//
// Exclusions here are normal data shape, so they are silent: no diagnostic
// is emitted for a dropped row. Every surviving row has positive
// impressions, non-negative clicks and a valid date.
func FilterServed(rows []domain.CleanedRow) []domain.ServedRow {
	served := make([]domain.ServedRow, 0, len(rows))

	for _, row := range rows {
		if row.Impressions == nil || *row.Impressions <= 0 {
			continue
		}

		clicks := 0.0
		if row.Clicks != nil {
			clicks = *row.Clicks
		}

		if row.Date == nil {
			continue
		}

		served = append(served, domain.ServedRow{
			PartnerID:   row.PartnerID,
			CampaignID:  row.CampaignID,
			AdSlot:      row.AdSlot,
			Date:        *row.Date,
			Impressions: *row.Impressions,
			Clicks:      clicks,
		})
	}

	return served
}
