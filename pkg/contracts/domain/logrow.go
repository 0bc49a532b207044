package domain

import (
	"time"
)

// LogRow represents a single ad-serving log row exactly as read from the
// source file. Every field is kept as raw text; cleaning happens downstream.
type LogRow struct {
	PartnerID   string `json:"partner_id"`
	CampaignID  string `json:"campaign_id"`
	Timestamp   string `json:"timestamp"`
	Impressions string `json:"impressions"`
	Clicks      string `json:"clicks"`
	AdSlot      string `json:"ad_slot"`
}

// CleanedRow is a LogRow after normalization and type coercion. Nil pointers
// mark values that were missing or could not be coerced; the row itself is
// never dropped at this stage, so cleaned output has the same row count as
// the raw input.
type CleanedRow struct {
	PartnerID   string     `json:"partner_id"`
	CampaignID  string     `json:"campaign_id"`
	AdSlot      string     `json:"ad_slot"`
	Date        *time.Time `json:"date"`
	Impressions *float64   `json:"impressions"`
	Clicks      *float64   `json:"clicks"`
}

// ServedRow is a CleanedRow that passed the served-impression rule:
// Impressions > 0, Clicks >= 0 (defaulted to 0 when originally missing) and
// Date is a valid calendar date.
type ServedRow struct {
	PartnerID   string    `json:"partner_id"`
	CampaignID  string    `json:"campaign_id"`
	AdSlot      string    `json:"ad_slot"`
	Date        time.Time `json:"date"`
	Impressions float64   `json:"impressions"`
	Clicks      float64   `json:"clicks"`
}
