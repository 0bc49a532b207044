package domain

import (
	"time"
)

// DateFormat is the canonical date string format used across reports and
// API responses.
const DateFormat = "2006-01-02"

// DailyMetric is the per-partner, per-date aggregate of served rows.
// (PartnerID, Date) is unique; CTR = Clicks / Impressions. Days with no
// served rows produce no metric - there is no gap filling.
type DailyMetric struct {
	PartnerID   string    `json:"partner_id"`
	Date        time.Time `json:"date"`
	Clicks      float64   `json:"clicks"`
	Impressions float64   `json:"impressions"`
	CTR         float64   `json:"ctr"`
}

// DropSeverity is a day-over-day CTR decline tier.
type DropSeverity string

const (
	DropSeverity10 DropSeverity = "10%"
	DropSeverity20 DropSeverity = "20%"
	DropSeverity30 DropSeverity = "30%"
)

// Valid reports whether s is one of the known severity tiers.
func (s DropSeverity) Valid() bool {
	switch s {
	case DropSeverity10, DropSeverity20, DropSeverity30:
		return true
	}
	return false
}

// DropEvent flags a day-over-day CTR decline of at least 10% for a partner.
// CTRBefore is the CTR of the previous date present in that partner's data,
// which may be more than one calendar day earlier.
type DropEvent struct {
	PartnerID string       `json:"partner_id"`
	Date      time.Time    `json:"date"`
	CTRBefore float64      `json:"ctr_before"`
	CTRAfter  float64      `json:"ctr_after"`
	PctChange float64      `json:"pct_change"`
	Severity  DropSeverity `json:"severity"`
}
