package dataprocessing

import (
	"ctrwatch/pkg/contracts/domain"
)

// Drop classification thresholds, evaluated on the signed day-over-day
// change so only declines qualify. Boundaries are inclusive and the most
// severe tier wins.
const (
	dropThreshold30 = -0.30
	dropThreshold20 = -0.20
	dropThreshold10 = -0.10
)

// ClassifyDrops walks each partner's daily metrics in date order and flags
// day-over-day CTR declines. The comparison baseline is the previous row
// PRESENT in that partner's sequence - a gap of several calendar days
// between two rows is still "previous", with no interpolation. The first
// row of a partner's sequence has no baseline and can never be an event.
//
// metrics must already be ordered by (partner, date) ascending, which is
// what AggregateDaily produces.
func ClassifyDrops(metrics []domain.DailyMetric) []domain.DropEvent {
	var events []domain.DropEvent

	for i := 1; i < len(metrics); i++ {
		prev, cur := metrics[i-1], metrics[i]
		if prev.PartnerID != cur.PartnerID {
			continue
		}

		// A zero baseline leaves the percentage change undefined; an
		// undefined change is never a drop.
		if prev.CTR == 0 {
			continue
		}

		pctChange := (cur.CTR - prev.CTR) / prev.CTR

		severity, ok := classifySeverity(pctChange)
		if !ok {
			continue
		}

		events = append(events, domain.DropEvent{
			PartnerID: cur.PartnerID,
			Date:      cur.Date,
			CTRBefore: prev.CTR,
			CTRAfter:  cur.CTR,
			PctChange: pctChange,
			Severity:  severity,
		})
	}

	return events
}

// classifySeverity maps a signed percentage change to a drop tier. Changes
// above -10% (including improvements) yield no event.
func classifySeverity(pctChange float64) (domain.DropSeverity, bool) {
	switch {
	case pctChange <= dropThreshold30:
		return domain.DropSeverity30, true
	case pctChange <= dropThreshold20:
		return domain.DropSeverity20, true
	case pctChange <= dropThreshold10:
		return domain.DropSeverity10, true
	default:
		return "", false
	}
}
