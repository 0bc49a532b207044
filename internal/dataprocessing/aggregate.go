package dataprocessing

import (
	"sort"
	"time"

	"ctrwatch/pkg/contracts/domain"
)

// metricKey identifies one (partner, date) aggregation bucket.
type metricKey struct {
	partnerID string
	date      time.Time
}

// AggregateDaily groups served rows by (partner, date), sums clicks and
// impressions per group and computes CTR = clicks/impressions. The filter
// stage guarantees every contributing row has impressions > 0, so the group
// sum is positive and the division is always defined.
//
// Rows with a missing partner id carry no identity to group under and are
// skipped. Output is ordered by (partner, date) ascending for sequential
// downstream processing.
func AggregateDaily(rows []domain.ServedRow) []domain.DailyMetric {
	buckets := make(map[metricKey]*domain.DailyMetric)

	for _, row := range rows {
		if row.PartnerID == "" {
			continue
		}

		key := metricKey{partnerID: row.PartnerID, date: row.Date}
		m, ok := buckets[key]
		if !ok {
			m = &domain.DailyMetric{PartnerID: row.PartnerID, Date: row.Date}
			buckets[key] = m
		}
		m.Clicks += row.Clicks
		m.Impressions += row.Impressions
	}

	metrics := make([]domain.DailyMetric, 0, len(buckets))
	for _, m := range buckets {
		m.CTR = m.Clicks / m.Impressions
		metrics = append(metrics, *m)
	}

	sort.Slice(metrics, func(i, j int) bool {
		if metrics[i].PartnerID != metrics[j].PartnerID {
			return metrics[i].PartnerID < metrics[j].PartnerID
		}
		return metrics[i].Date.Before(metrics[j].Date)
	})

	return metrics
}
