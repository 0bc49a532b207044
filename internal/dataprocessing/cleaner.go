package dataprocessing

import (
	"log/slog"
	"math"
	"strconv"
	"strings"

	"ctrwatch/pkg/contracts/domain"
)

// CleanerConfig holds the data tables driving the cleaning stage.
type CleanerConfig struct {
	// MissingTokens are cell values treated as missing after trimming.
	// Matching is exact and case-sensitive.
	MissingTokens []string
	// PartnerAliases maps pre-normalized misspellings to canonical ids.
	PartnerAliases map[string]string
	// CanonicalPartners is the recognized partner roster.
	CanonicalPartners []string
	// DateFormats are timestamp layouts tried in order.
	DateFormats []string
}

// Cleaner turns raw log rows into typed cleaned rows. Cleaning is lossless
// with respect to row count: anomalous values become nil fields plus batch
// diagnostics, rows are never dropped here.
type Cleaner struct {
	logger     *slog.Logger
	normalizer *Normalizer
	dates      *DateParser
	missing    map[string]bool
}

// NewCleaner creates a cleaner over the given data tables.
func NewCleaner(logger *slog.Logger, cfg CleanerConfig) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}

	missing := make(map[string]bool, len(cfg.MissingTokens))
	for _, token := range cfg.MissingTokens {
		missing[token] = true
	}

	return &Cleaner{
		logger:     logger.With(slog.String("component", "cleaner")),
		normalizer: NewNormalizer(cfg.PartnerAliases, cfg.CanonicalPartners),
		dates:      NewDateParser(cfg.DateFormats),
		missing:    missing,
	}
}

// Clean processes one complete batch of raw rows. It returns one cleaned row
// per input row plus at most one diagnostic per anomaly kind, each listing
// the distinct offending input values.
func (c *Cleaner) Clean(rows []domain.LogRow) ([]domain.CleanedRow, []domain.Diagnostic) {
	cleaned := make([]domain.CleanedRow, 0, len(rows))
	unrecognized := make(map[string]bool)
	unparseable := make(map[string]bool)

	for _, row := range rows {
		out := domain.CleanedRow{
			CampaignID: c.cell(row.CampaignID),
			AdSlot:     c.cell(row.AdSlot),
		}

		// Partner id: missing stays empty and is not an anomaly; anything
		// else is normalized and checked against the canonical set.
		if raw := c.cell(row.PartnerID); raw != "" {
			id, known := c.normalizer.Normalize(raw)
			out.PartnerID = id
			if !known {
				unrecognized[id] = true
			}
		}

		// Timestamp: missing stays nil silently; a present value that
		// matches neither layout is an anomaly worth reporting.
		if raw := c.cell(row.Timestamp); raw != "" {
			if date, ok := c.dates.Parse(raw); ok {
				out.Date = &date
			} else {
				unparseable[raw] = true
			}
		}

		out.Impressions = c.number(row.Impressions)
		out.Clicks = c.number(row.Clicks)

		cleaned = append(cleaned, out)
	}

	var diagnostics []domain.Diagnostic
	if len(unrecognized) > 0 {
		values := distinctSorted(unrecognized)
		c.logger.Warn("unrecognized partner ids in batch",
			slog.Int("count", len(values)),
			slog.Any("values", values))
		diagnostics = append(diagnostics, domain.Diagnostic{
			Kind:   domain.DiagnosticUnrecognizedPartner,
			Values: values,
		})
	}
	if len(unparseable) > 0 {
		values := distinctSorted(unparseable)
		c.logger.Warn("unparseable timestamps in batch",
			slog.Int("count", len(values)),
			slog.Any("values", values))
		diagnostics = append(diagnostics, domain.Diagnostic{
			Kind:   domain.DiagnosticUnparseableTimestamp,
			Values: values,
		})
	}

	return cleaned, diagnostics
}

// cell trims a raw cell and collapses missing tokens to the empty string.
func (c *Cleaner) cell(raw string) string {
	s := strings.TrimSpace(raw)
	if c.missing[s] {
		return ""
	}
	return s
}

// number coerces a numeric-like cell. Missing, unparseable and negative
// values all become nil; counts below zero are invalid telemetry. ParseFloat
// also accepts "NaN" and "Inf" tokens, which pandas writes for missing
// values, so non-finite results are nulled too.
func (c *Cleaner) number(raw string) *float64 {
	s := c.cell(raw)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
