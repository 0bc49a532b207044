package domain

import (
	"time"
)

// DiagnosticKind identifies a class of value-level anomaly seen while
// cleaning a batch.
type DiagnosticKind string

const (
	// DiagnosticUnrecognizedPartner reports normalized partner ids that are
	// not in the canonical partner set. The rows are kept; the values get
	// their own partner bucket downstream.
	DiagnosticUnrecognizedPartner DiagnosticKind = "unrecognized_partner_id"

	// DiagnosticUnparseableTimestamp reports timestamp strings that matched
	// neither accepted date format.
	DiagnosticUnparseableTimestamp DiagnosticKind = "unparseable_timestamp"
)

// Diagnostic is an advisory warning produced while cleaning a batch. One
// Diagnostic is emitted per kind per run and lists the distinct offending
// input values, sorted. Diagnostics never fail a pipeline run.
type Diagnostic struct {
	Kind   DiagnosticKind `json:"kind"`
	Values []string       `json:"values"`
}

// Dataset bundles everything one pipeline run produces over a single input
// file. It is immutable once built; repeated runs over the same input yield
// the same Dataset (modulo LoadedAt).
type Dataset struct {
	SourcePath  string       `json:"source_path"`
	LoadedAt    time.Time    `json:"loaded_at"`
	Cleaned     []CleanedRow `json:"-"`
	Served      []ServedRow  `json:"-"`
	Daily       []DailyMetric `json:"daily"`
	Drops       []DropEvent   `json:"drops"`
	Diagnostics []Diagnostic  `json:"diagnostics"`
}

// Partners returns the distinct partner ids present in the daily metrics,
// in ascending order. The daily metrics are already sorted by
// (partner, date), so a single pass suffices.
func (d *Dataset) Partners() []string {
	var partners []string
	for _, m := range d.Daily {
		if len(partners) == 0 || partners[len(partners)-1] != m.PartnerID {
			partners = append(partners, m.PartnerID)
		}
	}
	return partners
}
