// Package dataprocessing implements the campaign-log cleaning and
// drop-classification pipeline.
//
// The pipeline is a strict top-to-bottom batch transform:
//
//	raw CSV rows -> cleaned rows -> served rows -> daily metrics -> drop events
//
// Cleaning never changes the row count; the served-impression rule is the
// only stage that discards rows. Value-level anomalies (unrecognized partner
// ids, unparseable timestamps, non-numeric counts) null the affected field
// and surface as advisory domain.Diagnostics - they never fail a run. Only
// structural problems (unreadable file, missing required column) abort.
//
// None of the components hold cross-call state; each is a pure function over
// its complete input batch. The Cache type memoizes the load+clean step per
// source file for repeated interactive use without changing observable
// output.
package dataprocessing
