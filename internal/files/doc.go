// Package files discovers generated report files on disk. The exporters
// write per-day CSVs, partner histories and drop workbooks under the
// reports tree; this package finds them again for the report-listing API
// and for skipping already-exported days.
package files
