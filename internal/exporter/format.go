package exporter

import (
	"fmt"
	"strconv"
)

// formatCount formats a summed click or impression count for CSV output.
// Counts read from the log are whole numbers, but the column is float-typed,
// so trim the representation rather than forcing decimals.
func formatCount(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatRatio formats a CTR value with 6 decimal places. CTRs for small
// partners sit well below 0.01, so 2 places would flatten real movement.
func formatRatio(f float64) string {
	return fmt.Sprintf("%.6f", f)
}

// formatPercent formats a signed fractional change as a percentage with
// 2 decimal places, e.g. -0.25 -> "-25.00%".
func formatPercent(f float64) string {
	return fmt.Sprintf("%.2f%%", f*100)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}
