package dataprocessing

import (
	"time"
)

// DateParser parses raw timestamp strings by trying a fixed list of layouts
// in order. Each value is evaluated independently - there is no column-wide
// format lock, so one column may legitimately mix "2024-03-05" and
// "05/03/2024" style rows.
type DateParser struct {
	layouts []string
}

// NewDateParser creates a date parser over the given Go time layouts,
// tried in order.
func NewDateParser(layouts []string) *DateParser {
	return &DateParser{layouts: layouts}
}

// Parse attempts each configured layout in order and returns the first
// match, truncated to a calendar date in UTC. The second return value is
// false when no layout matches.
func (p *DateParser) Parse(raw string) (time.Time, bool) {
	for _, layout := range p.layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
