package domain

import "time"

// WindowSummary is the result of one closed aggregation window: the count
// of distinct vessels seen per category. Every category in Categories is
// present, zero-filled when unseen. Immutable once built.
type WindowSummary struct {
	Start  time.Time        `json:"window_start"`
	End    time.Time        `json:"window_end"`
	Counts map[Category]int `json:"counts"`
}

// NewWindowSummary builds a summary from per-category membership sets,
// filling in zeroes for categories with no members.
func NewWindowSummary(start, end time.Time, membership map[Category]map[int64]struct{}) WindowSummary {
	counts := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		counts[c] = len(membership[c])
	}
	return WindowSummary{Start: start, End: end, Counts: counts}
}

// TotalVessels sums the per-category counts.
func (s WindowSummary) TotalVessels() int {
	total := 0
	for _, n := range s.Counts {
		total += n
	}
	return total
}
