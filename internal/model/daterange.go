package model

import "time"

// DateRange is a half-open stay interval [Start, End).
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewDateRange normalizes both ends to calendar days.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: Day(start), End: Day(end)}
}

// Valid reports whether Start strictly precedes End.
func (r DateRange) Valid() bool {
	return r.Start.Before(r.End)
}

// Overlaps reports whether r and o share at least one instant.
// Touching ranges (one ends when the other starts) do not overlap.
func (r DateRange) Overlaps(o DateRange) bool {
	return r.Start.Before(o.End) && o.Start.Before(r.End)
}

// Nights is the number of nights covered by the range.
func (r DateRange) Nights() int {
	if !r.Valid() {
		return 0
	}
	return int(r.End.Sub(r.Start).Hours() / 24)
}
