package domain

import "time"

// WindowPolicy computes the half-open aggregation windows used for
// daily and monthly budget evaluation. The window strategy is pluggable;
// the default is UTC-calendar alignment.
type WindowPolicy interface {
	DayWindow(asOf time.Time) (start, end time.Time)
	MonthWindow(asOf time.Time) (start, end time.Time)
}

// CalendarUTCWindows aligns windows to UTC calendar boundaries:
// [midnight, midnight+24h) and [first-of-month, first-of-next-month).
// Calendar alignment keeps aggregates deterministic and auditable,
// unlike rolling windows.
type CalendarUTCWindows struct{}

func (CalendarUTCWindows) DayWindow(asOf time.Time) (time.Time, time.Time) {
	t := asOf.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour)
}

func (CalendarUTCWindows) MonthWindow(asOf time.Time) (time.Time, time.Time) {
	t := asOf.UTC()
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
