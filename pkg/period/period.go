// Package period derives leaderboard bucket keys and their calendar windows
// from a point in time. All derivation is done on the UTC instant; weekly
// periods follow ISO 8601 week numbering, so a date near the year boundary can
// land in a week of the other year (2024-12-30 is in 2025-W01).
package period

import (
	"fmt"
	"time"
)

const (
	MetricPoints = "points"

	AllTime = "alltime"

	// Period buckets expire after 180 days; the alltime bucket never does.
	BucketTTL = 180 * 24 * time.Hour
)

// Window is a half-open time range [Start, End). A zero Window means
// unbounded (alltime).
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) IsUnbounded() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

func (w Window) Contains(t time.Time) bool {
	if w.IsUnbounded() {
		return true
	}
	return !t.Before(w.Start) && t.Before(w.End)
}

// AllTimeKey returns the constant alltime period identifier.
func AllTimeKey() string {
	return AllTime
}

// DailyKey returns the period identifier for the UTC calendar date of t,
// e.g. "daily:2025-11-11".
func DailyKey(t time.Time) string {
	return "daily:" + t.UTC().Format("2006-01-02")
}

// WeeklyKey returns the period identifier for the ISO week containing t,
// zero-padded, e.g. "weekly:2025-W01".
func WeeklyKey(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("weekly:%04d-W%02d", year, week)
}

// MonthlyKey returns the period identifier for the UTC calendar month of t,
// e.g. "monthly:2025-11".
func MonthlyKey(t time.Time) string {
	u := t.UTC()
	return fmt.Sprintf("monthly:%04d-%02d", u.Year(), int(u.Month()))
}

// BucketKey composes the full ranked-set key for a metric and period,
// e.g. "leaderboard:points:weekly:2025-W45".
func BucketKey(metric string, periodKey string) string {
	return fmt.Sprintf("leaderboard:%s:%s", metric, periodKey)
}

// KeysFor returns the four bucket keys a transaction at time t contributes
// to: alltime, daily, weekly and monthly, in that order.
func KeysFor(metric string, t time.Time) []string {
	return []string{
		BucketKey(metric, AllTimeKey()),
		BucketKey(metric, DailyKey(t)),
		BucketKey(metric, WeeklyKey(t)),
		BucketKey(metric, MonthlyKey(t)),
	}
}

// DayWindow returns the window covering the UTC calendar date of t.
func DayWindow(t time.Time) Window {
	u := t.UTC()
	start := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return Window{Start: start, End: start.AddDate(0, 0, 1)}
}

// ISOWeekWindow returns the window covering the ISO week containing t,
// Monday 00:00:00 UTC through the following Monday (exclusive).
func ISOWeekWindow(t time.Time) Window {
	monday := MondayOf(t)
	return Window{Start: monday, End: monday.AddDate(0, 0, 7)}
}

// MonthWindow returns the window covering the UTC calendar month of t.
func MonthWindow(t time.Time) Window {
	u := t.UTC()
	start := time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Window{Start: start, End: start.AddDate(0, 1, 0)}
}

// MondayOf returns midnight UTC of the Monday of the ISO week containing t.
func MondayOf(t time.Time) time.Time {
	u := t.UTC()
	day := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	// time.Weekday numbers Sunday as 0; ISO weeks start on Monday.
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// ParseDate parses a YYYY-MM-DD date string as midnight UTC.
func ParseDate(dateIso string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", dateIso)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date '%s': expected YYYY-MM-DD", dateIso)
	}
	return t, nil
}
