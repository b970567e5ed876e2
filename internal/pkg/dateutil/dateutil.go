package dateutil

import (
	"time"
)

const DayLayout = "2006-01-02"

// Clock abstracts the wall clock so services can be driven by tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time { return c.At }

// DayKey returns the calendar day containing t as seen in loc,
// normalised to midnight UTC so it compares and stores as a plain date.
func DayKey(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekdayName returns the English weekday name of a day key, e.g. "Monday".
func WeekdayName(day time.Time) string {
	return day.Weekday().String()
}

func IsSunday(day time.Time) bool {
	return day.Weekday() == time.Sunday
}

// EachDay enumerates every calendar day in [start, end] inclusive.
// An end before start yields nil.
func EachDay(start, end time.Time) []time.Time {
	start = DayKey(start, time.UTC)
	end = DayKey(end, time.UTC)
	if end.Before(start) {
		return nil
	}

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// ParseDay parses a YYYY-MM-DD string into a day key.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DayLayout, s, time.UTC)
}

func FormatDay(day time.Time) string {
	return day.Format(DayLayout)
}

// MonthRange returns the first and last day of a month.
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}

// YearRange returns the first and last day of a year.
func YearRange(year int) (time.Time, time.Time) {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
}

// MinutesBetween is floor((to - from) / 1 minute). Negative spans return 0.
func MinutesBetween(from, to time.Time) int {
	d := to.Sub(from)
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}
