// Package dateutil holds calendar-date helpers. Every value is normalized to
// midnight UTC so dates compare and subtract as whole days.
package dateutil

import (
	"time"
)

const Layout = "2006-01-02"

// MonthLabelLayout renders labels such as "June 2024".
const MonthLabelLayout = "January 2006"

func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Normalize strips the time of day, keeping the calendar date the value
// carries in its own location.
func Normalize(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return Date(t.Year(), t.Month(), t.Day())
}

func Parse(s string) (time.Time, error) {
	return time.ParseInLocation(Layout, s, time.UTC)
}

func Format(t time.Time) string {
	return t.Format(Layout)
}

func MonthLabel(t time.Time) string {
	return t.Format(MonthLabelLayout)
}

// InclusiveDays counts the days in [from, to]; zero when from is after to.
func InclusiveDays(from, to time.Time) int {
	from, to = Normalize(from), Normalize(to)
	if from.After(to) {
		return 0
	}
	return int(to.Sub(from).Hours()/24) + 1
}

// Each calls fn for every date in [from, to] in ascending order.
func Each(from, to time.Time, fn func(day time.Time)) {
	from, to = Normalize(from), Normalize(to)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		fn(d)
	}
}

func Max(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func Min(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// MonthBounds returns the first and last day of t's month.
func MonthBounds(t time.Time) (time.Time, time.Time) {
	first := Date(t.Year(), t.Month(), 1)
	return first, first.AddDate(0, 1, -1)
}
