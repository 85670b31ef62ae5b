// internal/dates/dates.go
package dates

import "time"

// AddOneMonth returns the date one calendar month after d. The day of the
// month is preserved unless the target month is shorter, in which case the
// result clamps to the last day of that month (Jan 31 -> Feb 28/29,
// Mar 31 -> Apr 30). Billing cadence depends on this clamping rule: adding a
// fixed number of days would drift the cycle.
func AddOneMonth(d time.Time) time.Time {
	year, month, day := d.Date()
	hour, min, sec := d.Clock()

	// time.Date normalizes month+1 overflow (December rolls into January).
	firstOfNext := time.Date(year, month+1, 1, 0, 0, 0, 0, d.Location())
	if last := DaysIn(firstOfNext.Year(), firstOfNext.Month()); day > last {
		day = last
	}
	return time.Date(firstOfNext.Year(), firstOfNext.Month(), day, hour, min, sec, d.Nanosecond(), d.Location())
}

// AddDays returns the date n calendar days after d (n may be negative).
func AddDays(d time.Time, n int) time.Time {
	return d.AddDate(0, 0, n)
}

// SameDay reports whether a and b fall on the same calendar date, ignoring
// time of day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Midnight truncates t to midnight UTC. Stored billing dates are date-only
// values normalized this way.
func Midnight(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
