// Package dates answers boundary and membership questions about calendar
// periods relative to a caller-supplied reference time. Every function is pure:
// the reference time is always an explicit parameter, never the system clock,
// so period logic is deterministic under test.
//
// Weeks run Sunday through Saturday. Months and quarters follow calendar
// semantics (a leap-year February ends on the 29th), never elapsed-hour
// arithmetic.
package dates

import "time"

// Range is an inclusive calendar period. Start is the first instant of the
// first day, End the last instant of the last day, both in the reference
// time's location.
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether d falls inside the range.
func (r Range) Contains(d time.Time) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// startOfDay truncates t to midnight in its own location.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// endOfDay returns the last nanosecond of t's calendar day.
func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// WeekRange returns the Sunday-through-Saturday week containing now:
// the most recent Sunday at or before now through the following Saturday.
func WeekRange(now time.Time) Range {
	start := startOfDay(now).AddDate(0, 0, -int(now.Weekday()))
	end := endOfDay(start.AddDate(0, 0, 6))
	return Range{Start: start, End: end}
}

// MonthRange returns the first through last calendar day of now's month.
func MonthRange(now time.Time) Range {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	// Day zero of the next month normalizes to this month's last day.
	end := endOfDay(time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()))
	return Range{Start: start, End: end}
}

// QuarterRange returns the fixed three-month block containing now. Quarters
// start in January, April, July and October.
func QuarterRange(now time.Time) Range {
	quarterStart := time.Month((int(now.Month())-1)/3*3 + 1)
	start := time.Date(now.Year(), quarterStart, 1, 0, 0, 0, 0, now.Location())
	end := endOfDay(time.Date(now.Year(), quarterStart+3, 0, 0, 0, 0, 0, now.Location()))
	return Range{Start: start, End: end}
}

// InCurrentWeek reports whether d falls in the week containing now. Agrees
// with WeekRange for every input.
func InCurrentWeek(d, now time.Time) bool {
	return WeekRange(now).Contains(d)
}

// InCurrentMonth reports whether d falls in the month containing now.
func InCurrentMonth(d, now time.Time) bool {
	return d.Year() == now.Year() && d.Month() == now.Month()
}

// InCurrentQuarter reports whether d falls in the quarter containing now.
func InCurrentQuarter(d, now time.Time) bool {
	return d.Year() == now.Year() && (int(d.Month())-1)/3 == (int(now.Month())-1)/3
}

// RangeFor resolves a named time range key against the reference time. The
// second return is false for unknown keys and for "all", where no date
// restriction applies.
func RangeFor(timeRange string, now time.Time) (Range, bool) {
	switch timeRange {
	case "week":
		return WeekRange(now), true
	case "month":
		return MonthRange(now), true
	case "quarter":
		return QuarterRange(now), true
	default:
		return Range{}, false
	}
}

// DayKey formats d's calendar date as the YYYY-MM-DD bucket key used by the
// weekly breakdown.
func DayKey(d time.Time) string {
	return d.Format("2006-01-02")
}
