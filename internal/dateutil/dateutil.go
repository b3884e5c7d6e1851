// Package dateutil holds the calendar helpers shared by the session store,
// the aggregation engine and the leaderboard.
package dateutil

import "time"

// DayLayout is the storage format of a session's calendar day.
const DayLayout = "2006-01-02"

// DayKey returns the local calendar day of t as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

// ParseDay parses a YYYY-MM-DD key as midnight in loc.
func ParseDay(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(DayLayout, key, loc)
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// AddDays moves t by n calendar days. DST shifts do not change the day.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// Days enumerates the calendar days from..to inclusive, oldest first.
// It returns nil when to is before from.
func Days(from, to time.Time) []time.Time {
	start := StartOfDay(from)
	end := StartOfDay(to)
	if end.Before(start) {
		return nil
	}
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Trailing returns the last n calendar days ending on now's day, oldest first.
func Trailing(now time.Time, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	return Days(AddDays(now, -(n - 1)), now)
}

func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// StartOfWeek returns midnight of the first day of t's week.
func StartOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	day := StartOfDay(t)
	diff := (int(day.Weekday()) - int(weekStart) + 7) % 7
	return day.AddDate(0, 0, -diff)
}

// SameWeek reports whether a and b fall in the same calendar week.
func SameWeek(a, b time.Time, weekStart time.Weekday) bool {
	return StartOfWeek(a, weekStart).Equal(StartOfWeek(b.In(a.Location()), weekStart))
}

// ParseWeekday accepts "sunday" or "monday"; anything else yields Sunday.
func ParseWeekday(s string) time.Weekday {
	if s == "monday" {
		return time.Monday
	}
	return time.Sunday
}

func EpochMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func FromEpochMillis(ms int64) time.Time {
	return time.UnixMilli(ms)
}
