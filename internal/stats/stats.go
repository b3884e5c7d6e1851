// Package stats derives the analytics shown on the Analyze view and the CLI
// from a user's session list. Every function is pure: empty input yields zero
// values and nothing here returns an error.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/sadopc/kairu/internal/dateutil"
	"github.com/sadopc/kairu/internal/store"
)

// UserStats is the summary card.
type UserStats struct {
	Streak        int `json:"streak"`
	LongestStreak int `json:"longestStreak"`
	TodayMinutes  int `json:"todayMinutes"`
	TodaySessions int `json:"todaySessions"`
}

// DayTotal is one bar of the daily chart.
type DayTotal struct {
	Day       time.Time
	Key       string
	Hours     float64
	Sessions  int
	IsWeekend bool
}

// HeatCell is one square of the activity map. Level is 0..3.
type HeatCell struct {
	Key      string
	Sessions int
	Level    int
}

// TagShare is one slice of the tag distribution.
type TagShare struct {
	Name    string
	Hours   float64
	Percent float64
}

// Period selects the window the leaderboard sums over.
type Period int

const (
	Day Period = iota
	Week
	Month
	Year
	AllTime
)

var periodNames = [...]string{"Day", "Week", "Month", "Year", "All Time"}

func (p Period) String() string {
	if p < Day || p > AllTime {
		return "Unknown"
	}
	return periodNames[p]
}

// Periods lists every period in tab order.
func Periods() []Period {
	return []Period{Day, Week, Month, Year, AllTime}
}

func daySet(sessions []store.FocusSession) map[string]int {
	counts := make(map[string]int, len(sessions))
	for _, s := range sessions {
		counts[s.Date]++
	}
	return counts
}

// Streak counts consecutive days with at least one session, walking back
// from today. A day without sessions today means a streak of zero.
func Streak(sessions []store.FocusSession, now time.Time) int {
	days := daySet(sessions)
	streak := 0
	for d := now; days[dateutil.DayKey(d)] > 0; d = dateutil.AddDays(d, -1) {
		streak++
	}
	return streak
}

// LongestStreak is the longest run of consecutive session days in the whole
// history. It is never smaller than Streak.
func LongestStreak(sessions []store.FocusSession, now time.Time) int {
	days := daySet(sessions)
	longest := 0
	for key := range days {
		d, err := dateutil.ParseDay(key, now.Location())
		if err != nil {
			continue
		}
		// Only start counting at the first day of a run.
		if days[dateutil.DayKey(dateutil.AddDays(d, -1))] > 0 {
			continue
		}
		run := 0
		for days[dateutil.DayKey(d)] > 0 {
			run++
			d = dateutil.AddDays(d, 1)
		}
		longest = max(longest, run)
	}
	return max(longest, Streak(sessions, now))
}

// Today returns the rounded minutes and session count for now's day.
func Today(sessions []store.FocusSession, now time.Time) (minutes, count int) {
	key := dateutil.DayKey(now)
	var secs int64
	for _, s := range sessions {
		if s.Date == key {
			secs += s.ActualDurationSeconds
			count++
		}
	}
	return int(math.Round(float64(secs) / 60)), count
}

func Compute(sessions []store.FocusSession, now time.Time) UserStats {
	minutes, count := Today(sessions, now)
	return UserStats{
		Streak:        Streak(sessions, now),
		LongestStreak: LongestStreak(sessions, now),
		TodayMinutes:  minutes,
		TodaySessions: count,
	}
}

// Daily returns per-day hours and counts for the trailing window ending
// today, oldest first.
func Daily(sessions []store.FocusSession, now time.Time, days int) []DayTotal {
	window := dateutil.Trailing(now, days)
	if len(window) == 0 {
		return nil
	}
	index := make(map[string]int, len(window))
	out := make([]DayTotal, len(window))
	for i, d := range window {
		key := dateutil.DayKey(d)
		index[key] = i
		out[i] = DayTotal{
			Day:       d,
			Key:       key,
			IsWeekend: d.Weekday() == time.Saturday || d.Weekday() == time.Sunday,
		}
	}
	for _, s := range sessions {
		i, ok := index[s.Date]
		if !ok {
			continue
		}
		out[i].Hours += float64(s.ActualDurationSeconds) / 3600
		out[i].Sessions++
	}
	return out
}

// Level buckets a day's session count: 0, 1, 2-3, 4+.
func Level(count int) int {
	switch {
	case count <= 0:
		return 0
	case count < 2:
		return 1
	case count < 4:
		return 2
	default:
		return 3
	}
}

func Heatmap(sessions []store.FocusSession, now time.Time, days int) []HeatCell {
	daily := Daily(sessions, now, days)
	cells := make([]HeatCell, len(daily))
	for i, d := range daily {
		cells[i] = HeatCell{Key: d.Key, Sessions: d.Sessions, Level: Level(d.Sessions)}
	}
	return cells
}

// TagDistribution sums hours per tag across all sessions. A session with
// several tags counts in full for each of them. Sorted by hours descending;
// equal hours keep first-seen order.
func TagDistribution(sessions []store.FocusSession) []TagShare {
	var shares []TagShare
	index := make(map[string]int)
	var total float64
	for _, s := range sessions {
		hours := float64(s.ActualDurationSeconds) / 3600
		for _, tag := range s.Tags {
			i, ok := index[tag]
			if !ok {
				i = len(shares)
				index[tag] = i
				shares = append(shares, TagShare{Name: tag})
			}
			shares[i].Hours += hours
			total += hours
		}
	}
	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].Hours > shares[j].Hours
	})
	for i := range shares {
		if total > 0 {
			shares[i].Percent = shares[i].Hours / total
		}
	}
	return shares
}

// PeriodTotal sums actual seconds of sessions whose day falls in period
// relative to now. Year and AllTime apply no filter.
func PeriodTotal(sessions []store.FocusSession, now time.Time, period Period, weekStart time.Weekday) int64 {
	var total int64
	for _, s := range sessions {
		if InPeriod(s, now, period, weekStart) {
			total += s.ActualDurationSeconds
		}
	}
	return total
}

// InPeriod reports whether the session's calendar day lies in period.
func InPeriod(s store.FocusSession, now time.Time, period Period, weekStart time.Weekday) bool {
	switch period {
	case Day, Week, Month:
	default:
		return true
	}
	day, err := dateutil.ParseDay(s.Date, now.Location())
	if err != nil {
		return false
	}
	switch period {
	case Day:
		return dateutil.SameDay(day, now)
	case Week:
		return dateutil.SameWeek(day, now, weekStart)
	default:
		return dateutil.SameMonth(day, now)
	}
}
