package app

import (
	"time"

	"github.com/sadopc/kairu/internal/leaderboard"
	"github.com/sadopc/kairu/internal/stats"
	"github.com/sadopc/kairu/internal/store"
)

// Sessions returns every session, newest first.
func (s *State) Sessions() []store.FocusSession {
	return s.sessions.List()
}

// SessionsOn returns the sessions of one YYYY-MM-DD day, newest first.
func (s *State) SessionsOn(day string) []store.FocusSession {
	return s.sessions.OnDate(day)
}

func (s *State) Stats(now time.Time) stats.UserStats {
	return stats.Compute(s.sessions.List(), now)
}

func (s *State) Daily(now time.Time, days int) []stats.DayTotal {
	return stats.Daily(s.sessions.List(), now, days)
}

func (s *State) Heatmap(now time.Time, days int) []stats.HeatCell {
	return stats.Heatmap(s.sessions.List(), now, days)
}

func (s *State) TagDistribution() []stats.TagShare {
	return stats.TagDistribution(s.sessions.List())
}

func (s *State) Leaderboard(now time.Time, period leaderboard.Period, scope leaderboard.Scope) []leaderboard.Entry {
	s.mu.RLock()
	week := s.week
	s.mu.RUnlock()
	return leaderboard.Rank(leaderboard.Input{
		Sessions:  s.sessions.List(),
		Roster:    s.roster,
		Username:  s.identity.DisplayName,
		Period:    period,
		Scope:     scope,
		Now:       now,
		WeekStart: week,
	})
}

// SetWeekStart changes the first day of the leaderboard's week.
func (s *State) SetWeekStart(d time.Weekday) {
	s.mu.Lock()
	s.week = d
	s.mu.Unlock()
}

// Now is the state's clock, used by views that need "today".
func (s *State) Now() time.Time {
	return s.now()
}
