// Package leaderboard ranks the signed-in user against a roster of other
// users for a chosen period.
package leaderboard

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sadopc/kairu/internal/stats"
	"github.com/sadopc/kairu/internal/store"
)

type Period = stats.Period

const (
	Day     = stats.Day
	Week    = stats.Week
	Month   = stats.Month
	Year    = stats.Year
	AllTime = stats.AllTime
)

type Scope int

const (
	Everyone Scope = iota
	FriendsOnly
)

func (s Scope) String() string {
	if s == FriendsOnly {
		return "Friends"
	}
	return "Everyone"
}

// CurrentUserID marks the synthesized entry of the signed-in user.
const CurrentUserID = "current-user"

type Entry struct {
	Rank          int      `yaml:"-" json:"rank"`
	UserID        string   `yaml:"user_id" json:"userId"`
	Username      string   `yaml:"username" json:"username"`
	Location      string   `yaml:"location,omitempty" json:"location"`
	Badges        []string `yaml:"badges,omitempty" json:"badges"`
	HasTrophy     bool     `yaml:"has_trophy,omitempty" json:"hasTrophy,omitempty"`
	TimeLogged    string   `yaml:"time_logged" json:"timeLogged"`
	Seconds       int64    `yaml:"-" json:"seconds"`
	Kudos         int      `yaml:"kudos" json:"kudos"`
	IsCurrentUser bool     `yaml:"-" json:"isCurrentUser,omitempty"`
}

// Input is everything one ranking needs.
type Input struct {
	Sessions  []store.FocusSession
	Roster    Roster
	Username  string
	Period    Period
	Scope     Scope
	Now       time.Time
	WeekStart time.Weekday
}

// Rank merges the roster with the user's own total for the period, sorts by
// seconds descending and numbers the entries 1..N. Equal totals keep roster
// order, and the user's entry comes after roster entries it ties with.
// The user's total is ranked at the whole minute it displays, the same
// precision roster entries carry.
// FriendsOnly returns just the user's entry with its overall rank.
func Rank(in Input) []Entry {
	total := roundToMinute(stats.PeriodTotal(in.Sessions, in.Now, in.Period, in.WeekStart))
	self := Entry{
		UserID:        CurrentUserID,
		Username:      in.Username,
		Location:      "ME",
		Badges:        []string{"PRO"},
		TimeLogged:    FormatTime(total),
		Seconds:       total,
		IsCurrentUser: true,
	}

	entries := make([]Entry, 0, len(in.Roster)+1)
	entries = append(entries, in.Roster...)
	entries = append(entries, self)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Seconds > entries[j].Seconds
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	if in.Scope == FriendsOnly {
		for _, e := range entries {
			if e.IsCurrentUser {
				return []Entry{e}
			}
		}
	}
	return entries
}

func roundToMinute(seconds int64) int64 {
	return int64(math.Round(float64(seconds)/60)) * 60
}

// FormatTime renders seconds as "{h}h {m}m" with whole hours and the
// remaining minutes rounded.
func FormatTime(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	mins := int64(math.Round(float64(seconds%3600) / 60))
	return fmt.Sprintf("%dh %dm", hours, mins)
}

var loggedRe = regexp.MustCompile(`^\s*(\d+)h\s+(\d+)m\s*$`)

// ParseLogged converts "Xh Ym" back to seconds.
func ParseLogged(s string) (int64, error) {
	m := loggedRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("parse time logged %q: want \"<h>h <m>m\"", s)
	}
	h, _ := strconv.ParseInt(m[1], 10, 64)
	mins, _ := strconv.ParseInt(m[2], 10, 64)
	return h*3600 + mins*60, nil
}

func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "")) {
	case "day", "today", "":
		return Day, nil
	case "week":
		return Week, nil
	case "month":
		return Month, nil
	case "year":
		return Year, nil
	case "all", "alltime":
		return AllTime, nil
	}
	return Day, fmt.Errorf("unknown period %q", s)
}

func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "everyone", "all", "":
		return Everyone, nil
	case "friends", "friendsonly":
		return FriendsOnly, nil
	}
	return Everyone, fmt.Errorf("unknown scope %q", s)
}
