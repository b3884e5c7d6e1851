package leaderboard

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sadopc/kairu/internal/store"
)

var now = time.Date(2026, 10, 15, 18, 0, 0, 0, time.Local)

func sessionOn(id, date string, secs int64) store.FocusSession {
	return store.FocusSession{
		ID:                    id,
		ActualDurationSeconds: secs,
		TargetDurationSeconds: secs,
		Status:                store.StatusCompleted,
		Date:                  date,
	}
}

func usernames(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Username
	}
	return out
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		secs int64
		want string
	}{
		{0, "0h 0m"},
		{59, "0h 1m"},
		{29, "0h 0m"},
		{3600, "1h 0m"},
		{37680, "10h 28m"},
		{3599, "0h 60m"},
		{-5, "0h 0m"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, FormatTime(tt.secs), "seconds %d", tt.secs)
	}
}

func TestParseLogged(t *testing.T) {
	secs, err := ParseLogged("10h 28m")
	require.NoError(t, err)
	require.Equal(t, int64(37680), secs)

	secs, err = ParseLogged(" 9h  0m ")
	require.NoError(t, err)
	require.Equal(t, int64(32400), secs)

	_, err = ParseLogged("ten hours")
	require.Error(t, err)
}

func TestDefaultRosterSeconds(t *testing.T) {
	roster := DefaultRoster()
	require.Len(t, roster, 6)
	require.Equal(t, int64(37680), roster[0].Seconds)
	require.Equal(t, int64(32100), roster[5].Seconds)
	require.True(t, roster[1].HasTrophy)
	require.Equal(t, []string{"GATE"}, roster[4].Badges)
}

func TestRankPlacesUser(t *testing.T) {
	entries := Rank(Input{
		Sessions: []store.FocusSession{
			sessionOn("a", "2026-10-15", 6*3600),
			sessionOn("b", "2026-10-15", 3*3600+40*60),
			sessionOn("c", "2026-10-14", 5*3600),
		},
		Roster:   DefaultRoster(),
		Username: "Ada",
		Period:   Day,
		Now:      now,
	})

	require.Len(t, entries, 7)
	for i, e := range entries {
		require.Equal(t, i+1, e.Rank)
	}
	require.Equal(t, "Ada", entries[3].Username)
	require.True(t, entries[3].IsCurrentUser)
	require.Equal(t, "9h 40m", entries[3].TimeLogged)
	require.Equal(t, "ME", entries[3].Location)
	require.Equal(t, CurrentUserID, entries[3].UserID)
}

func TestRankAllTimeIncludesEverything(t *testing.T) {
	entries := Rank(Input{
		Sessions: []store.FocusSession{
			sessionOn("a", "2026-10-15", 6*3600),
			sessionOn("c", "2020-01-01", 6*3600),
		},
		Roster:   DefaultRoster(),
		Username: "Ada",
		Period:   AllTime,
		Now:      now,
	})
	require.Equal(t, "Ada", entries[0].Username)
	require.Equal(t, 1, entries[0].Rank)
	require.Equal(t, "12h 0m", entries[0].TimeLogged)
}

func TestRankTiesKeepOrder(t *testing.T) {
	roster := Roster{
		{UserID: "x", Username: "first", TimeLogged: "5h 0m", Seconds: 18000},
		{UserID: "y", Username: "second", TimeLogged: "5h 0m", Seconds: 18000},
		{UserID: "z", Username: "top", TimeLogged: "6h 0m", Seconds: 21600},
	}
	entries := Rank(Input{
		Sessions: []store.FocusSession{sessionOn("a", "2026-10-15", 18000)},
		Roster:   roster,
		Username: "me",
		Period:   Day,
		Now:      now,
	})
	require.Equal(t, []string{"top", "first", "second", "me"}, usernames(entries))
}

func TestRankTieAtDisplayedMinute(t *testing.T) {
	roster := Roster{
		{UserID: "x", Username: "first", TimeLogged: "5h 0m", Seconds: 18000},
		{UserID: "y", Username: "less", TimeLogged: "4h 59m", Seconds: 17940},
	}
	entries := Rank(Input{
		Sessions: []store.FocusSession{sessionOn("a", "2026-10-15", 18020)},
		Roster:   roster,
		Username: "me",
		Period:   Day,
		Now:      now,
	})
	require.Equal(t, []string{"first", "me", "less"}, usernames(entries))
	require.Equal(t, "5h 0m", entries[1].TimeLogged)
	require.Equal(t, int64(18000), entries[1].Seconds)
}

func TestRankFriendsOnlyKeepsGlobalRank(t *testing.T) {
	entries := Rank(Input{
		Sessions: []store.FocusSession{sessionOn("a", "2026-10-15", 9*3600+30*60)},
		Roster:   DefaultRoster(),
		Username: "Ada",
		Period:   Day,
		Scope:    FriendsOnly,
		Now:      now,
	})
	require.Len(t, entries, 1)
	require.True(t, entries[0].IsCurrentUser)
	require.Equal(t, 4, entries[0].Rank)
}

func TestRankEmptyRoster(t *testing.T) {
	entries := Rank(Input{Username: "solo", Now: now})
	require.Len(t, entries, 1)
	require.Equal(t, 1, entries[0].Rank)
	require.Equal(t, "0h 0m", entries[0].TimeLogged)
}

func TestParsePeriodAndScope(t *testing.T) {
	p, err := ParsePeriod("All Time")
	require.NoError(t, err)
	require.Equal(t, AllTime, p)
	p, err = ParsePeriod("week")
	require.NoError(t, err)
	require.Equal(t, Week, p)
	_, err = ParsePeriod("decade")
	require.Error(t, err)

	s, err := ParseScope("friends")
	require.NoError(t, err)
	require.Equal(t, FriendsOnly, s)
	_, err = ParseScope("enemies")
	require.Error(t, err)
}

func TestLoadRoster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	data := `entries:
  - user_id: a1
    username: Ada
    time_logged: 3h 20m
    kudos: 4
    badges: [MATHS]
  - user_id: g1
    username: Grace
    location: US
    time_logged: 12h 0m
    has_trophy: true
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	roster, err := LoadRoster(path)
	require.NoError(t, err)
	require.Len(t, roster, 2)
	require.Equal(t, int64(12000), roster[0].Seconds)
	require.Equal(t, []string{"MATHS"}, roster[0].Badges)
	require.True(t, roster[1].HasTrophy)
	require.Equal(t, int64(43200), roster[1].Seconds)
}

func TestLoadRosterBadTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte("entries:\n  - username: Bad\n    time_logged: lots\n"), 0o644))
	_, err := LoadRoster(path)
	require.Error(t, err)
}

func TestLoadRosterDefault(t *testing.T) {
	roster, err := LoadRoster("")
	require.NoError(t, err)
	require.Equal(t, DefaultRoster(), roster)
}
