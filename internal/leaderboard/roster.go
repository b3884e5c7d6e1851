package leaderboard

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Roster is the list of other users shown on the board. Seconds must be set
// for every entry; LoadRoster fills it from TimeLogged.
type Roster []Entry

type rosterFile struct {
	Entries []Entry `yaml:"entries"`
}

func builtin(id, name, loc, logged string, kudos int, trophy bool, badges ...string) Entry {
	secs, err := ParseLogged(logged)
	if err != nil {
		panic(err)
	}
	return Entry{
		UserID:     id,
		Username:   name,
		Location:   loc,
		Badges:     badges,
		HasTrophy:  trophy,
		TimeLogged: logged,
		Seconds:    secs,
		Kudos:      kudos,
	}
}

// DefaultRoster returns the built-in community board.
func DefaultRoster() Roster {
	return Roster{
		builtin("u1", "THE KING OF H#LL", "", "10h 28m", 237, false),
		builtin("u2", "Pinkman", "CA", "10h 8m", 594, true),
		builtin("u3", "Tyler Durden", "IN", "9h 57m", 62, false, "10TH GRADE"),
		builtin("u4", "The Perfect and Remarkable Newt", "CA", "9h 23m", 11, false, "Celpib Till Feb"),
		builtin("u5", "The Fearless and Glorious Fox", "IN", "9h 0m", 1533, true, "GATE"),
		builtin("u6", "SBS(7)", "NP", "8h 55m", 215, false, "NRB"),
	}
}

// LoadRoster reads a roster from a YAML file of the form
//
//	entries:
//	  - user_id: u1
//	    username: Ada
//	    time_logged: 3h 20m
//	    kudos: 4
//
// An empty path returns the default roster.
func LoadRoster(path string) (Roster, error) {
	if path == "" {
		return DefaultRoster(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	var f rosterFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}
	roster := make(Roster, 0, len(f.Entries))
	for i, e := range f.Entries {
		secs, err := ParseLogged(e.TimeLogged)
		if err != nil {
			return nil, fmt.Errorf("roster entry %d (%s): %w", i, e.Username, err)
		}
		e.Seconds = secs
		roster = append(roster, e)
	}
	return roster, nil
}
