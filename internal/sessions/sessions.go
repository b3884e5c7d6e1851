// Package sessions keeps the in-memory, newest-first list of a user's focus
// sessions that analytics and the review view read from.
package sessions

import (
	"sort"
	"sync"

	"github.com/sadopc/kairu/internal/store"
)

// Store is safe for concurrent use. The timer goroutine appends while the UI
// reads.
type Store struct {
	mu   sync.RWMutex
	list []store.FocusSession
	ids  map[string]struct{}
}

func New() *Store {
	return &Store{ids: make(map[string]struct{})}
}

// Append inserts s in start-time order. It returns false when s is invalid or
// its id is already present.
func (st *Store) Append(s store.FocusSession) (bool, error) {
	if err := s.Validate(); err != nil {
		return false, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if _, dup := st.ids[s.ID]; dup {
		return false, nil
	}
	i := sort.Search(len(st.list), func(i int) bool {
		return st.list[i].StartTime < s.StartTime
	})
	st.list = append(st.list, store.FocusSession{})
	copy(st.list[i+1:], st.list[i:])
	st.list[i] = s
	st.ids[s.ID] = struct{}{}
	return true, nil
}

// ReplaceAll swaps in a freshly loaded list. Duplicates keep their first
// occurrence and invalid documents are dropped.
func (st *Store) ReplaceAll(list []store.FocusSession) {
	next := make([]store.FocusSession, 0, len(list))
	ids := make(map[string]struct{}, len(list))
	for _, s := range list {
		if _, dup := ids[s.ID]; dup {
			continue
		}
		if s.Validate() != nil {
			continue
		}
		ids[s.ID] = struct{}{}
		next = append(next, s)
	}
	sort.SliceStable(next, func(i, j int) bool {
		return next[i].StartTime > next[j].StartTime
	})

	st.mu.Lock()
	st.list = next
	st.ids = ids
	st.mu.Unlock()
}

// List returns a copy, newest first.
func (st *Store) List() []store.FocusSession {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]store.FocusSession, len(st.list))
	copy(out, st.list)
	return out
}

// OnDate returns the sessions whose date key equals day, newest first.
func (st *Store) OnDate(day string) []store.FocusSession {
	st.mu.RLock()
	defer st.mu.RUnlock()
	var out []store.FocusSession
	for _, s := range st.list {
		if s.Date == day {
			out = append(out, s)
		}
	}
	return out
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.list)
}

// Clear drops every session, used on logout.
func (st *Store) Clear() {
	st.mu.Lock()
	st.list = nil
	st.ids = make(map[string]struct{})
	st.mu.Unlock()
}
