package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/kairu/internal/store"
	"github.com/sadopc/kairu/internal/syncq"
)

// tagColors cycles for new tags.
var tagColors = []string{"#00D9A3", "#38bdf8", "#818cf8", "#fbbf24", "#f87171", "#c084fc"}

// AddSession records a finished session locally and queues the write.
// It returns false for a duplicate id.
func (s *State) AddSession(fs store.FocusSession) (bool, error) {
	if !s.active() {
		return false, ErrLoggedOut
	}
	added, err := s.sessions.Append(fs)
	if err != nil || !added {
		return false, err
	}
	s.enqueue(syncq.Job{
		Collection: "sessions", ID: fs.ID, Op: syncq.OpUpsert,
		Apply: func(ctx context.Context) error { return s.remote.SaveSession(ctx, s.identity.Email, fs) },
	})
	return true, nil
}

// AddTag returns the tag named name, creating it if no tag matches
// case-insensitively. Blank names are ignored.
func (s *State) AddTag(name string) (store.Tag, bool) {
	name = strings.TrimSpace(name)
	if name == "" || !s.active() {
		return store.Tag{}, false
	}

	s.mu.Lock()
	for _, t := range s.tags {
		if strings.EqualFold(t.Name, name) {
			s.mu.Unlock()
			return t, true
		}
	}
	t := store.Tag{ID: s.newID(), Name: name, Color: tagColors[len(s.tags)%len(tagColors)]}
	s.tags = append(s.tags, t)
	s.mu.Unlock()

	s.enqueueTag(t)
	return t, true
}

// DeleteTag removes the tag. Sessions keep the tag name they were recorded
// with.
func (s *State) DeleteTag(id string) bool {
	s.mu.Lock()
	idx := -1
	for i, t := range s.tags {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.tags = append(s.tags[:idx:idx], s.tags[idx+1:]...)
	s.mu.Unlock()

	s.enqueue(syncq.Job{
		Collection: "tags", ID: id, Op: syncq.OpDelete,
		Apply: func(ctx context.Context) error { return s.remote.DeleteTag(ctx, s.identity.Email, id) },
	})
	return true
}

func (s *State) Tags() []store.Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]store.Tag(nil), s.tags...)
}

// AddTodo appends a todo. Blank text is ignored. estimate is in minutes;
// zero or less means none.
func (s *State) AddTodo(text string, estimate int) (store.Todo, bool) {
	text = strings.TrimSpace(text)
	if text == "" || !s.active() {
		return store.Todo{}, false
	}
	t := store.Todo{ID: s.newID(), Text: text}
	if estimate > 0 {
		t.EstimatedTime = &estimate
	}

	s.mu.Lock()
	s.todos = append(s.todos, t)
	s.mu.Unlock()

	s.enqueueTodo(t)
	return t, true
}

func (s *State) ToggleTodo(id string) bool {
	s.mu.Lock()
	var updated *store.Todo
	for i := range s.todos {
		if s.todos[i].ID == id {
			s.todos[i].Completed = !s.todos[i].Completed
			t := s.todos[i]
			updated = &t
			break
		}
	}
	s.mu.Unlock()
	if updated == nil {
		return false
	}
	s.enqueueTodo(*updated)
	return true
}

func (s *State) DeleteTodo(id string) bool {
	s.mu.Lock()
	idx := -1
	for i, t := range s.todos {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.todos = append(s.todos[:idx:idx], s.todos[idx+1:]...)
	s.mu.Unlock()

	s.enqueue(syncq.Job{
		Collection: "todos", ID: id, Op: syncq.OpDelete,
		Apply: func(ctx context.Context) error { return s.remote.DeleteTodo(ctx, s.identity.Email, id) },
	})
	return true
}

func (s *State) Todos() []store.Todo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]store.Todo(nil), s.todos...)
}

func (s *State) AddPreset(name string, minutes int) (store.TimerPreset, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return store.TimerPreset{}, fmt.Errorf("add preset: empty name")
	}
	if minutes <= 0 {
		return store.TimerPreset{}, fmt.Errorf("add preset %q: minutes must be positive", name)
	}
	if !s.active() {
		return store.TimerPreset{}, ErrLoggedOut
	}
	p := store.TimerPreset{ID: s.newID(), Name: name, DurationMinutes: minutes}

	s.mu.Lock()
	s.presets = append(s.presets, p)
	s.mu.Unlock()

	s.enqueuePreset(p)
	return p, nil
}

func (s *State) DeletePreset(id string) bool {
	s.mu.Lock()
	idx := -1
	for i, p := range s.presets {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.presets = append(s.presets[:idx:idx], s.presets[idx+1:]...)
	s.mu.Unlock()

	s.enqueue(syncq.Job{
		Collection: "presets", ID: id, Op: syncq.OpDelete,
		Apply: func(ctx context.Context) error { return s.remote.DeletePreset(ctx, s.identity.Email, id) },
	})
	return true
}

func (s *State) Presets() []store.TimerPreset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]store.TimerPreset(nil), s.presets...)
}

// ApplyPreset sets the timer length for the next run. It fails with
// timer.ErrActive while a run is in progress.
func (s *State) ApplyPreset(id string) error {
	s.mu.RLock()
	var found *store.TimerPreset
	for _, p := range s.presets {
		if p.ID == id {
			found = &p
			break
		}
	}
	s.mu.RUnlock()
	if found == nil {
		return fmt.Errorf("apply preset %s: %w", id, store.ErrNotFound)
	}
	return s.timer.ApplyPreset(*found)
}

// SetDuration sets the timer length for the next run in whole minutes.
func (s *State) SetDuration(minutes int) error {
	return s.timer.SetDuration(time.Duration(minutes) * time.Minute)
}

// Retry re-queues failed writes.
func (s *State) Retry() int {
	return s.queue.Retry()
}

// SyncStatus reports the queue summary for the status bar.
func (s *State) SyncStatus() syncq.Summary {
	return s.queue.Summary()
}

// RecordStatus reports the sync status of one record.
func (s *State) RecordStatus(collection, id string) (syncq.Status, bool) {
	return s.queue.RecordStatus(collection, id)
}

// Flush waits for queued writes.
func (s *State) Flush(ctx context.Context) error {
	return s.queue.Flush(ctx)
}

func (s *State) enqueueTag(t store.Tag) {
	s.enqueue(syncq.Job{
		Collection: "tags", ID: t.ID, Op: syncq.OpUpsert,
		Apply: func(ctx context.Context) error { return s.remote.SaveTag(ctx, s.identity.Email, t) },
	})
}

func (s *State) enqueueTodo(t store.Todo) {
	s.enqueue(syncq.Job{
		Collection: "todos", ID: t.ID, Op: syncq.OpUpsert,
		Apply: func(ctx context.Context) error { return s.remote.SaveTodo(ctx, s.identity.Email, t) },
	})
}

func (s *State) enqueuePreset(p store.TimerPreset) {
	s.enqueue(syncq.Job{
		Collection: "presets", ID: p.ID, Op: syncq.OpUpsert,
		Apply: func(ctx context.Context) error { return s.remote.SavePreset(ctx, s.identity.Email, p) },
	})
}

func (s *State) enqueue(j syncq.Job) {
	if err := s.queue.Enqueue(j); err != nil {
		s.logger.Warn("write not queued", "collection", j.Collection, "id", j.ID, "err", err)
	}
}
