// Package app holds the signed-in user's state: the session list, tags,
// todos, presets, the focus timer and the sync queue that writes changes to
// the store. A State is created by Login and torn down by Logout.
package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sadopc/kairu/internal/auth"
	"github.com/sadopc/kairu/internal/leaderboard"
	"github.com/sadopc/kairu/internal/sessions"
	"github.com/sadopc/kairu/internal/store"
	"github.com/sadopc/kairu/internal/syncq"
	"github.com/sadopc/kairu/internal/timer"
)

// ErrLoggedOut is returned by operations on a State after Logout.
var ErrLoggedOut = errors.New("logged out")

// Remote is the per-user document store.
type Remote interface {
	ListSessions(ctx context.Context, userID string) ([]store.FocusSession, error)
	SaveSession(ctx context.Context, userID string, s store.FocusSession) error
	ListTags(ctx context.Context, userID string) ([]store.Tag, error)
	SaveTag(ctx context.Context, userID string, t store.Tag) error
	DeleteTag(ctx context.Context, userID, id string) error
	ListTodos(ctx context.Context, userID string) ([]store.Todo, error)
	SaveTodo(ctx context.Context, userID string, t store.Todo) error
	DeleteTodo(ctx context.Context, userID, id string) error
	ListPresets(ctx context.Context, userID string) ([]store.TimerPreset, error)
	SavePreset(ctx context.Context, userID string, p store.TimerPreset) error
	DeletePreset(ctx context.Context, userID, id string) error
}

type Deps struct {
	Remote    Remote
	Roster    leaderboard.Roster
	WeekStart time.Weekday
	Timer     timer.Options
	Sync      syncq.Options
	Logger    *slog.Logger
	Now       func() time.Time
	NewID     func() string
}

type State struct {
	identity auth.Identity
	remote   Remote
	roster   leaderboard.Roster
	week     time.Weekday
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string

	sessions *sessions.Store
	timer    *timer.Machine
	queue    *syncq.Queue

	mu       sync.RWMutex
	tags     []store.Tag
	todos    []store.Todo
	presets  []store.TimerPreset
	loggedIn bool
}

// Login hydrates the user's four collections concurrently and returns the
// ready state. A collection that fails to load starts empty; only ctx
// cancellation makes Login fail.
func Login(ctx context.Context, deps Deps, id auth.Identity) (*State, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}
	if deps.Sync.Logger == nil {
		deps.Sync.Logger = deps.Logger
	}
	if deps.Timer.Logger == nil {
		deps.Timer.Logger = deps.Logger
	}
	logger := deps.Logger.With("user", id.Email)

	s := &State{
		identity: id,
		remote:   deps.Remote,
		roster:   deps.Roster,
		week:     deps.WeekStart,
		logger:   logger,
		now:      deps.Now,
		newID:    deps.NewID,
		sessions: sessions.New(),
		loggedIn: true,
	}

	var (
		list      []store.FocusSession
		tags      []store.Tag
		todos     []store.Todo
		presets   []store.TimerPreset
		tagsOK    bool
		presetsOK bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, _ = hydrate(gctx, logger, "sessions", func(ctx context.Context) ([]store.FocusSession, error) {
			return deps.Remote.ListSessions(ctx, id.Email)
		})
		return gctx.Err()
	})
	g.Go(func() error {
		tags, tagsOK = hydrate(gctx, logger, "tags", func(ctx context.Context) ([]store.Tag, error) {
			return deps.Remote.ListTags(ctx, id.Email)
		})
		return gctx.Err()
	})
	g.Go(func() error {
		todos, _ = hydrate(gctx, logger, "todos", func(ctx context.Context) ([]store.Todo, error) {
			return deps.Remote.ListTodos(ctx, id.Email)
		})
		return gctx.Err()
	})
	g.Go(func() error {
		presets, presetsOK = hydrate(gctx, logger, "presets", func(ctx context.Context) ([]store.TimerPreset, error) {
			return deps.Remote.ListPresets(ctx, id.Email)
		})
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.queue = syncq.New(deps.Sync)
	s.sessions.ReplaceAll(list)
	s.todos = todos

	// Defaults are persisted only for a collection read back empty; after a
	// failed read they stay local.
	if len(tags) == 0 {
		tags = defaultTags(s.newID)
		if tagsOK {
			for _, t := range tags {
				s.enqueueTag(t)
			}
		}
	}
	s.tags = tags

	if len(presets) == 0 {
		presets = defaultPresets(s.newID)
		if presetsOK {
			for _, p := range presets {
				s.enqueuePreset(p)
			}
		}
	}
	s.presets = presets

	topts := deps.Timer
	topts.Emit = func(fs store.FocusSession) {
		if _, err := s.AddSession(fs); err != nil {
			logger.Error("drop emitted session", "id", fs.ID, "err", err)
		}
	}
	s.timer = timer.New(topts)

	logger.Info("logged in", "sessions", s.sessions.Len(), "tags", len(tags), "todos", len(todos), "presets", len(presets))
	return s, nil
}

// hydrate reads one collection. ok is false when the read failed, which
// callers must not confuse with an empty collection.
func hydrate[T any](ctx context.Context, logger *slog.Logger, name string, list func(context.Context) ([]T, error)) (items []T, ok bool) {
	items, err := list(ctx)
	if err != nil {
		logger.Error("load collection", "collection", name, "err", err)
		return nil, false
	}
	return items, true
}

func defaultTags(newID func() string) []store.Tag {
	names := []string{"Maths", "Notes", "Deep Work", "Coding"}
	tags := make([]store.Tag, len(names))
	for i, n := range names {
		tags[i] = store.Tag{ID: newID(), Name: n}
	}
	return tags
}

func defaultPresets(newID func() string) []store.TimerPreset {
	return []store.TimerPreset{
		{ID: newID(), Name: "Quick Focus", DurationMinutes: 15},
		{ID: newID(), Name: "Pomodoro", DurationMinutes: 25},
		{ID: newID(), Name: "Deep Work", DurationMinutes: 45},
		{ID: newID(), Name: "Extreme Focus", DurationMinutes: 90},
	}
}

func (s *State) Identity() auth.Identity { return s.identity }

func (s *State) Timer() *timer.Machine { return s.timer }

// Logout stops any running timer (recording it as partial), waits for
// queued writes up to ctx, then clears all local state.
func (s *State) Logout(ctx context.Context) error {
	s.mu.Lock()
	if !s.loggedIn {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	s.timer.Stop()
	flushErr := s.queue.Flush(ctx)
	s.queue.Close()

	s.mu.Lock()
	s.loggedIn = false
	s.tags, s.todos, s.presets = nil, nil, nil
	s.mu.Unlock()
	s.sessions.Clear()

	s.logger.Info("logged out")
	return flushErr
}

func (s *State) active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loggedIn
}
