// Package timer drives a single focus session through its countdown and
// emits the finished session record exactly once per start.
package timer

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/kairu/internal/dateutil"
	"github.com/sadopc/kairu/internal/store"
)

type State int

const (
	Idle State = iota
	Running
	Paused
)

func (s State) String() string {
	switch s {
	case Running:
		return "RUNNING"
	case Paused:
		return "PAUSED"
	default:
		return "IDLE"
	}
}

// ErrActive is returned when the duration is changed during a run.
var ErrActive = errors.New("timer is active")

const DefaultDuration = 25 * time.Minute

// Emitter receives every finished session. It is called without the machine
// lock held, after the machine is back to Idle.
type Emitter func(store.FocusSession)

type Options struct {
	Duration time.Duration // default 25m
	Tick     time.Duration // default 1s
	Clock    Clock
	Notifier Notifier
	Emit     Emitter
	Logger   *slog.Logger
	NewID    func() string
}

// Snapshot is a consistent view of the machine for rendering.
type Snapshot struct {
	State      State
	TimeLeft   int64 // seconds
	Configured int64 // seconds
	Tags       []string
	StartedAt  time.Time
}

// Progress is the remaining fraction, 1 when idle.
func (s Snapshot) Progress() float64 {
	if s.State == Idle || s.Configured == 0 {
		return 1
	}
	return float64(s.TimeLeft) / float64(s.Configured)
}

type Machine struct {
	opts Options

	mu         sync.Mutex
	state      State
	configured int64
	timeLeft   int64
	startedAt  time.Time
	tags       []string
	gen        uint64
	quit       chan struct{}
}

func New(opts Options) *Machine {
	if opts.Duration <= 0 {
		opts.Duration = DefaultDuration
	}
	if opts.Tick <= 0 {
		opts.Tick = time.Second
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Notifier == nil {
		opts.Notifier = NopNotifier{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	secs := int64(opts.Duration / time.Second)
	return &Machine{opts: opts, configured: secs, timeLeft: secs}
}

// SetEmitter replaces the emitter. Used when the owner is built after the machine.
func (m *Machine) SetEmitter(e Emitter) {
	m.mu.Lock()
	m.opts.Emit = e
	m.mu.Unlock()
}

func (m *Machine) SetNotifier(n Notifier) {
	if n == nil {
		n = NopNotifier{}
	}
	m.mu.Lock()
	m.opts.Notifier = n
	m.mu.Unlock()
}

// Start begins a run with the given tags. It is a no-op unless Idle.
func (m *Machine) Start(tags []string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Idle {
		return false
	}
	m.state = Running
	m.timeLeft = m.configured
	m.startedAt = m.opts.Clock.Now()
	m.tags = append([]string(nil), tags...)
	m.gen++
	m.quit = make(chan struct{})
	go m.run(m.gen, m.quit)
	m.opts.Logger.Debug("timer started", "seconds", m.configured, "tags", m.tags)
	return true
}

func (m *Machine) Pause() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Running {
		return false
	}
	m.state = Paused
	return true
}

func (m *Machine) Resume() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Paused {
		return false
	}
	m.state = Running
	return true
}

// Toggle is the space-bar action: start when Idle, otherwise pause or resume.
func (m *Machine) Toggle(tags []string) {
	switch m.Snapshot().State {
	case Idle:
		m.Start(tags)
	case Running:
		m.Pause()
	case Paused:
		m.Resume()
	}
}

// Stop ends the run early and emits a partial session. It returns false when
// there was nothing to stop.
func (m *Machine) Stop() (store.FocusSession, bool) {
	m.mu.Lock()
	if m.state == Idle {
		m.mu.Unlock()
		return store.FocusSession{}, false
	}
	s := m.finishLocked()
	emit := m.opts.Emit
	m.mu.Unlock()

	if emit != nil {
		emit(s)
	}
	return s, true
}

// SetDuration changes the configured length of the next run.
func (m *Machine) SetDuration(d time.Duration) error {
	secs := int64(d / time.Second)
	if secs <= 0 {
		return fmt.Errorf("set duration %s: must be at least one second", d)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Idle {
		return ErrActive
	}
	m.configured = secs
	m.timeLeft = secs
	return nil
}

func (m *Machine) ApplyPreset(p store.TimerPreset) error {
	return m.SetDuration(time.Duration(p.DurationMinutes) * time.Minute)
}

func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		State:      m.state,
		TimeLeft:   m.timeLeft,
		Configured: m.configured,
		Tags:       append([]string(nil), m.tags...),
		StartedAt:  m.startedAt,
	}
}

func (m *Machine) run(gen uint64, quit <-chan struct{}) {
	ticker := time.NewTicker(m.opts.Tick)
	defer ticker.Stop()
	for {
		select {
		case <-quit:
			return
		case <-ticker.C:
			if done := m.tick(gen); done {
				return
			}
		}
	}
}

// tick advances the countdown of run gen by one second. A tick for an older
// run is dropped. It reports whether the run is over.
func (m *Machine) tick(gen uint64) bool {
	m.mu.Lock()
	if m.gen != gen || m.state == Idle {
		m.mu.Unlock()
		return true
	}
	if m.state == Paused {
		m.mu.Unlock()
		return false
	}
	m.timeLeft--
	if m.timeLeft > 0 {
		m.mu.Unlock()
		return false
	}
	s := m.finishLocked()
	emit, notifier := m.opts.Emit, m.opts.Notifier
	m.mu.Unlock()

	if emit != nil {
		emit(s)
	}
	if err := notifier.Notify("Focus complete", fmt.Sprintf("%d minute session finished", s.TargetDurationSeconds/60)); err != nil {
		m.opts.Logger.Debug("completion alert failed", "err", err)
	}
	return true
}

// finishLocked builds the session for the current run and resets to Idle.
// The caller holds m.mu.
func (m *Machine) finishLocked() store.FocusSession {
	actual := m.configured - m.timeLeft
	status := store.StatusPartial
	if m.timeLeft <= 0 {
		actual = m.configured
		status = store.StatusCompleted
	}
	now := m.opts.Clock.Now()
	s := store.FocusSession{
		ID:                    m.opts.NewID(),
		StartTime:             dateutil.EpochMillis(m.startedAt),
		EndTime:               dateutil.EpochMillis(now),
		ActualDurationSeconds: actual,
		TargetDurationSeconds: m.configured,
		Tags:                  m.tags,
		Status:                status,
		Date:                  dateutil.DayKey(m.startedAt),
	}

	m.state = Idle
	m.timeLeft = m.configured
	m.tags = nil
	m.gen++
	close(m.quit)
	m.quit = nil
	m.opts.Logger.Info("session finished", "id", s.ID, "status", s.Status, "seconds", s.ActualDurationSeconds)
	return s
}
