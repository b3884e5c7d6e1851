package store

import (
	"errors"
	"time"
)

// SessionStatus records whether the countdown reached zero.
type SessionStatus string

const (
	StatusCompleted SessionStatus = "completed"
	StatusPartial   SessionStatus = "partial"
)

// ErrInvalidSession is returned for sessions that break the duration invariant.
var ErrInvalidSession = errors.New("invalid session")

// FocusSession is one timer run. It is never edited after creation.
type FocusSession struct {
	ID                    string        `json:"id"`
	StartTime             int64         `json:"startTime"` // epoch ms
	EndTime               int64         `json:"endTime"`   // epoch ms
	ActualDurationSeconds int64         `json:"actualDurationSeconds"`
	TargetDurationSeconds int64         `json:"targetDurationSeconds"`
	Tags                  []string      `json:"tags"`
	Status                SessionStatus `json:"status"`
	Date                  string        `json:"date"` // YYYY-MM-DD, local day the session started
}

// Validate checks 0 <= actual <= target and that the status matches.
func (s FocusSession) Validate() error {
	if s.ID == "" || s.Date == "" {
		return ErrInvalidSession
	}
	if s.ActualDurationSeconds < 0 || s.ActualDurationSeconds > s.TargetDurationSeconds {
		return ErrInvalidSession
	}
	completed := s.ActualDurationSeconds == s.TargetDurationSeconds
	if completed != (s.Status == StatusCompleted) {
		return ErrInvalidSession
	}
	if s.Status != StatusCompleted && s.Status != StatusPartial {
		return ErrInvalidSession
	}
	return nil
}

func (s FocusSession) Started() time.Time {
	return time.UnixMilli(s.StartTime)
}

type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type Todo struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	Completed     bool   `json:"completed"`
	EstimatedTime *int   `json:"estimatedTime,omitempty"` // minutes
}

type TimerPreset struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"durationMinutes"`
}

type User struct {
	Email       string
	DisplayName string
	CreatedAt   time.Time
}

type Setting struct {
	Key   string
	Value string
}
