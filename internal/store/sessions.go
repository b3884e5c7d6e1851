package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

const sessionColumns = `id, start_time, end_time, actual_seconds, target_seconds, tags, status, date`

// SaveSession upserts a session document by id.
func (s *Store) SaveSession(ctx context.Context, userID string, fs FocusSession) error {
	if err := fs.Validate(); err != nil {
		return fmt.Errorf("save session %s: %w", fs.ID, err)
	}
	tags := fs.Tags
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("encode session tags: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (user_id, id, start_time, end_time, actual_seconds, target_seconds, tags, status, date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, id) DO UPDATE SET
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			actual_seconds = excluded.actual_seconds,
			target_seconds = excluded.target_seconds,
			tags = excluded.tags,
			status = excluded.status,
			date = excluded.date`,
		userID, fs.ID, fs.StartTime, fs.EndTime, fs.ActualDurationSeconds, fs.TargetDurationSeconds,
		string(raw), string(fs.Status), fs.Date,
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", fs.ID, err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, userID, id string) (*FocusSession, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE user_id = ? AND id = ?`, userID, id,
	)
	fs, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return fs, nil
}

// ListSessions returns every session of the user, newest start first.
func (s *Store) ListSessions(ctx context.Context, userID string) ([]FocusSession, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE user_id = ? ORDER BY start_time DESC, id`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []FocusSession
	for rows.Next() {
		fs, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *fs)
	}
	return sessions, rows.Err()
}

func (s *Store) DeleteSession(ctx context.Context, userID, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(r rowScanner) (*FocusSession, error) {
	fs := &FocusSession{}
	var tags, status string
	err := r.Scan(&fs.ID, &fs.StartTime, &fs.EndTime, &fs.ActualDurationSeconds,
		&fs.TargetDurationSeconds, &tags, &status, &fs.Date)
	if err != nil {
		return nil, err
	}
	fs.Status = SessionStatus(status)
	if err := json.Unmarshal([]byte(tags), &fs.Tags); err != nil {
		return nil, fmt.Errorf("decode session tags: %w", err)
	}
	return fs, nil
}
