package store

import (
	"context"
	"fmt"
)

// SavePreset upserts a timer preset document by id.
func (s *Store) SavePreset(ctx context.Context, userID string, p TimerPreset) error {
	if p.DurationMinutes <= 0 {
		return fmt.Errorf("save preset %s: duration must be positive", p.ID)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO presets (user_id, id, name, duration_minutes) VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, id) DO UPDATE SET
			name = excluded.name,
			duration_minutes = excluded.duration_minutes`,
		userID, p.ID, p.Name, p.DurationMinutes,
	)
	if err != nil {
		return fmt.Errorf("save preset %s: %w", p.ID, err)
	}
	return nil
}

// ListPresets returns the user's presets in creation order.
func (s *Store) ListPresets(ctx context.Context, userID string) ([]TimerPreset, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, duration_minutes FROM presets WHERE user_id = ? ORDER BY rowid`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	defer rows.Close()

	var presets []TimerPreset
	for rows.Next() {
		var p TimerPreset
		if err := rows.Scan(&p.ID, &p.Name, &p.DurationMinutes); err != nil {
			return nil, err
		}
		presets = append(presets, p)
	}
	return presets, rows.Err()
}

func (s *Store) DeletePreset(ctx context.Context, userID, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM presets WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("delete preset %s: %w", id, err)
	}
	return nil
}
