package store

import (
	"context"
	"fmt"
)

// SaveTag upserts a tag document by id.
func (s *Store) SaveTag(ctx context.Context, userID string, t Tag) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tags (user_id, id, name, color) VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, id) DO UPDATE SET name = excluded.name, color = excluded.color`,
		userID, t.ID, t.Name, t.Color,
	)
	if err != nil {
		return fmt.Errorf("save tag %s: %w", t.ID, err)
	}
	return nil
}

// ListTags returns the user's tags in creation order.
func (s *Store) ListTags(ctx context.Context, userID string) ([]Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, color FROM tags WHERE user_id = ? ORDER BY rowid`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func (s *Store) DeleteTag(ctx context.Context, userID, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("delete tag %s: %w", id, err)
	}
	return nil
}
