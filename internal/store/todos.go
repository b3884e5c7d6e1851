package store

import (
	"context"
	"database/sql"
	"fmt"
)

// SaveTodo upserts a todo document by id.
func (s *Store) SaveTodo(ctx context.Context, userID string, t Todo) error {
	completed := 0
	if t.Completed {
		completed = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO todos (user_id, id, text, completed, estimated_minutes) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, id) DO UPDATE SET
			text = excluded.text,
			completed = excluded.completed,
			estimated_minutes = excluded.estimated_minutes`,
		userID, t.ID, t.Text, completed, t.EstimatedTime,
	)
	if err != nil {
		return fmt.Errorf("save todo %s: %w", t.ID, err)
	}
	return nil
}

// ListTodos returns the user's todos in creation order.
func (s *Store) ListTodos(ctx context.Context, userID string) ([]Todo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, completed, estimated_minutes FROM todos WHERE user_id = ? ORDER BY rowid`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	var todos []Todo
	for rows.Next() {
		var t Todo
		var completed int
		var estimate sql.NullInt64
		if err := rows.Scan(&t.ID, &t.Text, &completed, &estimate); err != nil {
			return nil, err
		}
		t.Completed = completed == 1
		if estimate.Valid {
			m := int(estimate.Int64)
			t.EstimatedTime = &m
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

func (s *Store) DeleteTodo(ctx context.Context, userID, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("delete todo %s: %w", id, err)
	}
	return nil
}
