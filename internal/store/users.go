package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrDuplicateUser is returned when registering an email that already exists.
var ErrDuplicateUser = errors.New("user already exists")

func (s *Store) CreateUser(ctx context.Context, email, displayName string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("create user: empty email")
	}
	if displayName == "" {
		displayName = email
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (email, display_name) VALUES (?, ?)`, email, displayName,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, fmt.Errorf("create user %s: %w", email, ErrDuplicateUser)
		}
		return nil, fmt.Errorf("create user %s: %w", email, err)
	}
	return s.GetUser(ctx, email)
}

func (s *Store) GetUser(ctx context.Context, email string) (*User, error) {
	u := &User{}
	var created string
	err := s.db.QueryRowContext(ctx,
		`SELECT email, display_name, created_at FROM users WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email)),
	).Scan(&u.Email, &u.DisplayName, &created)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", email, err)
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return u, nil
}

// AddAPIKey stores the hash of an access token for the user. The raw token is
// never persisted.
func (s *Store) AddAPIKey(ctx context.Context, keyHash, email string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO api_keys (key_hash, email) VALUES (?, ?)`, keyHash, email,
	)
	if err != nil {
		return fmt.Errorf("add api key: %w", err)
	}
	return nil
}

// LookupAPIKey resolves a token hash to its user and stamps last_used.
func (s *Store) LookupAPIKey(ctx context.Context, keyHash string) (*User, error) {
	var email string
	err := s.db.QueryRowContext(ctx,
		`SELECT email FROM api_keys WHERE key_hash = ?`, keyHash,
	).Scan(&email)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup api key: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.db.ExecContext(ctx,
		`UPDATE api_keys SET last_used = ? WHERE key_hash = ?`, now, keyHash,
	); err != nil {
		return nil, fmt.Errorf("touch api key: %w", err)
	}
	return s.GetUser(ctx, email)
}
