package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("not found")

// Store is the per-user document store. Every collection is namespaced by the
// user identity, so one database file can hold several accounts.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	// Configure pragmas.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS users (
		email        TEXT PRIMARY KEY,
		display_name TEXT NOT NULL,
		created_at   TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS api_keys (
		key_hash   TEXT PRIMARY KEY,
		email      TEXT NOT NULL REFERENCES users(email),
		created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		last_used  TEXT
	);

	CREATE TABLE IF NOT EXISTS sessions (
		user_id        TEXT NOT NULL,
		id             TEXT NOT NULL,
		start_time     INTEGER NOT NULL,
		end_time       INTEGER NOT NULL,
		actual_seconds INTEGER NOT NULL,
		target_seconds INTEGER NOT NULL,
		tags           TEXT NOT NULL DEFAULT '[]',
		status         TEXT NOT NULL CHECK(status IN ('completed', 'partial')),
		date           TEXT NOT NULL,
		PRIMARY KEY (user_id, id)
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_start ON sessions(user_id, start_time);

	CREATE TABLE IF NOT EXISTS tags (
		user_id TEXT NOT NULL,
		id      TEXT NOT NULL,
		name    TEXT NOT NULL,
		color   TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (user_id, id)
	);

	CREATE TABLE IF NOT EXISTS todos (
		user_id           TEXT NOT NULL,
		id                TEXT NOT NULL,
		text              TEXT NOT NULL,
		completed         INTEGER NOT NULL DEFAULT 0,
		estimated_minutes INTEGER,
		PRIMARY KEY (user_id, id)
	);

	CREATE TABLE IF NOT EXISTS presets (
		user_id          TEXT NOT NULL,
		id               TEXT NOT NULL,
		name             TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL,
		PRIMARY KEY (user_id, id)
	);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns ~/.config/kairu/kairu.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "kairu", "kairu.db"), nil
}
