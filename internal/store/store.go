package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/sadopc/pacer/internal/timer"
)

const currentVersion = 1

type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
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
	CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS steps (
		position         INTEGER PRIMARY KEY,
		step_id          INTEGER NOT NULL,
		name             TEXT NOT NULL,
		duration_minutes REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS presets (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS preset_steps (
		preset_id        TEXT NOT NULL REFERENCES presets(id) ON DELETE CASCADE,
		position         INTEGER NOT NULL,
		step_id          INTEGER NOT NULL,
		name             TEXT NOT NULL,
		duration_minutes REAL NOT NULL,
		PRIMARY KEY (preset_id, position)
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id                    TEXT PRIMARY KEY,
		date                  TEXT NOT NULL,
		total_planned_seconds REAL NOT NULL,
		total_actual_seconds  REAL NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_date ON sessions(date);

	CREATE TABLE IF NOT EXISTS session_steps (
		session_id       TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		position         INTEGER NOT NULL,
		step_id          INTEGER NOT NULL,
		step_name        TEXT NOT NULL,
		planned_duration REAL NOT NULL,
		actual_duration  REAL NOT NULL,
		difference       REAL NOT NULL,
		PRIMARY KEY (session_id, position)
	);
	`
	if _, err := s.db.Exec(ddl); err != nil {
		return err
	}
	return s.seedSchedule()
}

// seedSchedule installs the built-in procedure on a fresh database.
func (s *Store) seedSchedule() error {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM steps`).Scan(&count); err != nil {
		return fmt.Errorf("count steps: %w", err)
	}
	if count > 0 {
		return nil
	}
	for i, step := range timer.DefaultSchedule() {
		_, err := s.db.Exec(
			`INSERT INTO steps (position, step_id, name, duration_minutes) VALUES (?, ?, ?, ?)`,
			i, step.ID, step.Name, step.DurationMinutes,
		)
		if err != nil {
			return fmt.Errorf("seed step %d: %w", step.ID, err)
		}
	}
	return nil
}

// DefaultDBPath returns ~/.config/pacer/pacer.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "pacer", "pacer.db"), nil
}
