package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sadopc/pacer/internal/timer"
)

const timerStateKey = "timer_state"

// SaveTimerState persists the serialized timer state under its fixed key.
// Satisfies timer.Persister.
func (s *Store) SaveTimerState(raw []byte) error {
	return s.setValue(timerStateKey, string(raw))
}

// LoadTimerState restores the persisted timer state. Missing, corrupt, or
// stale data all yield the initial state; this never fails.
func (s *Store) LoadTimerState(now time.Time) timer.State {
	raw, err := s.getValue(timerStateKey)
	if err != nil {
		return timer.InitialState()
	}
	return timer.LoadState([]byte(raw), now)
}

// ClearTimerState removes the persisted state entirely.
func (s *Store) ClearTimerState() error {
	_, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, timerStateKey)
	return err
}

func (s *Store) getValue(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", err
	}
	if err != nil {
		return "", fmt.Errorf("get value %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) setValue(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// GetSetting reads an app setting from the kv table, falling back when unset.
func (s *Store) GetSetting(key, fallback string) string {
	v, err := s.getValue("setting:" + key)
	if err != nil {
		return fallback
	}
	return v
}

func (s *Store) SetSetting(key, value string) error {
	return s.setValue("setting:"+key, value)
}
