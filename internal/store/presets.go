package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/pacer/internal/timer"
)

// SavePreset stores the given schedule under a name.
func (s *Store) SavePreset(name string, steps []timer.Step) (*Preset, error) {
	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin save preset: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO presets (id, name, created_at) VALUES (?, ?, ?)`, id, name, now,
	); err != nil {
		return nil, fmt.Errorf("insert preset: %w", err)
	}
	for i, st := range steps {
		_, err := tx.Exec(
			`INSERT INTO preset_steps (preset_id, position, step_id, name, duration_minutes) VALUES (?, ?, ?, ?, ?)`,
			id, i, st.ID, st.Name, st.DurationMinutes,
		)
		if err != nil {
			return nil, fmt.Errorf("insert preset step %d: %w", st.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetPreset(id)
}

func (s *Store) GetPreset(id string) (*Preset, error) {
	p := &Preset{}
	var createdAt string
	err := s.db.QueryRow(
		`SELECT id, name, created_at FROM presets WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("get preset %s: %w", id, err)
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	p.Steps, err = s.presetSteps(id)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) ListPresets() ([]Preset, error) {
	rows, err := s.db.Query(`SELECT id, name, created_at FROM presets ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	defer rows.Close()

	var presets []Preset
	for rows.Next() {
		var p Preset
		var createdAt string
		if err := rows.Scan(&p.ID, &p.Name, &createdAt); err != nil {
			return nil, err
		}
		p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		presets = append(presets, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range presets {
		presets[i].Steps, err = s.presetSteps(presets[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return presets, nil
}

func (s *Store) DeletePreset(id string) error {
	_, err := s.db.Exec(`DELETE FROM presets WHERE id = ?`, id)
	return err
}

func (s *Store) presetSteps(presetID string) ([]timer.Step, error) {
	rows, err := s.db.Query(
		`SELECT step_id, name, duration_minutes FROM preset_steps WHERE preset_id = ? ORDER BY position`,
		presetID,
	)
	if err != nil {
		return nil, fmt.Errorf("list preset steps: %w", err)
	}
	defer rows.Close()

	var steps []timer.Step
	for rows.Next() {
		var st timer.Step
		if err := rows.Scan(&st.ID, &st.Name, &st.DurationMinutes); err != nil {
			return nil, err
		}
		steps = append(steps, st)
	}
	return steps, rows.Err()
}
