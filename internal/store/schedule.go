package store

import (
	"fmt"

	"github.com/sadopc/pacer/internal/timer"
)

// GetSteps returns the active schedule in order. An empty table falls back to
// the built-in default so the timer always has something to run.
func (s *Store) GetSteps() ([]timer.Step, error) {
	rows, err := s.db.Query(
		`SELECT step_id, name, duration_minutes FROM steps ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
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
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(steps) == 0 {
		return timer.DefaultSchedule(), nil
	}
	return steps, nil
}

// ReplaceSteps swaps the whole schedule atomically.
func (s *Store) ReplaceSteps(steps []timer.Step) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin replace steps: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM steps`); err != nil {
		return fmt.Errorf("clear steps: %w", err)
	}
	for i, st := range steps {
		_, err := tx.Exec(
			`INSERT INTO steps (position, step_id, name, duration_minutes) VALUES (?, ?, ?, ?)`,
			i, st.ID, st.Name, st.DurationMinutes,
		)
		if err != nil {
			return fmt.Errorf("insert step %d: %w", st.ID, err)
		}
	}
	return tx.Commit()
}

// ResetSteps restores the built-in default schedule.
func (s *Store) ResetSteps() error {
	return s.ReplaceSteps(timer.DefaultSchedule())
}
