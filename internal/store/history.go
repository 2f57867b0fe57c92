package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/pacer/internal/timer"
)

// SaveSession records a completed session. Satisfies timer.HistoryWriter.
//
// Two classes of session are silently dropped: one whose start is over 24
// hours old (a revived stale tab, not a real run), and one saved within a
// minute of the previous record (double-fire of the completion path). Both
// return nil; the caller treats history as fire-and-forget.
func (s *Store) SaveSession(records []timer.StepRecord, steps []timer.Step, startedAt time.Time) error {
	now := time.Now().UTC()

	if !startedAt.IsZero() && now.Sub(startedAt.UTC()) > timer.MaxSessionAge {
		return nil
	}

	var lastDate string
	err := s.db.QueryRow(`SELECT date FROM sessions ORDER BY date DESC LIMIT 1`).Scan(&lastDate)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("check last session: %w", err)
	}
	if err == nil {
		if last, perr := time.Parse(time.RFC3339, lastDate); perr == nil && now.Sub(last) < time.Minute {
			return nil
		}
	}

	names := make(map[int64]string, len(steps))
	for _, st := range steps {
		names[st.ID] = st.Name
	}

	var totalPlanned, totalActual float64
	for _, r := range records {
		totalPlanned += r.PlannedDuration
		totalActual += r.ActualDuration
	}

	id := uuid.NewString()
	date := now.Format(time.RFC3339)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save session: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO sessions (id, date, total_planned_seconds, total_actual_seconds) VALUES (?, ?, ?, ?)`,
		id, date, totalPlanned, totalActual,
	); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	for i, r := range records {
		name, ok := names[r.StepID]
		if !ok {
			name = fmt.Sprintf("工程%d", r.StepID)
		}
		_, err := tx.Exec(
			`INSERT INTO session_steps (session_id, position, step_id, step_name, planned_duration, actual_duration, difference)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, i, r.StepID, name, r.PlannedDuration, r.ActualDuration, r.Difference,
		)
		if err != nil {
			return fmt.Errorf("insert session step %d: %w", i, err)
		}
	}

	// Evict beyond the retention cap, oldest first.
	if _, err := tx.Exec(
		`DELETE FROM sessions WHERE id NOT IN (SELECT id FROM sessions ORDER BY date DESC LIMIT ?)`,
		MaxHistoryCount,
	); err != nil {
		return fmt.Errorf("evict old sessions: %w", err)
	}

	return tx.Commit()
}

// ListSessions returns history newest first. A non-positive limit returns
// everything retained.
func (s *Store) ListSessions(limit int) ([]SessionRecord, error) {
	query := `SELECT id, date, total_planned_seconds, total_actual_seconds FROM sessions ORDER BY date DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		var date string
		if err := rows.Scan(&rec.ID, &date, &rec.TotalPlannedSeconds, &rec.TotalActualSeconds); err != nil {
			return nil, err
		}
		rec.Date, _ = time.Parse(time.RFC3339, date)
		sessions = append(sessions, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range sessions {
		sessions[i].Steps, err = s.sessionSteps(sessions[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

func (s *Store) GetSession(id string) (*SessionRecord, error) {
	rec := &SessionRecord{}
	var date string
	err := s.db.QueryRow(
		`SELECT id, date, total_planned_seconds, total_actual_seconds FROM sessions WHERE id = ?`, id,
	).Scan(&rec.ID, &date, &rec.TotalPlannedSeconds, &rec.TotalActualSeconds)
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	rec.Date, _ = time.Parse(time.RFC3339, date)

	rec.Steps, err = s.sessionSteps(id)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Store) DeleteSession(id string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	return err
}

func (s *Store) ClearHistory() error {
	_, err := s.db.Exec(`DELETE FROM sessions`)
	return err
}

func (s *Store) sessionSteps(sessionID string) ([]SessionStep, error) {
	rows, err := s.db.Query(
		`SELECT step_id, step_name, planned_duration, actual_duration, difference
		 FROM session_steps WHERE session_id = ? ORDER BY position`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list session steps: %w", err)
	}
	defer rows.Close()

	var steps []SessionStep
	for rows.Next() {
		var st SessionStep
		if err := rows.Scan(&st.StepID, &st.StepName, &st.PlannedDuration, &st.ActualDuration, &st.Difference); err != nil {
			return nil, err
		}
		steps = append(steps, st)
	}
	return steps, rows.Err()
}
