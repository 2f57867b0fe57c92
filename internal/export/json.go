package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/pacer/internal/store"
	"github.com/sadopc/pacer/internal/timer"
)

type jsonExport struct {
	ExportedAt string        `json:"exported_at"`
	Count      int           `json:"count"`
	Sessions   []jsonSession `json:"sessions"`
}

type jsonSession struct {
	ID            string     `json:"id"`
	Date          string     `json:"date"`
	TotalPlanned  float64    `json:"total_planned_seconds"`
	TotalActual   float64    `json:"total_actual_seconds"`
	TotalPlannedF string     `json:"total_planned"`
	TotalActualF  string     `json:"total_actual"`
	Steps         []jsonStep `json:"steps"`
}

type jsonStep struct {
	Name       string  `json:"name"`
	Planned    float64 `json:"planned_seconds"`
	Actual     float64 `json:"actual_seconds"`
	Difference float64 `json:"difference_seconds"`
}

func ToJSON(sessions []store.SessionRecord, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(sessions),
	}

	for _, sess := range sessions {
		js := jsonSession{
			ID:            sess.ID,
			Date:          sess.Date.Local().Format(time.RFC3339),
			TotalPlanned:  sess.TotalPlannedSeconds,
			TotalActual:   sess.TotalActualSeconds,
			TotalPlannedF: timer.FormatClock(sess.TotalPlannedSeconds),
			TotalActualF:  timer.FormatClock(sess.TotalActualSeconds),
		}
		for _, st := range sess.Steps {
			js.Steps = append(js.Steps, jsonStep{
				Name:       st.StepName,
				Planned:    st.PlannedDuration,
				Actual:     st.ActualDuration,
				Difference: st.Difference,
			})
		}
		export.Sessions = append(export.Sessions, js)
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
