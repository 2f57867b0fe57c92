package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/pacer/internal/store"
)

func ToCSV(sessions []store.SessionRecord, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// One row per step, denormalized with the session header columns.
	header := []string{"Session", "Date", "Step", "Planned (s)", "Actual (s)", "Difference (s)"}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, sess := range sessions {
		dateStr := sess.Date.Local().Format(time.RFC3339)
		for _, st := range sess.Steps {
			row := []string{
				sess.ID,
				dateStr,
				st.StepName,
				fmt.Sprintf("%.0f", st.PlannedDuration),
				fmt.Sprintf("%.0f", st.ActualDuration),
				fmt.Sprintf("%.0f", st.Difference),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	return w.Error()
}
