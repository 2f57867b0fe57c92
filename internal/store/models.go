package store

import (
	"time"

	"github.com/sadopc/pacer/internal/timer"
)

// MaxHistoryCount caps retained session records; the oldest are evicted first.
const MaxHistoryCount = 100

type Preset struct {
	ID        string
	Name      string
	Steps     []timer.Step
	CreatedAt time.Time
}

// SessionStep is a completed step's record plus its display name, denormalized
// so history survives later schedule edits.
type SessionStep struct {
	timer.StepRecord
	StepName string
}

type SessionRecord struct {
	ID                  string
	Date                time.Time
	TotalPlannedSeconds float64
	TotalActualSeconds  float64
	Steps               []SessionStep
}
