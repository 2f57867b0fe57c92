package timer

import (
	"encoding/json"
	"time"
)

// FinishReason records how a session ended. Empty until the session is over.
type FinishReason string

const (
	FinishCompleted FinishReason = "completed"
	FinishSkipped   FinishReason = "skipped"
)

// StepRecord captures the actuals for one completed (or skipped) step.
// Durations are in seconds; fractions are allowed.
type StepRecord struct {
	StepID          int64   `json:"stepId"`
	PlannedDuration float64 `json:"plannedDuration"`
	ActualDuration  float64 `json:"actualDuration"`
	Difference      float64 `json:"difference"`
}

// State is the sole mutable entity of the timer core.
//
// Invariant: len(CompletedSteps) == CurrentStepIndex for every state the
// Engine hands out. CurrentStepIndex equal to the schedule length means the
// session is finished.
type State struct {
	Active           bool
	StartTime        time.Time // session-wide start; zero until first start
	CurrentStepIndex int
	StepStartTime    time.Time // start of the current step; reset on every transition
	CompletedSteps   []StepRecord
	FinishReason     FinishReason
}

func InitialState() State {
	return State{}
}

// Started reports whether the session was ever started (and not reset).
func (s State) Started() bool {
	return !s.StartTime.IsZero()
}

// MaxSessionAge is the staleness cutoff for restored state: an active session
// whose start is older than this is treated as abandoned on load.
const MaxSessionAge = 24 * time.Hour

// stateJSON is the persisted wire shape. Timestamps are unix milliseconds,
// zero meaning unset.
type stateJSON struct {
	IsActive         bool         `json:"isActive"`
	StartTime        int64        `json:"startTime"`
	CurrentStepIndex int          `json:"currentStepIndex"`
	StepStartTime    int64        `json:"stepStartTime"`
	CompletedSteps   []StepRecord `json:"completedSteps"`
	FinishReason     string       `json:"finishReason,omitempty"`
}

func MarshalState(s State) ([]byte, error) {
	w := stateJSON{
		IsActive:         s.Active,
		CurrentStepIndex: s.CurrentStepIndex,
		CompletedSteps:   s.CompletedSteps,
		FinishReason:     string(s.FinishReason),
	}
	if !s.StartTime.IsZero() {
		w.StartTime = s.StartTime.UnixMilli()
	}
	if !s.StepStartTime.IsZero() {
		w.StepStartTime = s.StepStartTime.UnixMilli()
	}
	return json.Marshal(w)
}

// LoadState restores a persisted state. It never fails: corrupt or missing
// data, and active sessions older than MaxSessionAge, both yield the initial
// state.
func LoadState(raw []byte, now time.Time) State {
	if len(raw) == 0 {
		return InitialState()
	}
	var w stateJSON
	if err := json.Unmarshal(raw, &w); err != nil {
		return InitialState()
	}
	if w.CurrentStepIndex < 0 || len(w.CompletedSteps) != w.CurrentStepIndex {
		return InitialState()
	}

	s := State{
		Active:           w.IsActive,
		CurrentStepIndex: w.CurrentStepIndex,
		CompletedSteps:   w.CompletedSteps,
		FinishReason:     FinishReason(w.FinishReason),
	}
	if w.StartTime != 0 {
		s.StartTime = time.UnixMilli(w.StartTime)
	}
	if w.StepStartTime != 0 {
		s.StepStartTime = time.UnixMilli(w.StepStartTime)
	}

	// Stale active session: a device left suspended for over a day would
	// otherwise show a multi-day elapsed time.
	if s.Active && (s.StartTime.IsZero() || now.Sub(s.StartTime) > MaxSessionAge) {
		return InitialState()
	}
	return s
}

// clone returns a deep copy so snapshots cannot alias the engine's records.
func (s State) clone() State {
	c := s
	if s.CompletedSteps != nil {
		c.CompletedSteps = make([]StepRecord, len(s.CompletedSteps))
		copy(c.CompletedSteps, s.CompletedSteps)
	}
	return c
}
