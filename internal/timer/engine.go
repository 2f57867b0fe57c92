package timer

import (
	"sync"
	"time"
)

// Handle identifies a scheduled reminder. The zero handle means "none".
type Handle int64

// Scheduler schedules best-effort step-end reminders. Cancel of an unknown or
// already-fired handle must succeed silently.
type Scheduler interface {
	Schedule(title, body string, delay time.Duration) Handle
	Cancel(h Handle)
}

// Persister stores the serialized timer state after every transition.
type Persister interface {
	SaveTimerState(raw []byte) error
}

// HistoryWriter records a naturally completed session. It is never invoked
// for skipped or reset sessions.
type HistoryWriter interface {
	SaveSession(records []StepRecord, steps []Step, startedAt time.Time) error
}

// Ports are the external collaborators of the Engine. Any field may be nil;
// a nil port simply disables that side effect.
type Ports struct {
	Clock     func() time.Time
	Persist   Persister
	Reminders Scheduler
	History   HistoryWriter
	Warn      func(format string, args ...any)
}

// Engine owns the session state machine. All transitions are serialized under
// a single mutex, so rapid repeated input cannot read stale state and
// double-append a record. Side effects (persistence, reminders, history) are
// fire-and-forget: their failures are reported through Warn and never affect
// the transition itself.
type Engine struct {
	mu    sync.Mutex
	now   func() time.Time
	steps []Step
	state State

	persist   Persister
	reminders Scheduler
	history   HistoryWriter
	warn      func(format string, args ...any)

	reminder Handle
}

func NewEngine(steps []Step, ports Ports) *Engine {
	e := &Engine{
		now:       ports.Clock,
		steps:     append([]Step(nil), steps...),
		persist:   ports.Persist,
		reminders: ports.Reminders,
		history:   ports.History,
		warn:      ports.Warn,
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.warn == nil {
		e.warn = func(string, ...any) {}
	}
	return e
}

// Restore replaces the engine state with one loaded from the store. Intended
// for startup only, before the first transition.
func (e *Engine) Restore(s State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = s.clone()
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.clone()
}

// Steps returns the schedule the engine is running against.
func (e *Engine) Steps() []Step {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Step(nil), e.steps...)
}

// SetSteps swaps in an edited schedule. The session state is untouched; an
// index beyond the new length reads as finished.
func (e *Engine) SetSteps(steps []Step) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.steps = append([]Step(nil), steps...)
}

// Start begins (or resumes) the session. Idempotent while already active: a
// previously persisted start time is preserved so elapsed time survives
// restarts.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Active {
		return
	}
	now := e.now()
	e.state.Active = true
	if e.state.StartTime.IsZero() {
		e.state.StartTime = now
	}
	if e.state.StepStartTime.IsZero() {
		e.state.StepStartTime = now
	}
	e.state.FinishReason = ""

	e.save()
	e.rescheduleReminder(now)
}

// Advance closes out the current step, records its actuals, and moves to the
// next. Advancing past the last step finishes the session and writes it to
// history.
func (e *Engine) Advance() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.Active || e.state.CurrentStepIndex >= len(e.steps) {
		return
	}
	now := e.now()
	step := e.steps[e.state.CurrentStepIndex]
	actual := now.Sub(e.state.StepStartTime).Seconds()
	planned := step.PlannedSeconds()

	e.state.CompletedSteps = append(e.state.CompletedSteps, StepRecord{
		StepID:          step.ID,
		PlannedDuration: planned,
		ActualDuration:  actual,
		Difference:      actual - planned,
	})
	e.state.CurrentStepIndex++
	e.state.StepStartTime = now

	if e.state.CurrentStepIndex == len(e.steps) {
		e.state.Active = false
		e.state.FinishReason = FinishCompleted
		e.cancelReminder()
		e.saveHistory()
	} else {
		e.rescheduleReminder(now)
	}
	e.save()
}

// Retreat undoes the last Advance. The popped record's actual duration is
// subtracted from the current step start, re-opening the previous step's
// timing window so time already spent is preserved rather than reset.
func (e *Engine) Retreat() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.CurrentStepIndex <= 0 || len(e.state.CompletedSteps) == 0 {
		return
	}
	last := e.state.CompletedSteps[len(e.state.CompletedSteps)-1]
	e.state.CompletedSteps = e.state.CompletedSteps[:len(e.state.CompletedSteps)-1]
	e.state.CurrentStepIndex--
	e.state.StepStartTime = e.state.StepStartTime.Add(-time.Duration(last.ActualDuration * float64(time.Second)))
	e.state.FinishReason = ""

	e.save()
	e.rescheduleReminder(e.now())
}

// SkipToFinish ends the session early. The current step keeps its elapsed
// time; every remaining step gets a zero-duration record so the summary always
// has one record per schedule step. Skipped sessions are not written to
// history.
func (e *Engine) SkipToFinish() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.Active {
		return
	}
	now := e.now()
	for i := e.state.CurrentStepIndex; i < len(e.steps); i++ {
		step := e.steps[i]
		actual := 0.0
		if i == e.state.CurrentStepIndex {
			actual = now.Sub(e.state.StepStartTime).Seconds()
		}
		planned := step.PlannedSeconds()
		e.state.CompletedSteps = append(e.state.CompletedSteps, StepRecord{
			StepID:          step.ID,
			PlannedDuration: planned,
			ActualDuration:  actual,
			Difference:      actual - planned,
		})
	}
	e.state.CurrentStepIndex = len(e.steps)
	e.state.Active = false
	e.state.FinishReason = FinishSkipped

	e.cancelReminder()
	e.save()
}

// Reset returns the engine to the initial empty state and cancels any
// outstanding reminder.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = InitialState()
	e.cancelReminder()
	e.save()
}

// Finished reports whether the session ran past the last step.
func (e *Engine) Finished() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.CurrentStepIndex >= len(e.steps)
}

// CurrentStep returns the step the session is on, or false when not on any.
func (e *Engine) CurrentStep() (Step, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.CurrentStepIndex >= len(e.steps) {
		return Step{}, false
	}
	return e.steps[e.state.CurrentStepIndex], true
}

// Elapsed returns the session-wide and current-step elapsed seconds at the
// latest clock sample. Both are zero while the session is not active; elapsed
// time is always derived from the stored start times, never accumulated.
func (e *Engine) Elapsed() (total, step float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.Active {
		return 0, 0
	}
	now := e.now()
	if !e.state.StartTime.IsZero() {
		total = now.Sub(e.state.StartTime).Seconds()
	}
	if !e.state.StepStartTime.IsZero() {
		step = now.Sub(e.state.StepStartTime).Seconds()
	}
	return total, step
}

// Progress derives the full progress report for the latest clock sample.
func (e *Engine) Progress() Progress {
	total, step := e.Elapsed()

	e.mu.Lock()
	steps := e.steps
	idx := e.state.CurrentStepIndex
	e.mu.Unlock()

	return Calculate(steps, total, idx, step)
}

// save persists the state. Best-effort: a storage failure must never fail the
// transition.
func (e *Engine) save() {
	if e.persist == nil {
		return
	}
	raw, err := MarshalState(e.state)
	if err != nil {
		e.warn("marshal timer state: %v", err)
		return
	}
	if err := e.persist.SaveTimerState(raw); err != nil {
		e.warn("persist timer state: %v", err)
	}
}

func (e *Engine) saveHistory() {
	if e.history == nil {
		return
	}
	records := append([]StepRecord(nil), e.state.CompletedSteps...)
	if err := e.history.SaveSession(records, e.steps, e.state.StartTime); err != nil {
		e.warn("save session history: %v", err)
	}
}

// rescheduleReminder cancels the outstanding step-end reminder and schedules
// one for the current step, if any of its planned time remains.
func (e *Engine) rescheduleReminder(now time.Time) {
	e.cancelReminder()
	if e.reminders == nil || !e.state.Active || e.state.CurrentStepIndex >= len(e.steps) {
		return
	}
	step := e.steps[e.state.CurrentStepIndex]
	remaining := step.PlannedDuration() - now.Sub(e.state.StepStartTime)
	if remaining <= 0 {
		return
	}
	e.reminder = e.reminders.Schedule(step.Name, step.Name+" の予定時間が終了しました", remaining)
}

func (e *Engine) cancelReminder() {
	if e.reminders == nil || e.reminder == 0 {
		return
	}
	e.reminders.Cancel(e.reminder)
	e.reminder = 0
}
