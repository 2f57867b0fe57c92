package tui

import (
	"time"

	"github.com/sadopc/pacer/internal/notify"
	"github.com/sadopc/pacer/internal/store"
	"github.com/sadopc/pacer/internal/timer"
)

// viewState represents the currently active view.
type viewState int

const (
	viewSession viewState = iota
	viewSchedule
	viewPresets
	viewHistory
)

var viewNames = []string{"Session", "Schedule", "Presets", "History"}

// --- Messages ---

type tickMsg time.Time

// ReminderMsg is delivered by the reminder scheduler when a step-end
// reminder fires. Exported so main can feed it through Program.Send.
type ReminderMsg notify.Reminder

// WarnMsg carries a non-fatal engine side-effect failure into the status bar.
type WarnMsg string

type statusMsg struct {
	text    string
	isError bool
}

// stepsChangedMsg announces an edited schedule; the app rewires the engine
// and every view that renders steps.
type stepsChangedMsg struct {
	steps []timer.Step
}

type presetsDataMsg struct {
	presets []store.Preset
}

type historyDataMsg struct {
	sessions []store.SessionRecord
}

type exportDoneMsg struct {
	path string
}
