package timer

import "fmt"

// Pace classifies the whole session against the planned schedule.
type Pace int

const (
	PaceOnTime Pace = iota
	PaceAhead
	PaceSlightlyLate
	PaceVeryLate
)

func (p Pace) String() string {
	switch p {
	case PaceAhead:
		return "ahead"
	case PaceSlightlyLate:
		return "slightlyLate"
	case PaceVeryLate:
		return "veryLate"
	default:
		return "onTime"
	}
}

// Status is the operator-facing pace classification: a level, a display-color
// hint, and a natural-language message.
type Status struct {
	Level   Pace
	Color   string
	Message string
}

// Progress is the full per-tick report derived from the schedule, the state
// and the latest clock sample. Pure data; safe to recompute every tick.
type Progress struct {
	// StepWidths holds each step's share of the total planned duration, in
	// percent. StepPositions holds the midpoint cumulative offset of each
	// segment, for label placement.
	StepWidths    []float64
	StepPositions []float64

	TotalPlannedSeconds float64

	// ScheduleProgressPercent is where the session should be if exactly on
	// schedule. ActualProgressPercent measures progress through the procedure
	// itself, weighted by completed steps. Both are clamped to 100.
	ScheduleProgressPercent float64
	ActualProgressPercent   float64

	// DiffSeconds is positive when procedure progress outpaces elapsed time.
	DiffSeconds float64

	Status Status
}

// Pace thresholds. The tolerance band keeps the status from flickering
// between ahead and behind under normal human variance.
const (
	toleranceSeconds    = 10.0
	slightlyLatePercent = -10.0
	veryLatePercent     = -20.0
)

// Color hints, keyed to the UI palette.
const (
	colorAhead   = "#7AA2F7"
	colorOnTime  = "#2ECC71"
	colorWarning = "#F39C12"
	colorLate    = "#E74C3C"
)

// Calculate derives the progress report. totalElapsed and stepElapsed are
// seconds since session/step start (zero while inactive); currentStepIndex
// may equal len(steps) once the session is finished.
func Calculate(steps []Step, totalElapsed float64, currentStepIndex int, stepElapsed float64) Progress {
	total := TotalPlannedSeconds(steps)

	widths := make([]float64, len(steps))
	positions := make([]float64, len(steps))
	var cum float64
	for i, s := range steps {
		if total > 0 {
			widths[i] = s.PlannedSeconds() / total * 100
		}
		positions[i] = cum + widths[i]/2
		cum += widths[i]
	}

	p := Progress{
		StepWidths:          widths,
		StepPositions:       positions,
		TotalPlannedSeconds: total,
	}
	if total <= 0 {
		p.Status = classify(0, 0)
		return p
	}

	p.ScheduleProgressPercent = clampPercent(totalElapsed / total * 100)

	// Planned-seconds equivalent of the procedure position: every fully
	// completed step counts in full, the current step by its own
	// elapsed/planned ratio, capped at 1.
	var completedPlanned float64
	for i := 0; i < currentStepIndex && i < len(steps); i++ {
		completedPlanned += steps[i].PlannedSeconds()
	}
	var currentPlanned, ratio float64
	if currentStepIndex >= 0 && currentStepIndex < len(steps) {
		currentPlanned = steps[currentStepIndex].PlannedSeconds()
	}
	if currentPlanned > 0 {
		ratio = stepElapsed / currentPlanned
		if ratio > 1 {
			ratio = 1
		}
	}
	equivalent := completedPlanned + currentPlanned*ratio

	p.ActualProgressPercent = clampPercent(equivalent / total * 100)
	p.DiffSeconds = equivalent - totalElapsed
	p.Status = classify(p.DiffSeconds, p.DiffSeconds/total*100)
	return p
}

func clampPercent(v float64) float64 {
	if v > 100 {
		return 100
	}
	if v < 0 {
		return 0
	}
	return v
}

func classify(diffSeconds, diffPercent float64) Status {
	abs := diffSeconds
	if abs < 0 {
		abs = -abs
	}

	switch {
	case abs <= toleranceSeconds:
		return Status{Level: PaceOnTime, Color: colorOnTime, Message: "順調なペースです 👍"}
	case diffSeconds > 0:
		return Status{
			Level:   PaceAhead,
			Color:   colorAhead,
			Message: fmt.Sprintf("予定より %s 早いペースです 👍", FormatNatural(diffSeconds)),
		}
	case diffPercent <= veryLatePercent:
		return Status{
			Level:   PaceVeryLate,
			Color:   colorLate,
			Message: fmt.Sprintf("%s 遅れています ⚠️", FormatNatural(abs)),
		}
	case diffPercent <= slightlyLatePercent:
		return Status{
			Level:   PaceSlightlyLate,
			Color:   colorWarning,
			Message: fmt.Sprintf("%s 遅れています", FormatNatural(abs)),
		}
	default:
		// Behind by more than the tolerance but under 10%: same visual level
		// as on-time, softer wording.
		return Status{
			Level:   PaceOnTime,
			Color:   colorOnTime,
			Message: fmt.Sprintf("少し遅れ気味です（%s）", FormatNatural(abs)),
		}
	}
}

// StepPace classifies the currently active step by its own elapsed/planned
// ratio. No tolerance band at this granularity.
type StepPaceLevel int

const (
	StepGood StepPaceLevel = iota
	StepWarning
	StepLate
)

type StepStatus struct {
	Level StepPaceLevel
	Color string
	Text  string
}

func StepPace(progressRatio float64) StepStatus {
	switch {
	case progressRatio > 1.0:
		return StepStatus{Level: StepLate, Color: colorLate, Text: "遅延"}
	case progressRatio > 0.8:
		return StepStatus{Level: StepWarning, Color: colorWarning, Text: "注意"}
	default:
		return StepStatus{Level: StepGood, Color: colorOnTime, Text: "順調"}
	}
}
