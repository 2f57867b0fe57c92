package timer

// ChimeLeadSeconds is how long before a step's planned end the warning chime
// fires. Steps planned shorter than the lead get no chime.
const ChimeLeadSeconds = 180

// Cue is an audio event the UI should play for the current step.
type Cue int

const (
	CueNone Cue = iota
	CueChime
	CueFinish
)

// CueState tracks which cues already fired for the current step. Reset it on
// every step change.
type CueState struct {
	ChimePlayed  bool
	FinishPlayed bool
}

// NextCue reports the cue to play for the given step position, updating the
// fired flags. Each cue fires at most once per step.
func (c *CueState) NextCue(plannedSeconds, elapsedSeconds float64) Cue {
	if plannedSeconds <= 0 {
		return CueNone
	}
	remaining := plannedSeconds - elapsedSeconds

	if !c.FinishPlayed && remaining <= 0 {
		c.FinishPlayed = true
		return CueFinish
	}
	if !c.ChimePlayed && plannedSeconds > ChimeLeadSeconds &&
		remaining > 0 && remaining <= ChimeLeadSeconds {
		c.ChimePlayed = true
		return CueChime
	}
	return CueNone
}

// Reset clears the fired flags for a new step.
func (c *CueState) Reset() {
	c.ChimePlayed = false
	c.FinishPlayed = false
}
