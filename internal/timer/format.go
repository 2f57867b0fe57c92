package timer

import (
	"fmt"
	"math"
)

func durationParts(seconds float64) (h, m, s int, sign string) {
	abs := math.Abs(seconds)
	h = int(abs) / 3600
	m = (int(abs) % 3600) / 60
	s = int(abs) % 60
	if seconds < 0 {
		sign = "-"
	}
	return h, m, s, sign
}

// FormatClock renders H:MM:SS, the main session clock format.
func FormatClock(seconds float64) string {
	h, m, s, sign := durationParts(seconds)
	return fmt.Sprintf("%s%d:%02d:%02d", sign, h, m, s)
}

// FormatStepClock renders MM:SS with hours folded into minutes, so a step
// running over an hour shows 65:00 rather than 1:05:00. This is the step
// countdown display convention, not a truncation.
func FormatStepClock(seconds float64) string {
	h, m, s, sign := durationParts(seconds)
	return fmt.Sprintf("%s%02d:%02d", sign, h*60+m, s)
}

// FormatShort renders "Xm Ys" for the summary table.
func FormatShort(seconds float64) string {
	h, m, s, sign := durationParts(seconds)
	return fmt.Sprintf("%s%dm %ds", sign, h*60+m, s)
}

// FormatNatural renders a duration the way an operator would say it:
// 45秒, 3分, 1分30秒. Used by pace status messages.
func FormatNatural(seconds float64) string {
	abs := int(math.Abs(math.Round(seconds)))
	m := abs / 60
	s := abs % 60

	switch {
	case m == 0:
		return fmt.Sprintf("%d秒", s)
	case s == 0:
		return fmt.Sprintf("%d分", m)
	default:
		return fmt.Sprintf("%d分%d秒", m, s)
	}
}
