package timer

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCalculateWidthsAndPositions(t *testing.T) {
	steps := twoStepSchedule() // 10m + 20m
	p := Calculate(steps, 0, 0, 0)

	if !almostEqual(p.TotalPlannedSeconds, 1800) {
		t.Fatalf("total: %v", p.TotalPlannedSeconds)
	}
	wantWidths := []float64{100.0 / 3, 200.0 / 3}
	wantPositions := []float64{100.0 / 6, 100.0/3 + 100.0/3}
	for i := range steps {
		if !almostEqual(p.StepWidths[i], wantWidths[i]) {
			t.Fatalf("width[%d] = %v, want %v", i, p.StepWidths[i], wantWidths[i])
		}
		if !almostEqual(p.StepPositions[i], wantPositions[i]) {
			t.Fatalf("position[%d] = %v, want %v", i, p.StepPositions[i], wantPositions[i])
		}
	}
}

func TestCalculateToleranceBand(t *testing.T) {
	// 605s into the 10m first step: the procedure equivalent caps at 600s,
	// leaving a -5s diff the band absorbs.
	steps := twoStepSchedule()

	p := Calculate(steps, 605, 0, 605)
	if !almostEqual(p.DiffSeconds, -5) {
		t.Fatalf("diff = %v, want -5", p.DiffSeconds)
	}
	if p.Status.Level != PaceOnTime {
		t.Fatalf("expected onTime inside tolerance, got %v", p.Status.Level)
	}

	// One second past the band on the ahead side: the first step finished
	// after only 589s, so the completed step counts its full 600s.
	p = Calculate(steps, 589, 1, 0)
	if !almostEqual(p.DiffSeconds, 11) {
		t.Fatalf("diff = %v, want 11", p.DiffSeconds)
	}
	if p.Status.Level != PaceAhead {
		t.Fatalf("expected ahead, got %v", p.Status.Level)
	}
}

func TestCalculateLateLevels(t *testing.T) {
	steps := twoStepSchedule() // total 1800s

	// Still on the first step with its planned time exhausted: equivalent is
	// capped at 600, so every further elapsed second counts against us.
	cases := []struct {
		name    string
		elapsed float64
		want    Pace
	}{
		// -30s is -1.7%: over tolerance, under 10%, softer on-time wording.
		{"minorDelay", 630, PaceOnTime},
		// -180s = -10%.
		{"slightlyLate", 780, PaceSlightlyLate},
		// -360s = -20%.
		{"veryLate", 960, PaceVeryLate},
	}
	for _, tc := range cases {
		p := Calculate(steps, tc.elapsed, 0, tc.elapsed)
		if p.Status.Level != tc.want {
			t.Fatalf("%s: got %v (diff %v)", tc.name, p.Status.Level, p.DiffSeconds)
		}
	}

	// The minor-delay case keeps the on-time color but names the delay.
	p := Calculate(steps, 630, 0, 630)
	if p.Status.Message != "少し遅れ気味です（30秒）" {
		t.Fatalf("unexpected message: %q", p.Status.Message)
	}
}

func TestCalculatePercentClamping(t *testing.T) {
	steps := twoStepSchedule()

	// Way over the total planned time, still on step 0.
	p := Calculate(steps, 4000, 0, 4000)
	if p.ScheduleProgressPercent != 100 {
		t.Fatalf("schedule percent not clamped: %v", p.ScheduleProgressPercent)
	}
	if p.ActualProgressPercent > 100 {
		t.Fatalf("actual percent not clamped: %v", p.ActualProgressPercent)
	}

	// Finished session: index == len(steps).
	p = Calculate(steps, 1800, 2, 0)
	if !almostEqual(p.ActualProgressPercent, 100) {
		t.Fatalf("finished session should read 100%%, got %v", p.ActualProgressPercent)
	}
}

func TestCalculateEmptySchedule(t *testing.T) {
	p := Calculate(nil, 120, 0, 120)
	if p.TotalPlannedSeconds != 0 || p.ScheduleProgressPercent != 0 || p.ActualProgressPercent != 0 {
		t.Fatalf("empty schedule must stay at zero: %+v", p)
	}
	if p.Status.Level != PaceOnTime {
		t.Fatalf("empty schedule defaults to onTime, got %v", p.Status.Level)
	}
}

func TestStepPaceThresholds(t *testing.T) {
	cases := []struct {
		ratio float64
		want  StepPaceLevel
	}{
		{0.0, StepGood},
		{0.8, StepGood},
		{0.81, StepWarning},
		{1.0, StepWarning},
		{1.01, StepLate},
	}
	for _, tc := range cases {
		if got := StepPace(tc.ratio).Level; got != tc.want {
			t.Fatalf("ratio %v: got %v, want %v", tc.ratio, got, tc.want)
		}
	}
}

func TestStatusMessages(t *testing.T) {
	if got := classify(0, 0).Message; got != "順調なペースです 👍" {
		t.Fatalf("on-time message: %q", got)
	}
	if got := classify(90, 5).Message; got != "予定より 1分30秒 早いペースです 👍" {
		t.Fatalf("ahead message: %q", got)
	}
	if got := classify(-300, -25).Message; got != "5分 遅れています ⚠️" {
		t.Fatalf("very-late message: %q", got)
	}
	if got := classify(-200, -12).Message; got != "3分20秒 遅れています" {
		t.Fatalf("slightly-late message: %q", got)
	}
}
