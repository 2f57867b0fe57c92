package timer

import (
	"testing"
	"time"
)

func TestStateRoundTrip(t *testing.T) {
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	orig := State{
		Active:           true,
		StartTime:        now.Add(-15 * time.Minute),
		CurrentStepIndex: 2,
		StepStartTime:    now.Add(-3 * time.Minute),
		CompletedSteps: []StepRecord{
			{StepID: 1, PlannedDuration: 600, ActualDuration: 630, Difference: 30},
			{StepID: 2, PlannedDuration: 120, ActualDuration: 90, Difference: -30},
		},
	}

	raw, err := MarshalState(orig)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := LoadState(raw, now)

	if got.Active != orig.Active || got.CurrentStepIndex != orig.CurrentStepIndex {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	// Unix-milli storage keeps millisecond precision.
	if !got.StartTime.Equal(orig.StartTime) || !got.StepStartTime.Equal(orig.StepStartTime) {
		t.Fatalf("timestamps mismatch: %v / %v", got.StartTime, got.StepStartTime)
	}
	if len(got.CompletedSteps) != 2 || got.CompletedSteps[1] != orig.CompletedSteps[1] {
		t.Fatalf("records mismatch: %+v", got.CompletedSteps)
	}
	if got.FinishReason != "" {
		t.Fatalf("expected empty finish reason, got %q", got.FinishReason)
	}
}

func TestLoadStateEmptyAndCorrupt(t *testing.T) {
	now := time.Now()

	for name, raw := range map[string][]byte{
		"empty":   nil,
		"garbage": []byte("{not json"),
	} {
		got := LoadState(raw, now)
		if got.Active || got.Started() || got.CurrentStepIndex != 0 || len(got.CompletedSteps) != 0 {
			t.Fatalf("%s: expected initial state, got %+v", name, got)
		}
	}
}

func TestLoadStateRejectsBrokenInvariant(t *testing.T) {
	// Two records but index 1: hand-edited or truncated payload.
	raw := []byte(`{"isActive":true,"startTime":1700000000000,"currentStepIndex":1,` +
		`"stepStartTime":1700000000000,"completedSteps":[` +
		`{"stepId":1,"plannedDuration":60,"actualDuration":60,"difference":0},` +
		`{"stepId":2,"plannedDuration":60,"actualDuration":60,"difference":0}]}`)

	got := LoadState(raw, time.UnixMilli(1700000100000))
	if got.Started() {
		t.Fatalf("expected initial state, got %+v", got)
	}
}

func TestLoadStateStaleActiveSession(t *testing.T) {
	now := time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC)

	fresh := State{Active: true, StartTime: now.Add(-MaxSessionAge + time.Minute), StepStartTime: now.Add(-time.Minute)}
	stale := State{Active: true, StartTime: now.Add(-MaxSessionAge - time.Minute), StepStartTime: now.Add(-time.Minute)}

	rawFresh, _ := MarshalState(fresh)
	rawStale, _ := MarshalState(stale)

	if got := LoadState(rawFresh, now); !got.Active {
		t.Fatal("session inside the age window must survive a reload")
	}
	if got := LoadState(rawStale, now); got.Active || got.Started() {
		t.Fatalf("stale active session must reset, got %+v", got)
	}
}

func TestLoadStateKeepsFinishedSummary(t *testing.T) {
	// A finished (inactive) session is kept regardless of age so the summary
	// screen survives a restart.
	now := time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC)
	done := State{
		StartTime:        now.Add(-48 * time.Hour),
		CurrentStepIndex: 1,
		StepStartTime:    now.Add(-48 * time.Hour),
		CompletedSteps:   []StepRecord{{StepID: 1, PlannedDuration: 60, ActualDuration: 70, Difference: 10}},
		FinishReason:     FinishCompleted,
	}
	raw, _ := MarshalState(done)

	got := LoadState(raw, now)
	if !got.Started() || got.FinishReason != FinishCompleted || len(got.CompletedSteps) != 1 {
		t.Fatalf("finished session lost on reload: %+v", got)
	}
}
