package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/sadopc/pacer/internal/timer"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("create test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// insertSession seeds a history row directly, bypassing the SaveSession
// guards, for retention tests.
func insertSession(t *testing.T, s *Store, id string, date time.Time) {
	t.Helper()
	_, err := s.db.Exec(
		`INSERT INTO sessions (id, date, total_planned_seconds, total_actual_seconds) VALUES (?, ?, ?, ?)`,
		id, date.UTC().Format(time.RFC3339), 600.0, 700.0,
	)
	if err != nil {
		t.Fatalf("insert session: %v", err)
	}
}

// ============================================================
// Migration + seed
// ============================================================

func TestMigrateSeedsDefaultSchedule(t *testing.T) {
	s := newTestStore(t)

	steps, err := s.GetSteps()
	if err != nil {
		t.Fatalf("get steps: %v", err)
	}
	want := timer.DefaultSchedule()
	if len(steps) != len(want) {
		t.Fatalf("expected %d seeded steps, got %d", len(want), len(steps))
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Fatalf("step %d = %+v, want %+v", i, steps[i], want[i])
		}
	}
}

func TestMigrateIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

// ============================================================
// Timer state
// ============================================================

func TestTimerStateSaveLoad(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()

	// Nothing stored yet.
	if got := s.LoadTimerState(now); got.Started() {
		t.Fatalf("expected initial state, got %+v", got)
	}

	st := timer.State{
		Active:           true,
		StartTime:        now.Add(-5 * time.Minute),
		CurrentStepIndex: 1,
		StepStartTime:    now.Add(-time.Minute),
		CompletedSteps:   []timer.StepRecord{{StepID: 1, PlannedDuration: 240, ActualDuration: 240}},
	}
	raw, err := timer.MarshalState(st)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := s.SaveTimerState(raw); err != nil {
		t.Fatalf("save: %v", err)
	}

	got := s.LoadTimerState(now)
	if !got.Active || got.CurrentStepIndex != 1 || len(got.CompletedSteps) != 1 {
		t.Fatalf("reload mismatch: %+v", got)
	}

	// Overwrite, then clear.
	raw2, _ := timer.MarshalState(timer.InitialState())
	if err := s.SaveTimerState(raw2); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if got := s.LoadTimerState(now); got.Active {
		t.Fatal("overwrite did not take")
	}
	if err := s.ClearTimerState(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if got := s.LoadTimerState(now); got.Started() {
		t.Fatal("clear did not take")
	}
}

func TestTimerStateStaleOnLoad(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()

	st := timer.State{
		Active:        true,
		StartTime:     now.Add(-timer.MaxSessionAge - time.Hour),
		StepStartTime: now.Add(-timer.MaxSessionAge - time.Hour),
	}
	raw, _ := timer.MarshalState(st)
	if err := s.SaveTimerState(raw); err != nil {
		t.Fatalf("save: %v", err)
	}

	if got := s.LoadTimerState(now); got.Active || got.Started() {
		t.Fatalf("stale session must load as initial, got %+v", got)
	}
}

func TestSettings(t *testing.T) {
	s := newTestStore(t)

	if got := s.GetSetting("mute", "off"); got != "off" {
		t.Fatalf("fallback: %q", got)
	}
	if err := s.SetSetting("mute", "on"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := s.GetSetting("mute", "off"); got != "on" {
		t.Fatalf("read back: %q", got)
	}
}

// ============================================================
// Schedule
// ============================================================

func TestReplaceAndResetSteps(t *testing.T) {
	s := newTestStore(t)

	custom := []timer.Step{
		{ID: 1, Name: "準備", DurationMinutes: 5},
		{ID: 2, Name: "施術", DurationMinutes: 45.5},
	}
	if err := s.ReplaceSteps(custom); err != nil {
		t.Fatalf("replace: %v", err)
	}

	got, err := s.GetSteps()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 2 || got[0] != custom[0] || got[1] != custom[1] {
		t.Fatalf("replace mismatch: %+v", got)
	}

	if err := s.ResetSteps(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	got, _ = s.GetSteps()
	if len(got) != len(timer.DefaultSchedule()) {
		t.Fatalf("reset left %d steps", len(got))
	}
}

func TestGetStepsEmptyTableFallsBack(t *testing.T) {
	s := newTestStore(t)
	if err := s.ReplaceSteps(nil); err != nil {
		t.Fatalf("clear: %v", err)
	}

	got, err := s.GetSteps()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != len(timer.DefaultSchedule()) {
		t.Fatal("empty schedule must fall back to the default")
	}
}

// ============================================================
// Presets
// ============================================================

func TestPresetLifecycle(t *testing.T) {
	s := newTestStore(t)

	steps := []timer.Step{
		{ID: 1, Name: "カット", DurationMinutes: 30},
		{ID: 2, Name: "カラー", DurationMinutes: 60},
	}
	p, err := s.SavePreset("ショートコース", steps)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if p.Name != "ショートコース" || len(p.Steps) != 2 {
		t.Fatalf("saved preset: %+v", p)
	}

	got, err := s.GetPreset(p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Steps[1] != steps[1] {
		t.Fatalf("preset steps mismatch: %+v", got.Steps)
	}

	list, err := s.ListPresets()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || len(list[0].Steps) != 2 {
		t.Fatalf("list: %+v", list)
	}

	if err := s.DeletePreset(p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if list, _ := s.ListPresets(); len(list) != 0 {
		t.Fatal("preset not deleted")
	}
	// Cascade: no orphaned preset steps.
	var count int
	s.db.QueryRow(`SELECT COUNT(*) FROM preset_steps`).Scan(&count)
	if count != 0 {
		t.Fatalf("%d orphaned preset steps", count)
	}
}

// ============================================================
// History
// ============================================================

func sampleRecords() ([]timer.StepRecord, []timer.Step) {
	steps := []timer.Step{
		{ID: 1, Name: "カウンセリング", DurationMinutes: 10},
		{ID: 2, Name: "カット", DurationMinutes: 20},
	}
	records := []timer.StepRecord{
		{StepID: 1, PlannedDuration: 600, ActualDuration: 660, Difference: 60},
		{StepID: 2, PlannedDuration: 1200, ActualDuration: 1100, Difference: -100},
	}
	return records, steps
}

func TestSaveSessionAndList(t *testing.T) {
	s := newTestStore(t)
	records, steps := sampleRecords()

	if err := s.SaveSession(records, steps, time.Now().Add(-30*time.Minute)); err != nil {
		t.Fatalf("save session: %v", err)
	}

	sessions, err := s.ListSessions(0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	got := sessions[0]
	if got.TotalPlannedSeconds != 1800 || got.TotalActualSeconds != 1760 {
		t.Fatalf("totals: %v / %v", got.TotalPlannedSeconds, got.TotalActualSeconds)
	}
	if len(got.Steps) != 2 || got.Steps[0].StepName != "カウンセリング" {
		t.Fatalf("steps: %+v", got.Steps)
	}
	if got.Steps[1].Difference != -100 {
		t.Fatalf("difference: %v", got.Steps[1].Difference)
	}
}

func TestSaveSessionUnknownStepNameFallback(t *testing.T) {
	s := newTestStore(t)
	records := []timer.StepRecord{{StepID: 99, PlannedDuration: 60, ActualDuration: 60}}

	if err := s.SaveSession(records, nil, time.Now()); err != nil {
		t.Fatalf("save: %v", err)
	}
	sessions, _ := s.ListSessions(0)
	if sessions[0].Steps[0].StepName != "工程99" {
		t.Fatalf("fallback name: %q", sessions[0].Steps[0].StepName)
	}
}

func TestSaveSessionDropsStaleStart(t *testing.T) {
	s := newTestStore(t)
	records, steps := sampleRecords()

	err := s.SaveSession(records, steps, time.Now().Add(-timer.MaxSessionAge-time.Hour))
	if err != nil {
		t.Fatalf("stale save must succeed silently: %v", err)
	}
	if sessions, _ := s.ListSessions(0); len(sessions) != 0 {
		t.Fatal("stale session must not be recorded")
	}
}

func TestSaveSessionSuppressesDoubleFire(t *testing.T) {
	s := newTestStore(t)
	records, steps := sampleRecords()
	started := time.Now().Add(-time.Hour)

	if err := s.SaveSession(records, steps, started); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := s.SaveSession(records, steps, started); err != nil {
		t.Fatalf("second save must succeed silently: %v", err)
	}
	if sessions, _ := s.ListSessions(0); len(sessions) != 1 {
		t.Fatalf("expected the duplicate dropped, got %d sessions", len(sessions))
	}
}

func TestSaveSessionEvictsBeyondCap(t *testing.T) {
	s := newTestStore(t)

	// Seed past the cap, newest a couple hours old so the dedup window does
	// not trigger.
	base := time.Now().Add(-2 * time.Hour)
	for i := 0; i < MaxHistoryCount+4; i++ {
		insertSession(t, s, fmt.Sprintf("old-%03d", i), base.Add(-time.Duration(i)*time.Hour))
	}

	records, steps := sampleRecords()
	if err := s.SaveSession(records, steps, time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("save: %v", err)
	}

	sessions, err := s.ListSessions(0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != MaxHistoryCount {
		t.Fatalf("expected retention at %d, got %d", MaxHistoryCount, len(sessions))
	}
	// Newest first, and the freshly saved session survives at the top.
	if sessions[0].TotalPlannedSeconds != 1800 {
		t.Fatal("newest session missing after eviction")
	}
	for i := 1; i < len(sessions); i++ {
		if sessions[i].Date.After(sessions[i-1].Date) {
			t.Fatal("sessions not ordered newest first")
		}
	}
	// The oldest seeds are the ones evicted.
	for _, sess := range sessions {
		if sess.ID == fmt.Sprintf("old-%03d", MaxHistoryCount+3) {
			t.Fatal("oldest session survived eviction")
		}
	}
}

func TestListSessionsLimit(t *testing.T) {
	s := newTestStore(t)
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		insertSession(t, s, fmt.Sprintf("s-%d", i), base.Add(-time.Duration(i)*time.Hour))
	}

	sessions, err := s.ListSessions(3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("limit ignored: %d", len(sessions))
	}
	if sessions[0].ID != "s-0" {
		t.Fatalf("expected newest first, got %s", sessions[0].ID)
	}
}

func TestDeleteSessionAndClearHistory(t *testing.T) {
	s := newTestStore(t)
	records, steps := sampleRecords()
	if err := s.SaveSession(records, steps, time.Now()); err != nil {
		t.Fatalf("save: %v", err)
	}
	sessions, _ := s.ListSessions(0)

	if _, err := s.GetSession(sessions[0].ID); err != nil {
		t.Fatalf("get: %v", err)
	}
	if err := s.DeleteSession(sessions[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if sessions, _ := s.ListSessions(0); len(sessions) != 0 {
		t.Fatal("session not deleted")
	}

	// Cascade: per-step rows go with the session.
	var count int
	s.db.QueryRow(`SELECT COUNT(*) FROM session_steps`).Scan(&count)
	if count != 0 {
		t.Fatalf("%d orphaned session steps", count)
	}

	insertSession(t, s, "a", time.Now().Add(-time.Hour))
	insertSession(t, s, "b", time.Now().Add(-2*time.Hour))
	if err := s.ClearHistory(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if sessions, _ := s.ListSessions(0); len(sessions) != 0 {
		t.Fatal("history not cleared")
	}
}
