package timer

import "time"

// Step is one named, fixed-duration stage of the tracked procedure.
// Order within a schedule is significant.
type Step struct {
	ID              int64
	Name            string
	DurationMinutes float64
}

func (s Step) PlannedSeconds() float64 {
	return s.DurationMinutes * 60
}

func (s Step) PlannedDuration() time.Duration {
	return time.Duration(s.DurationMinutes * float64(time.Minute))
}

// TotalPlannedSeconds sums the planned duration of the whole schedule.
func TotalPlannedSeconds(steps []Step) float64 {
	var total float64
	for _, s := range steps {
		total += s.PlannedSeconds()
	}
	return total
}

// DefaultSchedule is the built-in chemical-treatment procedure, seeded into
// the store on first run. 210 minutes across 12 steps.
func DefaultSchedule() []Step {
	return []Step{
		{ID: 1, Name: "カウンセリング", DurationMinutes: 20},
		{ID: 2, Name: "シャンプー", DurationMinutes: 10},
		{ID: 3, Name: "準備・薬剤塗布", DurationMinutes: 20},
		{ID: 4, Name: "薬剤放置", DurationMinutes: 30},
		{ID: 5, Name: "シャンプー", DurationMinutes: 10},
		{ID: 6, Name: "中間処理", DurationMinutes: 5},
		{ID: 7, Name: "ドライヤー", DurationMinutes: 10},
		{ID: 8, Name: "アイロンチェック", DurationMinutes: 10},
		{ID: 9, Name: "アイロン", DurationMinutes: 40},
		{ID: 10, Name: "２液", DurationMinutes: 15},
		{ID: 11, Name: "シャンプー", DurationMinutes: 10},
		{ID: 12, Name: "ドライヤー・仕上げ・撮影", DurationMinutes: 30},
	}
}
