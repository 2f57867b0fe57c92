package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/pacer/internal/timer"
)

// sessionModel drives the timer view: the session clock, the current-step
// countdown, the pace bars, and the end-of-session summary.
type sessionModel struct {
	engine *timer.Engine
	width  int
	height int

	muted     bool
	cues      timer.CueState
	lastIndex int
}

func newSessionModel(engine *timer.Engine) sessionModel {
	return sessionModel{
		engine:    engine,
		lastIndex: engine.Snapshot().CurrentStepIndex,
	}
}

func (m *sessionModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m sessionModel) update(msg tea.Msg) (sessionModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m.handleTick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Start):
			m.engine.Start()
			return m, status("セッション開始")

		case key.Matches(msg, keys.Next):
			m.engine.Advance()
			m.cues.Reset()
			m.lastIndex = m.engine.Snapshot().CurrentStepIndex
			if m.engine.Finished() {
				return m, status("全工程が完了しました 🎉" + m.bell())
			}
			return m, nil

		case key.Matches(msg, keys.Prev):
			m.engine.Retreat()
			m.cues.Reset()
			m.lastIndex = m.engine.Snapshot().CurrentStepIndex
			return m, nil

		case key.Matches(msg, keys.Skip):
			m.engine.SkipToFinish()
			return m, status("残りの工程をスキップしました")

		case key.Matches(msg, keys.Reset):
			m.engine.Reset()
			m.cues.Reset()
			m.lastIndex = 0
			return m, status("リセットしました")

		case key.Matches(msg, keys.Mute):
			m.muted = !m.muted
			if m.muted {
				return m, status("🔇 ミュート")
			}
			return m, status("🔊 ミュート解除")
		}
	}
	return m, nil
}

// handleTick re-evaluates audio cues against the latest clock sample. Elapsed
// values come straight from the engine, so no drift accumulates between
// ticks.
func (m sessionModel) handleTick() (sessionModel, tea.Cmd) {
	snap := m.engine.Snapshot()
	if snap.CurrentStepIndex != m.lastIndex {
		m.cues.Reset()
		m.lastIndex = snap.CurrentStepIndex
	}
	if !snap.Active {
		return m, nil
	}
	step, ok := m.engine.CurrentStep()
	if !ok {
		return m, nil
	}

	_, stepElapsed := m.engine.Elapsed()
	switch m.cues.NextCue(step.PlannedSeconds(), stepElapsed) {
	case timer.CueChime:
		return m, status(fmt.Sprintf("🔔 「%s」終了まであと%s", step.Name, timer.FormatNatural(timer.ChimeLeadSeconds)) + m.bell())
	case timer.CueFinish:
		return m, status(fmt.Sprintf("⏰ 「%s」の予定時間が終了しました", step.Name) + m.bell())
	}
	return m, nil
}

func (m sessionModel) bell() string {
	if m.muted {
		return ""
	}
	return "\a"
}

func status(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

// --- Rendering ---

func (m sessionModel) view() string {
	if m.width < 20 {
		return "Terminal too small"
	}
	w := m.width - 4

	snap := m.engine.Snapshot()
	steps := m.engine.Steps()

	switch {
	case !snap.Started():
		return m.renderWelcome(w, steps)
	case snap.CurrentStepIndex >= len(steps):
		return m.renderSummary(w, snap, steps)
	default:
		return m.renderRunning(w, snap, steps)
	}
}

func (m sessionModel) renderWelcome(w int, steps []timer.Step) string {
	total := timer.TotalPlannedSeconds(steps)
	h := int(total) / 3600
	mins := (int(total) % 3600) / 60

	content := lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render("準備はいいですか？"),
		"",
		mutedStyle.Render(fmt.Sprintf("合計時間: %d時間 %d分", h, mins)),
		mutedStyle.Render(fmt.Sprintf("%d 工程", len(steps))),
		"",
		highlightStyle.Render("Press s to start"),
	)
	return panelStyle.Width(w).Render(content)
}

func (m sessionModel) renderRunning(w int, snap timer.State, steps []timer.Step) string {
	totalElapsed, stepElapsed := m.engine.Elapsed()
	prog := timer.Calculate(steps, totalElapsed, snap.CurrentStepIndex, stepElapsed)
	step := steps[snap.CurrentStepIndex]

	stepPanel := m.renderStepPanel(w, snap, step, stepElapsed)
	pacePanel := m.renderPacePanel(w, snap, prog, totalElapsed)
	strip := m.renderStepStrip(w, snap, steps, prog)

	return lipgloss.JoinVertical(lipgloss.Left, stepPanel, pacePanel, strip)
}

func (m sessionModel) renderStepPanel(w int, snap timer.State, step timer.Step, stepElapsed float64) string {
	planned := step.PlannedSeconds()
	remaining := planned - stepElapsed

	var ratio float64
	if planned > 0 {
		ratio = stepElapsed / planned
	}
	pace := timer.StepPace(ratio)
	badge := lipgloss.NewStyle().Foreground(lipgloss.Color(pace.Color)).Bold(true).Render(pace.Text)

	countdown := timer.FormatStepClock(remaining)
	clock := clockRunningStyle
	if remaining < 0 {
		clock = lipgloss.NewStyle().Bold(true).Foreground(colorError).Align(lipgloss.Center)
	}

	barRatio := ratio
	if barRatio > 1 {
		barRatio = 1
	}
	bar := renderBar(w-8, barRatio*100, pace.Color)

	header := fmt.Sprintf("%s  %s", titleStyle.Render(step.Name), badge)
	sub := mutedStyle.Render(fmt.Sprintf("予定 %s / 経過 %s",
		timer.FormatNatural(planned), timer.FormatNatural(stepElapsed)))

	content := lipgloss.JoinVertical(lipgloss.Center,
		header,
		clock.Width(w-6).Render(countdown),
		bar,
		sub,
	)
	return activePanelStyle.Width(w).Render(content)
}

func (m sessionModel) renderPacePanel(w int, snap timer.State, prog timer.Progress, totalElapsed float64) string {
	statusLine := lipgloss.NewStyle().
		Foreground(lipgloss.Color(prog.Status.Color)).
		Bold(true).
		Render(prog.Status.Message)

	sessionClock := fmt.Sprintf("%s %s",
		mutedStyle.Render("経過"),
		titleStyle.Render(timer.FormatClock(totalElapsed)),
	)

	scheduleBar := fmt.Sprintf("%s %s",
		mutedStyle.Render("予定"),
		renderBar(w-12, prog.ScheduleProgressPercent, "#666666"),
	)
	actualBar := fmt.Sprintf("%s %s",
		mutedStyle.Render("実績"),
		renderBar(w-12, prog.ActualProgressPercent, prog.Status.Color),
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		sessionClock,
		"",
		scheduleBar,
		actualBar,
		"",
		statusLine,
	)
	return panelStyle.Width(w).Render(content)
}

// renderStepStrip draws one segment per step, sized by its share of the total
// planned time, with completed steps dimmed and the current one highlighted.
func (m sessionModel) renderStepStrip(w int, snap timer.State, steps []timer.Step, prog timer.Progress) string {
	cells := w - 6
	if cells < len(steps) {
		cells = len(steps)
	}

	var b strings.Builder
	used := 0
	for i := range steps {
		n := int(prog.StepWidths[i] / 100 * float64(cells))
		if n < 1 {
			n = 1
		}
		if i == len(steps)-1 {
			n = cells - used
			if n < 1 {
				n = 1
			}
		}
		used += n

		seg := strings.Repeat("▆", n)
		switch {
		case i < snap.CurrentStepIndex:
			b.WriteString(mutedStyle.Render(seg))
		case i == snap.CurrentStepIndex:
			b.WriteString(successStyle.Render(seg))
		default:
			b.WriteString(lipgloss.NewStyle().Foreground(colorSubtle).Render(seg))
		}
	}

	label := mutedStyle.Render(fmt.Sprintf("工程 %d/%d", snap.CurrentStepIndex+1, len(steps)))
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, b.String(), label))
}

func (m sessionModel) renderSummary(w int, snap timer.State, steps []timer.Step) string {
	names := make(map[int64]string, len(steps))
	for _, st := range steps {
		names[st.ID] = st.Name
	}

	title := titleStyle.Render("セッション完了")
	if snap.FinishReason == timer.FinishSkipped {
		title = titleStyle.Render("セッション終了（スキップ）")
	}

	var rows []string
	rows = append(rows, title, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-24s %10s %10s %10s", "工程", "予定", "実績", "差")))

	var totalPlanned, totalActual float64
	for _, r := range snap.CompletedSteps {
		name, ok := names[r.StepID]
		if !ok {
			name = fmt.Sprintf("工程%d", r.StepID)
		}
		diff := formatSignedShort(r.Difference)
		rows = append(rows, fmt.Sprintf("  %-24s %10s %10s %10s",
			name,
			timer.FormatShort(r.PlannedDuration),
			timer.FormatShort(r.ActualDuration),
			diff,
		))
		totalPlanned += r.PlannedDuration
		totalActual += r.ActualDuration
	}

	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 58))))
	rows = append(rows, fmt.Sprintf("  %-24s %10s %10s %10s",
		"合計",
		timer.FormatShort(totalPlanned),
		timer.FormatShort(totalActual),
		formatSignedShort(totalActual-totalPlanned),
	))
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  r: 新しいセッション"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func formatSignedShort(seconds float64) string {
	s := timer.FormatShort(seconds)
	if seconds > 0 {
		return "+" + s
	}
	return s
}

func renderBar(width int, percent float64, colorHex string) string {
	if width < 4 {
		width = 4
	}
	filled := int(percent / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	bar := lipgloss.NewStyle().Foreground(lipgloss.Color(colorHex)).Render(strings.Repeat("█", filled))
	rest := lipgloss.NewStyle().Foreground(colorSubtle).Render(strings.Repeat("░", width-filled))
	return bar + rest
}
