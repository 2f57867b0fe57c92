package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/pacer/internal/store"
	"github.com/sadopc/pacer/internal/timer"
)

// scheduleModel edits the ordered step list the timer runs against.
type scheduleModel struct {
	store  *store.Store
	width  int
	height int

	steps  []timer.Step
	cursor int

	formActive bool
	form       *huh.Form
	editIndex  int // -1 while adding

	// Form values as pointers (survive value copies)
	stepName    *string
	stepMinutes *string
}

func newScheduleModel(s *store.Store, steps []timer.Step) scheduleModel {
	name, minutes := "", ""
	return scheduleModel{
		store:       s,
		steps:       append([]timer.Step(nil), steps...),
		editIndex:   -1,
		stepName:    &name,
		stepMinutes: &minutes,
	}
}

func (m *scheduleModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m scheduleModel) update(msg tea.Msg) (scheduleModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case stepsChangedMsg:
		m.steps = append([]timer.Step(nil), msg.steps...)
		if m.cursor >= len(m.steps) && m.cursor > 0 {
			m.cursor = len(m.steps) - 1
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.steps)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Enter):
			if len(m.steps) > 0 {
				return m.showForm(m.cursor)
			}
		case key.Matches(msg, keys.New):
			return m.showForm(-1)
		case key.Matches(msg, keys.Delete):
			if len(m.steps) > 0 {
				return m.removeStep(m.cursor)
			}
		case key.Matches(msg, keys.MoveUp):
			return m.moveStep(-1)
		case key.Matches(msg, keys.MoveDown):
			return m.moveStep(1)
		case key.Matches(msg, keys.Reset):
			return m.resetToDefault()
		}
	}
	return m, nil
}

func (m scheduleModel) showForm(index int) (scheduleModel, tea.Cmd) {
	m.editIndex = index
	if index >= 0 {
		*m.stepName = m.steps[index].Name
		*m.stepMinutes = strconv.FormatFloat(m.steps[index].DurationMinutes, 'f', -1, 64)
	} else {
		*m.stepName = ""
		*m.stepMinutes = "10"
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Step name").Value(m.stepName),
			huh.NewInput().Title("Duration (min)").Value(m.stepMinutes).
				Validate(func(s string) error {
					v, err := strconv.ParseFloat(s, 64)
					if err != nil || v <= 0 {
						return fmt.Errorf("enter a positive number of minutes")
					}
					return nil
				}),
		).Title("Step"),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m scheduleModel) updateForm(msg tea.Msg) (scheduleModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		return m.applyForm()
	}

	return m, cmd
}

func (m scheduleModel) applyForm() (scheduleModel, tea.Cmd) {
	minutes, err := strconv.ParseFloat(*m.stepMinutes, 64)
	if err != nil || minutes <= 0 {
		return m, func() tea.Msg {
			return statusMsg{text: "Invalid duration", isError: true}
		}
	}
	name := strings.TrimSpace(*m.stepName)
	if name == "" {
		name = "新規ステップ"
	}

	if m.editIndex >= 0 && m.editIndex < len(m.steps) {
		m.steps[m.editIndex].Name = name
		m.steps[m.editIndex].DurationMinutes = minutes
	} else {
		var maxID int64
		for _, st := range m.steps {
			if st.ID > maxID {
				maxID = st.ID
			}
		}
		m.steps = append(m.steps, timer.Step{ID: maxID + 1, Name: name, DurationMinutes: minutes})
		m.cursor = len(m.steps) - 1
	}
	return m.persist()
}

func (m scheduleModel) removeStep(index int) (scheduleModel, tea.Cmd) {
	m.steps = append(m.steps[:index], m.steps[index+1:]...)
	if m.cursor >= len(m.steps) && m.cursor > 0 {
		m.cursor = len(m.steps) - 1
	}
	return m.persist()
}

func (m scheduleModel) moveStep(dir int) (scheduleModel, tea.Cmd) {
	target := m.cursor + dir
	if target < 0 || target >= len(m.steps) {
		return m, nil
	}
	m.steps[m.cursor], m.steps[target] = m.steps[target], m.steps[m.cursor]
	m.cursor = target
	return m.persist()
}

func (m scheduleModel) resetToDefault() (scheduleModel, tea.Cmd) {
	m.steps = timer.DefaultSchedule()
	m.cursor = 0
	return m.persist()
}

// persist writes the edited schedule and announces it so the engine and the
// other views pick it up.
func (m scheduleModel) persist() (scheduleModel, tea.Cmd) {
	steps := append([]timer.Step(nil), m.steps...)
	if err := m.store.ReplaceSteps(steps); err != nil {
		return m, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
	}
	return m, func() tea.Msg { return stepsChangedMsg{steps: steps} }
}

func (m scheduleModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("Edit Step")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View()),
		)
	}

	total := timer.TotalPlannedSeconds(m.steps)
	header := fmt.Sprintf("%s  %s",
		titleStyle.Render("Schedule"),
		mutedStyle.Render(fmt.Sprintf("合計 %s・%d 工程", timer.FormatNatural(total), len(m.steps))),
	)

	var rows []string
	rows = append(rows, header, "")
	for i, st := range m.steps {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%2d. %-24s %6s", cursor, i+1, st.Name,
			timer.FormatNatural(st.PlannedSeconds()))))
	}
	if len(m.steps) == 0 {
		rows = append(rows, mutedStyle.Render("  No steps. Press a to add one."))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: edit  a: add  d: delete  K/J: move  r: defaults"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
