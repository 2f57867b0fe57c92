package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/pacer/internal/store"
	"github.com/sadopc/pacer/internal/timer"
)

// presetsModel manages named saved schedules: save the current one, load one
// over the active schedule, delete.
type presetsModel struct {
	store  *store.Store
	width  int
	height int

	presets []store.Preset
	steps   []timer.Step // current active schedule, for saving
	cursor  int

	formActive bool
	form       *huh.Form
	presetName *string
}

func newPresetsModel(s *store.Store, steps []timer.Step) presetsModel {
	name := ""
	return presetsModel{
		store:      s,
		steps:      append([]timer.Step(nil), steps...),
		presetName: &name,
	}
}

func (m *presetsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m presetsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		presets, _ := m.store.ListPresets()
		return presetsDataMsg{presets: presets}
	}
}

func (m presetsModel) update(msg tea.Msg) (presetsModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case presetsDataMsg:
		m.presets = msg.presets
		if m.cursor >= len(m.presets) && m.cursor > 0 {
			m.cursor = len(m.presets) - 1
		}
		return m, nil

	case stepsChangedMsg:
		m.steps = append([]timer.Step(nil), msg.steps...)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.presets)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.New):
			return m.showForm()
		case key.Matches(msg, keys.Enter):
			if len(m.presets) > 0 {
				return m.loadPreset(m.presets[m.cursor])
			}
		case key.Matches(msg, keys.Delete):
			if len(m.presets) > 0 {
				return m.deletePreset(m.presets[m.cursor])
			}
		}
	}
	return m, nil
}

func (m presetsModel) showForm() (presetsModel, tea.Cmd) {
	*m.presetName = ""
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Preset name").Value(m.presetName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
		).Title("Save current schedule"),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m presetsModel) updateForm(msg tea.Msg) (presetsModel, tea.Cmd) {
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
		name := strings.TrimSpace(*m.presetName)
		if _, err := m.store.SavePreset(name, m.steps); err != nil {
			return m, func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
			}
		}
		return m, tea.Batch(m.refresh(), status(fmt.Sprintf("プリセット「%s」を保存しました", name)))
	}

	return m, cmd
}

// loadPreset overwrites the active schedule with the preset's steps.
func (m presetsModel) loadPreset(p store.Preset) (presetsModel, tea.Cmd) {
	steps := append([]timer.Step(nil), p.Steps...)
	if err := m.store.ReplaceSteps(steps); err != nil {
		return m, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
	}
	return m, tea.Batch(
		func() tea.Msg { return stepsChangedMsg{steps: steps} },
		status(fmt.Sprintf("プリセット「%s」を読み込みました", p.Name)),
	)
}

func (m presetsModel) deletePreset(p store.Preset) (presetsModel, tea.Cmd) {
	if err := m.store.DeletePreset(p.ID); err != nil {
		return m, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
	}
	return m, m.refresh()
}

func (m presetsModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("Save Preset")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View()),
		)
	}

	var rows []string
	rows = append(rows, titleStyle.Render("Presets"), "")

	for i, p := range m.presets {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		total := timer.TotalPlannedSeconds(p.Steps)
		rows = append(rows, style.Render(fmt.Sprintf("%s%-24s %d 工程・%s",
			cursor, p.Name, len(p.Steps), timer.FormatNatural(total))))
	}
	if len(m.presets) == 0 {
		rows = append(rows, mutedStyle.Render("  No presets. Press a to save the current schedule."))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: load  a: save current  d: delete"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
