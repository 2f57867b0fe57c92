package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/pacer/internal/export"
	"github.com/sadopc/pacer/internal/store"
	"github.com/sadopc/pacer/internal/timer"
)

// App is the root Bubble Tea model.
type App struct {
	store  *store.Store
	engine *timer.Engine
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	session  sessionModel
	schedule scheduleModel
	presets  presetsModel
	history  historyModel

	help   help.Model
	status string
}

func NewApp(s *store.Store, engine *timer.Engine, steps []timer.Step) App {
	h := help.New()
	h.ShowAll = false

	return App{
		store:      s,
		engine:     engine,
		activeView: viewSession,
		session:    newSessionModel(engine),
		schedule:   newScheduleModel(s, steps),
		presets:    newPresetsModel(s, steps),
		history:    newHistoryModel(s),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.presets.refresh(),
		a.history.refresh(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.session.setSize(a.width, contentHeight)
		a.schedule.setSize(a.width, contentHeight)
		a.presets.setSize(a.width, contentHeight)
		a.history.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		// Export picker
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewSession
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewSchedule
			return a, nil
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewPresets
			return a, a.presets.refresh()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewHistory
			return a, a.history.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % 4
			return a, a.refreshCurrentView()
		}

	case tickMsg:
		cmds = append(cmds, tickCmd())
		var cmd tea.Cmd
		a.session, cmd = a.session.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case stepsChangedMsg:
		// Broadcast an edited schedule to the engine and every view that
		// keeps its own copy.
		a.engine.SetSteps(msg.steps)
		var cmd tea.Cmd
		a.schedule, cmd = a.schedule.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		a.presets, cmd = a.presets.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case ReminderMsg:
		a.status = fmt.Sprintf("🔔 %s", msg.Body)
		return a, nil

	case WarnMsg:
		a.status = "⚠ " + string(msg)
		return a, nil

	case statusMsg:
		a.status = msg.text
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewSession:
		a.session, cmd = a.session.update(msg)
	case viewSchedule:
		a.schedule, cmd = a.schedule.update(msg)
	case viewPresets:
		a.presets, cmd = a.presets.update(msg)
	case viewHistory:
		a.history, cmd = a.history.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewSchedule:
		return a.schedule.formActive
	case viewPresets:
		return a.presets.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewPresets:
		return a.presets.refresh()
	case viewHistory:
		return a.history.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewSession:
		content = a.session.view()
	case viewSchedule:
		content = a.schedule.view()
	case viewPresets:
		content = a.presets.view()
	case viewHistory:
		content = a.history.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("pacer")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		status = mutedStyle.Render(" " + a.status)
	}

	// Session indicator in footer
	timerInfo := ""
	if snap := a.engine.Snapshot(); snap.Active {
		total, _ := a.engine.Elapsed()
		timerInfo = successStyle.Render(" ● " + timer.FormatClock(total))
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	formats := []string{"CSV", "JSON"}
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < 1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	return func() tea.Msg {
		sessions, err := a.store.ListSessions(0)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		home, _ := os.UserHomeDir()
		dateStr := time.Now().Format("2006-01-02")

		var path string
		if format == 0 {
			path = filepath.Join(home, fmt.Sprintf("pacer-history-%s.csv", dateStr))
			if err := export.ToCSV(sessions, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(home, fmt.Sprintf("pacer-history-%s.json", dateStr))
			if err := export.ToJSON(sessions, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}
