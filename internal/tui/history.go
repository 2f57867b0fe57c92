package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/pacer/internal/store"
	"github.com/sadopc/pacer/internal/timer"
)

// chartSessions is how many recent sessions the comparison chart shows.
const chartSessions = 7

// historyModel lists completed sessions and charts planned vs actual time.
type historyModel struct {
	store  *store.Store
	width  int
	height int

	sessions []store.SessionRecord
	cursor   int

	chart barchart.Model
}

func newHistoryModel(s *store.Store) historyModel {
	return historyModel{
		store: s,
		chart: barchart.New(60, 10),
	}
}

func (m *historyModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m historyModel) refresh() tea.Cmd {
	return func() tea.Msg {
		sessions, _ := m.store.ListSessions(0)
		return historyDataMsg{sessions: sessions}
	}
}

func (m historyModel) update(msg tea.Msg) (historyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case historyDataMsg:
		m.sessions = msg.sessions
		if m.cursor >= len(m.sessions) && m.cursor > 0 {
			m.cursor = len(m.sessions) - 1
		}
		m.buildChart()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.sessions)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Delete):
			if len(m.sessions) > 0 {
				m.store.DeleteSession(m.sessions[m.cursor].ID)
				return m, m.refresh()
			}
		default:
			if msg.String() == "X" {
				m.store.ClearHistory()
				return m, tea.Batch(m.refresh(), status("履歴を全件削除しました"))
			}
		}
	}
	return m, nil
}

// buildChart pairs a muted planned bar with a colored actual bar for each of
// the most recent sessions, oldest on the left.
func (m *historyModel) buildChart() {
	chartWidth := m.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	m.chart = barchart.New(chartWidth, 10)

	recent := m.sessions
	if len(recent) > chartSessions {
		recent = recent[:chartSessions]
	}

	var bars []barchart.BarData
	for i := len(recent) - 1; i >= 0; i-- {
		s := recent[i]
		plannedStyle := lipgloss.NewStyle().Foreground(colorSubtle)
		actualStyle := lipgloss.NewStyle().Foreground(colorSuccess)
		if s.TotalActualSeconds > s.TotalPlannedSeconds {
			actualStyle = lipgloss.NewStyle().Foreground(colorError)
		}

		bars = append(bars,
			barchart.BarData{
				Label: s.Date.Local().Format("01/02"),
				Values: []barchart.BarValue{
					{Name: "予定", Value: s.TotalPlannedSeconds / 60, Style: plannedStyle},
				},
			},
			barchart.BarData{
				Label: "",
				Values: []barchart.BarValue{
					{Name: "実績", Value: s.TotalActualSeconds / 60, Style: actualStyle},
				},
			},
		)
	}

	m.chart.PushAll(bars)
	m.chart.Draw()
}

func (m historyModel) view() string {
	w := m.width - 4

	if len(m.sessions) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("History"),
			"",
			mutedStyle.Render("  No completed sessions yet"),
		)
		return panelStyle.Width(w).Render(content)
	}

	header := fmt.Sprintf("%s  %s",
		titleStyle.Render("History"),
		mutedStyle.Render(fmt.Sprintf("%d 件", len(m.sessions))),
	)

	legend := fmt.Sprintf("%s %s  %s %s",
		lipgloss.NewStyle().Foreground(colorSubtle).Render("■"), mutedStyle.Render("予定(分)"),
		successStyle.Render("■"), mutedStyle.Render("実績(分)"),
	)

	list := m.renderList(w)
	detail := m.renderDetail(w)
	nav := mutedStyle.Render("  d: delete  X: clear all  e: export")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", m.chart.View(), legend, "", list, "", detail, "", nav,
		),
	)
}

func (m historyModel) renderList(w int) string {
	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-18s %10s %10s %10s", "Date", "予定", "実績", "差")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 52))))

	for i, s := range m.sessions {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		diff := s.TotalActualSeconds - s.TotalPlannedSeconds
		rows = append(rows, style.Render(fmt.Sprintf("%s%-18s %10s %10s %10s",
			cursor,
			s.Date.Local().Format("2006-01-02 15:04"),
			timer.FormatShort(s.TotalPlannedSeconds),
			timer.FormatShort(s.TotalActualSeconds),
			formatSignedShort(diff),
		)))
	}
	return strings.Join(rows, "\n")
}

// renderDetail shows the per-step breakdown of the selected session.
func (m historyModel) renderDetail(w int) string {
	if m.cursor >= len(m.sessions) {
		return ""
	}
	s := m.sessions[m.cursor]

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %s の内訳", s.Date.Local().Format("2006-01-02 15:04"))))
	for _, st := range s.Steps {
		rows = append(rows, fmt.Sprintf("    %-24s %8s → %8s (%s)",
			st.StepName,
			timer.FormatShort(st.PlannedDuration),
			timer.FormatShort(st.ActualDuration),
			formatSignedShort(st.Difference),
		))
	}
	return strings.Join(rows, "\n")
}
