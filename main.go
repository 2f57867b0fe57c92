package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/pacer/internal/notify"
	"github.com/sadopc/pacer/internal/store"
	"github.com/sadopc/pacer/internal/timer"
	"github.com/sadopc/pacer/internal/tui"
)

func main() {
	dbPath, err := store.DefaultDBPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	s, err := store.New(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	steps, err := s.GetSteps()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading schedule: %v\n", err)
		os.Exit(1)
	}

	// The scheduler needs the program to deliver fired reminders, and the
	// engine needs the scheduler; the program pointer is filled in below,
	// before Run starts delivering anything.
	var p *tea.Program
	sched := notify.NewScheduler(func(r notify.Reminder) {
		if p != nil {
			p.Send(tui.ReminderMsg(r))
		}
	})
	defer sched.Stop()

	engine := timer.NewEngine(steps, timer.Ports{
		Persist:   s,
		Reminders: sched,
		History:   s,
		Warn: func(format string, args ...any) {
			if p != nil {
				p.Send(tui.WarnMsg(fmt.Sprintf(format, args...)))
			}
		},
	})
	engine.Restore(s.LoadTimerState(time.Now()))

	app := tui.NewApp(s, engine, steps)
	p = tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
