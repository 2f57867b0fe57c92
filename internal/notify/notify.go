// Package notify provides the best-effort, in-process step-end reminder
// scheduler consumed by the timer engine. Reminders are fire-and-forget: a
// cancelled handle that already fired, or one the scheduler has never seen,
// is treated as successfully cancelled — the desired end state (no pending
// reminder) already holds.
package notify

import (
	"sync"
	"time"

	"github.com/sadopc/pacer/internal/timer"
)

// Reminder is a fired step-end notification, delivered to the sink callback.
type Reminder struct {
	Title string
	Body  string
}

// Scheduler implements timer.Scheduler over time.AfterFunc.
type Scheduler struct {
	mu     sync.Mutex
	next   int64
	timers map[timer.Handle]*time.Timer
	sink   func(Reminder)
}

// NewScheduler creates a scheduler delivering fired reminders to sink. The
// sink runs on the timer goroutine and must not block.
func NewScheduler(sink func(Reminder)) *Scheduler {
	return &Scheduler{
		timers: make(map[timer.Handle]*time.Timer),
		sink:   sink,
	}
}

func (s *Scheduler) Schedule(title, body string, delay time.Duration) timer.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	h := timer.Handle(s.next)
	s.timers[h] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, h)
		s.mu.Unlock()
		if s.sink != nil {
			s.sink(Reminder{Title: title, Body: body})
		}
	})
	return h
}

func (s *Scheduler) Cancel(h timer.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[h]; ok {
		t.Stop()
		delete(s.timers, h)
	}
}

// Stop cancels every outstanding reminder.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for h, t := range s.timers {
		t.Stop()
		delete(s.timers, h)
	}
}

// Pending reports how many reminders are scheduled but not yet fired.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
