package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// tickMsg fires a scheduler registration. Registrations cancelled before the
// message arrives are ignored.
type tickMsg struct {
	id int
}

type registration struct {
	every time.Duration
	fn    func()
}

// teaScheduler delivers engine timers through the Bubble Tea update loop.
type teaScheduler struct {
	next    int
	active  map[int]registration
	pending []tea.Cmd
}

func newTeaScheduler() *teaScheduler {
	return &teaScheduler{active: map[int]registration{}}
}

// Every implements engine.Scheduler.
func (s *teaScheduler) Every(d time.Duration, fn func()) func() {
	s.next++
	id := s.next
	s.active[id] = registration{every: d, fn: fn}
	s.pending = append(s.pending, tickCmd(id, d))
	return func() { delete(s.active, id) }
}

func (s *teaScheduler) fire(id int) {
	reg, ok := s.active[id]
	if !ok {
		return
	}
	s.pending = append(s.pending, tickCmd(id, reg.every))
	reg.fn()
}

// drain returns the ticks armed since the last call.
func (s *teaScheduler) drain() tea.Cmd {
	if len(s.pending) == 0 {
		return nil
	}
	cmds := s.pending
	s.pending = nil
	return tea.Batch(cmds...)
}

func tickCmd(id int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return tickMsg{id: id}
	})
}
