package engine

import (
	"sync"
	"time"
)

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// Scheduler runs fn every d on the owner's goroutine until cancel is called.
// Implementations must deliver callbacks on the same goroutine that drives the
// Lifecycle.
type Scheduler interface {
	Every(d time.Duration, fn func()) (cancel func())
}

// RealClock reads the wall clock.
type RealClock struct{}

// Now returns time.Now.
func (RealClock) Now() time.Time { return time.Now() }

type nopScheduler struct{}

func (nopScheduler) Every(time.Duration, func()) func() { return func() {} }

// ManualClock is a Clock that only moves when told to.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock returns a clock stopped at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the simulated time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t.
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type manualTicker struct {
	seq      int
	interval time.Duration
	next     time.Time
	fn       func()
	stopped  bool
}

// ManualScheduler fires registered callbacks as its clock is advanced.
type ManualScheduler struct {
	clock   *ManualClock
	seq     int
	tickers []*manualTicker
}

// NewManualScheduler returns a scheduler driven by clock.
func NewManualScheduler(clock *ManualClock) *ManualScheduler {
	return &ManualScheduler{clock: clock}
}

// Every registers fn to fire each d of simulated time.
func (s *ManualScheduler) Every(d time.Duration, fn func()) func() {
	if d <= 0 {
		return func() {}
	}
	s.seq++
	t := &manualTicker{seq: s.seq, interval: d, next: s.clock.Now().Add(d), fn: fn}
	s.tickers = append(s.tickers, t)
	return func() { t.stopped = true }
}

// Active returns the number of registrations not yet cancelled.
func (s *ManualScheduler) Active() int {
	n := 0
	for _, t := range s.tickers {
		if !t.stopped {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d, firing every callback that falls due in
// time order. Callbacks due at the same instant fire in registration order.
func (s *ManualScheduler) Advance(d time.Duration) {
	target := s.clock.Now().Add(d)
	for {
		due := s.nextDue(target)
		if due == nil {
			break
		}
		s.clock.Set(due.next)
		due.next = due.next.Add(due.interval)
		due.fn()
	}
	s.clock.Set(target)
	s.prune()
}

func (s *ManualScheduler) nextDue(target time.Time) *manualTicker {
	var best *manualTicker
	for _, t := range s.tickers {
		if t.stopped || t.next.After(target) {
			continue
		}
		if best == nil || t.next.Before(best.next) || (t.next.Equal(best.next) && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

func (s *ManualScheduler) prune() {
	kept := s.tickers[:0]
	for _, t := range s.tickers {
		if !t.stopped {
			kept = append(kept, t)
		}
	}
	s.tickers = kept
}
