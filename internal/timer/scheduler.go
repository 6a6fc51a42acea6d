// Package timer provides the tick-driven timer facility used by gameplay code.
//
// Everything runs on the caller's goroutine: Advance is called once per
// simulation tick and fires work in a fixed order. A timer callback returns the
// delay until it should run again; a negative delay cancels it. Defer queues a
// one-shot task for the start of the next tick, after everything spawned during
// the current tick has settled.
package timer

import "sort"

// Func is a timer callback. The return value is the next delay in seconds, or
// a negative value to stop the timer.
type Func = func() float64

type entry struct {
	seq  uint64
	due  float64
	fn   Func
	dead bool
}

// Scheduler is not safe for concurrent use. Callers serialise access the same
// way they serialise the rest of the simulation.
type Scheduler struct {
	now      float64
	seq      uint64
	timers   []*entry
	deferred []func()
}

func NewScheduler() *Scheduler { return &Scheduler{} }

// Now returns the time of the last Advance.
func (s *Scheduler) Now() float64 { return s.now }

// Start arms fn to first run delay seconds from now. A zero delay runs on the
// next Advance.
func (s *Scheduler) Start(delay float64, fn Func) {
	if fn == nil {
		return
	}
	if delay < 0 {
		delay = 0
	}
	s.seq++
	s.timers = append(s.timers, &entry{seq: s.seq, due: s.now + delay, fn: fn})
}

// Defer queues fn to run at the beginning of the next Advance.
func (s *Scheduler) Defer(fn func()) {
	if fn == nil {
		return
	}
	s.deferred = append(s.deferred, fn)
}

// Pending reports the number of live timers.
func (s *Scheduler) Pending() int {
	n := 0
	for _, e := range s.timers {
		if !e.dead {
			n++
		}
	}
	return n
}

// Advance moves the clock to now. Deferred tasks queued before this call run
// first in FIFO order; tasks they queue wait for the following Advance. Then
// every due timer fires exactly once, ordered by due time and arm order.
func (s *Scheduler) Advance(now float64) {
	if now > s.now {
		s.now = now
	}

	tasks := s.deferred
	s.deferred = nil
	for _, task := range tasks {
		task()
	}

	due := make([]*entry, 0, len(s.timers))
	for _, e := range s.timers {
		if !e.dead && e.due <= s.now+1e-9 {
			due = append(due, e)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].seq < due[j].seq
	})

	for _, e := range due {
		next := e.fn()
		if next < 0 {
			e.dead = true
			continue
		}
		e.due = s.now + next
	}

	live := s.timers[:0]
	for _, e := range s.timers {
		if !e.dead {
			live = append(live, e)
		}
	}
	for i := len(live); i < len(s.timers); i++ {
		s.timers[i] = nil
	}
	s.timers = live
}
