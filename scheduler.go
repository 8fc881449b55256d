package main

import "time"

// Clock is the time source for the simulation and its timers
type Clock interface {
	Now() time.Time
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

// Timer is a cancellable handle returned by the Scheduler
type Timer struct {
	id       uint64
	due      time.Time
	interval time.Duration // 0 = single-shot
	fn       func()
	stopped  bool
}

// Stop cancels the timer. Safe to call more than once and from inside its own callback.
func (t *Timer) Stop() {
	if t == nil {
		return
	}
	t.stopped = true
}

// Stopped reports whether the timer was cancelled or has already fired (single-shot)
func (t *Timer) Stopped() bool {
	return t == nil || t.stopped
}

// Scheduler fires timers from Advance only. It is not safe for concurrent use;
// the Game calls it while holding the world lock.
type Scheduler struct {
	clock  Clock
	nextID uint64
	timers []*Timer
}

// NewScheduler creates a Scheduler reading time from clock
func NewScheduler(clock Clock) *Scheduler {
	return &Scheduler{clock: clock}
}

// After schedules fn to run once, d from now
func (s *Scheduler) After(d time.Duration, fn func()) *Timer {
	return s.add(d, 0, fn)
}

// Every schedules fn to run every d until stopped
func (s *Scheduler) Every(d time.Duration, fn func()) *Timer {
	if d <= 0 {
		d = time.Millisecond
	}
	return s.add(d, d, fn)
}

func (s *Scheduler) add(d, interval time.Duration, fn func()) *Timer {
	s.nextID++
	t := &Timer{
		id:       s.nextID,
		due:      s.clock.Now().Add(d),
		interval: interval,
		fn:       fn,
	}
	s.timers = append(s.timers, t)
	return t
}

// Pending returns the number of live timers
func (s *Scheduler) Pending() int {
	n := 0
	for _, t := range s.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

// Advance fires every timer due at or before now, earliest first.
// A repeating timer fires once per elapsed interval. Callbacks may add or
// stop timers; a timer stopped by an earlier callback in the same pass does not fire.
func (s *Scheduler) Advance(now time.Time) {
	for {
		t := s.nextDue(now)
		if t == nil {
			break
		}
		if t.interval > 0 {
			t.due = t.due.Add(t.interval)
		} else {
			t.stopped = true
		}
		t.fn()
	}
	s.compact()
}

func (s *Scheduler) nextDue(now time.Time) *Timer {
	var best *Timer
	for _, t := range s.timers {
		if t.stopped || t.due.After(now) {
			continue
		}
		if best == nil || t.due.Before(best.due) || (t.due.Equal(best.due) && t.id < best.id) {
			best = t
		}
	}
	return best
}

func (s *Scheduler) compact() {
	live := s.timers[:0]
	for _, t := range s.timers {
		if !t.stopped {
			live = append(live, t)
		}
	}
	for i := len(live); i < len(s.timers); i++ {
		s.timers[i] = nil
	}
	s.timers = live
}

// TimerGroup collects timers so a phase can cancel everything it started at once
type TimerGroup struct {
	s      *Scheduler
	timers []*Timer
}

// Group creates an empty TimerGroup on s
func (s *Scheduler) Group() *TimerGroup {
	return &TimerGroup{s: s}
}

// After schedules a single-shot timer owned by the group
func (g *TimerGroup) After(d time.Duration, fn func()) *Timer {
	t := g.s.add(d, 0, fn)
	g.track(t)
	return t
}

// Every schedules a repeating timer owned by the group
func (g *TimerGroup) Every(d time.Duration, fn func()) *Timer {
	if d <= 0 {
		d = time.Millisecond
	}
	t := g.s.add(d, d, fn)
	g.track(t)
	return t
}

func (g *TimerGroup) track(t *Timer) {
	live := g.timers[:0]
	for _, old := range g.timers {
		if !old.stopped {
			live = append(live, old)
		}
	}
	g.timers = append(live, t)
}

// StopAll cancels every timer created through the group
func (g *TimerGroup) StopAll() {
	for _, t := range g.timers {
		t.Stop()
	}
	g.timers = g.timers[:0]
}

// Len returns the number of live timers in the group
func (g *TimerGroup) Len() int {
	n := 0
	for _, t := range g.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}
