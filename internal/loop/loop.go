// Package loop abstracts the single UI event loop the drawing surface runs
// on: cancelable deferred callbacks and posting work back onto the loop
// from other goroutines.
package loop

import (
	"sort"
	"sync"
	"time"
)

// Timer is a pending deferred callback.
type Timer interface {
	// Stop cancels the callback. It reports whether the call prevented
	// the callback from running.
	Stop() bool
}

// Scheduler runs callbacks on the UI loop.
type Scheduler interface {
	// AfterFunc runs f on the loop once d has elapsed.
	AfterFunc(d time.Duration, f func()) Timer
	// Post runs f on the loop as soon as possible. Safe to call from
	// any goroutine.
	Post(f func())
}

// Async is a wall-clock Scheduler. post hands a function to the UI loop;
// for fyne that is fyne.Do.
type Async struct {
	post func(func())
}

// NewAsync returns a wall-clock scheduler that delivers through post.
func NewAsync(post func(func())) *Async {
	return &Async{post: post}
}

type asyncTimer struct {
	t *time.Timer
}

func (a asyncTimer) Stop() bool { return a.t.Stop() }

// AfterFunc implements Scheduler. The callback may still be queued on the
// loop when Stop returns false; callers guard against that themselves.
func (a *Async) AfterFunc(d time.Duration, f func()) Timer {
	return asyncTimer{t: time.AfterFunc(d, func() { a.post(f) })}
}

// Post implements Scheduler.
func (a *Async) Post(f func()) { a.post(f) }

// Manual is a deterministic Scheduler driven by Advance and Drain. Only
// Post may be called from other goroutines.
type Manual struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*manualTimer
	posted []func()
}

// NewManual returns a scheduler whose clock starts at zero.
func NewManual() *Manual { return &Manual{} }

type manualTimer struct {
	m       *Manual
	at      time.Duration
	seq     int
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// AfterFunc implements Scheduler.
func (m *Manual) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{m: m, at: m.now + d, seq: m.seq, f: f}
	m.timers = append(m.timers, t)
	return t
}

// Post implements Scheduler.
func (m *Manual) Post(f func()) {
	m.mu.Lock()
	m.posted = append(m.posted, f)
	m.mu.Unlock()
}

// Now returns the virtual time elapsed since creation.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending returns the number of live timers.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Posted returns the number of callbacks waiting for Drain.
func (m *Manual) Posted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.posted)
}

// Drain runs posted callbacks until none are left.
func (m *Manual) Drain() {
	for {
		m.mu.Lock()
		if len(m.posted) == 0 {
			m.mu.Unlock()
			return
		}
		f := m.posted[0]
		m.posted = m.posted[1:]
		m.mu.Unlock()
		f()
	}
}

// Advance moves the clock forward by d, firing due timers in deadline
// order and draining posted callbacks along the way.
func (m *Manual) Advance(d time.Duration) {
	m.Drain()
	m.mu.Lock()
	end := m.now + d
	m.mu.Unlock()
	for {
		m.mu.Lock()
		next := m.nextDue(end)
		if next == nil {
			m.now = end
			m.mu.Unlock()
			m.Drain()
			return
		}
		m.now = next.at
		next.fired = true
		m.mu.Unlock()
		next.f()
		m.Drain()
	}
}

func (m *Manual) nextDue(end time.Duration) *manualTimer {
	live := m.timers[:0]
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	m.timers = live
	sort.SliceStable(m.timers, func(i, j int) bool {
		if m.timers[i].at != m.timers[j].at {
			return m.timers[i].at < m.timers[j].at
		}
		return m.timers[i].seq < m.timers[j].seq
	})
	if len(m.timers) == 0 || m.timers[0].at > end {
		return nil
	}
	return m.timers[0]
}
