// Package persist emits debounced document snapshots to the note owner.
package persist

import (
	"time"

	"StudyBoard/internal/loop"
)

// Debouncer runs fn once after Trigger calls stop arriving for delay.
type Debouncer struct {
	sched loop.Scheduler
	delay time.Duration
	fn    func()

	timer loop.Timer
	// seq identifies the live timer; a callback carrying an older value
	// was already queued when Stop lost the race and is ignored.
	seq int
}

// NewDebouncer returns a trailing-edge debouncer.
func NewDebouncer(sched loop.Scheduler, delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{sched: sched, delay: delay, fn: fn}
}

// Trigger (re)starts the quiet period.
func (d *Debouncer) Trigger() {
	d.stop()
	d.seq++
	seq := d.seq
	d.timer = d.sched.AfterFunc(d.delay, func() {
		if seq != d.seq || d.timer == nil {
			return
		}
		d.timer = nil
		d.fn()
	})
}

// Pending reports whether a run is scheduled.
func (d *Debouncer) Pending() bool { return d.timer != nil }

// Flush runs fn now if a run is pending.
func (d *Debouncer) Flush() {
	if d.timer == nil {
		return
	}
	d.stop()
	d.fn()
}

// Cancel drops a pending run.
func (d *Debouncer) Cancel() { d.stop() }

func (d *Debouncer) stop() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
}
