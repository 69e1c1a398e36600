package persist

import (
	"log/slog"
	"time"

	"StudyBoard/internal/loop"
	"StudyBoard/internal/state"
)

// DefaultDelay is the quiet period before a change is emitted.
const DefaultDelay = 500 * time.Millisecond

// Bridge tracks unsaved mutations of a document and hands a deep copy to
// the owner once edits settle.
type Bridge struct {
	// Hold, when set, reports that the document is mid-gesture. A quiet
	// period ending while it holds waits for Release instead of emitting.
	Hold func() bool

	source func() *state.Document
	emit   func(*state.Document)
	deb    *Debouncer
	dirty  bool
	held   bool
	logger *slog.Logger
}

// NewBridge wires source (the live document) to emit. emit receives a
// snapshot the caller may keep.
func NewBridge(sched loop.Scheduler, delay time.Duration, source func() *state.Document, emit func(*state.Document), logger *slog.Logger) *Bridge {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bridge{source: source, emit: emit, logger: logger}
	b.deb = NewDebouncer(sched, delay, b.settle)
	return b
}

// MarkDirty records a committed mutation and restarts the quiet period.
func (b *Bridge) MarkDirty() {
	b.dirty = true
	b.deb.Trigger()
}

// Dirty reports whether mutations exist that were not emitted yet.
func (b *Bridge) Dirty() bool { return b.dirty }

// Flush emits immediately if there is anything unsaved, Hold or not.
func (b *Bridge) Flush() {
	b.deb.Cancel()
	b.fire()
}

// Discard forgets unsaved state without emitting, for when the document
// is replaced wholesale by the owner.
func (b *Bridge) Discard() {
	b.deb.Cancel()
	b.dirty = false
	b.held = false
}

// Release restarts the quiet period for an emission held back by Hold.
func (b *Bridge) Release() {
	if !b.held {
		return
	}
	b.held = false
	if b.dirty {
		b.deb.Trigger()
	}
}

func (b *Bridge) settle() {
	if b.Hold != nil && b.Hold() {
		b.held = true
		b.logger.Debug("emission held", "reason", "gesture")
		return
	}
	b.fire()
}

// fire snapshots the document as it is now, not as it was when the
// timer started, so the last emission always carries the latest state.
func (b *Bridge) fire() {
	if !b.dirty {
		return
	}
	snap := b.source().Clone()
	b.dirty = false
	b.held = false
	b.logger.Debug("emitting content", "lines", len(snap.Lines), "objects", len(snap.Objects()))
	if b.emit != nil {
		b.emit(snap)
	}
}

// Close emits anything unsaved. A surface going away with a pending save
// still delivers it.
func (b *Bridge) Close() { b.Flush() }
