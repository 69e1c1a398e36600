package persist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StudyBoard/internal/geom"
	"StudyBoard/internal/loop"
	"StudyBoard/internal/state"
)

func TestDebouncerTrailingEdge(t *testing.T) {
	m := loop.NewManual()
	runs := 0
	d := NewDebouncer(m, 500*time.Millisecond, func() { runs++ })

	d.Trigger()
	m.Advance(400 * time.Millisecond)
	d.Trigger()
	m.Advance(400 * time.Millisecond)
	assert.Zero(t, runs)
	assert.True(t, d.Pending())

	m.Advance(100 * time.Millisecond)
	assert.Equal(t, 1, runs)
	assert.False(t, d.Pending())
}

func TestDebouncerFlushAndCancel(t *testing.T) {
	m := loop.NewManual()
	runs := 0
	d := NewDebouncer(m, time.Second, func() { runs++ })

	d.Flush()
	assert.Zero(t, runs, "flush without a pending run is a no-op")

	d.Trigger()
	d.Flush()
	assert.Equal(t, 1, runs)
	m.Advance(2 * time.Second)
	assert.Equal(t, 1, runs)

	d.Trigger()
	d.Cancel()
	m.Advance(2 * time.Second)
	assert.Equal(t, 1, runs)
}

// staleScheduler delivers every timer callback even after Stop, like a
// wall-clock timer whose callback was already queued on the loop.
type staleScheduler struct{ fns []func() }

type nopTimer struct{}

func (nopTimer) Stop() bool { return false }

func (s *staleScheduler) AfterFunc(_ time.Duration, f func()) loop.Timer {
	s.fns = append(s.fns, f)
	return nopTimer{}
}
func (s *staleScheduler) Post(f func()) { f() }

func TestDebouncerIgnoresStaleCallbacks(t *testing.T) {
	s := &staleScheduler{}
	runs := 0
	d := NewDebouncer(s, time.Second, func() { runs++ })
	d.Trigger()
	d.Trigger()
	for _, f := range s.fns {
		f()
	}
	assert.Equal(t, 1, runs)
}

func TestBridgeEmitsLatestDeepCopy(t *testing.T) {
	m := loop.NewManual()
	doc := state.NewDocument()
	var got []*state.Document
	b := NewBridge(m, 500*time.Millisecond, func() *state.Document { return doc }, func(d *state.Document) { got = append(got, d) }, nil)

	_, err := doc.CommitStroke(state.Stroke{Tool: state.ToolPen, Points: []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}})
	require.NoError(t, err)
	b.MarkDirty()
	m.Advance(200 * time.Millisecond)

	_, err = doc.CommitStroke(state.Stroke{Tool: state.ToolPen, Points: []geom.Point{{X: 2, Y: 2}, {X: 3, Y: 3}}})
	require.NoError(t, err)
	b.MarkDirty()
	assert.True(t, b.Dirty())

	m.Advance(500 * time.Millisecond)
	require.Len(t, got, 1)
	assert.Len(t, got[0].Lines, 2)
	assert.False(t, b.Dirty())

	// Later mutation must not leak into the emitted snapshot.
	doc.AppendPoint(0, geom.Pt(9, 9))
	assert.Len(t, got[0].Lines[0].Points, 2)
}

func TestBridgeFlush(t *testing.T) {
	m := loop.NewManual()
	doc := state.NewDocument()
	emits := 0
	b := NewBridge(m, time.Second, func() *state.Document { return doc }, func(*state.Document) { emits++ }, nil)

	b.Flush()
	assert.Zero(t, emits)

	b.MarkDirty()
	b.Flush()
	assert.Equal(t, 1, emits)
	assert.False(t, b.Dirty())
	m.Advance(2 * time.Second)
	assert.Equal(t, 1, emits)

	b.MarkDirty()
	b.Discard()
	assert.False(t, b.Dirty())
	m.Advance(2 * time.Second)
	assert.Equal(t, 1, emits)
}

func TestBridgeHoldDefersEmission(t *testing.T) {
	m := loop.NewManual()
	doc := state.NewDocument()
	var got []*state.Document
	b := NewBridge(m, 500*time.Millisecond, func() *state.Document { return doc }, func(d *state.Document) { got = append(got, d) }, nil)
	busy := false
	b.Hold = func() bool { return busy }

	b.MarkDirty()
	busy = true
	m.Advance(time.Second)
	assert.Empty(t, got, "nothing is emitted while held")
	assert.True(t, b.Dirty())

	busy = false
	b.Release()
	m.Advance(499 * time.Millisecond)
	assert.Empty(t, got)
	m.Advance(time.Millisecond)
	require.Len(t, got, 1)
	assert.False(t, b.Dirty())

	b.Release()
	m.Advance(time.Second)
	assert.Len(t, got, 1, "release without a held emission does nothing")
}

func TestBridgeFlushIgnoresHold(t *testing.T) {
	m := loop.NewManual()
	doc := state.NewDocument()
	emits := 0
	b := NewBridge(m, time.Second, func() *state.Document { return doc }, func(*state.Document) { emits++ }, nil)
	b.Hold = func() bool { return true }

	b.MarkDirty()
	b.Flush()
	assert.Equal(t, 1, emits)
}
