package loop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualFiresInDeadlineOrder(t *testing.T) {
	m := NewManual()
	var got []string
	m.AfterFunc(300*time.Millisecond, func() { got = append(got, "late") })
	m.AfterFunc(100*time.Millisecond, func() { got = append(got, "early") })

	m.Advance(99 * time.Millisecond)
	assert.Empty(t, got)

	m.Advance(time.Second)
	assert.Equal(t, []string{"early", "late"}, got)
	assert.Equal(t, 1099*time.Millisecond, m.Now())
}

func TestManualStop(t *testing.T) {
	m := NewManual()
	fired := false
	tm := m.AfterFunc(time.Second, func() { fired = true })
	assert.Equal(t, 1, m.Pending())
	assert.True(t, tm.Stop())
	assert.False(t, tm.Stop())

	m.Advance(2 * time.Second)
	assert.False(t, fired)
	assert.Zero(t, m.Pending())
}

func TestManualTimerScheduledFromCallback(t *testing.T) {
	m := NewManual()
	count := 0
	m.AfterFunc(10*time.Millisecond, func() {
		count++
		m.AfterFunc(10*time.Millisecond, func() { count++ })
	})
	m.Advance(25 * time.Millisecond)
	assert.Equal(t, 2, count)
}

func TestManualPostFromGoroutine(t *testing.T) {
	m := NewManual()
	done := make(chan struct{})
	ran := false
	go func() {
		m.Post(func() { ran = true })
		close(done)
	}()
	<-done
	m.Drain()
	assert.True(t, ran)
}

func TestAsyncDeliversThroughPost(t *testing.T) {
	calls := make(chan func(), 1)
	a := NewAsync(func(f func()) { calls <- f })

	a.AfterFunc(time.Millisecond, func() {})
	select {
	case f := <-calls:
		assert.NotNil(t, f)
	case <-time.After(time.Second):
		t.Fatal("timer callback never posted")
	}

	tm := a.AfterFunc(time.Hour, func() {})
	assert.True(t, tm.Stop())
}
