package client

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestTimer_StartPauseReset(t *testing.T) {
	clock := &manualClock{now: time.Date(2024, 12, 8, 12, 0, 0, 0, time.UTC)}
	timer := NewTimer(clock.Now)

	assert.Equal(t, "00:00:00", timer.String())
	assert.False(t, timer.Running())

	timer.Start()
	clock.Advance(90 * time.Second)
	assert.Equal(t, "00:01:30", timer.String())

	timer.Pause()
	clock.Advance(time.Hour)
	assert.Equal(t, 90*time.Second, timer.Elapsed())

	timer.Start()
	timer.Start()
	clock.Advance(time.Hour + 500*time.Millisecond)
	assert.Equal(t, "01:01:30", timer.String())

	timer.Reset()
	assert.False(t, timer.Running())
	assert.Equal(t, time.Duration(0), timer.Elapsed())
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "00:00:59", FormatClock(59*time.Second))
	assert.Equal(t, "25:00:01", FormatClock(25*time.Hour+time.Second))
	assert.Equal(t, "00:00:00", FormatClock(-time.Second))
}

func TestTimer_RunTicksUntilCancelled(t *testing.T) {
	timer := NewTimer(nil)
	timer.Start()

	ctx, cancel := context.WithCancel(context.Background())
	ticks := make(chan string, 16)
	done := make(chan struct{})
	go func() {
		timer.Run(ctx, 5*time.Millisecond, func(s string) {
			select {
			case ticks <- s:
			default:
			}
		})
		close(done)
	}()

	select {
	case got := <-ticks:
		assert.Len(t, got, len("00:00:00"))
	case <-time.After(time.Second):
		t.Fatal("timer never ticked")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
