package client

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Timer is a local cooking stopwatch
type Timer struct {
	mu        sync.Mutex
	now       func() time.Time
	running   bool
	startedAt time.Time
	elapsed   time.Duration
}

// NewTimer returns a stopped timer at zero. A nil now uses time.Now.
func NewTimer(now func() time.Time) *Timer {
	if now == nil {
		now = time.Now
	}
	return &Timer{now: now}
}

// Start resumes counting. Starting a running timer is a no-op.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return
	}
	t.running = true
	t.startedAt = t.now()
}

// Pause stops counting and keeps the elapsed time
func (t *Timer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}
	t.elapsed += t.now().Sub(t.startedAt)
	t.running = false
}

// Reset stops the timer and clears it
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = false
	t.elapsed = 0
}

// Running reports whether the timer is counting
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Elapsed returns the whole seconds counted so far
func (t *Timer) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	d := t.elapsed
	if t.running {
		d += t.now().Sub(t.startedAt)
	}
	return d.Truncate(time.Second)
}

// String renders the elapsed time as HH:MM:SS
func (t *Timer) String() string {
	return FormatClock(t.Elapsed())
}

// Run calls tick with the formatted time every interval until ctx ends
func (t *Timer) Run(ctx context.Context, interval time.Duration, tick func(string)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick(t.String())
		}
	}
}

// FormatClock renders d as HH:MM:SS. Hours are not wrapped at 24.
func FormatClock(d time.Duration) string {
	total := int(d / time.Second)
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
