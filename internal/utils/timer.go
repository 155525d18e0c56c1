package utils

import "time"

// Timer measures elapsed wall-clock time. [NewTimer] starts it; [Timer.Stop]
// freezes the elapsed duration and returns it.
type Timer struct {
	startTime time.Time
	duration  time.Duration
}

// NewTimer creates a Timer that is already running.
func NewTimer() *Timer {
	return &Timer{startTime: time.Now()}
}

// Stop records and returns the time elapsed since the timer was created.
func (t *Timer) Stop() time.Duration {
	t.duration = time.Since(t.startTime)
	return t.duration
}

// Duration returns the value captured by the last Stop, or zero.
func (t *Timer) Duration() time.Duration {
	return t.duration
}
