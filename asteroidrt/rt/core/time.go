package core

import (
	"time"
)

// Time tracks the frame start timestamp and the delta to the previous frame.
type Time struct {
	Time time.Time
	Dt   time.Duration
}

func NewTime(now time.Time) *Time {
	return &Time{Time: now}
}

func (t *Time) Tick(now time.Time) {
	t.Dt = now.Sub(t.Time)
	t.Time = now
}

// Seconds returns Dt as float32 seconds for camera integration.
func (t *Time) Seconds() float32 {
	return float32(t.Dt.Seconds())
}
