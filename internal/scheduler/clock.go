package scheduler

import "time"

// Clock supplies the wall-clock instant used for trigger decisions. Tests
// substitute a fixed clock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
