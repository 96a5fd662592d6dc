package schedule

import "time"

// Clock supplies the current wall-clock time. Injecting it lets every
// window-status call site be tested against arbitrary "now" values
// without waiting for real time to pass.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system time.
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

// FixedClock implements Clock for tests, always returning At.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time {
	return c.At
}
