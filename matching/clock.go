package matching

import "time"

// Clock is the current-time source used for arrival stamping, default
// expiry computation and expiry purging. Injecting it keeps the expiry
// behavior testable without real wall-clock waiting.
type Clock interface {
	Now() time.Time
}

// RealClock is the wall-clock implementation of Clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }
