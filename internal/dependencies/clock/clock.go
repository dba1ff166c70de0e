// Package clock abstracts wall time so ticket and credential expiry can be
// driven by tests.
package clock

import "time"

// Clock reports the current time
type Clock interface {
	Now() time.Time
}

// SystemClock reads the system clock in UTC
type SystemClock struct{}

// New returns the system clock
func New() SystemClock {
	return SystemClock{}
}

// Now returns the current UTC time without a monotonic reading, so that
// values survive storage round trips unchanged
func (SystemClock) Now() time.Time {
	return time.Now().UTC().Round(0)
}
