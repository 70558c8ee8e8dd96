package lending

import "time"

// Clock abstracts the current time so that engine operations and tests can
// control it deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now in UTC.
type SystemClock struct{}

// Now returns the current time in UTC.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock is a Clock that always returns the same instant, for tests.
type FixedClock struct {
	Instant time.Time
}

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time {
	return c.Instant
}
