// Package clock supplies the time source used for snapshot dates and
// generation timestamps, so tests can pin "now".
package clock

import "time"

// DateLayout is the calendar-date key used for snapshots (YYYY-MM-DD).
const DateLayout = "2006-01-02"

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (c RealClock) Now() time.Time {
	return time.Now().UTC()
}

type MockClock struct {
	CurrentTime time.Time
}

func (c *MockClock) Now() time.Time {
	return c.CurrentTime
}

func (c *MockClock) Advance(d time.Duration) {
	c.CurrentTime = c.CurrentTime.Add(d)
}

// Today returns the UTC date key for the clock's current time.
func Today(c Clock) string {
	return DateKey(c.Now())
}

// DateKey formats t as a snapshot date key in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ParseDateKey parses a YYYY-MM-DD snapshot key.
func ParseDateKey(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
