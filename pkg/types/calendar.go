package types

import "time"

// Clock supplies the current instant to lifecycle transitions.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant. Tests advance it by assigning
// a new value.
type FixedClock struct {
	T time.Time
}

// Now returns c.T.
func (c *FixedClock) Now() time.Time { return c.T }

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) { c.T = c.T.Add(d) }

// Calendar adds calendar days to an instant.
type Calendar interface {
	AddDays(t time.Time, days int) (time.Time, error)
}

// LocalCalendar does day arithmetic on the wall clock of Location, so that
// adding one day across a daylight-saving change keeps the time of day
// rather than adding 24 hours. A nil Location means time.Local.
type LocalCalendar struct {
	Location *time.Location
}

// Years outside this range cannot be stored as RFC3339 timestamps.
const (
	minCalendarYear = 1
	maxCalendarYear = 9999
)

// AddDays returns t shifted by days calendar days in the calendar's
// location. It returns ErrDateOutOfRange when the result falls outside
// years 1 through 9999.
func (c LocalCalendar) AddDays(t time.Time, days int) (time.Time, error) {
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	result := t.In(loc).AddDate(0, 0, days)
	if y := result.Year(); y < minCalendarYear || y > maxCalendarYear {
		return t, ErrDateOutOfRange
	}
	return result, nil
}
