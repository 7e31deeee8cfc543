// Package clock provides the reference instant used for expiry classification.
package clock

import "time"

// Clock reports the current instant.
type Clock interface {
	Now() time.Time
}

type systemClock struct {
	loc *time.Location
}

// System returns a wall clock whose readings are in loc.
func System(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return systemClock{loc: loc}
}

func (c systemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

type fixedClock struct {
	t time.Time
}

// Fixed returns a clock that always reports t.
func Fixed(t time.Time) Clock {
	return fixedClock{t: t}
}

func (c fixedClock) Now() time.Time {
	return c.t
}

// Today returns midnight of now's date in now's location.
func Today(c Clock) time.Time {
	now := c.Now()
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}
