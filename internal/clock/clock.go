// Package clock provides the time source injected into the game core.
package clock

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock reports the current time
type Clock interface {
	Now() time.Time
}

// Real is the wall clock in UTC
type Real struct{}

var wall = clockwork.NewRealClock()

func (Real) Now() time.Time {
	return wall.Now().UTC()
}

// Manual is a clock that only moves when told to. Safe for concurrent use.
type Manual struct {
	fake *clockwork.FakeClock
}

func NewManual(start time.Time) *Manual {
	return &Manual{fake: clockwork.NewFakeClockAt(start)}
}

func (m *Manual) Now() time.Time {
	return m.fake.Now()
}

// Advance moves the clock forward by d
func (m *Manual) Advance(d time.Duration) {
	m.fake.Advance(d)
}

// Set moves the clock to t
func (m *Manual) Set(t time.Time) {
	m.fake.Advance(t.Sub(m.fake.Now()))
}
