// Package schedulertest drives a Scheduler over a fake clock.
package schedulertest

import (
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/MrJamesThe3rd/billroom/internal/scheduler"
)

var Epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// New returns a scheduler over a fake clock set to Epoch.
func New() (*scheduler.Scheduler, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClockAt(Epoch)
	return scheduler.New(clock, slog.Default()), clock
}

// AdvanceTo moves the clock forward to target, stopping at every deadline on
// the way so each effect observes its own fire time.
func AdvanceTo(s *scheduler.Scheduler, clock *clockwork.FakeClock, target time.Time) {
	for {
		next, ok := s.NextDeadline()
		if !ok || next.After(target) {
			break
		}

		if d := next.Sub(clock.Now()); d > 0 {
			clock.Advance(d)
		}

		s.RunDue()
	}

	if d := target.Sub(clock.Now()); d > 0 {
		clock.Advance(d)
	}

	s.RunDue()
}

// Advance moves the clock forward by d.
func Advance(s *scheduler.Scheduler, clock *clockwork.FakeClock, d time.Duration) {
	AdvanceTo(s, clock, clock.Now().Add(d))
}
