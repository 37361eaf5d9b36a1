package scheduler_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/billroom/internal/scheduler"
	"github.com/MrJamesThe3rd/billroom/internal/scheduler/schedulertest"
)

func TestScheduler_RunsInDeadlineOrder(t *testing.T) {
	s, clock := schedulertest.New()

	var got []string

	s.After(3*time.Second, func(time.Time) { got = append(got, "c") })
	s.After(1*time.Second, func(time.Time) { got = append(got, "a") })
	s.After(2*time.Second, func(time.Time) { got = append(got, "b1") })
	s.After(2*time.Second, func(time.Time) { got = append(got, "b2") })

	schedulertest.Advance(s, clock, 10*time.Second)

	assert.Equal(t, []string{"a", "b1", "b2", "c"}, got)
	assert.Zero(t, s.Pending())
}

func TestScheduler_EffectObservesFireTime(t *testing.T) {
	s, clock := schedulertest.New()

	var at time.Time

	s.After(1500*time.Millisecond, func(now time.Time) { at = now })
	schedulertest.Advance(s, clock, time.Minute)

	assert.Equal(t, schedulertest.Epoch.Add(1500*time.Millisecond), at)
}

func TestScheduler_RunDueLeavesFutureEntries(t *testing.T) {
	s, clock := schedulertest.New()

	ran := 0
	s.After(time.Second, func(time.Time) { ran++ })
	s.After(time.Hour, func(time.Time) { ran++ })

	clock.Advance(2 * time.Second)
	assert.Equal(t, 1, s.RunDue())
	assert.Equal(t, 1, ran)

	next, ok := s.NextDeadline()
	require.True(t, ok)
	assert.Equal(t, schedulertest.Epoch.Add(time.Hour), next)
}

func TestScheduler_EffectsCanScheduleDueWork(t *testing.T) {
	s, clock := schedulertest.New()

	var got []int

	s.After(time.Second, func(time.Time) {
		got = append(got, 1)
		s.After(0, func(time.Time) { got = append(got, 2) })
	})

	schedulertest.Advance(s, clock, time.Second)

	assert.Equal(t, []int{1, 2}, got)
}

func TestScheduler_Every(t *testing.T) {
	s, clock := schedulertest.New()

	var ticks []time.Duration

	s.Every(500*time.Millisecond, 2*time.Second, func(now time.Time) {
		ticks = append(ticks, now.Sub(schedulertest.Epoch))
	})

	schedulertest.Advance(s, clock, 7*time.Second)

	assert.Equal(t, []time.Duration{
		500 * time.Millisecond,
		2500 * time.Millisecond,
		4500 * time.Millisecond,
		6500 * time.Millisecond,
	}, ticks)
}

func TestScheduler_EverySkipsMissedTicks(t *testing.T) {
	s, clock := schedulertest.New()

	count := 0
	s.Every(time.Second, time.Second, func(time.Time) { count++ })

	// Jump without stopping at intermediate deadlines.
	clock.Advance(10 * time.Second)
	s.RunDue()

	assert.Equal(t, 1, count)

	next, ok := s.NextDeadline()
	require.True(t, ok)
	assert.Equal(t, schedulertest.Epoch.Add(11*time.Second), next)
}

func TestScheduler_PanickingEffectDoesNotStopQueue(t *testing.T) {
	s, clock := schedulertest.New()

	ran := false

	s.After(time.Second, func(time.Time) { panic("boom") })
	s.After(2*time.Second, func(time.Time) { ran = true })

	schedulertest.Advance(s, clock, 3*time.Second)

	assert.True(t, ran)
}

func TestScheduler_Run(t *testing.T) {
	clock := clockwork.NewFakeClockAt(schedulertest.Epoch)
	s := scheduler.New(clock, slog.Default())

	fired := make(chan time.Time, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.After(5*time.Second, func(now time.Time) { fired <- now })

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(5 * time.Second)

	select {
	case now := <-fired:
		assert.Equal(t, schedulertest.Epoch.Add(5*time.Second), now)
	case <-time.After(2 * time.Second):
		t.Fatal("effect did not fire")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
