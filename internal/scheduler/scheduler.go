// Package scheduler runs delayed effects from a single time-ordered queue.
//
// Every effect runs on the goroutine that drives the scheduler (Run, or
// RunDue in tests), so effects never overlap each other. Entries with the
// same deadline run in the order they were scheduled. Ordering is soft:
// a late wake-up fires everything that is due, in deadline order, but
// makes no promise about the exact wall-clock gap between effects.
package scheduler

import (
	"container/heap"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Effect is invoked with the clock time at which it actually runs.
type Effect func(now time.Time)

type entry struct {
	fireAt time.Time
	seq    uint64
	effect Effect
}

type entryHeap []*entry

func (h entryHeap) Len() int { return len(h) }
func (h entryHeap) Less(i, j int) bool {
	if h[i].fireAt.Equal(h[j].fireAt) {
		return h[i].seq < h[j].seq
	}

	return h[i].fireAt.Before(h[j].fireAt)
}
func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x any)   { *h = append(*h, x.(*entry)) }
func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]

	return e
}

type Scheduler struct {
	clock clockwork.Clock
	log   *slog.Logger

	mu    sync.Mutex
	queue entryHeap
	seq   uint64
	wake  chan struct{}
}

func New(clock clockwork.Clock, log *slog.Logger) *Scheduler {
	return &Scheduler{
		clock: clock,
		log:   log.With("component", "scheduler"),
		wake:  make(chan struct{}, 1),
	}
}

func (s *Scheduler) Now() time.Time {
	return s.clock.Now()
}

// At schedules fn to run once the clock reaches fireAt.
func (s *Scheduler) At(fireAt time.Time, fn Effect) {
	s.mu.Lock()
	s.seq++
	heap.Push(&s.queue, &entry{fireAt: fireAt, seq: s.seq, effect: fn})
	first := s.queue[0].seq == s.seq
	s.mu.Unlock()

	if first {
		select {
		case s.wake <- struct{}{}:
		default:
		}
	}
}

// After schedules fn to run d from now.
func (s *Scheduler) After(d time.Duration, fn Effect) {
	s.At(s.clock.Now().Add(d), fn)
}

// Every runs fn after initial and then every period. Ticks that were
// missed because the scheduler ran late are skipped, not replayed.
func (s *Scheduler) Every(initial, period time.Duration, fn Effect) {
	var tick Effect

	next := s.clock.Now().Add(initial)

	tick = func(now time.Time) {
		fn(now)

		next = next.Add(period)
		for !next.After(now) {
			next = next.Add(period)
		}

		s.At(next, tick)
	}

	s.At(next, tick)
}

// Pending reports the number of scheduled entries.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.queue)
}

// NextDeadline returns the earliest scheduled fire time.
func (s *Scheduler) NextDeadline() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		return time.Time{}, false
	}

	return s.queue[0].fireAt, true
}

// RunDue runs every entry whose deadline is not after the current clock
// time, including entries scheduled by the effects themselves. It returns
// the number of effects run.
func (s *Scheduler) RunDue() int {
	ran := 0

	for {
		now := s.clock.Now()

		s.mu.Lock()
		if len(s.queue) == 0 || s.queue[0].fireAt.After(now) {
			s.mu.Unlock()
			return ran
		}

		e := heap.Pop(&s.queue).(*entry)
		s.mu.Unlock()

		s.invoke(e, now)
		ran++
	}
}

func (s *Scheduler) invoke(e *entry, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("scheduled effect panicked", "fire_at", e.fireAt, "panic", r)
		}
	}()

	e.effect(now)
}

// Run drives the queue until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	select {
	case <-s.wake:
	default:
	}

	for {
		s.RunDue()

		if next, ok := s.NextDeadline(); ok {
			timer := s.clock.NewTimer(next.Sub(s.clock.Now()))

			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-s.wake:
				timer.Stop()
			case <-timer.Chan():
			}

			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.wake:
		}
	}
}
