package sweeper

import (
	"log/slog"
	"time"

	"github.com/MrJamesThe3rd/billroom/internal/events"
	"github.com/MrJamesThe3rd/billroom/internal/ledger"
	"github.com/MrJamesThe3rd/billroom/internal/metrics"
	"github.com/MrJamesThe3rd/billroom/internal/scheduler"
)

// Sweeper moves transactions that have been verified for long enough out of
// the live ledger and into the archive totals.
type Sweeper struct {
	ledger  *ledger.Ledger
	after   time.Duration
	metrics *metrics.Metrics
	events  events.Publisher
	log     *slog.Logger
}

func New(l *ledger.Ledger, archiveAfter time.Duration, m *metrics.Metrics, pub events.Publisher, log *slog.Logger) *Sweeper {
	if pub == nil {
		pub = events.Discard
	}

	return &Sweeper{
		ledger:  l,
		after:   archiveAfter,
		metrics: m,
		events:  pub,
		log:     log.With("component", "sweeper"),
	}
}

// Schedule runs Sweep every interval.
func (s *Sweeper) Schedule(sched *scheduler.Scheduler, interval time.Duration) {
	sched.Every(interval, interval, func(now time.Time) {
		s.Sweep(now)
	})
}

// Sweep archives everything verified at least archiveAfter before now and
// returns how many transactions were archived.
func (s *Sweeper) Sweep(now time.Time) int {
	removed := s.ledger.Sweep(now.Add(-s.after))
	if len(removed) == 0 {
		return 0
	}

	for _, tx := range removed {
		s.events.Publish(events.New(events.TypeArchived, tx, now))
	}

	s.metrics.Archived(len(removed))
	s.log.Info("archived verified transactions", "count", len(removed))

	return len(removed)
}
