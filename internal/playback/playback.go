// Package playback schedules a built script onto the scheduler and commits its
// messages as their times come due.
package playback

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrJamesThe3rd/billroom/internal/chat"
	"github.com/MrJamesThe3rd/billroom/internal/events"
	"github.com/MrJamesThe3rd/billroom/internal/ledger"
	"github.com/MrJamesThe3rd/billroom/internal/metrics"
	"github.com/MrJamesThe3rd/billroom/internal/network"
	"github.com/MrJamesThe3rd/billroom/internal/room"
	"github.com/MrJamesThe3rd/billroom/internal/scheduler"
	"github.com/MrJamesThe3rd/billroom/internal/script"
	"github.com/MrJamesThe3rd/billroom/internal/transaction"
)

// Sequence is everything a step needs to know about the transaction being played.
type Sequence struct {
	Room          string
	FinanceRoom   string
	TransactionID string
	Cast          script.Cast
	Start         time.Time
	Script        script.Script
}

type Config struct {
	TypingLead       time.Duration
	SettleDelay      time.Duration
	PlaceholderDelay time.Duration
}

func DefaultConfig() Config {
	return Config{
		TypingLead:       2 * time.Second,
		SettleDelay:      4 * time.Second,
		PlaceholderDelay: 3 * time.Second,
	}
}

type Deps struct {
	Scheduler *scheduler.Scheduler
	Gate      *network.Gate
	Chat      *chat.Store
	Ledger    *ledger.Ledger
	Rooms     *room.Manager
	Metrics   *metrics.Metrics
	Events    events.Publisher
	Log       *slog.Logger
}

type Player struct {
	sched   *scheduler.Scheduler
	gate    *network.Gate
	chat    *chat.Store
	ledger  *ledger.Ledger
	rooms   *room.Manager
	metrics *metrics.Metrics
	events  events.Publisher
	log     *slog.Logger
	cfg     Config
}

func New(deps Deps, cfg Config) *Player {
	pub := deps.Events
	if pub == nil {
		pub = events.Discard
	}

	return &Player{
		sched:   deps.Scheduler,
		gate:    deps.Gate,
		chat:    deps.Chat,
		ledger:  deps.Ledger,
		rooms:   deps.Rooms,
		metrics: deps.Metrics,
		events:  pub,
		log:     deps.Log.With("component", "playback"),
		cfg:     cfg,
	}
}

// Play pushes every timer of the sequence onto the scheduler at once: a typing
// and a commit timer per step, then the three teardown stages. It returns the
// time at which the room will be released.
func (p *Player) Play(seq Sequence) time.Time {
	for i, step := range seq.Script.Steps {
		typingAt := max(step.Offset-p.cfg.TypingLead, 0)

		p.sched.At(seq.Start.Add(typingAt), func(time.Time) {
			p.typing(seq, step)
		})
		p.sched.At(seq.Start.Add(step.Offset), func(now time.Time) {
			p.commit(seq, i, step, now)
		})
	}

	settle := seq.Start.Add(seq.Script.Last() + p.cfg.SettleDelay)
	next := settle.Add(p.cfg.PlaceholderDelay)
	done := next.Add(p.cfg.PlaceholderDelay)

	p.sched.At(settle, func(now time.Time) {
		p.placeholder(seq, chat.KindProcessing, "Processing...", now)
	})
	p.sched.At(next, func(now time.Time) {
		p.placeholder(seq, chat.KindNextOrder, "Next Order Hire", now)
	})
	p.sched.At(done, func(time.Time) {
		p.release(seq)
	})

	p.log.Debug("sequence scheduled",
		"transaction_id", seq.TransactionID,
		"room", seq.Room,
		"steps", len(seq.Script.Steps),
		"release_at", done,
	)

	return done
}

func (p *Player) typing(seq Sequence, step script.Step) {
	if !p.gate.Online() {
		p.metrics.StepSuppressed("typing")
		return
	}

	p.chat.SetTyping(chat.Typing{
		Name:       step.Sender.Name,
		IsEmployee: step.Sender.IsEmployee,
		Channel:    step.Channel,
	})
}

func (p *Player) commit(seq Sequence, i int, step script.Step, now time.Time) {
	if !p.gate.Online() {
		p.metrics.StepSuppressed("commit")
		p.log.Debug("offline, step suppressed", "transaction_id", seq.TransactionID, "step", i)

		return
	}

	p.chat.ClearTyping(step.Channel)
	p.chat.Append(chat.Message{
		ID:         fmt.Sprintf("chat-%s-%d", seq.TransactionID, i),
		SenderID:   step.Sender.ID,
		SenderName: step.Sender.Name,
		Text:       step.Text,
		Timestamp:  now,
		IsEmployee: step.Sender.IsEmployee,
		Channel:    step.Channel,
		Kind:       step.Kind,
		Metadata:   step.Metadata,
	})
	p.metrics.StepCommitted()

	if step.SideEffect == script.SideEffectCommitApproval {
		p.approve(seq, now)
	}
}

func (p *Player) approve(seq Sequence, now time.Time) {
	tx, err := p.ledger.MarkVerified(seq.TransactionID, now)

	switch {
	case err == nil:
		p.metrics.Verified()
		p.events.Publish(events.New(events.TypeVerified, tx, now))
		p.log.Info("transaction verified", "transaction_id", tx.ID, "room", seq.Room)
	case errors.Is(err, transaction.ErrAlreadyVerified):
		p.log.Debug("transaction verified before approval step", "transaction_id", seq.TransactionID)
	default:
		p.log.Warn("failed to verify transaction", "transaction_id", seq.TransactionID, "error", err)
	}
}

// Teardown stages ignore the network gate so a room is never left busy.
func (p *Player) placeholder(seq Sequence, kind chat.Kind, text string, now time.Time) {
	p.chat.ClearTyping(seq.Room)
	p.chat.ClearChannel(seq.Room)
	p.chat.Append(chat.Message{
		ID:         fmt.Sprintf("sys-%s-%s", seq.TransactionID, kind),
		SenderID:   script.System.ID,
		SenderName: script.System.Name,
		Text:       text,
		Timestamp:  now,
		Channel:    seq.Room,
		Kind:       kind,
	})
}

func (p *Player) release(seq Sequence) {
	p.chat.ClearChannel(seq.Room)
	p.rooms.Release(seq.Room)

	p.log.Debug("room released", "room", seq.Room, "transaction_id", seq.TransactionID)
}
