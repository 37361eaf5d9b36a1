// Package generator synthesizes transactions on a set of timer tiers and
// routes each one to the room that will play its script.
package generator

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/MrJamesThe3rd/billroom/internal/events"
	"github.com/MrJamesThe3rd/billroom/internal/ledger"
	"github.com/MrJamesThe3rd/billroom/internal/metrics"
	"github.com/MrJamesThe3rd/billroom/internal/network"
	"github.com/MrJamesThe3rd/billroom/internal/room"
	"github.com/MrJamesThe3rd/billroom/internal/scheduler"
	"github.com/MrJamesThe3rd/billroom/internal/staff"
	"github.com/MrJamesThe3rd/billroom/internal/transaction"
)

// maxInitialDelay bounds the random delay before a tier's first tick.
const maxInitialDelay = 5 * time.Second

type Deps struct {
	Gate    *network.Gate
	Staff   *staff.Directory
	Ledger  *ledger.Ledger
	Rooms   *room.Manager
	Metrics *metrics.Metrics
	Events  events.Publisher
	Log     *slog.Logger
}

// Generator is driven from the scheduler goroutine; its rng is not shared.
type Generator struct {
	gate    *network.Gate
	staff   *staff.Directory
	ledger  *ledger.Ledger
	rooms   *room.Manager
	metrics *metrics.Metrics
	events  events.Publisher
	log     *slog.Logger
	routing Routing
	rng     *rand.Rand
}

func New(deps Deps, routing Routing, rng *rand.Rand) *Generator {
	pub := deps.Events
	if pub == nil {
		pub = events.Discard
	}

	return &Generator{
		gate:    deps.Gate,
		staff:   deps.Staff,
		ledger:  deps.Ledger,
		rooms:   deps.Rooms,
		metrics: deps.Metrics,
		events:  pub,
		log:     deps.Log.With("component", "generator"),
		routing: routing,
		rng:     rng,
	}
}

// Schedule starts one periodic timer per tier after a random initial delay.
func (g *Generator) Schedule(sched *scheduler.Scheduler, tiers []Tier) {
	for _, tier := range tiers {
		initial := time.Duration(g.rng.Int64N(int64(maxInitialDelay)))

		sched.Every(initial, tier.Period, func(now time.Time) {
			g.Tick(tier, now)
		})

		g.log.Debug("tier scheduled", "tier", tier.Name, "period", tier.Period, "initial_delay", initial)
	}
}

// Tick attempts one emission for tier. Nothing happens while offline or
// while the staff directory is empty.
func (g *Generator) Tick(tier Tier, now time.Time) (transaction.Transaction, bool) {
	if !g.gate.Online() {
		g.metrics.GeneratorSkipped(tier.Name, "offline")
		return transaction.Transaction{}, false
	}

	employees := g.staff.List()
	if len(employees) == 0 {
		g.metrics.GeneratorSkipped(tier.Name, "no_staff")
		return transaction.Transaction{}, false
	}

	tx, err := g.Synthesize(tier, employees, now)
	if err != nil {
		g.metrics.GeneratorSkipped(tier.Name, "invalid_tier")
		g.log.Warn("failed to synthesize transaction", "tier", tier.Name, "error", err)

		return transaction.Transaction{}, false
	}

	if err := g.ledger.Add(tx); err != nil {
		g.log.Warn("failed to record transaction", "tier", tier.Name, "error", err)
		return transaction.Transaction{}, false
	}

	g.rooms.Enqueue(tx)
	g.metrics.Generated(tier.Name)
	g.events.Publish(events.New(events.TypeCreated, tx, now))

	g.log.Info("transaction generated",
		"transaction_id", tx.ID,
		"tier", tier.Name,
		"room", tx.AssignedRoom,
		"total", tx.Total,
	)

	return tx, true
}

// Synthesize builds a Verifying transaction whose total lies in the tier band.
func (g *Generator) Synthesize(tier Tier, employees []staff.Employee, now time.Time) (transaction.Transaction, error) {
	price, err := tier.BasePrice(g.rng)
	if err != nil {
		return transaction.Transaction{}, fmt.Errorf("pricing tier %s: %w", tier.Name, err)
	}

	items := []transaction.Product{{
		Name:    Product(g.rng),
		Price:   price,
		GSTRate: transaction.GSTRate,
	}}
	amounts := transaction.ComputeAmounts(items)

	assigned, self := g.routing.Route(g.rng, amounts.Total, employees)

	sender := Name(g.rng)
	receiver := transaction.SelfCash
	receiverAddr := transaction.CounterSaleAddress

	if !self {
		receiver = Name(g.rng)
		for receiver == sender {
			receiver = Name(g.rng)
		}

		receiverAddr = Address(g.rng)
	}

	tx := transaction.Transaction{
		ID:              transaction.NewID(g.rng),
		SenderName:      sender,
		SenderAddress:   Address(g.rng),
		ReceiverName:    receiver,
		ReceiverAddress: receiverAddr,
		Date:            now,
		Items:           items,
		CreatedAt:       now,
		Status:          transaction.StatusVerifying,
		AssignedRoom:    assigned,
	}
	amounts.Apply(&tx)

	return tx, nil
}
