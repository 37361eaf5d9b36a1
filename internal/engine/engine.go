// Package engine wires the generator, room queues, playback and sweeper onto a
// single scheduler and exposes the operations the API and terminal client use.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/MrJamesThe3rd/billroom/internal/chat"
	"github.com/MrJamesThe3rd/billroom/internal/events"
	"github.com/MrJamesThe3rd/billroom/internal/generator"
	"github.com/MrJamesThe3rd/billroom/internal/importer"
	"github.com/MrJamesThe3rd/billroom/internal/ledger"
	"github.com/MrJamesThe3rd/billroom/internal/metrics"
	"github.com/MrJamesThe3rd/billroom/internal/network"
	"github.com/MrJamesThe3rd/billroom/internal/persist"
	"github.com/MrJamesThe3rd/billroom/internal/playback"
	"github.com/MrJamesThe3rd/billroom/internal/preferences"
	"github.com/MrJamesThe3rd/billroom/internal/room"
	"github.com/MrJamesThe3rd/billroom/internal/scheduler"
	"github.com/MrJamesThe3rd/billroom/internal/script"
	"github.com/MrJamesThe3rd/billroom/internal/staff"
	"github.com/MrJamesThe3rd/billroom/internal/sweeper"
	"github.com/MrJamesThe3rd/billroom/internal/transaction"
)

var ErrInvalidManual = errors.New("a manual bill needs a sender and at least one priced item")

type Deps struct {
	Clock   clockwork.Clock
	Sink    persist.Sink
	Metrics *metrics.Metrics
	Events  events.Publisher
	Log     *slog.Logger
	// Online is the initial state of the network gate.
	Online bool
}

type Engine struct {
	cfg     Config
	log     *slog.Logger
	metrics *metrics.Metrics
	events  events.Publisher

	sched  *scheduler.Scheduler
	gate   *network.Gate
	ledger *ledger.Ledger
	chat   *chat.Store
	rooms  *room.Manager
	staff  *staff.Directory
	prefs  *preferences.Store

	player  *playback.Player
	gen     *generator.Generator
	sweeper *sweeper.Sweeper

	rngMu sync.Mutex
	rng   *rand.Rand

	startOnce sync.Once
}

func New(cfg Config, deps Deps) *Engine {
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}

	sink := deps.Sink
	if sink == nil {
		sink = persist.Discard
	}

	pub := deps.Events
	if pub == nil {
		pub = events.Discard
	}

	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	master := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	e := &Engine{
		cfg:     cfg,
		log:     log.With("component", "engine"),
		metrics: deps.Metrics,
		events:  pub,
		sched:   scheduler.New(clock, log),
		gate:    network.NewGate(deps.Online, log),
		ledger:  ledger.New(sink),
		chat:    chat.NewStore(sink),
		rooms:   room.NewManager(),
		staff:   staff.NewDirectory(sink),
		prefs:   preferences.NewStore(sink),
		rng:     rand.New(rand.NewPCG(master.Uint64(), master.Uint64())),
	}

	e.metrics.SetOnline(deps.Online)
	e.gate.OnChange(e.metrics.NetworkChanged)

	e.player = playback.New(playback.Deps{
		Scheduler: e.sched,
		Gate:      e.gate,
		Chat:      e.chat,
		Ledger:    e.ledger,
		Rooms:     e.rooms,
		Metrics:   deps.Metrics,
		Events:    pub,
		Log:       log,
	}, cfg.Playback)

	e.gen = generator.New(generator.Deps{
		Gate:    e.gate,
		Staff:   e.staff,
		Ledger:  e.ledger,
		Rooms:   e.rooms,
		Metrics: deps.Metrics,
		Events:  pub,
		Log:     log,
	}, cfg.Routing, rand.New(rand.NewPCG(master.Uint64(), master.Uint64())))

	e.sweeper = sweeper.New(e.ledger, cfg.ArchiveAfter, deps.Metrics, pub, log)

	return e
}

// Restore loads persisted state. Missing or malformed blobs leave the
// corresponding collection empty.
func (e *Engine) Restore(ctx context.Context, repo persist.Repository) {
	var (
		txs      []transaction.Transaction
		archive  transaction.Totals
		messages []chat.Message
		roster   []staff.Employee
		theme    preferences.Theme
		authed   bool
	)

	persist.LoadJSON(ctx, repo, persist.KeyTransactions, &txs)
	persist.LoadJSON(ctx, repo, persist.KeyArchive, &archive)
	persist.LoadJSON(ctx, repo, persist.KeyMessages, &messages)
	persist.LoadJSON(ctx, repo, persist.KeyStaff, &roster)
	persist.LoadJSON(ctx, repo, persist.KeyTheme, &theme)
	persist.LoadJSON(ctx, repo, persist.KeyAuth, &authed)

	e.ledger.Restore(txs, archive)
	e.chat.Restore(messages)
	e.staff.Restore(roster)
	e.prefs.Restore(theme, authed)

	e.log.Info("state restored",
		"transactions", len(txs),
		"messages", len(messages),
		"staff", len(roster),
	)
}

// Start schedules the generator tiers, the room poll and the sweeper. It only
// has an effect the first time it is called.
func (e *Engine) Start() {
	e.startOnce.Do(func() {
		if e.cfg.RequeueOnStart {
			e.requeue()
		}

		e.gen.Schedule(e.sched, e.cfg.Tiers)
		e.sched.Every(e.cfg.PollInterval, e.cfg.PollInterval, e.Poll)
		e.sweeper.Schedule(e.sched, e.cfg.SweepInterval)
	})
}

// Run starts the engine and drives the scheduler until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	e.Start()
	return e.sched.Run(ctx)
}

func (e *Engine) Config() Config {
	return e.cfg
}

// Scheduler exposes the scheduler so callers can drive it over a fake clock.
func (e *Engine) Scheduler() *scheduler.Scheduler {
	return e.sched
}

// requeue puts restored Verifying transactions back on their room queues,
// oldest first.
func (e *Engine) requeue() {
	pending := e.ledger.List(ledger.ListFilter{Status: new(transaction.StatusVerifying)})
	slices.Reverse(pending)

	for _, tx := range pending {
		e.rooms.Enqueue(tx)
	}

	if len(pending) > 0 {
		e.log.Info("requeued unfinished transactions", "count", len(pending))
	}
}

// Poll claims every idle room with queued work and starts its sequence.
func (e *Engine) Poll(now time.Time) {
	if e.gate.Online() {
		for _, c := range e.rooms.ClaimReady() {
			e.startSequence(c, now)
		}
	}

	e.reportRooms()
}

func (e *Engine) startSequence(c room.Claim, now time.Time) {
	cast, ok := e.resolveCast(c.Room)
	if !ok {
		e.rooms.Release(c.Room)
		e.metrics.ClaimDropped()
		e.log.Warn("no staff to play transaction, dropping claim", "room", c.Room, "transaction_id", c.Transaction.ID)

		return
	}

	e.rngMu.Lock()
	sc := script.Build(c.Transaction, cast, e.cfg.Pacing, e.rng)
	e.rngMu.Unlock()

	e.player.Play(playback.Sequence{
		Room:          c.Room,
		FinanceRoom:   e.cfg.Routing.FinanceRoom,
		TransactionID: c.Transaction.ID,
		Cast:          cast,
		Start:         now,
		Script:        sc,
	})
	e.metrics.Claimed()
}

// resolveCast picks the room's owner (or the first profile) as the salesperson
// and the finance room's owner as the approver.
func (e *Engine) resolveCast(roomID string) (script.Cast, bool) {
	emp, ok := e.staff.ByRoom(roomID)
	if !ok {
		all := e.staff.List()
		if len(all) == 0 {
			return script.Cast{}, false
		}

		emp = all[0]
	}

	finance := script.Participant{ID: "finance", Name: DefaultFinanceName, IsEmployee: true}
	if fe, ok := e.staff.ByRoom(e.cfg.Routing.FinanceRoom); ok {
		finance = script.Participant{ID: fe.ID.String(), Name: fe.Name, IsEmployee: true}
	}

	return script.Cast{
		Staff:   script.Participant{ID: emp.ID.String(), Name: emp.Name, IsEmployee: true},
		Finance: finance,
		Rooms: script.Rooms{
			Cash:    e.cfg.Routing.CashRoom,
			Finance: e.cfg.Routing.FinanceRoom,
			VIP:     e.cfg.Routing.VIPRoom,
		},
	}, true
}

func (e *Engine) reportRooms() {
	var busy, queued int

	for _, s := range e.rooms.Snapshot() {
		if s.Busy {
			busy++
		}

		queued += s.Pending
	}

	e.metrics.SetRooms(busy, queued)
}

// ManualParams describes a bill typed in by an operator.
type ManualParams struct {
	SenderName      string
	SenderAddress   string
	ReceiverName    string
	ReceiverAddress string
	Self            bool
	Items           []transaction.Product
	Extras          []string
}

// SubmitManual records a manual bill as Verifying and queues it exactly like a
// generated one.
func (e *Engine) SubmitManual(p ManualParams) (transaction.Transaction, error) {
	if strings.TrimSpace(p.SenderName) == "" || len(p.Items) == 0 {
		return transaction.Transaction{}, ErrInvalidManual
	}

	var subtotal int64

	for _, it := range p.Items {
		if strings.TrimSpace(it.Name) == "" || it.Price <= 0 {
			return transaction.Transaction{}, ErrInvalidManual
		}

		if it.Price > transaction.MaxSubtotal-subtotal {
			return transaction.Transaction{}, fmt.Errorf("%w: bill total too large", ErrInvalidManual)
		}

		subtotal += it.Price
	}

	now := e.sched.Now()

	receiver, receiverAddr := p.ReceiverName, p.ReceiverAddress
	if p.Self {
		receiver, receiverAddr = transaction.SelfCash, transaction.CounterSaleAddress
	}

	e.rngMu.Lock()
	id := transaction.NewManualID(e.rng, now)
	assigned := e.cfg.Routing.ManualRoom(e.rng, p.Self, e.staff.List())
	e.rngMu.Unlock()

	items := slices.Clone(p.Items)
	for i := range items {
		items[i].GSTRate = transaction.GSTRate
	}

	tx := transaction.Transaction{
		ID:              id,
		SenderName:      strings.TrimSpace(p.SenderName),
		SenderAddress:   p.SenderAddress,
		ReceiverName:    receiver,
		ReceiverAddress: receiverAddr,
		Date:            now,
		Items:           items,
		Extras:          slices.Clone(p.Extras),
		Manual:          true,
		CreatedAt:       now,
		Status:          transaction.StatusVerifying,
		AssignedRoom:    assigned,
	}
	transaction.ComputeAmounts(items).Apply(&tx)

	if err := e.ledger.Add(tx); err != nil {
		return transaction.Transaction{}, fmt.Errorf("recording manual bill: %w", err)
	}

	e.rooms.Enqueue(tx)
	e.events.Publish(events.New(events.TypeCreated, tx, now))
	e.log.Info("manual bill submitted", "transaction_id", tx.ID, "room", tx.AssignedRoom)

	return tx, nil
}

// MarkVerified verifies a transaction outside of its scripted sequence.
func (e *Engine) MarkVerified(id string) (transaction.Transaction, error) {
	now := e.sched.Now()

	tx, err := e.ledger.MarkVerified(id, now)
	if err != nil {
		return tx, err
	}

	e.metrics.Verified()
	e.events.Publish(events.New(events.TypeVerified, tx, now))

	return tx, nil
}

// SetOnline drives the network gate and reports whether the state changed.
func (e *Engine) SetOnline(online bool) bool {
	return e.gate.Set(online)
}

func (e *Engine) Online() bool {
	return e.gate.Online()
}

func (e *Engine) Transactions(filter ledger.ListFilter) []transaction.Transaction {
	return e.ledger.List(filter)
}

func (e *Engine) Transaction(id string) (transaction.Transaction, error) {
	return e.ledger.Get(id)
}

// Totals are the archive plus every live verified transaction.
func (e *Engine) Totals() transaction.Totals {
	return e.ledger.Totals()
}

func (e *Engine) Archive() transaction.Totals {
	return e.ledger.Archive()
}

func (e *Engine) Messages(channel string) []chat.Message {
	return e.chat.Messages(channel)
}

func (e *Engine) Typing() map[string]chat.Typing {
	return e.chat.Typing()
}

func (e *Engine) Rooms() []room.Status {
	return e.rooms.Snapshot()
}

func (e *Engine) Staff() []staff.Employee {
	return e.staff.List()
}

func (e *Engine) AddStaff(p staff.CreateParams) (staff.Employee, error) {
	return e.staff.Add(p)
}

func (e *Engine) UpdateStaff(emp staff.Employee) error {
	return e.staff.Update(emp)
}

// ImportStaff parses a roster upload and adds every profile, or none.
func (e *Engine) ImportStaff(r io.Reader) ([]staff.Employee, error) {
	params, err := importer.ParseRoster(r)
	if err != nil {
		return nil, fmt.Errorf("parsing roster: %w", err)
	}

	added, err := e.staff.AddBatch(params)
	if err != nil {
		return nil, fmt.Errorf("adding roster: %w", err)
	}

	e.log.Info("staff roster imported", "count", len(added))

	return added, nil
}

func (e *Engine) Theme() preferences.Theme {
	return e.prefs.Theme()
}

func (e *Engine) SetTheme(t preferences.Theme) error {
	return e.prefs.SetTheme(t)
}

func (e *Engine) ToggleTheme() preferences.Theme {
	return e.prefs.ToggleTheme()
}

func (e *Engine) Authenticated() bool {
	return e.prefs.Authenticated()
}

func (e *Engine) SetAuthenticated(v bool) {
	e.prefs.SetAuthenticated(v)
}
