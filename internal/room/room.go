package room

import (
	"maps"
	"slices"
	"sync"

	"github.com/MrJamesThe3rd/billroom/internal/transaction"
)

// Claim is a transaction popped off its room queue together with the room it now owns.
type Claim struct {
	Room        string
	Transaction transaction.Transaction
}

// Status describes one room for display.
type Status struct {
	Room    string `json:"room"`
	Busy    bool   `json:"busy"`
	Pending int    `json:"pending"`
}

// Manager holds the per-room FIFO queues and busy flags. A room runs at most
// one script at a time: a transaction is only popped while the room is idle,
// and the pop and the busy flag flip happen under the same lock.
type Manager struct {
	mu     sync.Mutex
	queues map[string][]transaction.Transaction
	busy   map[string]bool
}

func NewManager() *Manager {
	return &Manager{
		queues: make(map[string][]transaction.Transaction),
		busy:   make(map[string]bool),
	}
}

func (m *Manager) Enqueue(tx transaction.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.queues[tx.AssignedRoom] = append(m.queues[tx.AssignedRoom], tx)
}

// Claim pops the head of room's queue and marks it busy. It reports false when
// the room is busy or has nothing queued, in which case nothing changes.
func (m *Manager) Claim(room string) (Claim, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.claimLocked(room)
}

// ClaimReady claims every idle room with queued work, in ascending room order.
func (m *Manager) ClaimReady() []Claim {
	m.mu.Lock()
	defer m.mu.Unlock()

	var claims []Claim

	for _, room := range slices.Sorted(maps.Keys(m.queues)) {
		if c, ok := m.claimLocked(room); ok {
			claims = append(claims, c)
		}
	}

	return claims
}

func (m *Manager) claimLocked(room string) (Claim, bool) {
	q := m.queues[room]
	if m.busy[room] || len(q) == 0 {
		return Claim{}, false
	}

	tx := q[0]
	if len(q) == 1 {
		delete(m.queues, room)
	} else {
		m.queues[room] = q[1:]
	}

	m.busy[room] = true

	return Claim{Room: room, Transaction: tx}, true
}

func (m *Manager) Release(room string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.busy, room)
}

func (m *Manager) Busy(room string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.busy[room]
}

func (m *Manager) Pending(room string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.queues[room])
}

// Snapshot lists every room that is busy or has queued work, sorted by room.
func (m *Manager) Snapshot() []Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	rooms := make(map[string]struct{}, len(m.queues)+len(m.busy))
	for r := range m.queues {
		rooms[r] = struct{}{}
	}

	for r := range m.busy {
		rooms[r] = struct{}{}
	}

	out := make([]Status, 0, len(rooms))
	for _, r := range slices.Sorted(maps.Keys(rooms)) {
		out = append(out, Status{Room: r, Busy: m.busy[r], Pending: len(m.queues[r])})
	}

	return out
}
