package ledger

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/MrJamesThe3rd/billroom/internal/persist"
	"github.com/MrJamesThe3rd/billroom/internal/transaction"
)

var ErrDuplicateID = errors.New("transaction id already exists")

type ListFilter struct {
	Status *transaction.Status
	Room   *string
}

// Ledger owns the live transactions and the archive accumulator. Sweeps
// and verification serialize on the same lock, so a transaction cannot be
// archived while its approval is being committed.
type Ledger struct {
	mu      sync.RWMutex
	txs     []*transaction.Transaction // newest first
	byID    map[string]*transaction.Transaction
	archive transaction.Totals
	sink    persist.Sink
}

func New(sink persist.Sink) *Ledger {
	return &Ledger{
		byID: make(map[string]*transaction.Transaction),
		sink: sink,
	}
}

// Restore replaces the ledger content with persisted state.
func (l *Ledger) Restore(txs []transaction.Transaction, archive transaction.Totals) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.txs = make([]*transaction.Transaction, 0, len(txs))
	l.byID = make(map[string]*transaction.Transaction, len(txs))

	for _, tx := range txs {
		c := clone(tx)
		l.txs = append(l.txs, &c)
		l.byID[c.ID] = &c
	}

	l.archive = archive
}

func (l *Ledger) Add(tx transaction.Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.byID[tx.ID]; exists {
		return ErrDuplicateID
	}

	c := clone(tx)
	l.txs = slices.Insert(l.txs, 0, &c)
	l.byID[c.ID] = &c
	l.saveTransactions()

	return nil
}

func (l *Ledger) Get(id string) (transaction.Transaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	tx, ok := l.byID[id]
	if !ok {
		return transaction.Transaction{}, transaction.ErrNotFound
	}

	return clone(*tx), nil
}

// List returns matching transactions, newest first.
func (l *Ledger) List(filter ListFilter) []transaction.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]transaction.Transaction, 0, len(l.txs))

	for _, tx := range l.txs {
		if filter.Status != nil && tx.Status != *filter.Status {
			continue
		}

		if filter.Room != nil && tx.AssignedRoom != *filter.Room {
			continue
		}

		out = append(out, clone(*tx))
	}

	return out
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.txs)
}

// MarkVerified moves a Verifying transaction to Verified. The status never
// moves backwards and the verification time is only ever set once.
func (l *Ledger) MarkVerified(id string, at time.Time) (transaction.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx, ok := l.byID[id]
	if !ok {
		return transaction.Transaction{}, transaction.ErrNotFound
	}

	if tx.Status == transaction.StatusVerified {
		return clone(*tx), transaction.ErrAlreadyVerified
	}

	tx.Status = transaction.StatusVerified
	tx.VerifiedAt = &at
	l.saveTransactions()

	return clone(*tx), nil
}

// Sweep archives every transaction verified at or before cutoff: their
// amounts move into the archive accumulator and they leave the live set.
func (l *Ledger) Sweep(cutoff time.Time) []transaction.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	var removed []transaction.Transaction

	kept := l.txs[:0]

	for _, tx := range l.txs {
		if tx.Status == transaction.StatusVerified && tx.VerifiedAt != nil && !tx.VerifiedAt.After(cutoff) {
			removed = append(removed, clone(*tx))
			l.archive = l.archive.Add(tx.Contribution())
			delete(l.byID, tx.ID)

			continue
		}

		kept = append(kept, tx)
	}

	clear(l.txs[len(kept):])
	l.txs = kept

	if len(removed) > 0 {
		l.saveTransactions()
		l.sink.Put(persist.KeyArchive, l.archive)
	}

	return removed
}

// Totals returns the archive plus every live verified transaction.
func (l *Ledger) Totals() transaction.Totals {
	l.mu.RLock()
	defer l.mu.RUnlock()

	totals := l.archive

	for _, tx := range l.txs {
		if tx.Status == transaction.StatusVerified {
			totals = totals.Add(tx.Contribution())
		}
	}

	return totals
}

func (l *Ledger) Archive() transaction.Totals {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.archive
}

func (l *Ledger) saveTransactions() {
	l.sink.Put(persist.KeyTransactions, l.txs)
}

func clone(tx transaction.Transaction) transaction.Transaction {
	tx.Items = slices.Clone(tx.Items)
	tx.Extras = slices.Clone(tx.Extras)

	if tx.VerifiedAt != nil {
		at := *tx.VerifiedAt
		tx.VerifiedAt = &at
	}

	return tx
}
