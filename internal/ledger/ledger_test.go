package ledger_test

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/billroom/internal/ledger"
	"github.com/MrJamesThe3rd/billroom/internal/persist"
	"github.com/MrJamesThe3rd/billroom/internal/transaction"
)

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newTx(id string, total int64) transaction.Transaction {
	return transaction.Transaction{
		ID:           id,
		Status:       transaction.StatusVerifying,
		Total:        total,
		TaxA:         transaction.FixedTaxA,
		TaxB:         transaction.FixedTaxB,
		AssignedRoom: "150",
		Items:        []transaction.Product{{Name: "Solitaire Ring", Price: total}},
	}
}

func TestLedger_Add(t *testing.T) {
	l := ledger.New(persist.Discard)

	require.NoError(t, l.Add(newTx("a", 100)))
	require.NoError(t, l.Add(newTx("b", 200)))
	assert.ErrorIs(t, l.Add(newTx("a", 300)), ledger.ErrDuplicateID)

	got := l.List(ledger.ListFilter{})
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID, "newest first")
}

func TestLedger_ReturnsCopies(t *testing.T) {
	l := ledger.New(persist.Discard)
	require.NoError(t, l.Add(newTx("a", 100)))

	got, err := l.Get("a")
	require.NoError(t, err)

	got.Items[0].Name = "changed"
	got.Status = transaction.StatusVerified

	again, err := l.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "Solitaire Ring", again.Items[0].Name)
	assert.Equal(t, transaction.StatusVerifying, again.Status)
}

func TestLedger_MarkVerified(t *testing.T) {
	l := ledger.New(persist.Discard)
	require.NoError(t, l.Add(newTx("a", 100)))

	first := base.Add(time.Minute)

	got, err := l.MarkVerified("a", first)
	require.NoError(t, err)
	assert.Equal(t, transaction.StatusVerified, got.Status)
	require.NotNil(t, got.VerifiedAt)
	assert.Equal(t, first, *got.VerifiedAt)

	got, err = l.MarkVerified("a", first.Add(time.Hour))
	assert.ErrorIs(t, err, transaction.ErrAlreadyVerified)
	assert.Equal(t, first, *got.VerifiedAt, "verification time is set once")

	_, err = l.MarkVerified("missing", first)
	assert.ErrorIs(t, err, transaction.ErrNotFound)
}

func TestLedger_ListFilter(t *testing.T) {
	l := ledger.New(persist.Discard)
	require.NoError(t, l.Add(newTx("a", 100)))
	require.NoError(t, l.Add(newTx("b", 100)))

	_, err := l.MarkVerified("a", base)
	require.NoError(t, err)

	verified := l.List(ledger.ListFilter{Status: new(transaction.StatusVerified)})
	require.Len(t, verified, 1)
	assert.Equal(t, "a", verified[0].ID)

	assert.Empty(t, l.List(ledger.ListFilter{Room: new("999")}))
}

func TestLedger_SweepKeepsGrandTotals(t *testing.T) {
	l := ledger.New(persist.Discard)

	for i := range 6 {
		id := fmt.Sprintf("tx-%d", i)
		require.NoError(t, l.Add(newTx(id, int64(1000*(i+1)))))

		if i%2 == 0 {
			_, err := l.MarkVerified(id, base.Add(time.Duration(i)*10*time.Minute))
			require.NoError(t, err)
		}
	}

	before := l.Totals()

	removed := l.Sweep(base.Add(25 * time.Minute))

	require.Len(t, removed, 2)
	assert.Equal(t, before, l.Totals())
	assert.Equal(t, 4, l.Len())
	assert.Equal(t, transaction.Totals{
		Revenue: 1000 + 3000,
		TaxA:    2 * transaction.FixedTaxA,
		TaxB:    2 * transaction.FixedTaxB,
	}, l.Archive())

	_, err := l.Get("tx-0")
	assert.ErrorIs(t, err, transaction.ErrNotFound)

	assert.Empty(t, l.Sweep(base.Add(25*time.Minute)), "second sweep is a no-op")
	assert.Equal(t, before, l.Totals())
}

func TestLedger_SweepIgnoresVerifying(t *testing.T) {
	l := ledger.New(persist.Discard)
	require.NoError(t, l.Add(newTx("a", 100)))

	assert.Empty(t, l.Sweep(base.Add(24*time.Hour)))
	assert.Equal(t, 1, l.Len())
}

func TestLedger_PersistRoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := persist.NewMemory()
	w := persist.NewWriter(mem, slog.Default())

	l := ledger.New(w)
	require.NoError(t, l.Add(newTx("a", 5000)))
	require.NoError(t, l.Add(newTx("b", 7000)))
	require.NoError(t, l.Add(newTx("c", 9000)))

	_, err := l.MarkVerified("a", base)
	require.NoError(t, err)
	_, err = l.MarkVerified("b", base.Add(time.Hour))
	require.NoError(t, err)

	l.Sweep(base.Add(time.Minute))
	require.NoError(t, w.Flush(ctx))

	var (
		txs     []transaction.Transaction
		archive transaction.Totals
	)

	require.True(t, persist.LoadJSON(ctx, mem, persist.KeyTransactions, &txs))
	require.True(t, persist.LoadJSON(ctx, mem, persist.KeyArchive, &archive))

	reloaded := ledger.New(persist.Discard)
	reloaded.Restore(txs, archive)

	assert.Equal(t, l.Totals(), reloaded.Totals())
	assert.Equal(t, l.List(ledger.ListFilter{}), reloaded.List(ledger.ListFilter{}))
}
