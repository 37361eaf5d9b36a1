package room_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/billroom/internal/room"
	"github.com/MrJamesThe3rd/billroom/internal/transaction"
)

func tx(id, r string) transaction.Transaction {
	return transaction.Transaction{ID: id, AssignedRoom: r, Status: transaction.StatusVerifying}
}

func TestManager_BusyRoomHoldsQueue(t *testing.T) {
	m := room.NewManager()
	m.Enqueue(tx("A", "150"))
	m.Enqueue(tx("B", "150"))

	c, ok := m.Claim("150")
	require.True(t, ok)
	assert.Equal(t, "A", c.Transaction.ID)
	assert.True(t, m.Busy("150"))

	_, ok = m.Claim("150")
	assert.False(t, ok, "second transaction waits while the room is busy")
	assert.Equal(t, 1, m.Pending("150"))
	assert.Empty(t, m.ClaimReady())

	m.Release("150")

	c, ok = m.Claim("150")
	require.True(t, ok)
	assert.Equal(t, "B", c.Transaction.ID)
	assert.Zero(t, m.Pending("150"))
}

func TestManager_ClaimIsIdempotentWhenNothingToDo(t *testing.T) {
	m := room.NewManager()

	_, ok := m.Claim("150")
	assert.False(t, ok)
	assert.False(t, m.Busy("150"))
	assert.Empty(t, m.Snapshot())

	m.Enqueue(tx("A", "150"))
	_, ok = m.Claim("150")
	require.True(t, ok)

	before := m.Snapshot()
	for range 3 {
		assert.Empty(t, m.ClaimReady())
	}

	assert.Equal(t, before, m.Snapshot())
}

func TestManager_ClaimReadyOrder(t *testing.T) {
	m := room.NewManager()
	m.Enqueue(tx("C", "450"))
	m.Enqueue(tx("A", "150"))
	m.Enqueue(tx("B", "340"))
	m.Enqueue(tx("A2", "150"))

	claims := m.ClaimReady()
	require.Len(t, claims, 3)

	var rooms []string
	for _, c := range claims {
		rooms = append(rooms, c.Room)
	}

	assert.Equal(t, []string{"150", "340", "450"}, rooms)
	assert.Equal(t, "A", claims[0].Transaction.ID)

	assert.Equal(t, []room.Status{
		{Room: "150", Busy: true, Pending: 1},
		{Room: "340", Busy: true},
		{Room: "450", Busy: true},
	}, m.Snapshot())
}

func TestManager_ConcurrentClaimsNeverDuplicate(t *testing.T) {
	m := room.NewManager()

	rooms := []string{"110", "150", "340", "450"}
	for _, r := range rooms {
		for i := range 3 {
			m.Enqueue(tx(fmt.Sprintf("%s-%d", r, i), r))
		}
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		claims []room.Claim
	)

	for range 16 {
		wg.Go(func() {
			got := m.ClaimReady()

			for _, r := range rooms {
				if c, ok := m.Claim(r); ok {
					got = append(got, c)
				}
			}

			mu.Lock()
			claims = append(claims, got...)
			mu.Unlock()
		})
	}

	wg.Wait()

	require.Len(t, claims, len(rooms), "one claim per room while every room stays busy")

	perRoom := make(map[string]string)
	for _, c := range claims {
		_, dup := perRoom[c.Room]
		assert.False(t, dup, "room %s claimed twice", c.Room)
		perRoom[c.Room] = c.Transaction.ID
	}

	for _, r := range rooms {
		assert.Equal(t, r+"-0", perRoom[r], "head of queue is claimed first")
		assert.True(t, m.Busy(r))
		assert.Equal(t, 2, m.Pending(r))
	}
}
