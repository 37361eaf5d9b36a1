package generator_test

import (
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/billroom/internal/generator"
	"github.com/MrJamesThe3rd/billroom/internal/ledger"
	"github.com/MrJamesThe3rd/billroom/internal/network"
	"github.com/MrJamesThe3rd/billroom/internal/persist"
	"github.com/MrJamesThe3rd/billroom/internal/room"
	"github.com/MrJamesThe3rd/billroom/internal/scheduler/schedulertest"
	"github.com/MrJamesThe3rd/billroom/internal/staff"
	"github.com/MrJamesThe3rd/billroom/internal/transaction"
)

var routing = generator.Routing{
	CashRoom:     "340",
	FinanceRoom:  "210",
	VIPRoom:      "450",
	FallbackRoom: "101",
	VIPThreshold: transaction.Rupees(10_000_000),
}

type fixture struct {
	gate   *network.Gate
	staff  *staff.Directory
	ledger *ledger.Ledger
	rooms  *room.Manager
	gen    *generator.Generator
}

func newFixture(t *testing.T, rooms ...string) *fixture {
	t.Helper()

	f := &fixture{
		gate:   network.NewGate(true, slog.Default()),
		staff:  staff.NewDirectory(persist.Discard),
		ledger: ledger.New(persist.Discard),
		rooms:  room.NewManager(),
	}

	for _, r := range rooms {
		_, err := f.staff.Add(staff.CreateParams{Name: "Emp " + r, Role: "Sales", RoomNumber: r})
		require.NoError(t, err)
	}

	f.gen = generator.New(generator.Deps{
		Gate:   f.gate,
		Staff:  f.staff,
		Ledger: f.ledger,
		Rooms:  f.rooms,
		Log:    slog.Default(),
	}, routing, rand.New(rand.NewPCG(42, 42)))

	return f
}

// With one staff member in room 150 a low tier only ever routes to 150 or the
// cash room, and every total stays inside the band.
func TestGenerator_LowTierRouting(t *testing.T) {
	f := newFixture(t, "150")
	tier := generator.Tier{Name: "low", Period: time.Second, MinTotal: 10_000, MaxTotal: 100_000}

	seen := map[string]int{}

	for range 200 {
		tx, ok := f.gen.Tick(tier, schedulertest.Epoch)
		require.True(t, ok)

		assert.GreaterOrEqual(t, tx.Total, transaction.Rupees(10_000))
		assert.LessOrEqual(t, tx.Total, transaction.Rupees(100_000))
		assert.Contains(t, []string{"150", "340"}, tx.AssignedRoom)
		assert.Equal(t, transaction.StatusVerifying, tx.Status)
		assert.Equal(t, tx.AssignedRoom == "340", tx.IsSelf())

		seen[tx.AssignedRoom]++
	}

	assert.Positive(t, seen["150"])
	assert.Positive(t, seen["340"])
	assert.Equal(t, 200, f.ledger.Len())
	assert.Equal(t, seen["150"], f.rooms.Pending("150"))
}

func TestGenerator_HighTierRouting(t *testing.T) {
	f := newFixture(t, "150")
	tier := generator.Tier{Name: "vip", Period: time.Second, MinTotal: 10_000_000, MaxTotal: 20_000_000}

	for range 100 {
		tx, ok := f.gen.Tick(tier, schedulertest.Epoch)
		require.True(t, ok)

		assert.Contains(t, []string{"450", "340"}, tx.AssignedRoom)
		assert.Equal(t, tx.AssignedRoom == "340", tx.IsSelf())
	}
}

func TestGenerator_TickSkips(t *testing.T) {
	tier := generator.DefaultTiers()[0]

	t.Run("no staff", func(t *testing.T) {
		f := newFixture(t)

		_, ok := f.gen.Tick(tier, schedulertest.Epoch)
		assert.False(t, ok)
		assert.Zero(t, f.ledger.Len())
	})

	t.Run("offline", func(t *testing.T) {
		f := newFixture(t, "150")
		f.gate.Set(false)

		_, ok := f.gen.Tick(tier, schedulertest.Epoch)
		assert.False(t, ok)
		assert.Zero(t, f.ledger.Len())
		assert.Empty(t, f.rooms.Snapshot())
	})
}

func TestGenerator_Schedule(t *testing.T) {
	f := newFixture(t, "150")
	sched, clock := schedulertest.New()

	f.gen.Schedule(sched, []generator.Tier{
		{Name: "a", Period: 25 * time.Second, MinTotal: 10_000, MaxTotal: 100_000},
		{Name: "b", Period: 40 * time.Second, MinTotal: 100_000, MaxTotal: 1_000_000},
	})

	next, ok := sched.NextDeadline()
	require.True(t, ok)
	assert.Less(t, next.Sub(schedulertest.Epoch), 5*time.Second)

	schedulertest.Advance(sched, clock, 5*time.Second)
	assert.Equal(t, 2, f.ledger.Len(), "each tier fires once within the initial delay window")

	schedulertest.Advance(sched, clock, 80*time.Second)
	// tier a: 1 + 3 more, tier b: 1 + 2 more
	assert.Equal(t, 7, f.ledger.Len())
}

func TestTier_BasePrice(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))

	for _, tier := range generator.DefaultTiers() {
		t.Run(tier.Name, func(t *testing.T) {
			require.NoError(t, tier.Validate())

			for range 200 {
				price, err := tier.BasePrice(rng)
				require.NoError(t, err)

				total := transaction.ComputeAmounts([]transaction.Product{{Price: price}}).Total
				assert.GreaterOrEqual(t, total, transaction.Rupees(tier.MinTotal))
				assert.LessOrEqual(t, total, transaction.Rupees(tier.MaxTotal))
			}
		})
	}
}

func TestTier_Validate(t *testing.T) {
	type testCase struct {
		name    string
		tier    generator.Tier
		wantErr error
		errText string
	}

	tests := []testCase{
		{
			name:    "band below fixed taxes",
			tier:    generator.Tier{Name: "tiny", Period: time.Second, MinTotal: 100, MaxTotal: 40_000},
			wantErr: generator.ErrInfeasibleTier,
		},
		{
			name:    "non-positive period",
			tier:    generator.Tier{Name: "p", MinTotal: 50_000, MaxTotal: 60_000},
			errText: "period must be positive",
		},
		{
			name:    "inverted band",
			tier:    generator.Tier{Name: "inv", Period: time.Second, MinTotal: 90_000, MaxTotal: 60_000},
			errText: "invalid band",
		},
		{
			name: "band exactly at fixed taxes",
			tier: generator.Tier{Name: "edge", Period: time.Second, MinTotal: 47_000, MaxTotal: 47_000},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.tier.Validate()

			switch {
			case tc.wantErr != nil:
				assert.ErrorIs(t, err, tc.wantErr)
			case tc.errText != "":
				assert.ErrorContains(t, err, tc.errText)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadTiers(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "tiers.yaml")
	require.NoError(t, os.WriteFile(good, []byte(`
tiers:
  - name: retail
    period: 25s
    min_total: 10000
    max_total: 100000
  - name: vip
    period: 2m30s
    min_total: 10000000
    max_total: 20000000
`), 0o600))

	tiers, err := generator.LoadTiers(good)
	require.NoError(t, err)
	require.Len(t, tiers, 2)
	assert.Equal(t, 150*time.Second, tiers[1].Period)
	assert.Equal(t, int64(10_000), tiers[0].MinTotal)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(`
tiers:
  - name: tiny
    period: 5s
    min_total: 1
    max_total: 2
`), 0o600))

	_, err = generator.LoadTiers(bad)
	assert.ErrorIs(t, err, generator.ErrInfeasibleTier)

	_, err = generator.LoadTiers(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestRouting_ManualRoom(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 5))

	only := func(rooms ...string) []staff.Employee {
		var out []staff.Employee
		for _, r := range rooms {
			out = append(out, staff.Employee{Name: "E" + r, RoomNumber: r})
		}

		return out
	}

	assert.Equal(t, "340", routing.ManualRoom(rng, true, only("150")))
	assert.Equal(t, "101", routing.ManualRoom(rng, false, only("340", "210")))

	for range 20 {
		assert.Equal(t, "150", routing.ManualRoom(rng, false, only("340", "210", "150")))
	}
}

func TestName(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 3))

	for range 100 {
		assert.Regexp(t, `^\S+ \S+( \S+bhai)?$`, generator.Name(rng))
		assert.Regexp(t, `^[A-E]-\d+, .+, Surat$`, generator.Address(rng))
	}
}
