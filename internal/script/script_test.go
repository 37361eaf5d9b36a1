package script_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/billroom/internal/chat"
	"github.com/MrJamesThe3rd/billroom/internal/script"
	"github.com/MrJamesThe3rd/billroom/internal/transaction"
)

var cast = script.Cast{
	Staff:   script.Participant{ID: "emp-1", Name: "Vaghani Riya", IsEmployee: true},
	Finance: script.Participant{ID: "emp-2", Name: "Head Finance", IsEmployee: true},
	Rooms:   script.Rooms{Cash: "340", Finance: "210", VIP: "450"},
}

func bill(room, receiver string) transaction.Transaction {
	tx := transaction.Transaction{
		ID:           "SDMPO1234567",
		SenderName:   "Sojitra Hansaben",
		ReceiverName: receiver,
		Items:        []transaction.Product{{Name: "Solitaire Ring", Price: 10_000_000}},
		Status:       transaction.StatusVerifying,
		AssignedRoom: room,
	}
	transaction.ComputeAmounts(tx.Items).Apply(&tx)

	return tx
}

func TestBuild_Shape(t *testing.T) {
	type testCase struct {
		name      string
		tx        transaction.Transaction
		wantSteps int
		wantFee   int64
	}

	tests := []testCase{
		{
			name:      "self sale skips bank details",
			tx:        bill("340", transaction.SelfCash),
			wantSteps: 19,
		},
		{
			name:      "two-party sale",
			tx:        bill("150", "Gajera Diya"),
			wantSteps: 20,
			wantFee:   script.BankCharge,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := script.Build(tc.tx, cast, script.DefaultPacing(), rand.New(rand.NewPCG(7, 7)))

			require.Len(t, s.Steps, tc.wantSteps)
			assert.Equal(t, tc.tx.ID, s.TransactionID)
			assert.Equal(t, tc.tx.AssignedRoom, s.Room)

			for i := 1; i < len(s.Steps); i++ {
				assert.Greater(t, s.Steps[i].Offset, s.Steps[i-1].Offset, "step %d", i)
			}

			assert.Equal(t, s.Steps[len(s.Steps)-1].Offset, s.Last())
			assert.Equal(t, chat.KindInvoiceBanner, s.Steps[0].Kind)

			var approvals, lastFinance, approvalIdx int
			var breakdown *chat.Breakdown

			for i, st := range s.Steps {
				if st.Channel == "210" {
					lastFinance = i
				}

				if st.SideEffect == script.SideEffectCommitApproval {
					approvals++
					approvalIdx = i
				}

				if st.Kind == chat.KindBillBreakdown {
					breakdown = st.Metadata.Breakdown
				}
			}

			assert.Equal(t, 1, approvals)
			assert.Equal(t, lastFinance, approvalIdx, "approval is the last finance step")
			assert.Equal(t, "210", s.Steps[approvalIdx].Channel)

			require.NotNil(t, breakdown)
			assert.Equal(t, tc.wantFee, breakdown.BankCharge)
			assert.Equal(t, tc.tx.Total+tc.wantFee, breakdown.FinalTotal)

			final := s.Steps[len(s.Steps)-2]
			assert.Equal(t, chat.KindFinanceApproval, final.Kind)
			assert.Equal(t, tc.tx.ID, final.Metadata.TransactionID)
		})
	}
}

func TestBuild_Deterministic(t *testing.T) {
	tx := bill("150", "Gajera Diya")

	a := script.Build(tx, cast, script.DefaultPacing(), rand.New(rand.NewPCG(1, 2)))
	b := script.Build(tx, cast, script.DefaultPacing(), rand.New(rand.NewPCG(1, 2)))

	assert.Equal(t, a, b)
}

func TestBuild_PacingBounds(t *testing.T) {
	p := script.DefaultPacing()
	s := script.Build(bill("150", "Gajera Diya"), cast, p, rand.New(rand.NewPCG(3, 4)))

	prev := s.Steps[0].Offset
	assert.Equal(t, p.Banner, prev)

	for _, st := range s.Steps[1:] {
		gap := st.Offset - prev
		prev = st.Offset

		assert.GreaterOrEqual(t, gap, p.Handoff)
		assert.LessOrEqual(t, gap, p.ConversationMax)
	}
}

func TestBuild_Greeting(t *testing.T) {
	type testCase struct {
		room string
		want string
	}

	tests := []testCase{
		{room: "450", want: "Welcome Sojitra Hansaben (VIP). Priority handling active."},
		{room: "340", want: "Counter Sales: Sojitra Hansaben."},
		{room: "150", want: "Hansaben, receipt ne details verify karavo."},
	}

	for _, tc := range tests {
		t.Run(tc.room, func(t *testing.T) {
			s := script.Build(bill(tc.room, "Gajera Diya"), cast, script.DefaultPacing(), rand.New(rand.NewPCG(1, 1)))
			assert.Equal(t, tc.want, s.Steps[1].Text)
		})
	}
}

func TestCourtesy(t *testing.T) {
	type testCase struct {
		in   string
		want string
	}

	tests := []testCase{
		{in: "Self (Cash)", want: "Sir/Ma'am"},
		{in: "Jadeja Sandhiyaba Abdulbhai", want: "Sandhiyaba"},
		{in: "Patel Diya", want: "Diyaben"},
		{in: "Kakadiya Savitaben", want: "Savitaben"},
		{in: "Riya", want: "Riyaben"},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, script.Courtesy(tc.in))
		})
	}
}
