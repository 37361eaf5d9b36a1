// Package script builds the timed approval conversation played for a transaction.
package script

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/billroom/internal/chat"
	"github.com/MrJamesThe3rd/billroom/internal/money"
	"github.com/MrJamesThe3rd/billroom/internal/transaction"
)

// SideEffect marks a step whose commit changes ledger state.
type SideEffect string

const (
	SideEffectNone           SideEffect = ""
	SideEffectCommitApproval SideEffect = "commit_approval"
)

// BankCharge is added to the final amount of two-party bills, in paise.
const BankCharge int64 = 389 * 100

// Participant is who a step is attributed to.
type Participant struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	IsEmployee bool   `json:"is_employee"`
}

var System = Participant{ID: "system", Name: "System"}

// Rooms names the fixed rooms that shape the conversation.
type Rooms struct {
	Cash    string
	Finance string
	VIP     string
}

// Cast resolves who speaks on each side of the conversation.
type Cast struct {
	Staff   Participant
	Finance Participant
	Rooms   Rooms
}

// Pacing controls the gaps between consecutive steps.
type Pacing struct {
	ConversationMin time.Duration
	ConversationMax time.Duration
	FinanceMin      time.Duration
	FinanceMax      time.Duration
	System          time.Duration
	Handoff         time.Duration
	Banner          time.Duration
	Breakdown       time.Duration
}

func DefaultPacing() Pacing {
	return Pacing{
		ConversationMin: 6 * time.Second,
		ConversationMax: 10 * time.Second,
		FinanceMin:      4 * time.Second,
		FinanceMax:      7 * time.Second,
		System:          500 * time.Millisecond,
		Handoff:         100 * time.Millisecond,
		Banner:          time.Second,
		Breakdown:       4 * time.Second,
	}
}

// Step is one scripted message. Offset is measured from the start of the sequence.
type Step struct {
	Offset     time.Duration
	Channel    string
	Sender     Participant
	Text       string
	Kind       chat.Kind
	Metadata   *chat.Metadata
	SideEffect SideEffect
}

// Script is the full ordered conversation for one transaction.
type Script struct {
	TransactionID string
	Room          string
	Steps         []Step
}

// Last returns the offset of the final step.
func (s Script) Last() time.Duration {
	if len(s.Steps) == 0 {
		return 0
	}

	return s.Steps[len(s.Steps)-1].Offset
}

var banks = []struct{ Name, IFSC string }{
	{"HDFC Bank", "HDFC"},
	{"State Bank of India", "SBIN"},
	{"ICICI Bank", "ICIC"},
	{"Axis Bank", "UTIB"},
	{"Kotak Mahindra Bank", "KKBK"},
	{"Bank of Baroda", "BARB"},
	{"The Surat People's Co-op Bank", "SPCB"},
}

type builder struct {
	rng    *rand.Rand
	pacing Pacing
	at     time.Duration
	steps  []Step
}

func (b *builder) uniform(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}

	return lo + time.Duration(b.rng.Int64N(int64(hi-lo)+1))
}

func (b *builder) add(gap time.Duration, s Step) {
	if gap <= 0 {
		gap = time.Millisecond
	}

	b.at += gap
	s.Offset = b.at
	b.steps = append(b.steps, s)
}

func (b *builder) talk(s Step) {
	b.add(b.uniform(b.pacing.ConversationMin, b.pacing.ConversationMax), s)
}

func (b *builder) finance(s Step) {
	b.add(b.uniform(b.pacing.FinanceMin, b.pacing.FinanceMax), s)
}

// Build returns the conversation for tx played in tx.AssignedRoom. The result
// only depends on its inputs and the state of rng.
func Build(tx transaction.Transaction, cast Cast, pacing Pacing, rng *rand.Rand) Script {
	room := tx.AssignedRoom
	self := tx.IsSelf()

	sender := Participant{ID: "dealer", Name: tx.SenderName}
	payer := Participant{ID: "customer", Name: tx.ReceiverName}

	if self {
		payer = sender
	}

	charge := BankCharge
	if self {
		charge = 0
	}

	final := tx.Total + charge
	b := &builder{rng: rng, pacing: pacing}
	staff := cast.Staff
	fin := cast.Finance

	b.add(pacing.Banner, Step{
		Channel: room, Sender: staff, Kind: chat.KindInvoiceBanner,
		Text:     fmt.Sprintf("GENERATING INVOICE #%s...", tx.ID),
		Metadata: &chat.Metadata{TransactionID: tx.ID},
	})

	b.talk(Step{Channel: room, Sender: staff, Kind: chat.KindText, Text: greeting(tx, cast.Rooms)})

	b.talk(Step{
		Channel: room, Sender: sender, Kind: chat.KindReceipt,
		Text:     "Details sent.",
		Metadata: &chat.Metadata{TransactionID: tx.ID, Transaction: new(tx)},
	})

	b.talk(Step{Channel: room, Sender: staff, Kind: chat.KindSignatureRequest, Text: "Please sign the receipt."})
	b.talk(Step{Channel: room, Sender: sender, Kind: chat.KindSignatureSubmission, Text: "Signed."})
	b.add(pacing.System, Step{Channel: room, Sender: System, Kind: chat.KindSignatureVerify, Text: "Verifying signature..."})

	b.add(pacing.Breakdown, Step{
		Channel: room, Sender: staff, Kind: chat.KindBillBreakdown,
		Text: "Calculated Final Amount:",
		Metadata: &chat.Metadata{
			TransactionID: tx.ID,
			Breakdown: &chat.Breakdown{
				Subtotal:   tx.Subtotal,
				TaxA:       tx.TaxA,
				TaxB:       tx.TaxB,
				BankCharge: charge,
				FinalTotal: final,
			},
		},
	})

	b.talk(Step{Channel: room, Sender: staff, Kind: chat.KindOTPRequest, Text: "OTP Request"})

	otp := 100_000 + rng.IntN(900_000)
	b.talk(Step{Channel: room, Sender: payer, Kind: chat.KindOTPSubmission, Text: fmt.Sprintf("OTP: %d", otp)})
	b.add(pacing.System, Step{Channel: room, Sender: System, Kind: chat.KindOTPVerify, Text: "Verifying OTP..."})

	if !self {
		bank := banks[rng.IntN(len(banks))]
		b.talk(Step{
			Channel: room, Sender: payer, Kind: chat.KindBankDetailsSubmission,
			Text: "Bank details shared.",
			Metadata: &chat.Metadata{
				TransactionID: tx.ID,
				BankName:      bank.Name,
				AccountLast4:  fmt.Sprintf("%04d", rng.IntN(10_000)),
				IFSC:          fmt.Sprintf("%s0%06d", bank.IFSC, rng.IntN(1_000_000)),
			},
		})
	}

	b.talk(Step{
		Channel: room, Sender: staff, Kind: chat.KindText,
		Text: fmt.Sprintf("OTP Matched. Sending to Finance (Room %s) for approval.", cast.Rooms.Finance),
	})
	b.add(pacing.System, Step{
		Channel: room, Sender: System, Kind: chat.KindBankVerificationWaiting,
		Text: fmt.Sprintf("Waiting for Room %s...", cast.Rooms.Finance),
	})

	finRoom := cast.Rooms.Finance

	b.add(pacing.Handoff, Step{
		Channel: finRoom, Sender: System, Kind: chat.KindText,
		Text:     fmt.Sprintf("Incoming Request: Invoice #%s from Room %s", tx.ID, room),
		Metadata: &chat.Metadata{TransactionID: tx.ID},
	})
	b.finance(Step{
		Channel: finRoom, Sender: fin, Kind: chat.KindFinanceCheck,
		Text:     fmt.Sprintf("Checking payment details for %s...", money.Format(final)),
		Metadata: &chat.Metadata{TransactionID: tx.ID, Amount: final},
	})
	b.finance(Step{Channel: finRoom, Sender: fin, Kind: chat.KindFinanceSuccess, Text: "Payment Received via IMPS."})
	b.finance(Step{
		Channel: finRoom, Sender: fin, Kind: chat.KindApproving,
		Text:       "Approving",
		Metadata:   &chat.Metadata{TransactionID: tx.ID, ApprovedForRoom: room},
		SideEffect: SideEffectCommitApproval,
	})

	b.add(pacing.System, Step{Channel: room, Sender: System, Kind: chat.KindBankVerificationSuccess, Text: "Payment Verified by Finance."})
	b.talk(Step{
		Channel: room, Sender: staff, Kind: chat.KindFinanceApproval,
		Text:     "Transaction Approved.",
		Metadata: &chat.Metadata{TransactionID: tx.ID},
	})
	b.talk(Step{
		Channel: room, Sender: staff, Kind: chat.KindText,
		Text: fmt.Sprintf("Thank you, %s. Have a good day.", Courtesy(tx.SenderName)),
	})

	return Script{TransactionID: tx.ID, Room: room, Steps: b.steps}
}

func greeting(tx transaction.Transaction, rooms Rooms) string {
	switch tx.AssignedRoom {
	case rooms.VIP:
		return fmt.Sprintf("Welcome %s (VIP). Priority handling active.", tx.SenderName)
	case rooms.Cash:
		return fmt.Sprintf("Counter Sales: %s.", tx.SenderName)
	default:
		return fmt.Sprintf("%s, receipt ne details verify karavo.", Courtesy(tx.SenderName))
	}
}

// Courtesy returns the polite form of address for a customer name.
func Courtesy(fullName string) string {
	if strings.Contains(fullName, "Self") {
		return "Sir/Ma'am"
	}

	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return fullName
	}

	if parts[0] == "Jadeja" && len(parts) >= 2 {
		return parts[1]
	}

	first := parts[0]
	if len(parts) > 1 {
		first = parts[1]
	}

	lower := strings.ToLower(first)
	if strings.HasSuffix(lower, "ben") || strings.HasSuffix(lower, "ba") {
		return first
	}

	return first + "ben"
}
