package chat

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/MrJamesThe3rd/billroom/internal/persist"
	"github.com/MrJamesThe3rd/billroom/internal/transaction"
)

// Kind selects the renderer a client uses for a message.
type Kind string

const (
	KindText                    Kind = "text"
	KindInvoiceBanner           Kind = "csl_intro"
	KindReceipt                 Kind = "receipt_anim"
	KindSignatureRequest        Kind = "signature_req"
	KindSignatureSubmission     Kind = "signature_submission"
	KindSignatureVerify         Kind = "signature_verify_anim"
	KindBillBreakdown           Kind = "bill_breakdown"
	KindOTPRequest              Kind = "otp_req"
	KindOTPSubmission           Kind = "otp_submission"
	KindOTPVerify               Kind = "otp_verify_anim"
	KindBankDetailsSubmission   Kind = "bank_details_submission"
	KindBankVerificationWaiting Kind = "bank_verification_waiting"
	KindBankVerificationSuccess Kind = "bank_verification_success"
	KindFinanceCheck            Kind = "room_210_check"
	KindFinanceSuccess          Kind = "room_210_success"
	KindApproving               Kind = "approving_anim"
	KindFinanceApproval         Kind = "finance_approval"
	KindProcessing              Kind = "round_loader"
	KindNextOrder               Kind = "next_order_hire"
)

// Breakdown is the fee summary shown before OTP. Amounts are in paise.
type Breakdown struct {
	Subtotal   int64 `json:"subtotal"`
	TaxA       int64 `json:"tax_a"`
	TaxB       int64 `json:"tax_b"`
	BankCharge int64 `json:"bank_charge"`
	FinalTotal int64 `json:"final_total"`
}

type Metadata struct {
	TransactionID   string                   `json:"transaction_id,omitempty"`
	Transaction     *transaction.Transaction `json:"transaction,omitempty"`
	Amount          int64                    `json:"amount,omitempty"`
	Breakdown       *Breakdown               `json:"breakdown,omitempty"`
	BankName        string                   `json:"bank_name,omitempty"`
	AccountLast4    string                   `json:"account_last4,omitempty"`
	IFSC            string                   `json:"ifsc,omitempty"`
	ApprovedForRoom string                   `json:"approved_for_room,omitempty"`
}

type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Text       string    `json:"text"`
	Timestamp  time.Time `json:"timestamp"`
	IsEmployee bool      `json:"is_employee"`
	Channel    string    `json:"channel"`
	Kind       Kind      `json:"kind"`
	Metadata   *Metadata `json:"metadata,omitempty"`
}

// Typing identifies who is currently typing in a channel.
type Typing struct {
	Name       string `json:"name"`
	IsEmployee bool   `json:"is_employee"`
	Channel    string `json:"channel"`
}

// Store owns the committed messages and the per-channel typing indicators.
// Typing indicators are ephemeral and never persisted.
type Store struct {
	mu       sync.RWMutex
	messages []Message
	typing   map[string]Typing
	sink     persist.Sink
}

func NewStore(sink persist.Sink) *Store {
	return &Store{
		typing: make(map[string]Typing),
		sink:   sink,
	}
}

func (s *Store) Restore(messages []Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = slices.Clone(messages)
}

func (s *Store) Append(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, msg)
	s.sink.Put(persist.KeyMessages, s.messages)
}

// ClearChannel removes every message of channel and returns how many were removed.
func (s *Store) ClearChannel(channel string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.messages)
	s.messages = slices.DeleteFunc(s.messages, func(m Message) bool {
		return m.Channel == channel
	})

	removed := before - len(s.messages)
	if removed > 0 {
		s.sink.Put(persist.KeyMessages, s.messages)
	}

	return removed
}

// Messages returns the messages of channel in commit order.
func (s *Store) Messages(channel string) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Message

	for _, m := range s.messages {
		if m.Channel == channel {
			out = append(out, m)
		}
	}

	return out
}

func (s *Store) All() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.messages)
}

func (s *Store) SetTyping(t Typing) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.typing[t.Channel] = t
}

func (s *Store) ClearTyping(channel string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.typing, channel)
}

func (s *Store) TypingIn(channel string) (Typing, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.typing[channel]

	return t, ok
}

// Typing returns a snapshot of every active typing indicator keyed by channel.
func (s *Store) Typing() map[string]Typing {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return maps.Clone(s.typing)
}
