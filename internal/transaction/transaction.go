package transaction

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// Status represents the lifecycle state of a transaction.
type Status string

const (
	StatusVerifying Status = "Verifying"
	StatusVerified  Status = "Verified"
)

var (
	ErrNotFound        = errors.New("transaction not found")
	ErrAlreadyVerified = errors.New("transaction already verified")
)

const (
	// GSTRate is applied to the product subtotal.
	GSTRate = 0.18

	// Fixed per-bill taxes, in paise.
	FixedTaxA int64 = 28_000 * 100
	FixedTaxB int64 = 19_000 * 100

	// MaxSubtotal keeps subtotal*1.18 plus the fixed taxes within int64.
	MaxSubtotal = (math.MaxInt64 - FixedTaxA - FixedTaxB) / 118 * 100

	SelfCash           = "Self (Cash)"
	CounterSaleAddress = "Counter Sale (Cash)"
)

// Product is a single line item. Price is in paise.
type Product struct {
	Name    string  `json:"name"`
	Price   int64   `json:"price"`
	GSTRate float64 `json:"gst_rate"`
}

// Transaction represents a sale moving through the approval script.
// All amounts are in paise.
type Transaction struct {
	ID              string     `json:"id"`
	SenderName      string     `json:"sender_name"`
	SenderAddress   string     `json:"sender_address"`
	ReceiverName    string     `json:"receiver_name"`
	ReceiverAddress string     `json:"receiver_address"`
	Date            time.Time  `json:"date"`
	Items           []Product  `json:"items"`
	Extras          []string   `json:"extras,omitempty"`
	Subtotal        int64      `json:"subtotal"`
	GST             int64      `json:"gst"`
	TaxA            int64      `json:"tax_a"`
	TaxB            int64      `json:"tax_b"`
	Total           int64      `json:"total"`
	Manual          bool       `json:"manual"`
	CreatedAt       time.Time  `json:"created_at"`
	Status          Status     `json:"status"`
	VerifiedAt      *time.Time `json:"verified_at,omitempty"`
	AssignedRoom    string     `json:"assigned_room"`
}

// IsSelf reports whether the transaction is a single-party cash sale.
func (t *Transaction) IsSelf() bool {
	return t.ReceiverName == SelfCash
}

// Amounts holds the computed bill figures for a set of items.
type Amounts struct {
	Subtotal int64
	GST      int64
	TaxA     int64
	TaxB     int64
	Total    int64
}

// ComputeAmounts sums the items and applies GST and the fixed taxes.
func ComputeAmounts(items []Product) Amounts {
	var subtotal int64
	for _, it := range items {
		subtotal += it.Price
	}

	gst := subtotal * 18 / 100

	return Amounts{
		Subtotal: subtotal,
		GST:      gst,
		TaxA:     FixedTaxA,
		TaxB:     FixedTaxB,
		Total:    subtotal + gst + FixedTaxA + FixedTaxB,
	}
}

// Apply copies the amounts onto the transaction.
func (a Amounts) Apply(t *Transaction) {
	t.Subtotal = a.Subtotal
	t.GST = a.GST
	t.TaxA = a.TaxA
	t.TaxB = a.TaxB
	t.Total = a.Total
}

// Totals are the aggregate figures shown to the user.
type Totals struct {
	Revenue int64 `json:"revenue"`
	TaxA    int64 `json:"tax_a"`
	TaxB    int64 `json:"tax_b"`
}

func (t Totals) Add(o Totals) Totals {
	return Totals{
		Revenue: t.Revenue + o.Revenue,
		TaxA:    t.TaxA + o.TaxA,
		TaxB:    t.TaxB + o.TaxB,
	}
}

// Contribution is what a verified transaction adds to the totals.
func (t *Transaction) Contribution() Totals {
	return Totals{Revenue: t.Total, TaxA: t.TaxA, TaxB: t.TaxB}
}

// NewID returns an id for a generated transaction: SDMPO followed by seven digits.
func NewID(rng *rand.Rand) string {
	return fmt.Sprintf("SDMPO%d", 1_000_000+rng.IntN(9_000_000))
}

// NewManualID returns an id for a manually entered transaction.
func NewManualID(rng *rand.Rand, now time.Time) string {
	return fmt.Sprintf("MAN-%d-%d", now.UnixMilli(), 100+rng.IntN(900))
}

// Rupees converts a whole rupee amount to paise.
func Rupees(r int64) int64 {
	return r * 100
}
