package transaction

import (
	"time"

	"github.com/MrJamesThe3rd/billroom/internal/money"
	"github.com/MrJamesThe3rd/billroom/internal/transaction"
)

type productDTO struct {
	Name    string  `json:"name"`
	Price   int64   `json:"price"`
	GSTRate float64 `json:"gst_rate"`
}

type transactionResponse struct {
	ID              string             `json:"id"`
	SenderName      string             `json:"sender_name"`
	SenderAddress   string             `json:"sender_address"`
	ReceiverName    string             `json:"receiver_name"`
	ReceiverAddress string             `json:"receiver_address"`
	Self            bool               `json:"self"`
	Date            time.Time          `json:"date"`
	Items           []productDTO       `json:"items"`
	Extras          []string           `json:"extras,omitempty"`
	Subtotal        int64              `json:"subtotal"`
	GST             int64              `json:"gst"`
	TaxA            int64              `json:"tax_a"`
	TaxB            int64              `json:"tax_b"`
	Total           int64              `json:"total"`
	TotalDisplay    string             `json:"total_display"`
	Manual          bool               `json:"manual"`
	Status          transaction.Status `json:"status"`
	VerifiedAt      *time.Time         `json:"verified_at,omitempty"`
	AssignedRoom    string             `json:"assigned_room"`
	CreatedAt       time.Time          `json:"created_at"`
}

type totalsDTO struct {
	Revenue        int64  `json:"revenue"`
	TaxA           int64  `json:"tax_a"`
	TaxB           int64  `json:"tax_b"`
	RevenueDisplay string `json:"revenue_display"`
}

type totalsResponse struct {
	totalsDTO
	Archive totalsDTO `json:"archive"`
}

func toResponse(tx transaction.Transaction) transactionResponse {
	items := make([]productDTO, len(tx.Items))
	for i, it := range tx.Items {
		items[i] = productDTO{Name: it.Name, Price: it.Price, GSTRate: it.GSTRate}
	}

	return transactionResponse{
		ID:              tx.ID,
		SenderName:      tx.SenderName,
		SenderAddress:   tx.SenderAddress,
		ReceiverName:    tx.ReceiverName,
		ReceiverAddress: tx.ReceiverAddress,
		Self:            tx.IsSelf(),
		Date:            tx.Date,
		Items:           items,
		Extras:          tx.Extras,
		Subtotal:        tx.Subtotal,
		GST:             tx.GST,
		TaxA:            tx.TaxA,
		TaxB:            tx.TaxB,
		Total:           tx.Total,
		TotalDisplay:    money.Format(tx.Total),
		Manual:          tx.Manual,
		Status:          tx.Status,
		VerifiedAt:      tx.VerifiedAt,
		AssignedRoom:    tx.AssignedRoom,
		CreatedAt:       tx.CreatedAt,
	}
}

func toResponseList(txs []transaction.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}

func toTotals(t transaction.Totals) totalsDTO {
	return totalsDTO{
		Revenue:        t.Revenue,
		TaxA:           t.TaxA,
		TaxB:           t.TaxB,
		RevenueDisplay: money.Format(t.Revenue),
	}
}
