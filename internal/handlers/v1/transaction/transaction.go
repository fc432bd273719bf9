package transaction

import (
	"time"

	"github.com/carson-networks/recurring-server/internal/service"
)

// Transaction is the API response model for a ledger entry.
// It is used only for responses, not for request bodies.
type Transaction struct {
	ID              string   `json:"id" doc:"Transaction UUID"`
	TemplateID      string   `json:"templateID,omitempty" doc:"Originating recurring template UUID, absent for manual entries"`
	Category        string   `json:"category" doc:"Category name"`
	Amount          string   `json:"amount" doc:"Signed decimal amount"`
	Type            string   `json:"type" doc:"Transaction type, income or expense"`
	TransactionDate string   `json:"transactionDate" doc:"RFC3339 transaction date"`
	Notes           string   `json:"notes,omitempty" doc:"Free-form notes"`
	PaymentMethod   string   `json:"paymentMethod,omitempty" doc:"Payment method"`
	Tags            []string `json:"tags,omitempty" doc:"Ordered tags"`
}

func fromServiceTransaction(tx service.Transaction) Transaction {
	converted := Transaction{
		ID:              tx.ID.String(),
		Category:        tx.Category,
		Amount:          tx.Amount.String(),
		Type:            tx.Type.String(),
		TransactionDate: tx.TransactionDate.Format(time.RFC3339),
		Notes:           tx.Notes,
		PaymentMethod:   tx.PaymentMethod,
		Tags:            tx.Tags,
	}
	if tx.TemplateID != nil {
		converted.TemplateID = tx.TemplateID.String()
	}
	return converted
}
