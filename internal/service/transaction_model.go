package service

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/recurring-server/internal/storage/transaction"
)

// Transaction represents a ledger entry in the service layer.
type Transaction struct {
	ID              uuid.UUID
	TemplateID      *uuid.UUID
	Category        string
	Amount          decimal.Decimal
	Type            transaction.TransactionType
	TransactionDate time.Time
	Notes           string
	PaymentMethod   string
	Tags            []string
	CreatedAt       time.Time
}

// TransactionCursor identifies a position in a paginated result set
// and carries the limit and maxCreationTime so subsequent pages are consistent.
type TransactionCursor struct {
	Position        int
	Limit           int
	MaxCreationTime time.Time
}
