package transaction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// ErrDuplicateKey is returned by Insert when a row with the same ID already
// exists. For recurring rows the ID is deterministic, so a duplicate means a
// prior run already materialized this due date; callers treat it as "already
// generated", not as a failure.
var ErrDuplicateKey = errors.New("transaction: duplicate key")

// ErrMissingTemplate is returned by Insert when the row references a
// template that no longer exists.
var ErrMissingTemplate = errors.New("transaction: referenced template does not exist")

// recurringNamespace is the fixed UUIDv5 namespace for recurring row IDs.
var recurringNamespace = uuid.Must(uuid.FromString("8b9e0aa2-41af-43b2-9b47-3d4ff0b85b30"))

// RecurringID derives the deterministic ID for the ledger row a template
// produces on a given due date. The same (template, due date) pair always
// maps to the same ID, which is what makes retried generation idempotent.
func RecurringID(templateID uuid.UUID, dueDate time.Time) uuid.UUID {
	return uuid.NewV5(recurringNamespace, templateID.String()+"/"+dueDate.UTC().Format(time.DateOnly))
}

// TransactionType tags a transaction as money in or money out. The amount
// sign carries the same information; the tag exists for filtering.
type TransactionType int8

const (
	TransactionTypeIncome TransactionType = iota
	TransactionTypeExpense
)

// ParseTransactionType parses a type name as accepted by the API layer.
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToLower(s) {
	case "income":
		return TransactionTypeIncome, nil
	case "expense":
		return TransactionTypeExpense, nil
	}
	return 0, fmt.Errorf("unknown transaction type %q", s)
}

func (t TransactionType) String() string {
	switch t {
	case TransactionTypeIncome:
		return "income"
	case TransactionTypeExpense:
		return "expense"
	}
	return fmt.Sprintf("type(%d)", int8(t))
}

// Transaction represents a ledger entry.
type Transaction struct {
	ID              uuid.UUID       `db:"id"`
	TemplateID      *uuid.UUID      `db:"template_id"`
	Category        string          `db:"category"`
	Amount          decimal.Decimal `db:"amount"`
	Type            TransactionType `db:"type"`
	TransactionDate time.Time       `db:"transaction_date"`
	Notes           string          `db:"notes"`
	PaymentMethod   string          `db:"payment_method"`
	Tags            pq.StringArray  `db:"tags"`
	CreatedAt       time.Time       `db:"created_at"`
}

// TransactionCreate is the input for creating a new transaction.
// A zero ID gets a random one; engine-generated rows pass a RecurringID
// and a TemplateID back-reference to their originating template.
type TransactionCreate struct {
	ID              uuid.UUID
	TemplateID      *uuid.UUID
	Category        string
	Amount          decimal.Decimal
	Type            TransactionType
	TransactionDate time.Time
	Notes           string
	PaymentMethod   string
	Tags            []string
}

// TransactionFilter specifies filters for listing transactions.
type TransactionFilter struct {
	TemplateID      *uuid.UUID
	Category        *string
	Limit           int
	Offset          int
	MaxCreationTime *time.Time
}

// ITransactionTable defines the interface for transaction storage operations.
// This abstraction allows swapping the implementation without changing callers.
type ITransactionTable interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	Insert(ctx context.Context, create *TransactionCreate) (uuid.UUID, error)
	List(ctx context.Context, filter *TransactionFilter) ([]*Transaction, error)
}

// IWriter is the transaction-scoped write surface used by operator actions.
type IWriter interface {
	Insert(ctx context.Context, create *TransactionCreate) (uuid.UUID, error)
}
