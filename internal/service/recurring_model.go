package service

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/recurring-server/internal/schedule"
	"github.com/carson-networks/recurring-server/internal/storage/transaction"
)

// RecurringTemplate represents a recurring-transaction template in the
// service layer.
type RecurringTemplate struct {
	ID                uuid.UUID
	Category          string
	Amount            decimal.Decimal
	Type              transaction.TransactionType
	Frequency         schedule.Frequency
	StartDate         time.Time
	EndDate           *time.Time
	Notes             string
	PaymentMethod     string
	Tags              []string
	Active            bool
	LastGeneratedDate *time.Time
	CreatedAt         time.Time
}

// RecurringTemplateCreate is the input for creating a template.
type RecurringTemplateCreate struct {
	Category      string
	Amount        decimal.Decimal
	Type          transaction.TransactionType
	Frequency     schedule.Frequency
	StartDate     time.Time
	EndDate       *time.Time
	Notes         string
	PaymentMethod string
	Tags          []string
}

// RecurringTemplateUpdate is a user-driven partial update; nil fields are
// left untouched.
type RecurringTemplateUpdate struct {
	Category      *string
	Amount        *decimal.Decimal
	Notes         *string
	PaymentMethod *string
	EndDate       *time.Time
	Active        *bool
}

// TemplateCursor identifies a position in a paginated template result set
// and carries the limit and maxCreationTime so subsequent pages are
// consistent.
type TemplateCursor struct {
	Position        int
	Limit           int
	MaxCreationTime time.Time
}
