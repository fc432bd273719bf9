package template

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/recurring-server/internal/schedule"
	"github.com/carson-networks/recurring-server/internal/storage/transaction"
)

// ErrNotFound is returned by update operations when no row matches the ID,
// typically because the user deleted the template concurrently.
var ErrNotFound = errors.New("template: not found")

// Template represents a recurring-transaction template. The engine mutates
// only LastGeneratedDate and Active; everything else belongs to the user.
type Template struct {
	ID                uuid.UUID                   `db:"id"`
	Category          string                      `db:"category"`
	Amount            decimal.Decimal             `db:"amount"`
	Type              transaction.TransactionType `db:"type"`
	Frequency         schedule.Frequency          `db:"frequency"`
	StartDate         time.Time                   `db:"start_date"`
	EndDate           *time.Time                  `db:"end_date"`
	Notes             string                      `db:"notes"`
	PaymentMethod     string                      `db:"payment_method"`
	Tags              pq.StringArray              `db:"tags"`
	Active            bool                        `db:"active"`
	LastGeneratedDate *time.Time                  `db:"last_generated_date"`
	CreatedAt         time.Time                   `db:"created_at"`
}

// TemplateCreate is the input for creating a new template.
type TemplateCreate struct {
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

// TemplateUpdate is a partial update applied by the user; nil fields are
// left untouched. The engine never uses this path.
type TemplateUpdate struct {
	Category      *string
	Amount        *decimal.Decimal
	Notes         *string
	PaymentMethod *string
	EndDate       *time.Time
	Active        *bool
}

// TemplateFilter specifies filters for listing templates.
type TemplateFilter struct {
	Active          *bool
	MaxCreationTime *time.Time
	Limit           int
	Offset          int
}

// ITemplateTable defines the interface for template storage operations.
// This abstraction allows swapping the implementation without changing callers.
type ITemplateTable interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Template, error)
	Insert(ctx context.Context, create *TemplateCreate) (uuid.UUID, error)
	List(ctx context.Context, filter *TemplateFilter) ([]*Template, error)
	ListActive(ctx context.Context) ([]*Template, error)
	Update(ctx context.Context, id uuid.UUID, update *TemplateUpdate) error
}

// IWriter is the transaction-scoped write surface used by operator actions.
// AdvanceWatermark and SetActive are the only template mutations the engine
// performs.
type IWriter interface {
	AdvanceWatermark(ctx context.Context, id uuid.UUID, lastGenerated time.Time) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}
