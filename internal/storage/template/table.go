package template

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/lib/pq"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/um"

	"github.com/carson-networks/recurring-server/internal/schedule"
)

var _ ITemplateTable = (*Table)(nil)

// Table is the autocommit implementation of ITemplateTable. User-driven
// creates and edits go through here; engine mutations go through Writer
// inside an operator transaction.
type Table struct {
	exec bob.Executor
	Reader
}

func NewTable(db *sql.DB) *Table {
	exec := bob.NewDB(db)
	return &Table{
		exec: exec,
		Reader: Reader{
			exec: exec,
		},
	}
}

// Insert creates a new template and returns its generated ID. The ID is
// generated client-side; the schema carries no column default.
func (t *Table) Insert(ctx context.Context, create *TemplateCreate) (uuid.UUID, error) {
	id := uuid.Must(uuid.NewV4())
	q := psql.Insert(
		im.Into("recurring_templates",
			"id", "category", "amount", "type", "frequency", "start_date",
			"end_date", "notes", "payment_method", "tags",
		),
		im.Values(psql.Arg(
			id,
			create.Category,
			create.Amount,
			int16(create.Type),
			int16(create.Frequency),
			schedule.DateOnly(create.StartDate),
			normalizedEndDate(create.EndDate),
			create.Notes,
			create.PaymentMethod,
			pq.Array(create.Tags),
		)),
	)
	if _, err := bob.Exec(ctx, t.exec, q); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// Update applies a user-driven partial update. Nil fields are untouched.
func (t *Table) Update(ctx context.Context, id uuid.UUID, update *TemplateUpdate) error {
	queryMods := []bob.Mod[*dialect.UpdateQuery]{
		um.Table("recurring_templates"),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
	}
	if update.Category != nil {
		queryMods = append(queryMods, um.SetCol("category").ToArg(*update.Category))
	}
	if update.Amount != nil {
		queryMods = append(queryMods, um.SetCol("amount").ToArg(*update.Amount))
	}
	if update.Notes != nil {
		queryMods = append(queryMods, um.SetCol("notes").ToArg(*update.Notes))
	}
	if update.PaymentMethod != nil {
		queryMods = append(queryMods, um.SetCol("payment_method").ToArg(*update.PaymentMethod))
	}
	if update.EndDate != nil {
		queryMods = append(queryMods, um.SetCol("end_date").ToArg(schedule.DateOnly(*update.EndDate)))
	}
	if update.Active != nil {
		queryMods = append(queryMods, um.SetCol("active").ToArg(*update.Active))
	}
	return execExpectingRow(ctx, t.exec, psql.Update(queryMods...))
}

func normalizedEndDate(endDate *time.Time) *time.Time {
	if endDate == nil {
		return nil
	}
	normalized := schedule.DateOnly(*endDate)
	return &normalized
}
