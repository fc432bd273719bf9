package template

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/um"

	"github.com/carson-networks/recurring-server/internal/schedule"
)

var _ IWriter = (*Writer)(nil)

type Writer struct {
	tx bob.Tx
	Reader
}

func NewWriter(tx bob.Tx) *Writer {
	return &Writer{
		tx: tx,
		Reader: Reader{
			exec: tx,
		},
	}
}

// AdvanceWatermark records the most recent due date materialized for the
// template. It runs inside the same database transaction as the ledger
// insert, so the pair is durable as one unit.
func (w *Writer) AdvanceWatermark(ctx context.Context, id uuid.UUID, lastGenerated time.Time) error {
	q := psql.Update(
		um.Table("recurring_templates"),
		um.SetCol("last_generated_date").ToArg(schedule.DateOnly(lastGenerated)),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	return execExpectingRow(ctx, w.tx, q)
}

// SetActive flips the template's active flag. The engine uses it to retire
// templates whose end date has passed.
func (w *Writer) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	q := psql.Update(
		um.Table("recurring_templates"),
		um.SetCol("active").ToArg(active),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	return execExpectingRow(ctx, w.tx, q)
}

// execExpectingRow runs an update that must match exactly one row and maps
// a zero-row result to ErrNotFound.
func execExpectingRow(ctx context.Context, exec bob.Executor, q bob.Query) error {
	result, err := bob.Exec(ctx, exec, q)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
