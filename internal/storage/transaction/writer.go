package transaction

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/lib/pq"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/im"
)

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

// Insert creates a new transaction inside the writer's database transaction.
func (w *Writer) Insert(ctx context.Context, create *TransactionCreate) (uuid.UUID, error) {
	return insertTransaction(ctx, w.tx, create)
}

const foreignKeyViolation = "23503"

func insertTransaction(ctx context.Context, exec bob.Executor, create *TransactionCreate) (uuid.UUID, error) {
	id := create.ID
	if id.IsNil() {
		id = uuid.Must(uuid.NewV4())
	}

	q := psql.Insert(
		im.Into("transactions",
			"id", "template_id", "category", "amount", "type",
			"transaction_date", "notes", "payment_method", "tags",
		),
		im.Values(psql.Arg(
			id,
			create.TemplateID,
			create.Category,
			create.Amount,
			int16(create.Type),
			create.TransactionDate,
			create.Notes,
			create.PaymentMethod,
			pq.Array(create.Tags),
		)),
		// A replayed insert collides on the deterministic primary key. DO
		// NOTHING keeps the surrounding transaction usable; the zero row
		// count identifies the replay.
		im.OnConflict("id").DoNothing(),
	)

	result, err := bob.Exec(ctx, exec, q)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
			return uuid.Nil, ErrMissingTemplate
		}
		return uuid.Nil, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return uuid.Nil, err
	}
	if rowsAffected == 0 {
		return id, ErrDuplicateKey
	}
	return id, nil
}
