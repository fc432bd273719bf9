package transaction

import (
	"context"
	"database/sql"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
)

var _ ITransactionTable = (*Table)(nil)

// Table is the autocommit implementation of ITransactionTable, used outside
// the operator's transactional write path.
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

// Insert creates a new transaction and returns its ID.
func (t *Table) Insert(ctx context.Context, create *TransactionCreate) (uuid.UUID, error) {
	return insertTransaction(ctx, t.exec, create)
}
