package storage

import (
	"context"

	"github.com/stephenafamo/bob"

	"github.com/carson-networks/recurring-server/internal/storage/template"
	"github.com/carson-networks/recurring-server/internal/storage/transaction"
)

// Writer bundles the per-entity transactional writers. The fields are
// interfaces so actions can be tested against fakes.
type Writer struct {
	tx          bob.Tx
	Template    template.IWriter
	Transaction transaction.IWriter
}

func NewWriter(tx bob.Tx) Writer {
	return Writer{
		tx:          tx,
		Template:    template.NewWriter(tx),
		Transaction: transaction.NewWriter(tx),
	}
}

func (w *Writer) Commit() error {
	return w.tx.Commit(context.Background())
}

func (w *Writer) Rollback() error {
	return w.tx.Rollback(context.Background())
}
