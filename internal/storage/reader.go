package storage

import (
	"github.com/stephenafamo/bob"

	"github.com/carson-networks/recurring-server/internal/storage/template"
	"github.com/carson-networks/recurring-server/internal/storage/transaction"
)

type Reader struct {
	Templates    *template.Reader
	Transactions *transaction.Reader
}

func NewReader(exec bob.Executor) *Reader {
	return &Reader{
		Templates:    template.NewReader(exec),
		Transactions: transaction.NewReader(exec),
	}
}
