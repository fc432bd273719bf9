package storage

import (
	"context"
	"database/sql"
	"log"

	_ "github.com/lib/pq"
	"github.com/stephenafamo/bob"

	"github.com/carson-networks/recurring-server/internal/config"
	"github.com/carson-networks/recurring-server/internal/storage/template"
	"github.com/carson-networks/recurring-server/internal/storage/transaction"
)

type Storage struct {
	DB           *sql.DB
	bobDB        bob.DB
	Templates    template.ITemplateTable
	Transactions transaction.ITransactionTable
}

func NewStorage(env *config.Config) *Storage {
	connStr := "postgres://" + env.PostgresUsername + ":" +
		env.PostgresPassword + "@" + env.PostgresAddress + ":" +
		env.PostgresPort + "/" + env.PostgresDB + "?sslmode=disable"

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal(err)
	}

	return &Storage{
		DB:           db,
		bobDB:        bob.NewDB(db),
		Templates:    template.NewTable(db),
		Transactions: transaction.NewTable(db),
	}
}

// Write begins a database transaction and returns a Writer scoped to it.
// Callers must Commit or Rollback.
func (s *Storage) Write(ctx context.Context) (*Writer, error) {
	tx, err := s.bobDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	writer := NewWriter(tx)
	return &writer, nil
}
