package service

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/recurring-server/internal/storage"
	"github.com/carson-networks/recurring-server/internal/storage/transaction"
)

const defaultLimit = 20

// TransactionService handles ledger business logic.
type TransactionService struct {
	storage *storage.Storage
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(store *storage.Storage) *TransactionService {
	return &TransactionService{storage: store}
}

// CreateTransaction creates a manual ledger entry and returns its ID.
// Engine-generated entries take the operator path instead.
func (s *TransactionService) CreateTransaction(ctx context.Context, create Transaction) (uuid.UUID, error) {
	storageCreate := &transaction.TransactionCreate{
		Category:        create.Category,
		Amount:          create.Amount,
		Type:            create.Type,
		TransactionDate: create.TransactionDate,
		Notes:           create.Notes,
		PaymentMethod:   create.PaymentMethod,
		Tags:            create.Tags,
	}

	return s.storage.Transactions.Insert(ctx, storageCreate)
}

// ListTransactions returns a page of transactions using cursor-based pagination.
func (s *TransactionService) ListTransactions(ctx context.Context, cursor *TransactionCursor) ([]Transaction, *TransactionCursor, error) {
	limit := defaultLimit
	offset := 0
	var maxCreationTime *time.Time
	if cursor != nil {
		limit = cursor.Limit
		offset = cursor.Position
		maxCreationTime = &cursor.MaxCreationTime
	}

	filter := &transaction.TransactionFilter{
		Limit:           limit,
		Offset:          offset,
		MaxCreationTime: maxCreationTime,
	}

	rows, err := s.storage.Transactions.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}

	if len(rows) == 0 {
		return nil, nil, nil
	}

	var nextCursor *TransactionCursor
	if len(rows) > limit {
		rows = rows[:limit]

		cursorMaxCreationTime := rows[0].CreatedAt
		if maxCreationTime != nil {
			cursorMaxCreationTime = *maxCreationTime
		}

		nextCursor = &TransactionCursor{
			Position:        offset + limit,
			Limit:           limit,
			MaxCreationTime: cursorMaxCreationTime,
		}
	}

	convertedTransactions := make([]Transaction, len(rows))
	for i, row := range rows {
		convertedTransactions[i] = Transaction{
			ID:              row.ID,
			TemplateID:      row.TemplateID,
			Category:        row.Category,
			Amount:          row.Amount,
			Type:            row.Type,
			TransactionDate: row.TransactionDate,
			Notes:           row.Notes,
			PaymentMethod:   row.PaymentMethod,
			Tags:            row.Tags,
			CreatedAt:       row.CreatedAt,
		}
	}

	return convertedTransactions, nextCursor, nil
}
