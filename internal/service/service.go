package service

import (
	"github.com/carson-networks/recurring-server/internal/storage"
)

// Service holds all business logic services.
type Service struct {
	Recurring   *RecurringService
	Transaction *TransactionService
}

// NewService creates a new Service with the given storage.
func NewService(store *storage.Storage) *Service {
	return &Service{
		Recurring:   NewRecurringService(store),
		Transaction: NewTransactionService(store),
	}
}
