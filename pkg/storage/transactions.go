package storage

import (
	"context"
	"time"

	"github.com/armand/immo-contracts/pkg/models"
)

// TransactionStore defines the interface for reading and settling commission
// transactions.
type TransactionStore interface {
	// GetTransaction retrieves a transaction by its ID.
	GetTransaction(ctx context.Context, txID string) (*models.Transaction, error)

	// ListTransactionsByContract retrieves all commission transactions of a
	// contract.
	ListTransactionsByContract(ctx context.Context, contractID string) ([]models.Transaction, error)

	// MarkTransactionPaid records an explicit payment. Valid from pending, due
	// or overdue; anything else returns ErrInvalidState.
	MarkTransactionPaid(ctx context.Context, txID string, now time.Time) error
}
