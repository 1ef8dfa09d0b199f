package repositories

import (
	"context"

	"github.com/SscSPs/retail_management_app/internal/core/domain"
)

// TransactionReader reads transaction headers and lines.
type TransactionReader interface {
	// FindTransactionByID returns the header without lines. apperrors.ErrNotFound if missing.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)
	// FindTransactionByIDForUpdate is FindTransactionByID plus a row lock held until the unit of work ends.
	FindTransactionByIDForUpdate(ctx context.Context, transactionID string) (*domain.Transaction, error)
	FindLinesByTransactionID(ctx context.Context, transactionID string) ([]domain.TransactionLine, error)
	FindLineByID(ctx context.Context, transactionID, lineID string) (*domain.TransactionLine, error)
	DocumentNumberExists(ctx context.Context, documentNumber string) (bool, error)
	// ListTransactions returns headers newest first and a token for the next page, if any.
	ListTransactions(ctx context.Context, filter domain.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error)
}

// TransactionWriter persists transaction headers and lines.
type TransactionWriter interface {
	// SaveTransaction inserts the header followed by its lines.
	// A duplicate document number yields apperrors.ErrDuplicate.
	SaveTransaction(ctx context.Context, txn domain.Transaction) error
	// UpdateTransaction rewrites every header field except identity, direction and parties.
	UpdateTransaction(ctx context.Context, txn domain.Transaction) error
	SaveLine(ctx context.Context, line domain.TransactionLine) error
	DeleteLine(ctx context.Context, transactionID, lineID string) error
	// DeleteTransaction removes the header and, by cascade, its lines.
	DeleteTransaction(ctx context.Context, transactionID string) error
}

// TransactionRepositoryFacade combines all transaction repository operations.
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
