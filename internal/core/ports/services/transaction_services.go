package services

import (
	"context"

	"github.com/SscSPs/retail_management_app/internal/core/domain"
	"github.com/SscSPs/retail_management_app/internal/dto"
)

// TransactionReaderSvc defines read operations for purchases and sales.
type TransactionReaderSvc interface {
	// GetTransaction returns the header with its lines.
	GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactions returns a page of headers, newest first.
	ListTransactions(ctx context.Context, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}

// TransactionWriterSvc defines creation, line editing and deletion.
type TransactionWriterSvc interface {
	CreatePurchase(ctx context.Context, req dto.CreateTransactionRequest, operatorID string) (*domain.Transaction, error)
	CreateSale(ctx context.Context, req dto.CreateTransactionRequest, operatorID string) (*domain.Transaction, error)

	// UpdateTransaction edits header fields of an open transaction and recomputes its totals.
	UpdateTransaction(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest, operatorID string) (*domain.Transaction, error)

	AddLine(ctx context.Context, transactionID string, req dto.TransactionLineRequest, operatorID string) (*domain.Transaction, error)
	RemoveLine(ctx context.Context, transactionID, lineID, operatorID string) (*domain.Transaction, error)

	// Recalculate recomputes the header totals from the persisted lines.
	Recalculate(ctx context.Context, transactionID, operatorID string) (*domain.Transaction, error)

	// DeleteTransaction reverts live stock and loyalty effects and deactivates the transaction.
	DeleteTransaction(ctx context.Context, transactionID, operatorID string) error

	// DeleteTransactionPermanently reverts live effects and removes the transaction and its lines.
	DeleteTransactionPermanently(ctx context.Context, transactionID, operatorID string) error
}

// TransactionLifecycleSvc defines status transitions.
type TransactionLifecycleSvc interface {
	CancelTransaction(ctx context.Context, transactionID, operatorID string) (*domain.Transaction, error)
	CancelPurchase(ctx context.Context, transactionID, operatorID string) (*domain.Transaction, error)
	CancelSale(ctx context.Context, transactionID, operatorID string) (*domain.Transaction, error)
	MarkPurchasePaid(ctx context.Context, transactionID, operatorID string) (*domain.Transaction, error)
	CompleteSale(ctx context.Context, transactionID, operatorID string) (*domain.Transaction, error)
	ReturnSale(ctx context.Context, transactionID, operatorID string) (*domain.Transaction, error)
	ApplyLoyaltyDiscount(ctx context.Context, transactionID string, points int64, operatorID string) (*domain.Transaction, error)
}

// TransactionSvcFacade combines all transaction-related service interfaces.
type TransactionSvcFacade interface {
	TransactionReaderSvc
	TransactionWriterSvc
	TransactionLifecycleSvc
}
