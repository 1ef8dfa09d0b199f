package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/retail_management_app/internal/apperrors"
	"github.com/SscSPs/retail_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/retail_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/retail_management_app/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

type totalsCalculator struct {
	BaseService
}

var _ portssvc.TotalsCalculatorSvc = (*totalsCalculator)(nil)

// NewTotalsCalculator creates the totals calculator.
func NewTotalsCalculator() portssvc.TotalsCalculatorSvc {
	return &totalsCalculator{}
}

// ApplyTotals sets Subtotal and Total of txn from lines:
// total = subtotal - discount - loyaltyDiscount + tax.
// Purchases never carry a loyalty discount.
func ApplyTotals(txn *domain.Transaction, lines []domain.TransactionLine) {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Subtotal)
	}
	if txn.Direction == domain.Inbound {
		txn.LoyaltyDiscount = decimal.Zero
	}
	txn.Subtotal = subtotal
	txn.Total = subtotal.Sub(txn.Discount).Sub(txn.LoyaltyDiscount).Add(txn.Tax)
}

// Recalculate reloads the persisted lines of a transaction, recomputes its
// totals and persists the header. Calling it twice without line changes is a no-op.
func (c *totalsCalculator) Recalculate(ctx context.Context, txns portsrepo.TransactionRepositoryFacade, transactionID string) (*domain.Transaction, error) {
	txn, err := txns.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", transactionID, err)
	}
	lines, err := txns.FindLinesByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("lines of transaction %s: %w", transactionID, err)
	}

	ApplyTotals(txn, lines)
	if txn.Total.IsNegative() {
		return nil, fmt.Errorf("%w: transaction %s total would be negative (%s)", apperrors.ErrValidation, transactionID, txn.Total)
	}

	if err := txns.UpdateTransaction(ctx, *txn); err != nil {
		return nil, fmt.Errorf("persist totals of transaction %s: %w", transactionID, err)
	}

	c.LogDebug(ctx, "Transaction totals recalculated",
		slog.String("transaction_id", transactionID),
		slog.String("subtotal", txn.Subtotal.String()),
		slog.String("total", txn.Total.String()))

	txn.Lines = lines
	return txn, nil
}
