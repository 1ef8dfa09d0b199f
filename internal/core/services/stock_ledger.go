package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/retail_management_app/internal/apperrors"
	"github.com/SscSPs/retail_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/retail_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/retail_management_app/internal/core/ports/services"
	"github.com/google/uuid"
)

// DefaultMinimumStock is the reorder threshold for stock records created
// for products without their own minimum.
const DefaultMinimumStock int64 = 5

type stockLedger struct {
	BaseService
	stockRepo      portsrepo.StockReader
	catalog        portsrepo.CatalogReader
	defaultMinimum int64
}

var _ portssvc.StockLedgerSvc = (*stockLedger)(nil)

// NewStockLedger creates the stock ledger. stockRepo serves reads outside a
// unit of work; mutations always go through the repository passed per call.
func NewStockLedger(stockRepo portsrepo.StockReader, catalog portsrepo.CatalogReader, defaultMinimum int64, options ...BaseOption) portssvc.StockLedgerSvc {
	if defaultMinimum < 0 {
		defaultMinimum = DefaultMinimumStock
	}
	l := &stockLedger{
		stockRepo:      stockRepo,
		catalog:        catalog,
		defaultMinimum: defaultMinimum,
	}
	for _, option := range options {
		option(&l.BaseService)
	}
	return l
}

// GetStock returns the stock record for ref.
func (l *stockLedger) GetStock(ctx context.Context, ref domain.StockRef) (*domain.StockRecord, error) {
	if ref.ProductID == "" {
		return nil, fmt.Errorf("%w: productID is required", apperrors.ErrValidation)
	}
	rec, err := l.stockRepo.FindStock(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("stock %s: %w", ref.Key(), err)
	}
	return rec, nil
}

// Increase adds qty units to ref, creating the record on first use.
func (l *stockLedger) Increase(ctx context.Context, stock portsrepo.StockRepositoryFacade, ref domain.StockRef, qty int64, transactionID string, reason domain.MovementReason) (*domain.StockRecord, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: stock increase for %s must be positive, got %d", apperrors.ErrValidation, ref.Key(), qty)
	}

	minimum, err := l.minimumFor(ctx, ref.ProductID)
	if err != nil {
		return nil, err
	}

	now := l.Now()
	rec, err := stock.IncreaseStock(ctx, ref, qty, minimum, now)
	if err != nil {
		return nil, fmt.Errorf("increase stock %s by %d: %w", ref.Key(), qty, err)
	}
	if err := l.record(ctx, stock, ref, transactionID, domain.MovementIn, reason, qty); err != nil {
		return nil, err
	}

	l.LogDebug(ctx, "Stock increased",
		slog.String("stock_ref", ref.Key()),
		slog.Int64("quantity", qty),
		slog.Int64("on_hand", rec.Quantity),
		slog.String("transaction_id", transactionID))
	return rec, nil
}

// Decrease removes qty units from ref. It fails with ErrInsufficientStock,
// leaving the record untouched, when fewer than qty units are on hand.
func (l *stockLedger) Decrease(ctx context.Context, stock portsrepo.StockRepositoryFacade, ref domain.StockRef, qty int64, transactionID string, reason domain.MovementReason) (*domain.StockRecord, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: stock decrease for %s must be positive, got %d", apperrors.ErrValidation, ref.Key(), qty)
	}

	now := l.Now()
	rec, err := stock.DecreaseStock(ctx, ref, qty, now)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Nothing has ever been received for this ref.
			return nil, fmt.Errorf("%w: %s has no stock, requested %d", apperrors.ErrInsufficientStock, ref.Key(), qty)
		}
		return nil, fmt.Errorf("decrease stock %s by %d: %w", ref.Key(), qty, err)
	}
	if err := l.record(ctx, stock, ref, transactionID, domain.MovementOut, reason, qty); err != nil {
		return nil, err
	}

	if rec.IsBelowMinimum() {
		l.LogWarn(ctx, "Stock below minimum",
			slog.String("stock_ref", ref.Key()),
			slog.Int64("on_hand", rec.Quantity),
			slog.Int64("minimum", rec.MinimumQuantity))
	}
	return rec, nil
}

func (l *stockLedger) record(ctx context.Context, stock portsrepo.StockRepositoryFacade, ref domain.StockRef, transactionID string, kind domain.MovementKind, reason domain.MovementReason, qty int64) error {
	movement := domain.StockMovement{
		MovementID:    uuid.NewString(),
		Ref:           ref,
		TransactionID: transactionID,
		Kind:          kind,
		Reason:        reason,
		Quantity:      qty,
		OccurredAt:    l.Now(),
	}
	if err := stock.SaveMovement(ctx, movement); err != nil {
		return fmt.Errorf("record stock movement for %s: %w", ref.Key(), err)
	}
	return nil
}

func (l *stockLedger) minimumFor(ctx context.Context, productID string) (int64, error) {
	product, err := l.catalog.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return l.defaultMinimum, nil
		}
		return 0, fmt.Errorf("lookup product %s: %w", productID, err)
	}
	if product.MinimumStock != nil && *product.MinimumStock >= 0 {
		return *product.MinimumStock, nil
	}
	return l.defaultMinimum, nil
}
