package services

import (
	"context"

	"github.com/SscSPs/retail_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/retail_management_app/internal/core/ports/repositories"
	"github.com/SscSPs/retail_management_app/internal/dto"
	"github.com/shopspring/decimal"
)

// StockReaderSvc exposes on-hand quantities.
type StockReaderSvc interface {
	GetStock(ctx context.Context, ref domain.StockRef) (*domain.StockRecord, error)
}

// StockLedgerSvc mutates stock inside a caller-owned unit of work.
type StockLedgerSvc interface {
	StockReaderSvc
	Increase(ctx context.Context, stock portsrepo.StockRepositoryFacade, ref domain.StockRef, qty int64, transactionID string, reason domain.MovementReason) (*domain.StockRecord, error)
	Decrease(ctx context.Context, stock portsrepo.StockRepositoryFacade, ref domain.StockRef, qty int64, transactionID string, reason domain.MovementReason) (*domain.StockRecord, error)
}

// LoyaltySvc awards and consumes customer points inside a caller-owned unit of work.
type LoyaltySvc interface {
	Award(ctx context.Context, customers portsrepo.CustomerRepositoryFacade, customerID string, points int64) (int64, error)
	Consume(ctx context.Context, customers portsrepo.CustomerRepositoryFacade, customerID string, points int64) (int64, error)
	// ConsumeUpTo removes at most points, clamped to the current balance, and reports how many were removed.
	ConsumeUpTo(ctx context.Context, customers portsrepo.CustomerRepositoryFacade, customerID string, points int64) (int64, error)
	PointsForTotal(total decimal.Decimal) int64
	DiscountForPoints(points int64) decimal.Decimal
}

// LineProcessorSvc validates a requested line and prices it.
type LineProcessorSvc interface {
	Process(ctx context.Context, transactionID string, index int, req dto.TransactionLineRequest) (domain.TransactionLine, error)
}

// TotalsCalculatorSvc keeps header totals consistent with the persisted lines.
type TotalsCalculatorSvc interface {
	Recalculate(ctx context.Context, txns portsrepo.TransactionRepositoryFacade, transactionID string) (*domain.Transaction, error)
}

// DocumentNumberSvc generates human-readable document numbers.
type DocumentNumberSvc interface {
	Next(ctx context.Context, direction domain.Direction) (string, error)
}

// EventPublisher delivers committed transaction events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.TransactionEvent) error
}
