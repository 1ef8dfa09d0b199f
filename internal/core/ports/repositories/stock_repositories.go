package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/retail_management_app/internal/core/domain"
)

// StockReader reads stock records and their movement log.
type StockReader interface {
	FindStock(ctx context.Context, ref domain.StockRef) (*domain.StockRecord, error)
	ListMovementsByTransaction(ctx context.Context, transactionID string) ([]domain.StockMovement, error)
}

// StockWriter applies atomic stock mutations. Implementations must make each
// call a single read-modify-write that cannot interleave with another on the same ref.
type StockWriter interface {
	// IncreaseStock adds qty, creating the record with minimumQuantity when absent.
	IncreaseStock(ctx context.Context, ref domain.StockRef, qty int64, minimumQuantity int64, at time.Time) (*domain.StockRecord, error)
	// DecreaseStock subtracts qty only if at least qty is on hand, otherwise
	// it returns apperrors.ErrInsufficientStock and changes nothing.
	DecreaseStock(ctx context.Context, ref domain.StockRef, qty int64, at time.Time) (*domain.StockRecord, error)
	SaveMovement(ctx context.Context, movement domain.StockMovement) error
}

// StockRepositoryFacade combines all stock repository operations.
type StockRepositoryFacade interface {
	StockReader
	StockWriter
}
