package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/retail_management_app/internal/apperrors"
	"github.com/SscSPs/retail_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/retail_management_app/internal/core/ports/repositories"
	"github.com/SscSPs/retail_management_app/internal/models"
	"github.com/SscSPs/retail_management_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const stockColumns = `
	product_id, variant_key, quantity, minimum_quantity, maximum_quantity,
	last_inbound_at, last_outbound_at, created_at, last_updated_at`

type PgxStockRepository struct {
	BaseRepository
}

func newPgxStockRepository(pool *pgxpool.Pool) portsrepo.StockRepositoryFacade {
	return &PgxStockRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.StockRepositoryFacade = (*PgxStockRepository)(nil)

func scanStock(row pgx.Row) (*domain.StockRecord, error) {
	var m models.StockRecord
	err := row.Scan(
		&m.ProductID,
		&m.VariantKey,
		&m.Quantity,
		&m.MinimumQuantity,
		&m.MaximumQuantity,
		&m.LastInboundAt,
		&m.LastOutboundAt,
		&m.CreatedAt,
		&m.LastUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec := mapping.ToDomainStockRecord(m)
	return &rec, nil
}

func (r *PgxStockRepository) FindStock(ctx context.Context, ref domain.StockRef) (*domain.StockRecord, error) {
	query := `SELECT ` + stockColumns + ` FROM stock WHERE product_id = $1 AND variant_key = $2;`
	rec, err := scanStock(r.DB().QueryRow(ctx, query, ref.ProductID, mapping.VariantKey(ref)))
	if err != nil {
		return nil, mapError(err, "failed to find stock "+ref.Key())
	}
	return rec, nil
}

func (r *PgxStockRepository) ListMovementsByTransaction(ctx context.Context, transactionID string) ([]domain.StockMovement, error) {
	query := `
		SELECT movement_id, product_id, variant_key, transaction_id, kind, reason, quantity, occurred_at
		FROM stock_movements
		WHERE transaction_id = $1
		ORDER BY seq;
	`
	rows, err := r.DB().Query(ctx, query, transactionID)
	if err != nil {
		return nil, mapError(err, "failed to query stock movements of "+transactionID)
	}
	defer rows.Close()

	movements := make([]domain.StockMovement, 0)
	for rows.Next() {
		var m models.StockMovement
		if err := rows.Scan(&m.MovementID, &m.ProductID, &m.VariantKey, &m.TransactionID, &m.Kind, &m.Reason, &m.Quantity, &m.OccurredAt); err != nil {
			return nil, mapError(err, "failed to scan stock movement")
		}
		movements = append(movements, mapping.ToDomainStockMovement(m))
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "failed to iterate stock movements")
	}
	return movements, nil
}

// IncreaseStock upserts the record; concurrent increases serialize on the row.
func (r *PgxStockRepository) IncreaseStock(ctx context.Context, ref domain.StockRef, qty int64, minimumQuantity int64, at time.Time) (*domain.StockRecord, error) {
	query := `
		INSERT INTO stock (product_id, variant_key, variant_id, quantity, minimum_quantity, last_inbound_at, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6, $6)
		ON CONFLICT (product_id, variant_key) DO UPDATE
		SET quantity = stock.quantity + EXCLUDED.quantity,
		    last_inbound_at = EXCLUDED.last_inbound_at,
		    last_updated_at = EXCLUDED.last_updated_at
		RETURNING ` + stockColumns + `;`
	rec, err := scanStock(r.DB().QueryRow(ctx, query, ref.ProductID, mapping.VariantKey(ref), ref.VariantID, qty, minimumQuantity, at))
	if err != nil {
		return nil, mapError(err, "failed to increase stock "+ref.Key())
	}
	return rec, nil
}

// DecreaseStock is a single conditional update, so two concurrent sales can
// never both take the last unit.
func (r *PgxStockRepository) DecreaseStock(ctx context.Context, ref domain.StockRef, qty int64, at time.Time) (*domain.StockRecord, error) {
	query := `
		UPDATE stock
		SET quantity = quantity - $3, last_outbound_at = $4, last_updated_at = $4
		WHERE product_id = $1 AND variant_key = $2 AND quantity >= $3
		RETURNING ` + stockColumns + `;`
	rec, err := scanStock(r.DB().QueryRow(ctx, query, ref.ProductID, mapping.VariantKey(ref), qty, at))
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, mapError(err, "failed to decrease stock "+ref.Key())
	}

	// No row matched: either nothing on record or not enough of it.
	current, findErr := r.FindStock(ctx, ref)
	if findErr != nil {
		return nil, findErr
	}
	return nil, fmt.Errorf("%w: %s has %d, requested %d", apperrors.ErrInsufficientStock, ref.Key(), current.Quantity, qty)
}

func (r *PgxStockRepository) SaveMovement(ctx context.Context, movement domain.StockMovement) error {
	m := mapping.ToModelStockMovement(movement)
	query := `
		INSERT INTO stock_movements (movement_id, product_id, variant_key, transaction_id, kind, reason, quantity, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.DB().Exec(ctx, query, m.MovementID, m.ProductID, m.VariantKey, m.TransactionID, m.Kind, m.Reason, m.Quantity, m.OccurredAt)
	if err != nil {
		return mapError(err, "failed to record stock movement "+m.MovementID)
	}
	return nil
}
