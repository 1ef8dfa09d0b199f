package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/retail_management_app/internal/apperrors"
	"github.com/SscSPs/retail_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/retail_management_app/internal/core/ports/repositories"
)

type stockRepository struct {
	*view
}

var _ portsrepo.StockRepositoryFacade = (*stockRepository)(nil)

func (r *stockRepository) FindStock(ctx context.Context, ref domain.StockRef) (*domain.StockRecord, error) {
	var rec domain.StockRecord
	err := r.read(func(d *dataset) error {
		s, ok := d.stock[ref.Key()]
		if !ok {
			return apperrors.ErrNotFound
		}
		rec = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *stockRepository) ListMovementsByTransaction(ctx context.Context, transactionID string) ([]domain.StockMovement, error) {
	var out []domain.StockMovement
	err := r.read(func(d *dataset) error {
		for _, m := range d.movements {
			if m.TransactionID == transactionID {
				out = append(out, m)
			}
		}
		return nil
	})
	return out, err
}

func (r *stockRepository) IncreaseStock(ctx context.Context, ref domain.StockRef, qty int64, minimumQuantity int64, at time.Time) (*domain.StockRecord, error) {
	var rec domain.StockRecord
	err := r.write(func(d *dataset) error {
		s, ok := d.stock[ref.Key()]
		if !ok {
			s = domain.StockRecord{
				StockRef:        ref,
				MinimumQuantity: minimumQuantity,
				CreatedAt:       at,
			}
		}
		s.Quantity += qty
		s.LastInboundAt = &at
		s.LastUpdatedAt = at
		d.stock[ref.Key()] = s
		rec = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *stockRepository) DecreaseStock(ctx context.Context, ref domain.StockRef, qty int64, at time.Time) (*domain.StockRecord, error) {
	var rec domain.StockRecord
	err := r.write(func(d *dataset) error {
		s, ok := d.stock[ref.Key()]
		if !ok {
			return apperrors.ErrNotFound
		}
		if s.Quantity < qty {
			return fmt.Errorf("%w: %s has %d, requested %d", apperrors.ErrInsufficientStock, ref.Key(), s.Quantity, qty)
		}
		s.Quantity -= qty
		s.LastOutboundAt = &at
		s.LastUpdatedAt = at
		d.stock[ref.Key()] = s
		rec = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *stockRepository) SaveMovement(ctx context.Context, movement domain.StockMovement) error {
	return r.write(func(d *dataset) error {
		d.movements = append(d.movements, movement)
		return nil
	})
}
