package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/retail_management_app/internal/apperrors"
	"github.com/SscSPs/retail_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/retail_management_app/internal/core/ports/repositories"
	"github.com/SscSPs/retail_management_app/internal/models"
	"github.com/SscSPs/retail_management_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxCustomerRepository struct {
	BaseRepository
}

func newPgxCustomerRepository(pool *pgxpool.Pool) portsrepo.CustomerRepositoryFacade {
	return &PgxCustomerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CustomerRepositoryFacade = (*PgxCustomerRepository)(nil)

func (r *PgxCustomerRepository) findCustomer(ctx context.Context, customerID string, lock bool) (*domain.Customer, error) {
	query := `SELECT customer_id, name, loyalty_points, is_active FROM customers WHERE customer_id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	var m models.Customer
	err := r.DB().QueryRow(ctx, query, customerID).Scan(&m.CustomerID, &m.Name, &m.LoyaltyPoints, &m.IsActive)
	if err != nil {
		return nil, mapError(err, "failed to find customer "+customerID)
	}
	c := mapping.ToDomainCustomer(m)
	return &c, nil
}

func (r *PgxCustomerRepository) FindCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error) {
	return r.findCustomer(ctx, customerID, false)
}

func (r *PgxCustomerRepository) FindCustomerByIDForUpdate(ctx context.Context, customerID string) (*domain.Customer, error) {
	return r.findCustomer(ctx, customerID, r.inTx())
}

func (r *PgxCustomerRepository) AddLoyaltyPoints(ctx context.Context, customerID string, points int64) (int64, error) {
	var balance int64
	err := r.DB().QueryRow(ctx,
		`UPDATE customers SET loyalty_points = loyalty_points + $2 WHERE customer_id = $1 RETURNING loyalty_points;`,
		customerID, points).Scan(&balance)
	if err != nil {
		return 0, mapError(err, "failed to award points to customer "+customerID)
	}
	return balance, nil
}

// DeductLoyaltyPoints only succeeds when the balance covers points.
func (r *PgxCustomerRepository) DeductLoyaltyPoints(ctx context.Context, customerID string, points int64) (int64, error) {
	var balance int64
	err := r.DB().QueryRow(ctx,
		`UPDATE customers SET loyalty_points = loyalty_points - $2 WHERE customer_id = $1 AND loyalty_points >= $2 RETURNING loyalty_points;`,
		customerID, points).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, mapError(err, "failed to consume points of customer "+customerID)
	}

	current, findErr := r.FindCustomerByID(ctx, customerID)
	if findErr != nil {
		return 0, findErr
	}
	return 0, fmt.Errorf("%w: customer %s has %d, requested %d", apperrors.ErrInsufficientPoints, customerID, current.LoyaltyPoints, points)
}
