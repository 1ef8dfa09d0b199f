package memory

import (
	"context"
	"fmt"

	"github.com/SscSPs/retail_management_app/internal/apperrors"
	"github.com/SscSPs/retail_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/retail_management_app/internal/core/ports/repositories"
)

type customerRepository struct {
	*view
}

var _ portsrepo.CustomerRepositoryFacade = (*customerRepository)(nil)

func (r *customerRepository) FindCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error) {
	var c domain.Customer
	err := r.read(func(d *dataset) error {
		found, ok := d.customers[customerID]
		if !ok {
			return apperrors.ErrNotFound
		}
		c = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *customerRepository) FindCustomerByIDForUpdate(ctx context.Context, customerID string) (*domain.Customer, error) {
	return r.FindCustomerByID(ctx, customerID)
}

func (r *customerRepository) AddLoyaltyPoints(ctx context.Context, customerID string, points int64) (int64, error) {
	var balance int64
	err := r.write(func(d *dataset) error {
		c, ok := d.customers[customerID]
		if !ok {
			return apperrors.ErrNotFound
		}
		c.LoyaltyPoints += points
		d.customers[customerID] = c
		balance = c.LoyaltyPoints
		return nil
	})
	return balance, err
}

func (r *customerRepository) DeductLoyaltyPoints(ctx context.Context, customerID string, points int64) (int64, error) {
	var balance int64
	err := r.write(func(d *dataset) error {
		c, ok := d.customers[customerID]
		if !ok {
			return apperrors.ErrNotFound
		}
		if c.LoyaltyPoints < points {
			return fmt.Errorf("%w: customer %s has %d, requested %d", apperrors.ErrInsufficientPoints, customerID, c.LoyaltyPoints, points)
		}
		c.LoyaltyPoints -= points
		d.customers[customerID] = c
		balance = c.LoyaltyPoints
		return nil
	})
	return balance, err
}
