package repositories

import (
	"context"

	"github.com/SscSPs/retail_management_app/internal/core/domain"
)

// CustomerReader reads customer loyalty balances.
type CustomerReader interface {
	FindCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error)
	// FindCustomerByIDForUpdate locks the customer row until the unit of work ends.
	FindCustomerByIDForUpdate(ctx context.Context, customerID string) (*domain.Customer, error)
}

// CustomerWriter mutates loyalty balances atomically.
type CustomerWriter interface {
	AddLoyaltyPoints(ctx context.Context, customerID string, points int64) (int64, error)
	// DeductLoyaltyPoints subtracts points only if the balance covers them,
	// otherwise it returns apperrors.ErrInsufficientPoints.
	DeductLoyaltyPoints(ctx context.Context, customerID string, points int64) (int64, error)
}

// CustomerRepositoryFacade combines all customer repository operations.
type CustomerRepositoryFacade interface {
	CustomerReader
	CustomerWriter
}
