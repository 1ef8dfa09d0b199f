package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/retail_management_app/internal/apperrors"
	portsrepo "github.com/SscSPs/retail_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/retail_management_app/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

var (
	// DefaultLoyaltyEarnUnit is the sale amount that earns one point.
	DefaultLoyaltyEarnUnit = decimal.NewFromInt(10)
	// DefaultLoyaltyPointValue is the discount one point is worth.
	DefaultLoyaltyPointValue = decimal.New(10, -2)
)

type loyaltyService struct {
	BaseService
	earnUnit   decimal.Decimal
	pointValue decimal.Decimal
}

var _ portssvc.LoyaltySvc = (*loyaltyService)(nil)

// NewLoyaltyService creates the loyalty account service. Non-positive rates fall back to the defaults.
func NewLoyaltyService(earnUnit, pointValue decimal.Decimal) portssvc.LoyaltySvc {
	if !earnUnit.IsPositive() {
		earnUnit = DefaultLoyaltyEarnUnit
	}
	if !pointValue.IsPositive() {
		pointValue = DefaultLoyaltyPointValue
	}
	return &loyaltyService{earnUnit: earnUnit, pointValue: pointValue}
}

// PointsForTotal returns floor(total / earnUnit); non-positive totals earn nothing.
func (s *loyaltyService) PointsForTotal(total decimal.Decimal) int64 {
	if !total.IsPositive() {
		return 0
	}
	return total.Div(s.earnUnit).Floor().IntPart()
}

// DiscountForPoints returns the currency value of points.
func (s *loyaltyService) DiscountForPoints(points int64) decimal.Decimal {
	if points <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(points).Mul(s.pointValue)
}

// Award adds points to the customer's balance and returns the new balance.
func (s *loyaltyService) Award(ctx context.Context, customers portsrepo.CustomerRepositoryFacade, customerID string, points int64) (int64, error) {
	if points < 0 {
		return 0, fmt.Errorf("%w: cannot award negative points (%d)", apperrors.ErrValidation, points)
	}
	if points == 0 {
		c, err := customers.FindCustomerByID(ctx, customerID)
		if err != nil {
			return 0, fmt.Errorf("customer %s: %w", customerID, err)
		}
		return c.LoyaltyPoints, nil
	}

	balance, err := customers.AddLoyaltyPoints(ctx, customerID, points)
	if err != nil {
		return 0, fmt.Errorf("award %d points to customer %s: %w", points, customerID, err)
	}
	s.LogInfo(ctx, "Loyalty points awarded",
		slog.String("customer_id", customerID),
		slog.Int64("points", points),
		slog.Int64("balance", balance))
	return balance, nil
}

// Consume removes points from the customer's balance and returns the new balance.
// It fails with ErrInsufficientPoints when the balance is too low.
func (s *loyaltyService) Consume(ctx context.Context, customers portsrepo.CustomerRepositoryFacade, customerID string, points int64) (int64, error) {
	if points <= 0 {
		return 0, fmt.Errorf("%w: points to consume must be positive, got %d", apperrors.ErrValidation, points)
	}

	balance, err := customers.DeductLoyaltyPoints(ctx, customerID, points)
	if err != nil {
		return 0, fmt.Errorf("consume %d points from customer %s: %w", points, customerID, err)
	}
	s.LogInfo(ctx, "Loyalty points consumed",
		slog.String("customer_id", customerID),
		slog.Int64("points", points),
		slog.Int64("balance", balance))
	return balance, nil
}

// ConsumeUpTo removes min(points, balance) and returns how many points were removed.
// Used to take back awarded points the customer may already have spent.
func (s *loyaltyService) ConsumeUpTo(ctx context.Context, customers portsrepo.CustomerRepositoryFacade, customerID string, points int64) (int64, error) {
	if points <= 0 {
		return 0, nil
	}

	c, err := customers.FindCustomerByIDForUpdate(ctx, customerID)
	if err != nil {
		return 0, fmt.Errorf("customer %s: %w", customerID, err)
	}

	take := points
	if c.LoyaltyPoints < take {
		take = c.LoyaltyPoints
		s.LogWarn(ctx, "Customer already spent awarded points, reversal clamped",
			slog.String("customer_id", customerID),
			slog.Int64("requested", points),
			slog.Int64("reversed", take),
			slog.Int64("shortfall", points-take))
	}
	if take == 0 {
		return 0, nil
	}

	if _, err := s.Consume(ctx, customers, customerID, take); err != nil {
		return 0, err
	}
	return take, nil
}
