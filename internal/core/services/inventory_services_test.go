package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/retail_management_app/internal/apperrors"
	"github.com/SscSPs/retail_management_app/internal/core/domain"
	portssvc "github.com/SscSPs/retail_management_app/internal/core/ports/services"
	"github.com/SscSPs/retail_management_app/internal/core/services"
	"github.com/SscSPs/retail_management_app/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// --- Stock ledger ---

type StockLedgerTestSuite struct {
	suite.Suite
	stockRepo *MockStockRepository
	catalog   *MockCatalogReader
	ledger    portssvc.StockLedgerSvc
	now       time.Time
}

func (s *StockLedgerTestSuite) SetupTest() {
	s.stockRepo = new(MockStockRepository)
	s.catalog = new(MockCatalogReader)
	s.now = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.ledger = services.NewStockLedger(s.stockRepo, s.catalog, services.DefaultMinimumStock,
		services.WithClock(func() time.Time { return s.now }))
}

func TestStockLedgerTestSuite(t *testing.T) {
	suite.Run(t, new(StockLedgerTestSuite))
}

func (s *StockLedgerTestSuite) TestIncrease_UsesProductMinimum() {
	ctx := context.Background()
	ref := domain.StockRef{ProductID: "p1"}
	minimum := int64(12)
	s.catalog.On("FindProductByID", ctx, "p1").Return(&domain.Product{ProductID: "p1", MinimumStock: &minimum}, nil).Once()
	s.stockRepo.On("IncreaseStock", ctx, ref, int64(3), int64(12), s.now).Return(&domain.StockRecord{StockRef: ref, Quantity: 3}, nil).Once()
	s.stockRepo.On("SaveMovement", ctx, mock.MatchedBy(func(m domain.StockMovement) bool {
		return m.Kind == domain.MovementIn && m.Quantity == 3 && m.TransactionID == "t1" && m.Reason == domain.ReasonApply
	})).Return(nil).Once()

	rec, err := s.ledger.Increase(ctx, s.stockRepo, ref, 3, "t1", domain.ReasonApply)

	s.Require().NoError(err)
	s.Equal(int64(3), rec.Quantity)
	s.stockRepo.AssertExpectations(s.T())
	s.catalog.AssertExpectations(s.T())
}

func (s *StockLedgerTestSuite) TestIncrease_DefaultsMinimum() {
	ctx := context.Background()
	ref := domain.StockRef{ProductID: "p2"}
	s.catalog.On("FindProductByID", ctx, "p2").Return(&domain.Product{ProductID: "p2"}, nil).Once()
	s.stockRepo.On("IncreaseStock", ctx, ref, int64(1), services.DefaultMinimumStock, s.now).Return(&domain.StockRecord{StockRef: ref, Quantity: 1}, nil).Once()
	s.stockRepo.On("SaveMovement", ctx, mock.AnythingOfType("domain.StockMovement")).Return(nil).Once()

	_, err := s.ledger.Increase(ctx, s.stockRepo, ref, 1, "t1", domain.ReasonApply)

	s.Require().NoError(err)
	s.stockRepo.AssertExpectations(s.T())
}

func (s *StockLedgerTestSuite) TestDecrease_MissingRecordIsInsufficient() {
	ctx := context.Background()
	ref := domain.StockRef{ProductID: "p1"}
	s.stockRepo.On("DecreaseStock", ctx, ref, int64(2), s.now).Return(nil, apperrors.ErrNotFound).Once()

	rec, err := s.ledger.Decrease(ctx, s.stockRepo, ref, 2, "t1", domain.ReasonApply)

	s.Nil(rec)
	s.ErrorIs(err, apperrors.ErrInsufficientStock)
	s.stockRepo.AssertNotCalled(s.T(), "SaveMovement", mock.Anything, mock.Anything)
}

func (s *StockLedgerTestSuite) TestDecrease_RejectsNonPositive() {
	_, err := s.ledger.Decrease(context.Background(), s.stockRepo, domain.StockRef{ProductID: "p1"}, 0, "t1", domain.ReasonApply)
	s.ErrorIs(err, apperrors.ErrValidation)
	_, err = s.ledger.Increase(context.Background(), s.stockRepo, domain.StockRef{ProductID: "p1"}, -1, "t1", domain.ReasonApply)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *StockLedgerTestSuite) TestGetStock() {
	ctx := context.Background()
	ref := domain.StockRef{ProductID: "p1"}
	s.stockRepo.On("FindStock", ctx, ref).Return(nil, apperrors.ErrNotFound).Once()

	_, err := s.ledger.GetStock(ctx, ref)
	s.ErrorIs(err, apperrors.ErrNotFound)

	_, err = s.ledger.GetStock(ctx, domain.StockRef{})
	s.ErrorIs(err, apperrors.ErrValidation)
}

// --- Loyalty ---

func TestLoyaltyService_PointsForTotal(t *testing.T) {
	svc := services.NewLoyaltyService(services.DefaultLoyaltyEarnUnit, services.DefaultLoyaltyPointValue)
	cases := map[string]int64{
		"100.00": 10,
		"99.99":  9,
		"9.99":   0,
		"0":      0,
		"-5":     0,
	}
	for total, want := range cases {
		assert.Equal(t, want, svc.PointsForTotal(decimal.RequireFromString(total)), total)
	}
	assert.True(t, decimal.RequireFromString("2.00").Equal(svc.DiscountForPoints(20)))
	assert.True(t, svc.DiscountForPoints(-1).IsZero())
}

func TestLoyaltyService_NonPositiveRatesFallBack(t *testing.T) {
	svc := services.NewLoyaltyService(decimal.Zero, decimal.NewFromInt(-1))
	assert.Equal(t, int64(3), svc.PointsForTotal(decimal.NewFromInt(30)))
	assert.True(t, decimal.RequireFromString("0.10").Equal(svc.DiscountForPoints(1)))
}

func TestLoyaltyService_Consume(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCustomerRepository)
	svc := services.NewLoyaltyService(services.DefaultLoyaltyEarnUnit, services.DefaultLoyaltyPointValue)

	repo.On("DeductLoyaltyPoints", ctx, "c1", int64(20)).Return(int64(0), apperrors.ErrInsufficientPoints).Once()
	_, err := svc.Consume(ctx, repo, "c1", 20)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientPoints)

	_, err = svc.Consume(ctx, repo, "c1", 0)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	repo.AssertExpectations(t)
}

func TestLoyaltyService_ConsumeUpToClamps(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCustomerRepository)
	svc := services.NewLoyaltyService(services.DefaultLoyaltyEarnUnit, services.DefaultLoyaltyPointValue)

	repo.On("FindCustomerByIDForUpdate", ctx, "c1").Return(&domain.Customer{CustomerID: "c1", LoyaltyPoints: 4}, nil).Once()
	repo.On("DeductLoyaltyPoints", ctx, "c1", int64(4)).Return(int64(0), nil).Once()

	taken, err := svc.ConsumeUpTo(ctx, repo, "c1", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(4), taken)

	repo.On("FindCustomerByIDForUpdate", ctx, "c2").Return(&domain.Customer{CustomerID: "c2"}, nil).Once()
	taken, err = svc.ConsumeUpTo(ctx, repo, "c2", 10)
	require.NoError(t, err)
	assert.Zero(t, taken)
	repo.AssertExpectations(t)
}

func TestLoyaltyService_Award(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCustomerRepository)
	svc := services.NewLoyaltyService(services.DefaultLoyaltyEarnUnit, services.DefaultLoyaltyPointValue)

	repo.On("AddLoyaltyPoints", ctx, "c1", int64(7)).Return(int64(17), nil).Once()
	balance, err := svc.Award(ctx, repo, "c1", 7)
	require.NoError(t, err)
	assert.Equal(t, int64(17), balance)

	_, err = svc.Award(ctx, repo, "c1", -1)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	repo.AssertExpectations(t)
}

// --- Line processor ---

func TestLineProcessor_Process(t *testing.T) {
	ctx := context.Background()
	catalog := new(MockCatalogReader)
	processor := services.NewLineProcessor(catalog)

	catalog.On("FindProductByID", ctx, "p1").Return(&domain.Product{ProductID: "p1", IsActive: true}, nil)
	catalog.On("FindProductByID", ctx, "old").Return(&domain.Product{ProductID: "old"}, nil)
	catalog.On("FindProductByID", ctx, "missing").Return(nil, apperrors.ErrNotFound)
	catalog.On("FindVariantByID", ctx, "v1").Return(&domain.Variant{VariantID: "v1", ProductID: "p1", IsActive: true}, nil)
	catalog.On("FindVariantByID", ctx, "v-other").Return(&domain.Variant{VariantID: "v-other", ProductID: "p9", IsActive: true}, nil)

	discount := decimal.RequireFromString("1.50")
	variant := "v1"
	got, err := processor.Process(ctx, "t1", 0, dto.TransactionLineRequest{
		ProductID: "p1", VariantID: &variant, Quantity: 3, UnitPrice: decimal.RequireFromString("2.50"), Discount: &discount,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, got.LineID)
	assert.Equal(t, "t1", got.TransactionID)
	assert.Equal(t, &variant, got.VariantID)
	assert.True(t, decimal.RequireFromString("6.00").Equal(got.Subtotal), got.Subtotal.String())

	otherVariant := "v-other"
	tooMuch := decimal.NewFromInt(100)
	cases := []struct {
		name    string
		req     dto.TransactionLineRequest
		wantErr error
	}{
		{"missing product id", dto.TransactionLineRequest{Quantity: 1, UnitPrice: decimal.NewFromInt(1)}, apperrors.ErrValidation},
		{"negative quantity", dto.TransactionLineRequest{ProductID: "p1", Quantity: -1, UnitPrice: decimal.NewFromInt(1)}, apperrors.ErrValidation},
		{"zero price", dto.TransactionLineRequest{ProductID: "p1", Quantity: 1}, apperrors.ErrValidation},
		{"unknown product", dto.TransactionLineRequest{ProductID: "missing", Quantity: 1, UnitPrice: decimal.NewFromInt(1)}, apperrors.ErrNotFound},
		{"inactive product", dto.TransactionLineRequest{ProductID: "old", Quantity: 1, UnitPrice: decimal.NewFromInt(1)}, apperrors.ErrNotFound},
		{"variant of other product", dto.TransactionLineRequest{ProductID: "p1", VariantID: &otherVariant, Quantity: 1, UnitPrice: decimal.NewFromInt(1)}, apperrors.ErrNotFound},
		{"negative subtotal", dto.TransactionLineRequest{ProductID: "p1", Quantity: 1, UnitPrice: decimal.NewFromInt(1), Discount: &tooMuch}, apperrors.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := processor.Process(ctx, "t1", 2, tc.req)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Contains(t, err.Error(), "line 2")
		})
	}
}

// --- Totals ---

func TestTotalsCalculator_Recalculate(t *testing.T) {
	ctx := context.Background()
	repo := new(MockTransactionRepository)
	calc := services.NewTotalsCalculator()

	header := &domain.Transaction{
		TransactionID:   "t1",
		Direction:       domain.Outbound,
		Discount:        decimal.NewFromInt(5),
		Tax:             decimal.RequireFromString("1.25"),
		LoyaltyDiscount: decimal.NewFromInt(2),
	}
	lines := []domain.TransactionLine{
		{LineID: "l1", Subtotal: decimal.NewFromInt(30)},
		{LineID: "l2", Subtotal: decimal.RequireFromString("12.50")},
	}
	repo.On("FindTransactionByID", ctx, "t1").Return(header, nil).Once()
	repo.On("FindLinesByTransactionID", ctx, "t1").Return(lines, nil).Once()
	repo.On("UpdateTransaction", ctx, mock.MatchedBy(func(txn domain.Transaction) bool {
		return txn.Total.Equal(decimal.RequireFromString("36.75"))
	})).Return(nil).Once()

	got, err := calc.Recalculate(ctx, repo, "t1")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("42.50").Equal(got.Subtotal))
	assert.Len(t, got.Lines, 2)
	repo.AssertExpectations(t)
}

func TestTotalsCalculator_NegativeTotalIsRejected(t *testing.T) {
	ctx := context.Background()
	repo := new(MockTransactionRepository)
	calc := services.NewTotalsCalculator()

	repo.On("FindTransactionByID", ctx, "t1").Return(&domain.Transaction{TransactionID: "t1", Discount: decimal.NewFromInt(50)}, nil).Once()
	repo.On("FindLinesByTransactionID", ctx, "t1").Return([]domain.TransactionLine{{Subtotal: decimal.NewFromInt(10)}}, nil).Once()

	_, err := calc.Recalculate(ctx, repo, "t1")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	repo.AssertNotCalled(t, "UpdateTransaction", mock.Anything, mock.Anything)
}

func TestApplyTotals_PurchasesIgnoreLoyaltyDiscount(t *testing.T) {
	txn := &domain.Transaction{Direction: domain.Inbound, LoyaltyDiscount: decimal.NewFromInt(3)}
	services.ApplyTotals(txn, []domain.TransactionLine{{Subtotal: decimal.NewFromInt(10)}})
	assert.True(t, txn.LoyaltyDiscount.IsZero())
	assert.True(t, decimal.NewFromInt(10).Equal(txn.Total))
}

// --- Document numbering ---

func TestDocumentNumbering_Next(t *testing.T) {
	ctx := context.Background()
	seq := new(MockDocumentSequencer)
	numbering := services.NewDocumentNumbering(seq)

	seq.On("NextSequence", ctx, "VENT").Return(int64(123), nil).Once()
	seq.On("NextSequence", ctx, "COMP").Return(int64(45), nil).Once()

	got, err := numbering.Next(ctx, domain.Outbound)
	require.NoError(t, err)
	assert.Equal(t, "VENT-000123", got)

	got, err = numbering.Next(ctx, domain.Inbound)
	require.NoError(t, err)
	assert.Equal(t, "COMP-000045", got)

	_, err = numbering.Next(ctx, domain.Direction("SIDEWAYS"))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	down := errors.New("sequence down")
	seq.On("NextSequence", ctx, "VENT").Return(int64(0), down).Once()
	_, err = numbering.Next(ctx, domain.Outbound)
	assert.ErrorIs(t, err, down)
	seq.AssertExpectations(t)
}

func TestFormatDocumentNumber(t *testing.T) {
	assert.Equal(t, "COMP-000001", services.FormatDocumentNumber("COMP", 1))
	assert.Equal(t, "VENT-1234567", services.FormatDocumentNumber("VENT", 1234567))
}
