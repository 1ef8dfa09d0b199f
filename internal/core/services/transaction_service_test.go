package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/retail_management_app/internal/apperrors"
	"github.com/SscSPs/retail_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/retail_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/retail_management_app/internal/core/ports/services"
	"github.com/SscSPs/retail_management_app/internal/core/services"
	"github.com/SscSPs/retail_management_app/internal/dto"
	"github.com/SscSPs/retail_management_app/internal/platform/config"
	"github.com/SscSPs/retail_management_app/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

const (
	operatorID = "op-1"
	supplierID = "sup-1"
	customerID = "cust-1"
	productX   = "prod-x"
	productY   = "prod-y"
	productZ   = "prod-z"
)

var fixedNow = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.TransactionEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, event domain.TransactionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// TransactionServiceTestSuite runs the orchestrator against the in-memory store.
type TransactionServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	store     *memory.Store
	repos     portsrepo.RepositoryProvider
	publisher *recordingPublisher
	service   portssvc.TransactionSvcFacade
}

func (s *TransactionServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.NewStore()
	s.repos = s.store.NewRepositoryProvider()
	s.publisher = &recordingPublisher{}

	s.store.SeedParty(domain.Party{PartyID: operatorID, Kind: domain.PartyOperator, Name: "Till 1", IsActive: true})
	s.store.SeedParty(domain.Party{PartyID: supplierID, Kind: domain.PartySupplier, Name: "Acme", IsActive: true})
	s.store.SeedCustomer(domain.Customer{CustomerID: customerID, Name: "Jo", IsActive: true})
	minimum := int64(2)
	s.store.SeedProduct(domain.Product{ProductID: productX, Name: "X", IsActive: true, MinimumStock: &minimum})
	s.store.SeedProduct(domain.Product{ProductID: productY, Name: "Y", IsActive: true})
	s.store.SeedProduct(domain.Product{ProductID: productZ, Name: "Z", IsActive: true})
	s.seedStock(productX, 10)
	s.seedStock(productY, 5)

	s.service = s.newService(s.repos.SequenceRepo)
}

// newService builds the orchestrator over the suite's store with the given sequencer.
func (s *TransactionServiceTestSuite) newService(sequencer portsrepo.DocumentSequencer) portssvc.TransactionSvcFacade {
	clock := services.WithClock(func() time.Time { return fixedNow })
	ledger := services.NewStockLedger(s.repos.StockRepo, s.repos.CatalogRepo, services.DefaultMinimumStock, clock)
	return services.NewTransactionService(services.TransactionDeps{
		TxManager: s.repos.TxManager,
		Reader:    s.repos.TransactionRepo,
		Parties:   s.repos.PartyRepo,
		Lines:     services.NewLineProcessor(s.repos.CatalogRepo),
		Totals:    services.NewTotalsCalculator(),
		Ledger:    ledger,
		Loyalty:   services.NewLoyaltyService(services.DefaultLoyaltyEarnUnit, services.DefaultLoyaltyPointValue),
		Numbering: services.NewDocumentNumbering(sequencer),
	},
		services.WithEventPublisher(s.publisher),
		services.WithTransactionClock(clock),
	)
}

func TestTransactionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}

// --- helpers ---

func (s *TransactionServiceTestSuite) seedStock(productID string, qty int64) {
	s.store.SeedStock(domain.StockRecord{
		StockRef:        domain.StockRef{ProductID: productID},
		Quantity:        qty,
		MinimumQuantity: services.DefaultMinimumStock,
	})
}

func (s *TransactionServiceTestSuite) stockOf(productID string) int64 {
	rec, err := s.repos.StockRepo.FindStock(s.ctx, domain.StockRef{ProductID: productID})
	s.Require().NoError(err)
	return rec.Quantity
}

func (s *TransactionServiceTestSuite) pointsOf(id string) int64 {
	c, err := s.repos.CustomerRepo.FindCustomerByID(s.ctx, id)
	s.Require().NoError(err)
	return c.LoyaltyPoints
}

func (s *TransactionServiceTestSuite) setPoints(id string, points int64) {
	s.store.SeedCustomer(domain.Customer{CustomerID: id, Name: "Jo", LoyaltyPoints: points, IsActive: true})
}

func line(productID string, qty int64, price string) dto.TransactionLineRequest {
	return dto.TransactionLineRequest{
		ProductID: productID,
		Quantity:  qty,
		UnitPrice: decimal.RequireFromString(price),
	}
}

func (s *TransactionServiceTestSuite) assertMoney(want string, got decimal.Decimal) {
	s.T().Helper()
	s.True(decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func (s *TransactionServiceTestSuite) assertTotalsConsistent(txn *domain.Transaction) {
	s.T().Helper()
	expected := txn.Subtotal.Sub(txn.Discount).Sub(txn.LoyaltyDiscount).Add(txn.Tax)
	s.True(expected.Equal(txn.Total), "total %s != %s", txn.Total, expected)
}

func (s *TransactionServiceTestSuite) createSale(customer *string, lines ...dto.TransactionLineRequest) *domain.Transaction {
	txn, err := s.service.CreateSale(s.ctx, dto.CreateTransactionRequest{CounterpartyID: customer, Lines: lines}, operatorID)
	s.Require().NoError(err)
	return txn
}

func ptr[T any](v T) *T { return &v }

// --- Creation ---

func (s *TransactionServiceTestSuite) TestCreateSale_AppliesStockAndTotals() {
	txn := s.createSale(nil, line(productX, 3, "10.00"), line(productY, 1, "25.00"))

	s.assertMoney("55.00", txn.Subtotal)
	s.assertMoney("55.00", txn.Total)
	s.Equal("VENT-000001", txn.DocumentNumber)
	s.Equal(domain.StatusCompleted, txn.Status)
	s.Nil(txn.CompletedAt)
	s.Len(txn.Lines, 2)
	s.Equal(int64(7), s.stockOf(productX))
	s.Equal(int64(4), s.stockOf(productY))
	s.Equal([]domain.EventType{domain.EventCreated}, s.publisher.types())

	movements, err := s.repos.StockRepo.ListMovementsByTransaction(s.ctx, txn.TransactionID)
	s.Require().NoError(err)
	s.Len(movements, 2)
	for _, m := range movements {
		s.Equal(domain.MovementOut, m.Kind)
		s.Equal(domain.ReasonApply, m.Reason)
	}
}

func (s *TransactionServiceTestSuite) TestCreateSale_InsufficientStockLeavesNoTrace() {
	s.seedStock(productY, 0)

	txn, err := s.service.CreateSale(s.ctx, dto.CreateTransactionRequest{
		Lines: []dto.TransactionLineRequest{line(productX, 3, "10.00"), line(productY, 1, "25.00")},
	}, operatorID)

	s.Require().ErrorIs(err, apperrors.ErrInsufficientStock)
	s.Nil(txn)
	s.Equal(int64(10), s.stockOf(productX))
	s.Equal(int64(0), s.stockOf(productY))

	page, err := s.service.ListTransactions(s.ctx, dto.ListTransactionsParams{IncludeInactive: true})
	s.Require().NoError(err)
	s.Empty(page.Transactions)
	s.Empty(s.publisher.types())
}

func (s *TransactionServiceTestSuite) TestCreatePurchase_IncreasesStockAndCreatesRecords() {
	txn, err := s.service.CreatePurchase(s.ctx, dto.CreateTransactionRequest{
		CounterpartyID: ptr(supplierID),
		DueAt:          ptr(fixedNow.Add(30 * 24 * time.Hour)),
		Tax:            ptr(decimal.RequireFromString("2.50")),
		Lines:          []dto.TransactionLineRequest{line(productX, 5, "4.00"), line(productZ, 2, "3.00")},
	}, operatorID)
	s.Require().NoError(err)

	s.Equal("COMP-000001", txn.DocumentNumber)
	s.Equal(domain.StatusPending, txn.Status)
	s.assertMoney("26.00", txn.Subtotal)
	s.assertMoney("28.50", txn.Total)
	s.Equal(int64(15), s.stockOf(productX))

	rec, err := s.repos.StockRepo.FindStock(s.ctx, domain.StockRef{ProductID: productZ})
	s.Require().NoError(err)
	s.Equal(int64(2), rec.Quantity)
	s.Equal(services.DefaultMinimumStock, rec.MinimumQuantity)
	s.Require().NotNil(rec.LastInboundAt)
	s.Equal(fixedNow, *rec.LastInboundAt)
}

func (s *TransactionServiceTestSuite) TestCreatePurchase_RequiresSupplier() {
	_, err := s.service.CreatePurchase(s.ctx, dto.CreateTransactionRequest{
		Lines: []dto.TransactionLineRequest{line(productX, 1, "1.00")},
	}, operatorID)
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.service.CreatePurchase(s.ctx, dto.CreateTransactionRequest{
		CounterpartyID: ptr("nobody"),
		Lines:          []dto.TransactionLineRequest{line(productX, 1, "1.00")},
	}, operatorID)
	s.ErrorIs(err, apperrors.ErrNotFound)
	s.Equal(int64(10), s.stockOf(productX))
}

func (s *TransactionServiceTestSuite) TestCreate_RejectsUnknownOperator() {
	_, err := s.service.CreateSale(s.ctx, dto.CreateTransactionRequest{
		Lines: []dto.TransactionLineRequest{line(productX, 1, "1.00")},
	}, "ghost")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *TransactionServiceTestSuite) TestCreate_InvalidLineMutatesNothing() {
	cases := map[string]dto.TransactionLineRequest{
		"zero quantity":   line(productX, 0, "1.00"),
		"zero price":      line(productX, 1, "0"),
		"unknown product": line("missing", 1, "1.00"),
		"discount too big": {
			ProductID: productX, Quantity: 1, UnitPrice: decimal.NewFromInt(1), Discount: ptr(decimal.NewFromInt(2)),
		},
	}
	for name, bad := range cases {
		s.Run(name, func() {
			_, err := s.service.CreateSale(s.ctx, dto.CreateTransactionRequest{
				Lines: []dto.TransactionLineRequest{line(productY, 1, "1.00"), bad},
			}, operatorID)
			s.Error(err)
			s.Equal(int64(10), s.stockOf(productX))
			s.Equal(int64(5), s.stockOf(productY))
		})
	}
}

func (s *TransactionServiceTestSuite) TestCreate_DuplicateDocumentNumber() {
	req := dto.CreateTransactionRequest{
		DocumentNumber: "VENT-777777",
		Lines:          []dto.TransactionLineRequest{line(productX, 1, "1.00")},
	}
	_, err := s.service.CreateSale(s.ctx, req, operatorID)
	s.Require().NoError(err)

	_, err = s.service.CreateSale(s.ctx, req, operatorID)
	s.ErrorIs(err, apperrors.ErrDuplicate)
	s.Equal(int64(9), s.stockOf(productX))
}

func (s *TransactionServiceTestSuite) TestCreate_SkipsGeneratedNumberAlreadyTaken() {
	first := s.createSale(nil, line(productX, 1, "1.00"))
	s.Equal("VENT-000001", first.DocumentNumber)

	// A sequencer starting over, as after switching numbering backends.
	restarted := s.newService(memory.NewStore().NewRepositoryProvider().SequenceRepo)
	second, err := restarted.CreateSale(s.ctx, dto.CreateTransactionRequest{
		Lines: []dto.TransactionLineRequest{line(productX, 1, "1.00")},
	}, operatorID)
	s.Require().NoError(err)
	s.Equal("VENT-000002", second.DocumentNumber)
	s.Equal(int64(8), s.stockOf(productX))
}

func (s *TransactionServiceTestSuite) TestCreate_GivesUpAfterRepeatedNumberCollisions() {
	for i := 1; i <= 5; i++ {
		_, err := s.service.CreateSale(s.ctx, dto.CreateTransactionRequest{
			DocumentNumber: services.FormatDocumentNumber("VENT", int64(i)),
			Lines:          []dto.TransactionLineRequest{line(productX, 1, "1.00")},
		}, operatorID)
		s.Require().NoError(err)
	}

	_, err := s.service.CreateSale(s.ctx, dto.CreateTransactionRequest{
		Lines: []dto.TransactionLineRequest{line(productX, 1, "1.00")},
	}, operatorID)
	s.ErrorIs(err, apperrors.ErrDuplicate)
	s.Equal(int64(5), s.stockOf(productX))
}

func (s *TransactionServiceTestSuite) TestCreate_NegativeTotalRollsBack() {
	_, err := s.service.CreateSale(s.ctx, dto.CreateTransactionRequest{
		Discount: ptr(decimal.NewFromInt(100)),
		Lines:    []dto.TransactionLineRequest{line(productX, 1, "1.00")},
	}, operatorID)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.Equal(int64(10), s.stockOf(productX))
}

func (s *TransactionServiceTestSuite) TestCreateSale_ConcurrentSalesOfLastUnit() {
	s.seedStock(productX, 1)

	const buyers = 2
	errs := make(chan error, buyers)
	var wg sync.WaitGroup
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.service.CreateSale(s.ctx, dto.CreateTransactionRequest{
				Lines: []dto.TransactionLineRequest{line(productX, 1, "10.00")},
			}, operatorID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded, failed := 0, 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		s.ErrorIs(err, apperrors.ErrInsufficientStock)
		failed++
	}
	s.Equal(1, succeeded)
	s.Equal(1, failed)
	s.Equal(int64(0), s.stockOf(productX))
}

// --- Loyalty ---

func (s *TransactionServiceTestSuite) TestCompleteSale_AwardsPointsOnce() {
	sale := s.createSale(ptr(customerID), line(productX, 10, "10.00"))
	s.assertMoney("100.00", sale.Total)

	completed, err := s.service.CompleteSale(s.ctx, sale.TransactionID, operatorID)
	s.Require().NoError(err)
	s.Equal(int64(10), completed.PointsAwarded)
	s.Require().NotNil(completed.CompletedAt)
	s.Equal(int64(10), s.pointsOf(customerID))

	_, err = s.service.CompleteSale(s.ctx, sale.TransactionID, operatorID)
	s.ErrorIs(err, apperrors.ErrInvalidStateTransition)
	s.Equal(int64(10), s.pointsOf(customerID))
}

func (s *TransactionServiceTestSuite) TestCancelCompletedSale_ReversesPointsAndStock() {
	sale := s.createSale(ptr(customerID), line(productX, 10, "10.00"))
	_, err := s.service.CompleteSale(s.ctx, sale.TransactionID, operatorID)
	s.Require().NoError(err)
	s.Equal(int64(0), s.stockOf(productX))

	cancelled, err := s.service.CancelSale(s.ctx, sale.TransactionID, operatorID)
	s.Require().NoError(err)
	s.Equal(domain.StatusCancelled, cancelled.Status)
	s.Equal(int64(0), s.pointsOf(customerID))
	s.Equal(int64(10), s.stockOf(productX))

	_, err = s.service.CancelSale(s.ctx, sale.TransactionID, operatorID)
	s.ErrorIs(err, apperrors.ErrInvalidStateTransition)
	s.Equal(int64(10), s.stockOf(productX), "second cancel must not restock again")
	s.Equal([]domain.EventType{domain.EventCreated, domain.EventCompleted, domain.EventCancelled}, s.publisher.types())
}

func (s *TransactionServiceTestSuite) TestCancel_ClampsPointsAlreadySpent() {
	sale := s.createSale(ptr(customerID), line(productX, 10, "10.00"))
	_, err := s.service.CompleteSale(s.ctx, sale.TransactionID, operatorID)
	s.Require().NoError(err)
	s.setPoints(customerID, 4)

	_, err = s.service.CancelSale(s.ctx, sale.TransactionID, operatorID)
	s.Require().NoError(err)
	s.Equal(int64(0), s.pointsOf(customerID))
}

func (s *TransactionServiceTestSuite) TestApplyLoyaltyDiscount_InsufficientPoints() {
	s.setPoints(customerID, 15)
	sale := s.createSale(ptr(customerID), line(productX, 2, "10.00"))

	_, err := s.service.ApplyLoyaltyDiscount(s.ctx, sale.TransactionID, 20, operatorID)
	s.Require().ErrorIs(err, apperrors.ErrInsufficientPoints)

	got, err := s.service.GetTransaction(s.ctx, sale.TransactionID)
	s.Require().NoError(err)
	s.assertMoney("20.00", got.Total)
	s.Equal(int64(15), s.pointsOf(customerID))
}

func (s *TransactionServiceTestSuite) TestApplyLoyaltyDiscount_ReplacesPreviousRedemption() {
	s.setPoints(customerID, 15)
	sale := s.createSale(ptr(customerID), line(productX, 2, "10.00"))

	txn, err := s.service.ApplyLoyaltyDiscount(s.ctx, sale.TransactionID, 10, operatorID)
	s.Require().NoError(err)
	s.assertMoney("1.00", txn.LoyaltyDiscount)
	s.assertMoney("19.00", txn.Total)
	s.Equal(int64(5), s.pointsOf(customerID))

	txn, err = s.service.ApplyLoyaltyDiscount(s.ctx, sale.TransactionID, 5, operatorID)
	s.Require().NoError(err)
	s.assertMoney("0.50", txn.LoyaltyDiscount)
	s.assertMoney("19.50", txn.Total)
	s.Equal(int64(5), txn.PointsUsed)
	s.Equal(int64(10), s.pointsOf(customerID))
	s.assertTotalsConsistent(txn)
}

func (s *TransactionServiceTestSuite) TestApplyLoyaltyDiscount_Guards() {
	s.setPoints(customerID, 50)
	anonymous := s.createSale(nil, line(productX, 1, "10.00"))
	_, err := s.service.ApplyLoyaltyDiscount(s.ctx, anonymous.TransactionID, 5, operatorID)
	s.ErrorIs(err, apperrors.ErrValidation)

	sale := s.createSale(ptr(customerID), line(productX, 1, "10.00"))
	_, err = s.service.CompleteSale(s.ctx, sale.TransactionID, operatorID)
	s.Require().NoError(err)
	_, err = s.service.ApplyLoyaltyDiscount(s.ctx, sale.TransactionID, 5, operatorID)
	s.ErrorIs(err, apperrors.ErrInvalidStateTransition)

	purchase, err := s.service.CreatePurchase(s.ctx, dto.CreateTransactionRequest{
		CounterpartyID: ptr(supplierID),
		Lines:          []dto.TransactionLineRequest{line(productX, 1, "1.00")},
	}, operatorID)
	s.Require().NoError(err)
	_, err = s.service.ApplyLoyaltyDiscount(s.ctx, purchase.TransactionID, 5, operatorID)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

// --- Round trips ---

func (s *TransactionServiceTestSuite) TestCreateThenCancel_RestoresEverything() {
	s.setPoints(customerID, 30)
	sale := s.createSale(ptr(customerID), line(productX, 4, "10.00"), line(productY, 2, "5.00"))
	_, err := s.service.ApplyLoyaltyDiscount(s.ctx, sale.TransactionID, 20, operatorID)
	s.Require().NoError(err)
	_, err = s.service.CompleteSale(s.ctx, sale.TransactionID, operatorID)
	s.Require().NoError(err)

	_, err = s.service.CancelTransaction(s.ctx, sale.TransactionID, operatorID)
	s.Require().NoError(err)
	s.Equal(int64(10), s.stockOf(productX))
	s.Equal(int64(5), s.stockOf(productY))
	s.Equal(int64(30), s.pointsOf(customerID))

	purchase, err := s.service.CreatePurchase(s.ctx, dto.CreateTransactionRequest{
		CounterpartyID: ptr(supplierID),
		Lines:          []dto.TransactionLineRequest{line(productY, 7, "1.00")},
	}, operatorID)
	s.Require().NoError(err)
	s.Equal(int64(12), s.stockOf(productY))
	_, err = s.service.CancelPurchase(s.ctx, purchase.TransactionID, operatorID)
	s.Require().NoError(err)
	s.Equal(int64(5), s.stockOf(productY))
}

func (s *TransactionServiceTestSuite) TestReturnSale_ReversesEffects() {
	sale := s.createSale(ptr(customerID), line(productX, 3, "10.00"))
	_, err := s.service.CompleteSale(s.ctx, sale.TransactionID, operatorID)
	s.Require().NoError(err)
	s.Equal(int64(3), s.pointsOf(customerID))

	returned, err := s.service.ReturnSale(s.ctx, sale.TransactionID, operatorID)
	s.Require().NoError(err)
	s.Equal(domain.StatusReturned, returned.Status)
	s.Equal(int64(10), s.stockOf(productX))
	s.Equal(int64(0), s.pointsOf(customerID))
	s.Equal(int64(3), returned.PointsAwarded, "awarded points stay on record")

	_, err = s.service.CancelSale(s.ctx, sale.TransactionID, operatorID)
	s.ErrorIs(err, apperrors.ErrInvalidStateTransition)
}

func (s *TransactionServiceTestSuite) TestMarkPurchasePaid_IsTerminal() {
	purchase, err := s.service.CreatePurchase(s.ctx, dto.CreateTransactionRequest{
		CounterpartyID: ptr(supplierID),
		Lines:          []dto.TransactionLineRequest{line(productX, 1, "1.00")},
	}, operatorID)
	s.Require().NoError(err)

	paid, err := s.service.MarkPurchasePaid(s.ctx, purchase.TransactionID, operatorID)
	s.Require().NoError(err)
	s.Equal(domain.StatusPaid, paid.Status)

	_, err = s.service.CancelPurchase(s.ctx, purchase.TransactionID, operatorID)
	s.ErrorIs(err, apperrors.ErrInvalidStateTransition)
	_, err = s.service.AddLine(s.ctx, purchase.TransactionID, line(productY, 1, "1.00"), operatorID)
	s.ErrorIs(err, apperrors.ErrInvalidStateTransition)
	s.Equal(int64(11), s.stockOf(productX))

	sale := s.createSale(nil, line(productX, 1, "1.00"))
	_, err = s.service.MarkPurchasePaid(s.ctx, sale.TransactionID, operatorID)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

// --- Line editing and totals ---

func (s *TransactionServiceTestSuite) TestAddAndRemoveLine() {
	sale := s.createSale(nil, line(productX, 1, "10.00"))

	withLine, err := s.service.AddLine(s.ctx, sale.TransactionID, line(productY, 2, "5.00"), operatorID)
	s.Require().NoError(err)
	s.Len(withLine.Lines, 2)
	s.assertMoney("20.00", withLine.Total)
	s.Equal(int64(3), s.stockOf(productY))

	added := withLine.Lines[1]
	withoutLine, err := s.service.RemoveLine(s.ctx, sale.TransactionID, added.LineID, operatorID)
	s.Require().NoError(err)
	s.Len(withoutLine.Lines, 1)
	s.assertMoney("10.00", withoutLine.Total)
	s.Equal(int64(5), s.stockOf(productY))

	_, err = s.service.RemoveLine(s.ctx, sale.TransactionID, added.LineID, operatorID)
	s.ErrorIs(err, apperrors.ErrNotFound)

	_, err = s.service.AddLine(s.ctx, sale.TransactionID, line(productY, 6, "5.00"), operatorID)
	s.ErrorIs(err, apperrors.ErrInsufficientStock)
	s.Equal(int64(5), s.stockOf(productY))
}

func (s *TransactionServiceTestSuite) TestRecalculate_IsIdempotent() {
	sale := s.createSale(nil, line(productX, 3, "3.33"), line(productY, 1, "0.01"))

	first, err := s.service.Recalculate(s.ctx, sale.TransactionID, operatorID)
	s.Require().NoError(err)
	second, err := s.service.Recalculate(s.ctx, sale.TransactionID, operatorID)
	s.Require().NoError(err)

	s.assertMoney("10.00", first.Subtotal)
	s.True(first.Subtotal.Equal(second.Subtotal))
	s.True(first.Total.Equal(second.Total))
	s.assertTotalsConsistent(second)
}

// --- Deletion ---

func (s *TransactionServiceTestSuite) TestDeleteTransaction_SoftDeletes() {
	sale := s.createSale(nil, line(productX, 4, "1.00"))

	s.Require().NoError(s.service.DeleteTransaction(s.ctx, sale.TransactionID, operatorID))
	s.Equal(int64(10), s.stockOf(productX))

	got, err := s.service.GetTransaction(s.ctx, sale.TransactionID)
	s.Require().NoError(err)
	s.False(got.IsActive)

	page, err := s.service.ListTransactions(s.ctx, dto.ListTransactionsParams{})
	s.Require().NoError(err)
	s.Empty(page.Transactions)

	err = s.service.DeleteTransaction(s.ctx, sale.TransactionID, operatorID)
	s.ErrorIs(err, apperrors.ErrInvalidStateTransition)

	s.Require().NoError(s.service.DeleteTransactionPermanently(s.ctx, sale.TransactionID, operatorID))
	s.Equal(int64(10), s.stockOf(productX))
	_, err = s.service.GetTransaction(s.ctx, sale.TransactionID)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *TransactionServiceTestSuite) TestDeletePermanently_CancelledDoesNotRestockTwice() {
	sale := s.createSale(nil, line(productX, 4, "1.00"))
	_, err := s.service.CancelSale(s.ctx, sale.TransactionID, operatorID)
	s.Require().NoError(err)

	s.Require().NoError(s.service.DeleteTransactionPermanently(s.ctx, sale.TransactionID, operatorID))
	s.Equal(int64(10), s.stockOf(productX))
	s.Contains(s.publisher.types(), domain.EventPermanentlyDeleted)
}

// --- Reads ---

func (s *TransactionServiceTestSuite) TestListTransactions_FiltersAndPages() {
	for i := 0; i < 3; i++ {
		s.createSale(nil, line(productX, 1, "1.00"))
	}
	_, err := s.service.CreatePurchase(s.ctx, dto.CreateTransactionRequest{
		CounterpartyID: ptr(supplierID),
		Lines:          []dto.TransactionLineRequest{line(productX, 1, "1.00")},
	}, operatorID)
	s.Require().NoError(err)

	first, err := s.service.ListTransactions(s.ctx, dto.ListTransactionsParams{Direction: "outbound", Limit: 2})
	s.Require().NoError(err)
	s.Len(first.Transactions, 2)
	s.Require().NotNil(first.NextToken)

	rest, err := s.service.ListTransactions(s.ctx, dto.ListTransactionsParams{Direction: "OUTBOUND", Limit: 2, NextToken: first.NextToken})
	s.Require().NoError(err)
	s.Len(rest.Transactions, 1)
	s.Nil(rest.NextToken)

	_, err = s.service.ListTransactions(s.ctx, dto.ListTransactionsParams{Direction: "sideways"})
	s.ErrorIs(err, apperrors.ErrValidation)
	_, err = s.service.ListTransactions(s.ctx, dto.ListTransactionsParams{NextToken: ptr("%%%")})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *TransactionServiceTestSuite) TestListTransactions_ByCounterparty() {
	s.createSale(ptr(customerID), line(productX, 1, "1.00"))
	s.createSale(nil, line(productX, 1, "1.00"))

	page, err := s.service.ListTransactions(s.ctx, dto.ListTransactionsParams{CounterpartyID: customerID})
	s.Require().NoError(err)
	s.Require().Len(page.Transactions, 1)
	s.Equal(customerID, *page.Transactions[0].CounterpartyID)
}

func (s *TransactionServiceTestSuite) TestListTransactions_ByOccurrenceRange() {
	for _, at := range []time.Time{fixedNow.Add(-48 * time.Hour), fixedNow.Add(-24 * time.Hour), fixedNow} {
		_, err := s.service.CreateSale(s.ctx, dto.CreateTransactionRequest{
			OccurredAt: ptr(at),
			Lines:      []dto.TransactionLineRequest{line(productX, 1, "1.00")},
		}, operatorID)
		s.Require().NoError(err)
	}

	page, err := s.service.ListTransactions(s.ctx, dto.ListTransactionsParams{
		OccurredFrom: ptr(fixedNow.Add(-30 * time.Hour)),
		OccurredTo:   ptr(fixedNow.Add(-24 * time.Hour)),
	})
	s.Require().NoError(err)
	s.Require().Len(page.Transactions, 1)
	s.Equal(fixedNow.Add(-24*time.Hour), page.Transactions[0].OccurredAt)

	_, err = s.service.ListTransactions(s.ctx, dto.ListTransactionsParams{
		OccurredFrom: ptr(fixedNow),
		OccurredTo:   ptr(fixedNow.Add(-time.Hour)),
	})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *TransactionServiceTestSuite) TestListTransactions_Overdue() {
	purchase := func(due *time.Time) *domain.Transaction {
		txn, err := s.service.CreatePurchase(s.ctx, dto.CreateTransactionRequest{
			CounterpartyID: ptr(supplierID),
			DueAt:          due,
			Lines:          []dto.TransactionLineRequest{line(productX, 1, "1.00")},
		}, operatorID)
		s.Require().NoError(err)
		return txn
	}
	overdue := purchase(ptr(fixedNow.Add(-24 * time.Hour)))
	purchase(ptr(fixedNow.Add(24 * time.Hour)))
	purchase(nil)
	settled := purchase(ptr(fixedNow.Add(-24 * time.Hour)))
	_, err := s.service.MarkPurchasePaid(s.ctx, settled.TransactionID, operatorID)
	s.Require().NoError(err)

	page, err := s.service.ListTransactions(s.ctx, dto.ListTransactionsParams{Overdue: true})
	s.Require().NoError(err)
	s.Require().Len(page.Transactions, 1)
	s.Equal(overdue.TransactionID, page.Transactions[0].TransactionID)

	_, err = s.service.ListTransactions(s.ctx, dto.ListTransactionsParams{Overdue: true, Direction: "OUTBOUND"})
	s.ErrorIs(err, apperrors.ErrValidation)
	_, err = s.service.ListTransactions(s.ctx, dto.ListTransactionsParams{Overdue: true, Status: "PAID"})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *TransactionServiceTestSuite) TestListTransactions_UnknownStatus() {
	_, err := s.service.ListTransactions(s.ctx, dto.ListTransactionsParams{Status: "lost"})
	s.ErrorIs(err, apperrors.ErrValidation)

	page, err := s.service.ListTransactions(s.ctx, dto.ListTransactionsParams{Status: "completed"})
	s.Require().NoError(err)
	s.Empty(page.Transactions)
}

// --- Header editing ---

func (s *TransactionServiceTestSuite) TestUpdateTransaction_EditsHeaderAndRecalculates() {
	sale := s.createSale(ptr(customerID), line(productX, 3, "10.00"))

	updated, err := s.service.UpdateTransaction(s.ctx, sale.TransactionID, dto.UpdateTransactionRequest{
		DocumentNumber: ptr("VENT-900001"),
		Discount:       ptr(decimal.RequireFromString("5.00")),
		Tax:            ptr(decimal.RequireFromString("2.50")),
		PaymentMethod:  ptr("CARD"),
		Notes:          ptr("corrected"),
	}, operatorID)
	s.Require().NoError(err)

	s.Equal("VENT-900001", updated.DocumentNumber)
	s.assertMoney("30.00", updated.Subtotal)
	s.assertMoney("27.50", updated.Total)
	s.assertTotalsConsistent(updated)
	s.Equal("CARD", updated.PaymentMethod)
	s.Equal("corrected", updated.Notes)
	s.Equal(int64(7), s.stockOf(productX))
	s.Equal([]domain.EventType{domain.EventCreated, domain.EventUpdated}, s.publisher.types())

	stored, err := s.service.GetTransaction(s.ctx, sale.TransactionID)
	s.Require().NoError(err)
	s.assertMoney("27.50", stored.Total)
	s.Equal("VENT-900001", stored.DocumentNumber)
}

func (s *TransactionServiceTestSuite) TestUpdateTransaction_NegativeTotalRollsBack() {
	sale := s.createSale(nil, line(productX, 3, "10.00"))

	_, err := s.service.UpdateTransaction(s.ctx, sale.TransactionID, dto.UpdateTransactionRequest{
		Discount: ptr(decimal.RequireFromString("31.00")),
		Notes:    ptr("too generous"),
	}, operatorID)
	s.ErrorIs(err, apperrors.ErrValidation)

	stored, err := s.service.GetTransaction(s.ctx, sale.TransactionID)
	s.Require().NoError(err)
	s.True(stored.Discount.IsZero())
	s.assertMoney("30.00", stored.Total)
	s.Empty(stored.Notes)
}

func (s *TransactionServiceTestSuite) TestUpdateTransaction_DocumentNumberInUse() {
	first := s.createSale(nil, line(productX, 1, "1.00"))
	second := s.createSale(nil, line(productX, 1, "1.00"))

	_, err := s.service.UpdateTransaction(s.ctx, first.TransactionID, dto.UpdateTransactionRequest{
		DocumentNumber: ptr(second.DocumentNumber),
	}, operatorID)
	s.ErrorIs(err, apperrors.ErrDuplicate)

	// Keeping its own number is not a conflict.
	_, err = s.service.UpdateTransaction(s.ctx, first.TransactionID, dto.UpdateTransactionRequest{
		DocumentNumber: ptr(first.DocumentNumber),
	}, operatorID)
	s.NoError(err)
}

func (s *TransactionServiceTestSuite) TestUpdateTransaction_Guards() {
	sale := s.createSale(ptr(customerID), line(productX, 1, "10.00"))

	_, err := s.service.UpdateTransaction(s.ctx, sale.TransactionID, dto.UpdateTransactionRequest{
		Tax: ptr(decimal.NewFromInt(-1)),
	}, operatorID)
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.service.UpdateTransaction(s.ctx, sale.TransactionID, dto.UpdateTransactionRequest{
		DueAt: ptr(fixedNow),
	}, operatorID)
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.service.UpdateTransaction(s.ctx, sale.TransactionID, dto.UpdateTransactionRequest{
		DocumentNumber: ptr("  "),
	}, operatorID)
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.service.CompleteSale(s.ctx, sale.TransactionID, operatorID)
	s.Require().NoError(err)
	_, err = s.service.UpdateTransaction(s.ctx, sale.TransactionID, dto.UpdateTransactionRequest{
		Notes: ptr("late edit"),
	}, operatorID)
	s.ErrorIs(err, apperrors.ErrInvalidStateTransition)

	purchase, err := s.service.CreatePurchase(s.ctx, dto.CreateTransactionRequest{
		CounterpartyID: ptr(supplierID),
		Lines:          []dto.TransactionLineRequest{line(productX, 1, "1.00")},
	}, operatorID)
	s.Require().NoError(err)
	due := fixedNow.Add(72 * time.Hour)
	edited, err := s.service.UpdateTransaction(s.ctx, purchase.TransactionID, dto.UpdateTransactionRequest{DueAt: &due}, operatorID)
	s.Require().NoError(err)
	s.Require().NotNil(edited.DueAt)
	s.Equal(due, *edited.DueAt)

	_, err = s.service.MarkPurchasePaid(s.ctx, purchase.TransactionID, operatorID)
	s.Require().NoError(err)
	_, err = s.service.UpdateTransaction(s.ctx, purchase.TransactionID, dto.UpdateTransactionRequest{Notes: ptr("x")}, operatorID)
	s.ErrorIs(err, apperrors.ErrInvalidStateTransition)
}

// --- Pending sales ---

func TestPendingSale_CompletesFromPending(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.NewRepositoryProvider()
	store.SeedParty(domain.Party{PartyID: operatorID, Kind: domain.PartyOperator, IsActive: true})
	store.SeedCustomer(domain.Customer{CustomerID: customerID, IsActive: true})
	store.SeedProduct(domain.Product{ProductID: productX, IsActive: true})
	store.SeedStock(domain.StockRecord{StockRef: domain.StockRef{ProductID: productX}, Quantity: 5})

	svc := services.NewServiceContainer(testConfig(domain.StatusPending), repos, nil).Transaction

	sale, err := svc.CreateSale(ctx, dto.CreateTransactionRequest{
		CounterpartyID: ptr(customerID),
		Lines:          []dto.TransactionLineRequest{line(productX, 2, "25.00")},
	}, operatorID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sale.Status != domain.StatusPending {
		t.Fatalf("status = %s, want PENDING", sale.Status)
	}

	completed, err := svc.CompleteSale(ctx, sale.TransactionID, operatorID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != domain.StatusCompleted || completed.PointsAwarded != 5 {
		t.Fatalf("got status %s points %d", completed.Status, completed.PointsAwarded)
	}
}

func testConfig(initial domain.TransactionStatus) *config.Config {
	return &config.Config{
		StorageDriver:       config.StorageMemory,
		DefaultMinimumStock: services.DefaultMinimumStock,
		SaleInitialStatus:   string(initial),
		LoyaltyEarnUnit:     services.DefaultLoyaltyEarnUnit,
		LoyaltyPointValue:   services.DefaultLoyaltyPointValue,
	}
}
