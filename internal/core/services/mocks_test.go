package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/retail_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/retail_management_app/internal/core/ports/repositories"
	"github.com/stretchr/testify/mock"
)

// --- Mock StockRepository ---
type MockStockRepository struct {
	mock.Mock
}

var _ portsrepo.StockRepositoryFacade = (*MockStockRepository)(nil)

func (m *MockStockRepository) FindStock(ctx context.Context, ref domain.StockRef) (*domain.StockRecord, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StockRecord), args.Error(1)
}

func (m *MockStockRepository) ListMovementsByTransaction(ctx context.Context, transactionID string) ([]domain.StockMovement, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StockMovement), args.Error(1)
}

func (m *MockStockRepository) IncreaseStock(ctx context.Context, ref domain.StockRef, qty int64, minimumQuantity int64, at time.Time) (*domain.StockRecord, error) {
	args := m.Called(ctx, ref, qty, minimumQuantity, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StockRecord), args.Error(1)
}

func (m *MockStockRepository) DecreaseStock(ctx context.Context, ref domain.StockRef, qty int64, at time.Time) (*domain.StockRecord, error) {
	args := m.Called(ctx, ref, qty, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StockRecord), args.Error(1)
}

func (m *MockStockRepository) SaveMovement(ctx context.Context, movement domain.StockMovement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

// --- Mock CustomerRepository ---
type MockCustomerRepository struct {
	mock.Mock
}

var _ portsrepo.CustomerRepositoryFacade = (*MockCustomerRepository)(nil)

func (m *MockCustomerRepository) FindCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindCustomerByIDForUpdate(ctx context.Context, customerID string) (*domain.Customer, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) AddLoyaltyPoints(ctx context.Context, customerID string, points int64) (int64, error) {
	args := m.Called(ctx, customerID, points)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustomerRepository) DeductLoyaltyPoints(ctx context.Context, customerID string, points int64) (int64, error) {
	args := m.Called(ctx, customerID, points)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock CatalogReader ---
type MockCatalogReader struct {
	mock.Mock
}

var _ portsrepo.CatalogReader = (*MockCatalogReader)(nil)

func (m *MockCatalogReader) FindProductByID(ctx context.Context, productID string) (*domain.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockCatalogReader) FindVariantByID(ctx context.Context, variantID string) (*domain.Variant, error) {
	args := m.Called(ctx, variantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Variant), args.Error(1)
}

// --- Mock DocumentSequencer ---
type MockDocumentSequencer struct {
	mock.Mock
}

var _ portsrepo.DocumentSequencer = (*MockDocumentSequencer)(nil)

func (m *MockDocumentSequencer) NextSequence(ctx context.Context, prefix string) (int64, error) {
	args := m.Called(ctx, prefix)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock TransactionRepository ---
type MockTransactionRepository struct {
	mock.Mock
}

var _ portsrepo.TransactionRepositoryFacade = (*MockTransactionRepository)(nil)

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindTransactionByIDForUpdate(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindLinesByTransactionID(ctx context.Context, transactionID string) ([]domain.TransactionLine, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TransactionLine), args.Error(1)
}

func (m *MockTransactionRepository) FindLineByID(ctx context.Context, transactionID, lineID string) (*domain.TransactionLine, error) {
	args := m.Called(ctx, transactionID, lineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransactionLine), args.Error(1)
}

func (m *MockTransactionRepository) DocumentNumberExists(ctx context.Context, documentNumber string) (bool, error) {
	args := m.Called(ctx, documentNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockTransactionRepository) ListTransactions(ctx context.Context, filter domain.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, filter, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Transaction), returnedNextToken, args.Error(2)
}

func (m *MockTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) UpdateTransaction(ctx context.Context, txn domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) SaveLine(ctx context.Context, line domain.TransactionLine) error {
	args := m.Called(ctx, line)
	return args.Error(0)
}

func (m *MockTransactionRepository) DeleteLine(ctx context.Context, transactionID, lineID string) error {
	args := m.Called(ctx, transactionID, lineID)
	return args.Error(0)
}

func (m *MockTransactionRepository) DeleteTransaction(ctx context.Context, transactionID string) error {
	args := m.Called(ctx, transactionID)
	return args.Error(0)
}
