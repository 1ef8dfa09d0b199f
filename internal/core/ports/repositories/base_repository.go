package repositories

import (
	"context"
)

// TxRepositories are the repositories bound to one unit of work.
// Everything written through them commits or rolls back together.
type TxRepositories struct {
	Transactions TransactionRepositoryFacade
	Stock        StockRepositoryFacade
	Customers    CustomerRepositoryFacade
}

// TxFunc is the body of a unit of work.
type TxFunc func(ctx context.Context, repos TxRepositories) error

// TransactionManager runs a function inside a single atomic unit of work.
// If fn returns an error every write made through repos is discarded.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn TxFunc) error
}
