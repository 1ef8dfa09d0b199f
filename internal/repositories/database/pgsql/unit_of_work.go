package pgsql

import (
	"context"

	portsrepo "github.com/SscSPs/retail_management_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxUnitOfWork runs a function inside one postgres transaction.
type PgxUnitOfWork struct {
	BaseRepository
}

var _ portsrepo.TransactionManager = (*PgxUnitOfWork)(nil)

func newPgxUnitOfWork(pool *pgxpool.Pool) *PgxUnitOfWork {
	return &PgxUnitOfWork{BaseRepository: BaseRepository{Pool: pool}}
}

// WithTransaction begins a transaction, hands fn repositories bound to it and
// commits only if fn succeeds. Row locks taken through the repositories
// (SELECT ... FOR UPDATE) are held until then.
func (u *PgxUnitOfWork) WithTransaction(ctx context.Context, fn portsrepo.TxFunc) error {
	tx, err := u.Begin(ctx)
	if err != nil {
		return err
	}
	// Ignored after a successful commit.
	defer u.Rollback(ctx, tx)

	if err := fn(ctx, bindRepositories(u.Pool, tx)); err != nil {
		return err
	}
	return u.Commit(ctx, tx)
}

func bindRepositories(pool *pgxpool.Pool, tx pgx.Tx) portsrepo.TxRepositories {
	base := BaseRepository{Pool: pool, tx: tx}
	return portsrepo.TxRepositories{
		Transactions: &PgxTransactionRepository{BaseRepository: base},
		Stock:        &PgxStockRepository{BaseRepository: base},
		Customers:    &PgxCustomerRepository{BaseRepository: base},
	}
}
