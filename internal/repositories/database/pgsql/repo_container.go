package pgsql

import (
	portsrepo "github.com/SscSPs/retail_management_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires the postgres repositories. The document
// sequencer defaults to postgres sequences and can be swapped by the caller.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TransactionRepo: newPgxTransactionRepository(dbPool),
		StockRepo:       newPgxStockRepository(dbPool),
		CustomerRepo:    newPgxCustomerRepository(dbPool),
		CatalogRepo:     newPgxCatalogRepository(dbPool),
		PartyRepo:       newPgxPartyRepository(dbPool),
		SequenceRepo:    newPgxSequenceRepository(dbPool),
		TxManager:       newPgxUnitOfWork(dbPool),
	}
}
