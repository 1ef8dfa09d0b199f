package services

import (
	"github.com/SscSPs/retail_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/retail_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/retail_management_app/internal/core/ports/services"
	"github.com/SscSPs/retail_management_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// publisher may be nil, in which case events are not published.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, publisher portssvc.EventPublisher) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Leaf services first; the orchestrator composes them.
	ledger := NewStockLedger(repos.StockRepo, repos.CatalogRepo, cfg.DefaultMinimumStock)
	loyalty := NewLoyaltyService(cfg.LoyaltyEarnUnit, cfg.LoyaltyPointValue)

	options := []TransactionOption{
		WithSaleInitialStatus(domain.TransactionStatus(cfg.SaleInitialStatus)),
	}
	if publisher != nil {
		options = append(options, WithEventPublisher(publisher))
	}

	container.Stock = ledger
	container.Transaction = NewTransactionService(TransactionDeps{
		TxManager: repos.TxManager,
		Reader:    repos.TransactionRepo,
		Parties:   repos.PartyRepo,
		Lines:     NewLineProcessor(repos.CatalogRepo),
		Totals:    NewTotalsCalculator(),
		Ledger:    ledger,
		Loyalty:   loyalty,
		Numbering: NewDocumentNumbering(repos.SequenceRepo),
	}, options...)

	return container
}
