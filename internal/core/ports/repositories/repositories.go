package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	TransactionRepo TransactionRepositoryFacade
	StockRepo       StockRepositoryFacade
	CustomerRepo    CustomerRepositoryFacade
	CatalogRepo     CatalogReader
	PartyRepo       PartyReader
	SequenceRepo    DocumentSequencer
	TxManager       TransactionManager
}
