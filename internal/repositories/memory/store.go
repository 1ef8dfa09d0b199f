// Package memory is an in-process implementation of the repository ports.
// It backs the STORAGE_DRIVER=memory mode and the service tests.
package memory

import (
	"context"
	"sync"

	"github.com/SscSPs/retail_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/retail_management_app/internal/core/ports/repositories"
)

type dataset struct {
	transactions map[string]domain.Transaction
	lines        map[string][]domain.TransactionLine // by transaction, insertion order
	stock        map[string]domain.StockRecord       // by StockRef.Key()
	movements    []domain.StockMovement
	customers    map[string]domain.Customer
	products     map[string]domain.Product
	variants     map[string]domain.Variant
	parties      map[domain.PartyKind]map[string]domain.Party
}

func newDataset() *dataset {
	return &dataset{
		transactions: make(map[string]domain.Transaction),
		lines:        make(map[string][]domain.TransactionLine),
		stock:        make(map[string]domain.StockRecord),
		customers:    make(map[string]domain.Customer),
		products:     make(map[string]domain.Product),
		variants:     make(map[string]domain.Variant),
		parties:      make(map[domain.PartyKind]map[string]domain.Party),
	}
}

// clone copies every map so a unit of work can be discarded wholesale.
// Stored values are replaced, never mutated through pointers, so copying
// the structs is enough.
func (d *dataset) clone() *dataset {
	c := newDataset()
	for k, v := range d.transactions {
		c.transactions[k] = v
	}
	for k, v := range d.lines {
		c.lines[k] = append([]domain.TransactionLine(nil), v...)
	}
	for k, v := range d.stock {
		c.stock[k] = v
	}
	c.movements = append([]domain.StockMovement(nil), d.movements...)
	for k, v := range d.customers {
		c.customers[k] = v
	}
	for k, v := range d.products {
		c.products[k] = v
	}
	for k, v := range d.variants {
		c.variants[k] = v
	}
	for kind, byID := range d.parties {
		m := make(map[string]domain.Party, len(byID))
		for k, v := range byID {
			m[k] = v
		}
		c.parties[kind] = m
	}
	return c
}

// Store holds all data in memory.
//
// Units of work are serialized by txMu and run against a private copy of the
// data that replaces the shared one on commit. Reads outside a unit of work
// only take mu, so they never observe a half-applied unit of work.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data *dataset

	seqMu     sync.Mutex
	sequences map[string]int64
}

var _ portsrepo.TransactionManager = (*Store)(nil)

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		data:      newDataset(),
		sequences: make(map[string]int64),
	}
}

// WithTransaction runs fn against a private copy of the data and publishes
// the copy only if fn succeeds.
func (s *Store) WithTransaction(ctx context.Context, fn portsrepo.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	work := s.data.clone()
	s.mu.RUnlock()

	if err := fn(ctx, s.bound(work)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = work
	s.mu.Unlock()
	return nil
}

// NewRepositoryProvider exposes the store through the repository ports.
func (s *Store) NewRepositoryProvider() portsrepo.RepositoryProvider {
	v := &view{store: s}
	return portsrepo.RepositoryProvider{
		TransactionRepo: &transactionRepository{v},
		StockRepo:       &stockRepository{v},
		CustomerRepo:    &customerRepository{v},
		CatalogRepo:     &catalogRepository{v},
		PartyRepo:       &partyRepository{v},
		SequenceRepo:    &sequenceRepository{store: s},
		TxManager:       s,
	}
}

func (s *Store) bound(d *dataset) portsrepo.TxRepositories {
	v := &view{store: s, tx: d}
	return portsrepo.TxRepositories{
		Transactions: &transactionRepository{v},
		Stock:        &stockRepository{v},
		Customers:    &customerRepository{v},
	}
}

// view routes repository calls either to a unit of work's private data or,
// under the store locks, to the shared data.
type view struct {
	store *Store
	tx    *dataset
}

func (v *view) read(fn func(d *dataset) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	return fn(v.store.data)
}

// write applies fn directly to the shared data. fn must validate before it
// mutates anything, since there is no copy to discard.
func (v *view) write(fn func(d *dataset) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.txMu.Lock()
	defer v.store.txMu.Unlock()
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.data)
}

// --- Seeding ---

// SeedProduct registers a product.
func (s *Store) SeedProduct(p domain.Product) {
	s.seed(func(d *dataset) { d.products[p.ProductID] = p })
}

// SeedVariant registers a product variant.
func (s *Store) SeedVariant(v domain.Variant) {
	s.seed(func(d *dataset) { d.variants[v.VariantID] = v })
}

// SeedParty registers a supplier, customer or operator.
func (s *Store) SeedParty(p domain.Party) {
	s.seed(func(d *dataset) {
		if d.parties[p.Kind] == nil {
			d.parties[p.Kind] = make(map[string]domain.Party)
		}
		d.parties[p.Kind][p.PartyID] = p
	})
}

// SeedCustomer registers a customer with its loyalty balance. The customer
// also becomes a CUSTOMER party.
func (s *Store) SeedCustomer(c domain.Customer) {
	s.SeedParty(domain.Party{PartyID: c.CustomerID, Kind: domain.PartyCustomer, Name: c.Name, IsActive: c.IsActive})
	s.seed(func(d *dataset) { d.customers[c.CustomerID] = c })
}

// SeedStock sets the stock record of rec.StockRef.
func (s *Store) SeedStock(rec domain.StockRecord) {
	s.seed(func(d *dataset) { d.stock[rec.Key()] = rec })
}

func (s *Store) seed(fn func(d *dataset)) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.data)
}
