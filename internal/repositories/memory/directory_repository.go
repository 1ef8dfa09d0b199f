package memory

import (
	"context"

	"github.com/SscSPs/retail_management_app/internal/apperrors"
	"github.com/SscSPs/retail_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/retail_management_app/internal/core/ports/repositories"
)

type catalogRepository struct {
	*view
}

var _ portsrepo.CatalogReader = (*catalogRepository)(nil)

func (r *catalogRepository) FindProductByID(ctx context.Context, productID string) (*domain.Product, error) {
	var p domain.Product
	err := r.read(func(d *dataset) error {
		found, ok := d.products[productID]
		if !ok {
			return apperrors.ErrNotFound
		}
		p = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *catalogRepository) FindVariantByID(ctx context.Context, variantID string) (*domain.Variant, error) {
	var v domain.Variant
	err := r.read(func(d *dataset) error {
		found, ok := d.variants[variantID]
		if !ok {
			return apperrors.ErrNotFound
		}
		v = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

type partyRepository struct {
	*view
}

var _ portsrepo.PartyReader = (*partyRepository)(nil)

func (r *partyRepository) FindParty(ctx context.Context, kind domain.PartyKind, partyID string) (*domain.Party, error) {
	var p domain.Party
	err := r.read(func(d *dataset) error {
		found, ok := d.parties[kind][partyID]
		if !ok {
			return apperrors.ErrNotFound
		}
		p = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// sequenceRepository keeps counters outside the dataset so numbers handed
// out to a rolled back unit of work are not reused.
type sequenceRepository struct {
	store *Store
}

var (
	_ portsrepo.DocumentSequencer = (*sequenceRepository)(nil)
	_ portsrepo.SequenceInspector = (*sequenceRepository)(nil)
)

func (r *sequenceRepository) NextSequence(ctx context.Context, prefix string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.store.seqMu.Lock()
	defer r.store.seqMu.Unlock()
	r.store.sequences[prefix]++
	return r.store.sequences[prefix], nil
}

func (r *sequenceRepository) LastSequence(ctx context.Context, prefix string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.store.seqMu.Lock()
	defer r.store.seqMu.Unlock()
	return r.store.sequences[prefix], nil
}
