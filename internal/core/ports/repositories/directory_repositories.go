package repositories

import (
	"context"

	"github.com/SscSPs/retail_management_app/internal/core/domain"
)

// CatalogReader looks up products and variants referenced by lines.
type CatalogReader interface {
	FindProductByID(ctx context.Context, productID string) (*domain.Product, error)
	FindVariantByID(ctx context.Context, variantID string) (*domain.Variant, error)
}

// PartyReader looks up suppliers, customers and operators.
type PartyReader interface {
	FindParty(ctx context.Context, kind domain.PartyKind, partyID string) (*domain.Party, error)
}

// DocumentSequencer hands out strictly increasing numbers per prefix.
// Numbers are never reused, even when the caller's unit of work rolls back.
type DocumentSequencer interface {
	NextSequence(ctx context.Context, prefix string) (int64, error)
}

// SequenceInspector reports the last number a sequencer handed out for a
// prefix, 0 when none was drawn yet.
type SequenceInspector interface {
	LastSequence(ctx context.Context, prefix string) (int64, error)
}
