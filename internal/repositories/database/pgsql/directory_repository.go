package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/retail_management_app/internal/apperrors"
	"github.com/SscSPs/retail_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/retail_management_app/internal/core/ports/repositories"
	"github.com/SscSPs/retail_management_app/internal/models"
	"github.com/SscSPs/retail_management_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxCatalogRepository struct {
	BaseRepository
}

func newPgxCatalogRepository(pool *pgxpool.Pool) portsrepo.CatalogReader {
	return &PgxCatalogRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CatalogReader = (*PgxCatalogRepository)(nil)

func (r *PgxCatalogRepository) FindProductByID(ctx context.Context, productID string) (*domain.Product, error) {
	query := `
		SELECT product_id, name, sale_price, purchase_price, minimum_stock, is_active
		FROM products
		WHERE product_id = $1;
	`
	var m models.Product
	err := r.DB().QueryRow(ctx, query, productID).Scan(&m.ProductID, &m.Name, &m.SalePrice, &m.PurchasePrice, &m.MinimumStock, &m.IsActive)
	if err != nil {
		return nil, mapError(err, "failed to find product "+productID)
	}
	p := mapping.ToDomainProduct(m)
	return &p, nil
}

func (r *PgxCatalogRepository) FindVariantByID(ctx context.Context, variantID string) (*domain.Variant, error) {
	query := `
		SELECT variant_id, product_id, name, price_adjustment, is_active
		FROM product_variants
		WHERE variant_id = $1;
	`
	var m models.Variant
	err := r.DB().QueryRow(ctx, query, variantID).Scan(&m.VariantID, &m.ProductID, &m.Name, &m.PriceAdjustment, &m.IsActive)
	if err != nil {
		return nil, mapError(err, "failed to find variant "+variantID)
	}
	v := mapping.ToDomainVariant(m)
	return &v, nil
}

type PgxPartyRepository struct {
	BaseRepository
}

func newPgxPartyRepository(pool *pgxpool.Pool) portsrepo.PartyReader {
	return &PgxPartyRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PartyReader = (*PgxPartyRepository)(nil)

func (r *PgxPartyRepository) FindParty(ctx context.Context, kind domain.PartyKind, partyID string) (*domain.Party, error) {
	query := `SELECT party_id, kind, name, is_active FROM parties WHERE kind = $1 AND party_id = $2;`
	var m models.Party
	err := r.DB().QueryRow(ctx, query, string(kind), partyID).Scan(&m.PartyID, &m.Kind, &m.Name, &m.IsActive)
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("failed to find %s %s", kind, partyID))
	}
	p := mapping.ToDomainParty(m)
	return &p, nil
}

// PgxSequenceRepository draws document numbers from postgres sequences,
// which are never rolled back.
type PgxSequenceRepository struct {
	BaseRepository
}

func newPgxSequenceRepository(pool *pgxpool.Pool) portsrepo.DocumentSequencer {
	return &PgxSequenceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var (
	_ portsrepo.DocumentSequencer = (*PgxSequenceRepository)(nil)
	_ portsrepo.SequenceInspector = (*PgxSequenceRepository)(nil)
)

var sequenceNames = map[string]string{
	"COMP": "purchase_document_seq",
	"VENT": "sale_document_seq",
}

func (r *PgxSequenceRepository) NextSequence(ctx context.Context, prefix string) (int64, error) {
	name, ok := sequenceNames[prefix]
	if !ok {
		return 0, fmt.Errorf("%w: no document sequence for prefix %q", apperrors.ErrValidation, prefix)
	}
	var next int64
	if err := r.DB().QueryRow(ctx, `SELECT nextval($1::regclass);`, name).Scan(&next); err != nil {
		return 0, mapError(err, "failed to draw document sequence "+name)
	}
	return next, nil
}

// LastSequence returns the last value nextval handed out, 0 for an unused sequence.
func (r *PgxSequenceRepository) LastSequence(ctx context.Context, prefix string) (int64, error) {
	name, ok := sequenceNames[prefix]
	if !ok {
		return 0, fmt.Errorf("%w: no document sequence for prefix %q", apperrors.ErrValidation, prefix)
	}
	// The name comes from sequenceNames, never from input.
	query := `SELECT CASE WHEN is_called THEN last_value ELSE last_value - 1 END FROM ` + name + `;`
	var last int64
	if err := r.DB().QueryRow(ctx, query).Scan(&last); err != nil {
		return 0, mapError(err, "failed to read document sequence "+name)
	}
	return last, nil
}
