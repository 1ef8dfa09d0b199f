package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SscSPs/retail_management_app/internal/apperrors"
	"github.com/SscSPs/retail_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/retail_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/retail_management_app/internal/core/ports/services"
	"github.com/SscSPs/retail_management_app/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type lineProcessor struct {
	BaseService
	catalog portsrepo.CatalogReader
}

var _ portssvc.LineProcessorSvc = (*lineProcessor)(nil)

// NewLineProcessor creates a line processor resolving references through catalog.
func NewLineProcessor(catalog portsrepo.CatalogReader) portssvc.LineProcessorSvc {
	return &lineProcessor{catalog: catalog}
}

// Process validates req, resolves its product and variant, and returns a priced
// line tagged with transactionID. index is only used in error messages.
func (p *lineProcessor) Process(ctx context.Context, transactionID string, index int, req dto.TransactionLineRequest) (domain.TransactionLine, error) {
	productID := strings.TrimSpace(req.ProductID)
	if productID == "" {
		return domain.TransactionLine{}, fmt.Errorf("%w: line %d: productID is required", apperrors.ErrValidation, index)
	}
	if req.Quantity <= 0 {
		return domain.TransactionLine{}, fmt.Errorf("%w: line %d: quantity must be positive, got %d", apperrors.ErrValidation, index, req.Quantity)
	}
	if !req.UnitPrice.IsPositive() {
		return domain.TransactionLine{}, fmt.Errorf("%w: line %d: unit price must be positive, got %s", apperrors.ErrValidation, index, req.UnitPrice)
	}
	discount := decimal.Zero
	if req.Discount != nil {
		if req.Discount.IsNegative() {
			return domain.TransactionLine{}, fmt.Errorf("%w: line %d: discount cannot be negative", apperrors.ErrValidation, index)
		}
		discount = *req.Discount
	}

	product, err := p.catalog.FindProductByID(ctx, productID)
	if err != nil {
		return domain.TransactionLine{}, lookupError(index, "product", productID, err)
	}
	if !product.IsActive {
		return domain.TransactionLine{}, fmt.Errorf("%w: line %d: product %s is inactive", apperrors.ErrNotFound, index, productID)
	}

	var variantID *string
	if req.VariantID != nil && strings.TrimSpace(*req.VariantID) != "" {
		id := strings.TrimSpace(*req.VariantID)
		variant, err := p.catalog.FindVariantByID(ctx, id)
		if err != nil {
			return domain.TransactionLine{}, lookupError(index, "variant", id, err)
		}
		if variant.ProductID != productID || !variant.IsActive {
			return domain.TransactionLine{}, fmt.Errorf("%w: line %d: variant %s of product %s", apperrors.ErrNotFound, index, id, productID)
		}
		variantID = &id
	}

	subtotal := LineSubtotal(req.Quantity, req.UnitPrice, discount)
	if subtotal.IsNegative() {
		return domain.TransactionLine{}, fmt.Errorf("%w: line %d: discount %s exceeds line amount", apperrors.ErrValidation, index, discount)
	}

	return domain.TransactionLine{
		LineID:        uuid.NewString(),
		TransactionID: transactionID,
		ProductID:     productID,
		VariantID:     variantID,
		Quantity:      req.Quantity,
		UnitPrice:     req.UnitPrice,
		Discount:      discount,
		Subtotal:      subtotal,
	}, nil
}

// LineSubtotal is quantity*unitPrice - discount.
func LineSubtotal(quantity int64, unitPrice, discount decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(quantity).Mul(unitPrice).Sub(discount)
}

func lookupError(index int, what, id string, err error) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("%w: line %d: %s %s", apperrors.ErrNotFound, index, what, id)
	}
	return fmt.Errorf("line %d: lookup %s %s: %w", index, what, id, err)
}
