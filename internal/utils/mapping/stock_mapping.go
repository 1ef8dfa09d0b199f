package mapping

import (
	"github.com/SscSPs/retail_management_app/internal/core/domain"
	"github.com/SscSPs/retail_management_app/internal/models"
)

// VariantKey returns the primary-key form of a ref's variant, the empty string for none.
func VariantKey(ref domain.StockRef) string {
	if ref.VariantID == nil {
		return ""
	}
	return *ref.VariantID
}

// ToStockRef rebuilds a domain ref from its key columns.
func ToStockRef(productID, variantKey string) domain.StockRef {
	ref := domain.StockRef{ProductID: productID}
	if variantKey != "" {
		v := variantKey
		ref.VariantID = &v
	}
	return ref
}

// ToDomainStockRecord converts a model StockRecord to a domain StockRecord
func ToDomainStockRecord(m models.StockRecord) domain.StockRecord {
	return domain.StockRecord{
		StockRef:        ToStockRef(m.ProductID, m.VariantKey),
		Quantity:        m.Quantity,
		MinimumQuantity: m.MinimumQuantity,
		MaximumQuantity: m.MaximumQuantity,
		LastInboundAt:   m.LastInboundAt,
		LastOutboundAt:  m.LastOutboundAt,
		CreatedAt:       m.CreatedAt,
		LastUpdatedAt:   m.LastUpdatedAt,
	}
}

// ToModelStockMovement converts a domain StockMovement to a model StockMovement
func ToModelStockMovement(d domain.StockMovement) models.StockMovement {
	return models.StockMovement{
		MovementID:    d.MovementID,
		ProductID:     d.Ref.ProductID,
		VariantKey:    VariantKey(d.Ref),
		TransactionID: d.TransactionID,
		Kind:          string(d.Kind),
		Reason:        string(d.Reason),
		Quantity:      d.Quantity,
		OccurredAt:    d.OccurredAt,
	}
}

// ToDomainStockMovement converts a model StockMovement to a domain StockMovement
func ToDomainStockMovement(m models.StockMovement) domain.StockMovement {
	return domain.StockMovement{
		MovementID:    m.MovementID,
		Ref:           ToStockRef(m.ProductID, m.VariantKey),
		TransactionID: m.TransactionID,
		Kind:          domain.MovementKind(m.Kind),
		Reason:        domain.MovementReason(m.Reason),
		Quantity:      m.Quantity,
		OccurredAt:    m.OccurredAt,
	}
}
