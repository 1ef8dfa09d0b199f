package mapping

import (
	"github.com/SscSPs/retail_management_app/internal/core/domain"
	"github.com/SscSPs/retail_management_app/internal/models"
)

// ToDomainParty converts a model Party to a domain Party
func ToDomainParty(m models.Party) domain.Party {
	return domain.Party{
		PartyID:  m.PartyID,
		Kind:     domain.PartyKind(m.Kind),
		Name:     m.Name,
		IsActive: m.IsActive,
	}
}

// ToDomainCustomer converts a model Customer to a domain Customer
func ToDomainCustomer(m models.Customer) domain.Customer {
	return domain.Customer{
		CustomerID:    m.CustomerID,
		Name:          m.Name,
		LoyaltyPoints: m.LoyaltyPoints,
		IsActive:      m.IsActive,
	}
}

// ToDomainProduct converts a model Product to a domain Product
func ToDomainProduct(m models.Product) domain.Product {
	return domain.Product{
		ProductID:     m.ProductID,
		Name:          m.Name,
		SalePrice:     m.SalePrice,
		PurchasePrice: m.PurchasePrice,
		MinimumStock:  m.MinimumStock,
		IsActive:      m.IsActive,
	}
}

// ToDomainVariant converts a model Variant to a domain Variant
func ToDomainVariant(m models.Variant) domain.Variant {
	return domain.Variant{
		VariantID:       m.VariantID,
		ProductID:       m.ProductID,
		Name:            m.Name,
		PriceAdjustment: m.PriceAdjustment,
		IsActive:        m.IsActive,
	}
}
