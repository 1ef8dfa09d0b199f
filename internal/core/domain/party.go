package domain

import "github.com/shopspring/decimal"

// PartyKind distinguishes the directory entries a transaction can reference.
type PartyKind string

const (
	PartySupplier PartyKind = "SUPPLIER"
	PartyCustomer PartyKind = "CUSTOMER"
	PartyOperator PartyKind = "OPERATOR"
)

// Party is a supplier, customer or staff operator.
type Party struct {
	PartyID  string    `json:"partyID"`
	Kind     PartyKind `json:"kind"`
	Name     string    `json:"name"`
	IsActive bool      `json:"isActive"`
}

// Customer carries the loyalty balance of a customer party.
type Customer struct {
	CustomerID    string `json:"customerID"`
	Name          string `json:"name"`
	LoyaltyPoints int64  `json:"loyaltyPoints"`
	IsActive      bool   `json:"isActive"`
}

// Product is the catalog entry lines reference.
type Product struct {
	ProductID     string          `json:"productID"`
	Name          string          `json:"name"`
	SalePrice     decimal.Decimal `json:"salePrice"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	MinimumStock  *int64          `json:"minimumStock,omitempty"`
	IsActive      bool            `json:"isActive"`
}

// Variant is an optional stock-keeping variant of a product.
type Variant struct {
	VariantID       string          `json:"variantID"`
	ProductID       string          `json:"productID"`
	Name            string          `json:"name"`
	PriceAdjustment decimal.Decimal `json:"priceAdjustment"`
	IsActive        bool            `json:"isActive"`
}
