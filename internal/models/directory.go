package models

import "github.com/shopspring/decimal"

// Party is a row of the parties table.
type Party struct {
	PartyID  string `db:"party_id"`
	Kind     string `db:"kind"`
	Name     string `db:"name"`
	IsActive bool   `db:"is_active"`
}

// Customer is a row of the customers table.
type Customer struct {
	CustomerID    string `db:"customer_id"`
	Name          string `db:"name"`
	LoyaltyPoints int64  `db:"loyalty_points"`
	IsActive      bool   `db:"is_active"`
}

// Product is a row of the products table.
type Product struct {
	ProductID     string          `db:"product_id"`
	Name          string          `db:"name"`
	SalePrice     decimal.Decimal `db:"sale_price"`
	PurchasePrice decimal.Decimal `db:"purchase_price"`
	MinimumStock  *int64          `db:"minimum_stock"` // Nullable
	IsActive      bool            `db:"is_active"`
}

// Variant is a row of the product_variants table.
type Variant struct {
	VariantID       string          `db:"variant_id"`
	ProductID       string          `db:"product_id"`
	Name            string          `db:"name"`
	PriceAdjustment decimal.Decimal `db:"price_adjustment"`
	IsActive        bool            `db:"is_active"`
}
