package models

import "time"

// StockRecord is a row of the stock table. VariantKey is the variant id, or
// the empty string for stock held at product level, so it can be part of the primary key.
type StockRecord struct {
	ProductID       string     `db:"product_id"`
	VariantKey      string     `db:"variant_key"`
	Quantity        int64      `db:"quantity"`
	MinimumQuantity int64      `db:"minimum_quantity"`
	MaximumQuantity *int64     `db:"maximum_quantity"` // Nullable
	LastInboundAt   *time.Time `db:"last_inbound_at"`  // Nullable
	LastOutboundAt  *time.Time `db:"last_outbound_at"` // Nullable
	CreatedAt       time.Time  `db:"created_at"`
	LastUpdatedAt   time.Time  `db:"last_updated_at"`
}

// StockMovement is a row of the append-only stock_movements table.
type StockMovement struct {
	MovementID    string    `db:"movement_id"`
	ProductID     string    `db:"product_id"`
	VariantKey    string    `db:"variant_key"`
	TransactionID string    `db:"transaction_id"`
	Kind          string    `db:"kind"`
	Reason        string    `db:"reason"`
	Quantity      int64     `db:"quantity"`
	OccurredAt    time.Time `db:"occurred_at"`
}
