package domain

import "time"

// MovementKind is the sign of a stock mutation.
type MovementKind string

const (
	MovementIn  MovementKind = "INBOUND"
	MovementOut MovementKind = "OUTBOUND"
)

// Inverse returns the movement that undoes k.
func (k MovementKind) Inverse() MovementKind {
	if k == MovementIn {
		return MovementOut
	}
	return MovementIn
}

// MovementReason explains why a stock movement happened.
type MovementReason string

const (
	ReasonApply   MovementReason = "APPLY"
	ReasonReverse MovementReason = "REVERSE"
)

// StockRef identifies a stock record: a product, optionally narrowed to a variant.
type StockRef struct {
	ProductID string  `json:"productID"`
	VariantID *string `json:"variantID,omitempty"`
}

// Key returns a stable string form of the ref, usable as a map key.
func (r StockRef) Key() string {
	if r.VariantID == nil || *r.VariantID == "" {
		return r.ProductID
	}
	return r.ProductID + "/" + *r.VariantID
}

// StockRecord holds the on-hand quantity for one StockRef.
type StockRecord struct {
	StockRef
	Quantity        int64      `json:"quantity"`
	MinimumQuantity int64      `json:"minimumQuantity"`
	MaximumQuantity *int64     `json:"maximumQuantity,omitempty"`
	LastInboundAt   *time.Time `json:"lastInboundAt,omitempty"`
	LastOutboundAt  *time.Time `json:"lastOutboundAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	LastUpdatedAt   time.Time  `json:"lastUpdatedAt"`
}

// IsBelowMinimum reports whether the quantity fell under the reorder threshold.
func (s StockRecord) IsBelowMinimum() bool {
	return s.Quantity < s.MinimumQuantity
}

// StockMovement is an append-only log entry for a stock mutation.
type StockMovement struct {
	MovementID    string         `json:"movementID"`
	Ref           StockRef       `json:"ref"`
	TransactionID string         `json:"transactionID"`
	Kind          MovementKind   `json:"kind"`
	Reason        MovementReason `json:"reason"`
	Quantity      int64          `json:"quantity"`
	OccurredAt    time.Time      `json:"occurredAt"`
}
