package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction tags a transaction as goods coming in (purchase) or going out (sale).
type Direction string

const (
	Inbound  Direction = "INBOUND"
	Outbound Direction = "OUTBOUND"
)

// TransactionStatus is the lifecycle state of a purchase or sale.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "PENDING"
	StatusPaid      TransactionStatus = "PAID"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusCancelled TransactionStatus = "CANCELLED"
	StatusReturned  TransactionStatus = "RETURNED"
)

// IsValid reports whether d is a known direction.
func (d Direction) IsValid() bool {
	return d == Inbound || d == Outbound
}

// DocumentPrefix is the prefix used for document numbers of this direction.
func (d Direction) DocumentPrefix() string {
	if d == Inbound {
		return "COMP"
	}
	return "VENT"
}

// CounterpartyKind is the party kind expected on the other side of a transaction.
func (d Direction) CounterpartyKind() PartyKind {
	if d == Inbound {
		return PartySupplier
	}
	return PartyCustomer
}

// StockMovement is the kind of stock mutation applying a line of this direction implies.
func (d Direction) StockMovement() MovementKind {
	if d == Inbound {
		return MovementIn
	}
	return MovementOut
}

// IsValid reports whether s is a known status.
func (s TransactionStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusCompleted, StatusCancelled, StatusReturned:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are possible from s.
func (s TransactionStatus) IsTerminal(d Direction) bool {
	switch s {
	case StatusCancelled, StatusReturned:
		return true
	case StatusPaid:
		return d == Inbound
	}
	return false
}

// CanTransition reports whether a transaction of direction d may move from s to next.
func (s TransactionStatus) CanTransition(d Direction, next TransactionStatus) bool {
	if d == Inbound {
		return s == StatusPending && (next == StatusPaid || next == StatusCancelled)
	}
	switch s {
	case StatusPending:
		return next == StatusCompleted || next == StatusCancelled
	case StatusCompleted:
		return next == StatusCancelled || next == StatusReturned
	}
	return false
}

// EffectsReversed reports whether stock and points of a transaction in status s have already been undone.
func (s TransactionStatus) EffectsReversed() bool {
	return s == StatusCancelled || s == StatusReturned
}

// Transaction is the header of a purchase or a sale.
type Transaction struct {
	TransactionID   string            `json:"transactionID"`
	Direction       Direction         `json:"direction"`
	DocumentNumber  string            `json:"documentNumber"`
	CounterpartyID  *string           `json:"counterpartyID,omitempty"` // supplier (inbound) or customer (outbound)
	OperatorID      string            `json:"operatorID"`
	OccurredAt      time.Time         `json:"occurredAt"`
	DueAt           *time.Time        `json:"dueAt,omitempty"` // inbound only
	Subtotal        decimal.Decimal   `json:"subtotal"`
	Discount        decimal.Decimal   `json:"discount"`
	Tax             decimal.Decimal   `json:"tax"`
	LoyaltyDiscount decimal.Decimal   `json:"loyaltyDiscount"` // outbound only
	Total           decimal.Decimal   `json:"total"`
	Status          TransactionStatus `json:"status"`
	PaymentMethod   string            `json:"paymentMethod"`
	ReceiptNumber   string            `json:"receiptNumber"`
	Notes           string            `json:"notes"`
	PointsAwarded   int64             `json:"pointsAwarded"`
	PointsUsed      int64             `json:"pointsUsed"`
	CompletedAt     *time.Time        `json:"completedAt,omitempty"`
	IsActive        bool              `json:"isActive"`
	AuditFields
	Lines []TransactionLine `json:"lines,omitempty"`
}

// IsSale reports whether the transaction moves goods out.
func (t Transaction) IsSale() bool {
	return t.Direction == Outbound
}

// IsOpen reports whether lines and discounts may still be changed.
// A sale stops being open once loyalty points were awarded for it.
func (t Transaction) IsOpen() bool {
	if !t.IsActive {
		return false
	}
	if t.Direction == Inbound {
		return t.Status == StatusPending
	}
	switch t.Status {
	case StatusPending:
		return true
	case StatusCompleted:
		return t.CompletedAt == nil
	}
	return false
}

// HasCustomer reports whether a customer is attached to a sale.
func (t Transaction) HasCustomer() bool {
	return t.Direction == Outbound && t.CounterpartyID != nil && *t.CounterpartyID != ""
}

// TransactionLine is one product entry of a transaction.
type TransactionLine struct {
	LineID        string          `json:"lineID"`
	TransactionID string          `json:"transactionID"`
	ProductID     string          `json:"productID"`
	VariantID     *string         `json:"variantID,omitempty"`
	Quantity      int64           `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Discount      decimal.Decimal `json:"discount"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	AuditFields
}

// StockRef returns the stock key the line moves.
func (l TransactionLine) StockRef() StockRef {
	return StockRef{ProductID: l.ProductID, VariantID: l.VariantID}
}

// TransactionFilter narrows a transaction listing. Time bounds are inclusive.
type TransactionFilter struct {
	Direction       *Direction
	Status          *TransactionStatus
	CounterpartyID  *string
	OccurredFrom    *time.Time
	OccurredTo      *time.Time
	DueBefore       *time.Time // due date set and strictly earlier
	IncludeInactive bool
}

// Matches reports whether t passes every condition of f.
func (f TransactionFilter) Matches(t Transaction) bool {
	if !f.IncludeInactive && !t.IsActive {
		return false
	}
	if f.Direction != nil && t.Direction != *f.Direction {
		return false
	}
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.CounterpartyID != nil && (t.CounterpartyID == nil || *t.CounterpartyID != *f.CounterpartyID) {
		return false
	}
	if f.OccurredFrom != nil && t.OccurredAt.Before(*f.OccurredFrom) {
		return false
	}
	if f.OccurredTo != nil && t.OccurredAt.After(*f.OccurredTo) {
		return false
	}
	if f.DueBefore != nil && (t.DueAt == nil || !t.DueAt.Before(*f.DueBefore)) {
		return false
	}
	return true
}
