package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventType names what happened to a transaction.
type EventType string

const (
	EventCreated            EventType = "transaction.created"
	EventUpdated            EventType = "transaction.updated"
	EventCancelled          EventType = "transaction.cancelled"
	EventCompleted          EventType = "transaction.completed"
	EventReturned           EventType = "transaction.returned"
	EventPaid               EventType = "transaction.paid"
	EventLinesChanged       EventType = "transaction.lines_changed"
	EventLoyaltyApplied     EventType = "transaction.loyalty_applied"
	EventRecalculated       EventType = "transaction.recalculated"
	EventDeactivated        EventType = "transaction.deactivated"
	EventPermanentlyDeleted EventType = "transaction.deleted"
)

// TransactionEvent is published after a mutating operation commits.
type TransactionEvent struct {
	Type           EventType         `json:"type"`
	TransactionID  string            `json:"transactionID"`
	DocumentNumber string            `json:"documentNumber"`
	Direction      Direction         `json:"direction"`
	Status         TransactionStatus `json:"status"`
	Total          decimal.Decimal   `json:"total"`
	OccurredAt     time.Time         `json:"occurredAt"`
}

// NewTransactionEvent builds an event from the transaction's committed state.
func NewTransactionEvent(eventType EventType, txn Transaction, at time.Time) TransactionEvent {
	return TransactionEvent{
		Type:           eventType,
		TransactionID:  txn.TransactionID,
		DocumentNumber: txn.DocumentNumber,
		Direction:      txn.Direction,
		Status:         txn.Status,
		Total:          txn.Total,
		OccurredAt:     at,
	}
}
