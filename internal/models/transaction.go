package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a row of the transactions table (purchase or sale header).
type Transaction struct {
	TransactionID   string          `db:"transaction_id"`
	Direction       string          `db:"direction"` // INBOUND or OUTBOUND
	DocumentNumber  string          `db:"document_number"`
	CounterpartyID  *string         `db:"counterparty_id"` // Nullable
	OperatorID      string          `db:"operator_id"`
	OccurredAt      time.Time       `db:"occurred_at"`
	DueAt           *time.Time      `db:"due_at"` // Nullable
	Subtotal        decimal.Decimal `db:"subtotal"`
	Discount        decimal.Decimal `db:"discount"`
	Tax             decimal.Decimal `db:"tax"`
	LoyaltyDiscount decimal.Decimal `db:"loyalty_discount"`
	Total           decimal.Decimal `db:"total"`
	Status          string          `db:"status"`
	PaymentMethod   string          `db:"payment_method"`
	ReceiptNumber   string          `db:"receipt_number"`
	Notes           string          `db:"notes"`
	PointsAwarded   int64           `db:"points_awarded"`
	PointsUsed      int64           `db:"points_used"`
	CompletedAt     *time.Time      `db:"completed_at"` // Nullable
	IsActive        bool            `db:"is_active"`
	AuditFields
}

// TransactionLine is a row of the transaction_lines table.
type TransactionLine struct {
	LineID        string          `db:"line_id"`
	TransactionID string          `db:"transaction_id"`
	LineNo        int             `db:"line_no"`
	ProductID     string          `db:"product_id"`
	VariantID     *string         `db:"variant_id"` // Nullable
	Quantity      int64           `db:"quantity"`
	UnitPrice     decimal.Decimal `db:"unit_price"`
	Discount      decimal.Decimal `db:"discount"`
	Subtotal      decimal.Decimal `db:"subtotal"`
	AuditFields
}
