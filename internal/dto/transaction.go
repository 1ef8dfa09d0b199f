package dto

import (
	"time"

	"github.com/SscSPs/retail_management_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransactionLineRequest is one product entry of a create or add-line request.
type TransactionLineRequest struct {
	ProductID string           `json:"productID" binding:"required"`
	VariantID *string          `json:"variantID,omitempty"`
	Quantity  int64            `json:"quantity" binding:"required,gt=0"`
	UnitPrice decimal.Decimal  `json:"unitPrice" binding:"decimalgt0"`
	Discount  *decimal.Decimal `json:"discount,omitempty" binding:"omitempty,decimalgte0"`
}

// CreateTransactionRequest creates a purchase or a sale with its lines.
type CreateTransactionRequest struct {
	DocumentNumber string                   `json:"documentNumber,omitempty"`
	CounterpartyID *string                  `json:"counterpartyID,omitempty"` // supplier for purchases, customer for sales
	OccurredAt     *time.Time               `json:"occurredAt,omitempty"`
	DueAt          *time.Time               `json:"dueAt,omitempty"` // purchases only
	Discount       *decimal.Decimal         `json:"discount,omitempty" binding:"omitempty,decimalgte0"`
	Tax            *decimal.Decimal         `json:"tax,omitempty" binding:"omitempty,decimalgte0"`
	PaymentMethod  string                   `json:"paymentMethod,omitempty"`
	ReceiptNumber  string                   `json:"receiptNumber,omitempty"`
	Notes          string                   `json:"notes,omitempty"`
	Lines          []TransactionLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// UpdateTransactionRequest edits the header of an open transaction.
// Omitted fields keep their current value.
type UpdateTransactionRequest struct {
	DocumentNumber *string          `json:"documentNumber,omitempty"`
	OccurredAt     *time.Time       `json:"occurredAt,omitempty"`
	DueAt          *time.Time       `json:"dueAt,omitempty"` // purchases only
	Discount       *decimal.Decimal `json:"discount,omitempty" binding:"omitempty,decimalgte0"`
	Tax            *decimal.Decimal `json:"tax,omitempty" binding:"omitempty,decimalgte0"`
	PaymentMethod  *string          `json:"paymentMethod,omitempty"`
	ReceiptNumber  *string          `json:"receiptNumber,omitempty"`
	Notes          *string          `json:"notes,omitempty"`
}

// ApplyLoyaltyDiscountRequest redeems customer points against a sale.
type ApplyLoyaltyDiscountRequest struct {
	Points int64 `json:"points" binding:"required,gt=0"`
}

// ListTransactionsParams are the query parameters of the transaction listing.
type ListTransactionsParams struct {
	Direction       string     `form:"direction" binding:"omitempty,oneof=INBOUND OUTBOUND"`
	Status          string     `form:"status" binding:"omitempty,oneof=PENDING PAID COMPLETED CANCELLED RETURNED"`
	CounterpartyID  string     `form:"counterpartyID"`
	OccurredFrom    *time.Time `form:"occurredFrom" time_format:"2006-01-02T15:04:05Z07:00"`
	OccurredTo      *time.Time `form:"occurredTo" time_format:"2006-01-02T15:04:05Z07:00"`
	Overdue         bool       `form:"overdue"` // pending purchases past their due date
	IncludeInactive bool       `form:"includeInactive"`
	Limit           int        `form:"limit" binding:"omitempty,min=1,max=100"`
	NextToken       *string    `form:"nextToken"`
}

// TransactionLineResponse is a line as returned over the API.
type TransactionLineResponse struct {
	LineID    string          `json:"lineID"`
	ProductID string          `json:"productID"`
	VariantID *string         `json:"variantID,omitempty"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Discount  decimal.Decimal `json:"discount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// TransactionResponse is a purchase or sale as returned over the API.
type TransactionResponse struct {
	TransactionID   string                    `json:"transactionID"`
	Direction       domain.Direction          `json:"direction"`
	DocumentNumber  string                    `json:"documentNumber"`
	CounterpartyID  *string                   `json:"counterpartyID,omitempty"`
	OperatorID      string                    `json:"operatorID"`
	OccurredAt      time.Time                 `json:"occurredAt"`
	DueAt           *time.Time                `json:"dueAt,omitempty"`
	Status          domain.TransactionStatus  `json:"status"`
	Subtotal        decimal.Decimal           `json:"subtotal"`
	Discount        decimal.Decimal           `json:"discount"`
	Tax             decimal.Decimal           `json:"tax"`
	LoyaltyDiscount decimal.Decimal           `json:"loyaltyDiscount"`
	Total           decimal.Decimal           `json:"total"`
	PaymentMethod   string                    `json:"paymentMethod,omitempty"`
	ReceiptNumber   string                    `json:"receiptNumber,omitempty"`
	Notes           string                    `json:"notes,omitempty"`
	PointsAwarded   int64                     `json:"pointsAwarded"`
	PointsUsed      int64                     `json:"pointsUsed"`
	CompletedAt     *time.Time                `json:"completedAt,omitempty"`
	IsActive        bool                      `json:"isActive"`
	CreatedAt       time.Time                 `json:"createdAt"`
	LastUpdatedAt   time.Time                 `json:"lastUpdatedAt"`
	Lines           []TransactionLineResponse `json:"lines,omitempty"`
}

// ListTransactionsResponse is one page of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// StockResponse is the on-hand quantity of a product or variant.
type StockResponse struct {
	ProductID       string     `json:"productID"`
	VariantID       *string    `json:"variantID,omitempty"`
	Quantity        int64      `json:"quantity"`
	MinimumQuantity int64      `json:"minimumQuantity"`
	MaximumQuantity *int64     `json:"maximumQuantity,omitempty"`
	BelowMinimum    bool       `json:"belowMinimum"`
	LastInboundAt   *time.Time `json:"lastInboundAt,omitempty"`
	LastOutboundAt  *time.Time `json:"lastOutboundAt,omitempty"`
}

// ToTransactionResponse converts a domain.Transaction to its API form.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		TransactionID:   txn.TransactionID,
		Direction:       txn.Direction,
		DocumentNumber:  txn.DocumentNumber,
		CounterpartyID:  txn.CounterpartyID,
		OperatorID:      txn.OperatorID,
		OccurredAt:      txn.OccurredAt,
		DueAt:           txn.DueAt,
		Status:          txn.Status,
		Subtotal:        txn.Subtotal,
		Discount:        txn.Discount,
		Tax:             txn.Tax,
		LoyaltyDiscount: txn.LoyaltyDiscount,
		Total:           txn.Total,
		PaymentMethod:   txn.PaymentMethod,
		ReceiptNumber:   txn.ReceiptNumber,
		Notes:           txn.Notes,
		PointsAwarded:   txn.PointsAwarded,
		PointsUsed:      txn.PointsUsed,
		CompletedAt:     txn.CompletedAt,
		IsActive:        txn.IsActive,
		CreatedAt:       txn.CreatedAt,
		LastUpdatedAt:   txn.LastUpdatedAt,
	}
	if len(txn.Lines) > 0 {
		resp.Lines = make([]TransactionLineResponse, len(txn.Lines))
		for i, l := range txn.Lines {
			resp.Lines[i] = TransactionLineResponse{
				LineID:    l.LineID,
				ProductID: l.ProductID,
				VariantID: l.VariantID,
				Quantity:  l.Quantity,
				UnitPrice: l.UnitPrice,
				Discount:  l.Discount,
				Subtotal:  l.Subtotal,
			}
		}
	}
	return resp
}

// ToTransactionResponses converts a slice of domain.Transaction to []TransactionResponse.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txns))
	for i := range txns {
		responses[i] = ToTransactionResponse(&txns[i])
	}
	return responses
}

// ToStockResponse converts a domain.StockRecord to its API form.
func ToStockResponse(s *domain.StockRecord) StockResponse {
	return StockResponse{
		ProductID:       s.ProductID,
		VariantID:       s.VariantID,
		Quantity:        s.Quantity,
		MinimumQuantity: s.MinimumQuantity,
		MaximumQuantity: s.MaximumQuantity,
		BelowMinimum:    s.IsBelowMinimum(),
		LastInboundAt:   s.LastInboundAt,
		LastOutboundAt:  s.LastOutboundAt,
	}
}
