package mapping

import (
	"github.com/SscSPs/retail_management_app/internal/core/domain"
	"github.com/SscSPs/retail_management_app/internal/models"
)

// ToModelTransaction converts a domain Transaction header to a model Transaction. Lines are mapped separately.
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:   d.TransactionID,
		Direction:       string(d.Direction),
		DocumentNumber:  d.DocumentNumber,
		CounterpartyID:  d.CounterpartyID,
		OperatorID:      d.OperatorID,
		OccurredAt:      d.OccurredAt,
		DueAt:           d.DueAt,
		Subtotal:        d.Subtotal,
		Discount:        d.Discount,
		Tax:             d.Tax,
		LoyaltyDiscount: d.LoyaltyDiscount,
		Total:           d.Total,
		Status:          string(d.Status),
		PaymentMethod:   d.PaymentMethod,
		ReceiptNumber:   d.ReceiptNumber,
		Notes:           d.Notes,
		PointsAwarded:   d.PointsAwarded,
		PointsUsed:      d.PointsUsed,
		CompletedAt:     d.CompletedAt,
		IsActive:        d.IsActive,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransaction converts a model Transaction to a domain Transaction without lines.
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:   m.TransactionID,
		Direction:       domain.Direction(m.Direction),
		DocumentNumber:  m.DocumentNumber,
		CounterpartyID:  m.CounterpartyID,
		OperatorID:      m.OperatorID,
		OccurredAt:      m.OccurredAt,
		DueAt:           m.DueAt,
		Subtotal:        m.Subtotal,
		Discount:        m.Discount,
		Tax:             m.Tax,
		LoyaltyDiscount: m.LoyaltyDiscount,
		Total:           m.Total,
		Status:          domain.TransactionStatus(m.Status),
		PaymentMethod:   m.PaymentMethod,
		ReceiptNumber:   m.ReceiptNumber,
		Notes:           m.Notes,
		PointsAwarded:   m.PointsAwarded,
		PointsUsed:      m.PointsUsed,
		CompletedAt:     m.CompletedAt,
		IsActive:        m.IsActive,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelTransactionLine converts a domain line; lineNo keeps the insertion order.
func ToModelTransactionLine(d domain.TransactionLine, lineNo int) models.TransactionLine {
	return models.TransactionLine{
		LineID:        d.LineID,
		TransactionID: d.TransactionID,
		LineNo:        lineNo,
		ProductID:     d.ProductID,
		VariantID:     d.VariantID,
		Quantity:      d.Quantity,
		UnitPrice:     d.UnitPrice,
		Discount:      d.Discount,
		Subtotal:      d.Subtotal,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransactionLine converts a model TransactionLine to a domain TransactionLine
func ToDomainTransactionLine(m models.TransactionLine) domain.TransactionLine {
	return domain.TransactionLine{
		LineID:        m.LineID,
		TransactionID: m.TransactionID,
		ProductID:     m.ProductID,
		VariantID:     m.VariantID,
		Quantity:      m.Quantity,
		UnitPrice:     m.UnitPrice,
		Discount:      m.Discount,
		Subtotal:      m.Subtotal,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainTransactionLineSlice converts a slice of model lines to domain lines
func ToDomainTransactionLineSlice(ms []models.TransactionLine) []domain.TransactionLine {
	ds := make([]domain.TransactionLine, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransactionLine(m)
	}
	return ds
}
