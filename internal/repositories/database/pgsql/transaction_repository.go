package pgsql

import (
	"context"
	"fmt"
	"strings"

	"github.com/SscSPs/retail_management_app/internal/apperrors"
	"github.com/SscSPs/retail_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/retail_management_app/internal/core/ports/repositories"
	"github.com/SscSPs/retail_management_app/internal/models"
	"github.com/SscSPs/retail_management_app/internal/utils/mapping"
	"github.com/SscSPs/retail_management_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const transactionColumns = `
	transaction_id, direction, document_number, counterparty_id, operator_id,
	occurred_at, due_at, subtotal, discount, tax, loyalty_discount, total,
	status, payment_method, receipt_number, notes, points_awarded, points_used,
	completed_at, is_active, created_at, created_by, last_updated_at, last_updated_by`

const lineColumns = `
	line_id, transaction_id, line_no, product_id, variant_id, quantity,
	unit_price, discount, subtotal, created_at, created_by, last_updated_at, last_updated_by`

type PgxTransactionRepository struct {
	BaseRepository
}

// newPgxTransactionRepository creates a new repository for transaction headers and lines.
func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryFacade {
	return &PgxTransactionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.Direction,
		&m.DocumentNumber,
		&m.CounterpartyID,
		&m.OperatorID,
		&m.OccurredAt,
		&m.DueAt,
		&m.Subtotal,
		&m.Discount,
		&m.Tax,
		&m.LoyaltyDiscount,
		&m.Total,
		&m.Status,
		&m.PaymentMethod,
		&m.ReceiptNumber,
		&m.Notes,
		&m.PointsAwarded,
		&m.PointsUsed,
		&m.CompletedAt,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	txn := mapping.ToDomainTransaction(m)
	return &txn, nil
}

func scanLine(row pgx.Row) (domain.TransactionLine, error) {
	var m models.TransactionLine
	err := row.Scan(
		&m.LineID,
		&m.TransactionID,
		&m.LineNo,
		&m.ProductID,
		&m.VariantID,
		&m.Quantity,
		&m.UnitPrice,
		&m.Discount,
		&m.Subtotal,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return domain.TransactionLine{}, err
	}
	return mapping.ToDomainTransactionLine(m), nil
}

// FindTransactionByID retrieves a transaction header by its ID.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`
	txn, err := scanTransaction(r.DB().QueryRow(ctx, query, transactionID))
	if err != nil {
		return nil, mapError(err, "failed to find transaction "+transactionID)
	}
	return txn, nil
}

// FindTransactionByIDForUpdate locks the header row until the surrounding transaction ends.
func (r *PgxTransactionRepository) FindTransactionByIDForUpdate(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	if !r.inTx() {
		return nil, apperrors.NewAppError(500, "FindTransactionByIDForUpdate requires a unit of work", nil)
	}
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1 FOR UPDATE;`
	txn, err := scanTransaction(r.DB().QueryRow(ctx, query, transactionID))
	if err != nil {
		return nil, mapError(err, "failed to lock transaction "+transactionID)
	}
	return txn, nil
}

// FindLinesByTransactionID returns the lines of a transaction in insertion order.
func (r *PgxTransactionRepository) FindLinesByTransactionID(ctx context.Context, transactionID string) ([]domain.TransactionLine, error) {
	query := `SELECT ` + lineColumns + ` FROM transaction_lines WHERE transaction_id = $1 ORDER BY line_no;`
	rows, err := r.DB().Query(ctx, query, transactionID)
	if err != nil {
		return nil, mapError(err, "failed to query lines of transaction "+transactionID)
	}
	defer rows.Close()

	lines := make([]domain.TransactionLine, 0)
	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, mapError(err, "failed to scan line of transaction "+transactionID)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "failed to iterate lines of transaction "+transactionID)
	}
	return lines, nil
}

func (r *PgxTransactionRepository) FindLineByID(ctx context.Context, transactionID, lineID string) (*domain.TransactionLine, error) {
	query := `SELECT ` + lineColumns + ` FROM transaction_lines WHERE transaction_id = $1 AND line_id = $2;`
	line, err := scanLine(r.DB().QueryRow(ctx, query, transactionID, lineID))
	if err != nil {
		return nil, mapError(err, "failed to find line "+lineID)
	}
	return &line, nil
}

func (r *PgxTransactionRepository) DocumentNumberExists(ctx context.Context, documentNumber string) (bool, error) {
	var exists bool
	err := r.DB().QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM transactions WHERE document_number = $1);`, documentNumber).Scan(&exists)
	if err != nil {
		return false, mapError(err, "failed to check document number "+documentNumber)
	}
	return exists, nil
}

// ListTransactions pages through headers ordered by (occurred_at, created_at, transaction_id) descending.
func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, filter domain.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	conditions := make([]string, 0, 8)
	args := make([]any, 0, 10)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !filter.IncludeInactive {
		conditions = append(conditions, "is_active = TRUE")
	}
	if filter.Direction != nil {
		conditions = append(conditions, "direction = "+arg(string(*filter.Direction)))
	}
	if filter.Status != nil {
		conditions = append(conditions, "status = "+arg(string(*filter.Status)))
	}
	if filter.CounterpartyID != nil {
		conditions = append(conditions, "counterparty_id = "+arg(*filter.CounterpartyID))
	}
	if filter.OccurredFrom != nil {
		conditions = append(conditions, "occurred_at >= "+arg(*filter.OccurredFrom))
	}
	if filter.OccurredTo != nil {
		conditions = append(conditions, "occurred_at <= "+arg(*filter.OccurredTo))
	}
	if filter.DueBefore != nil {
		conditions = append(conditions, "due_at < "+arg(*filter.DueBefore))
	}
	if nextToken != nil && *nextToken != "" {
		cursor, err := pagination.DecodeCursor(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		conditions = append(conditions, fmt.Sprintf("(occurred_at, created_at, transaction_id) < (%s, %s, %s)",
			arg(cursor.OccurredAt), arg(cursor.CreatedAt), arg(cursor.ID)))
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + transactionColumns + ` FROM transactions`)
	if len(conditions) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	// Fetch one extra row to learn whether another page exists.
	sb.WriteString(" ORDER BY occurred_at DESC, created_at DESC, transaction_id DESC LIMIT " + arg(limit+1) + ";")

	rows, err := r.DB().Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, nil, mapError(err, "failed to list transactions")
	}
	defer rows.Close()

	txns := make([]domain.Transaction, 0, limit)
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, nil, mapError(err, "failed to scan transaction row")
		}
		txns = append(txns, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, mapError(err, "failed to iterate transactions")
	}

	var next *string
	if len(txns) > limit {
		txns = txns[:limit]
		last := txns[limit-1]
		token := pagination.EncodeCursor(pagination.Cursor{OccurredAt: last.OccurredAt, CreatedAt: last.CreatedAt, ID: last.TransactionID})
		next = &token
	}
	return txns, next, nil
}

// SaveTransaction inserts the header and then its lines in one batch.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	m := mapping.ToModelTransaction(txn)
	query := `INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24);`

	batch := &pgx.Batch{}
	batch.Queue(query,
		m.TransactionID,
		m.Direction,
		m.DocumentNumber,
		m.CounterpartyID,
		m.OperatorID,
		m.OccurredAt,
		m.DueAt,
		m.Subtotal,
		m.Discount,
		m.Tax,
		m.LoyaltyDiscount,
		m.Total,
		m.Status,
		m.PaymentMethod,
		m.ReceiptNumber,
		m.Notes,
		m.PointsAwarded,
		m.PointsUsed,
		m.CompletedAt,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	for i, line := range txn.Lines {
		batch.Queue(lineInsertQuery, lineInsertArgs(mapping.ToModelTransactionLine(line, i))...)
	}

	br := r.DB().SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return mapError(err, "failed to insert transaction "+txn.TransactionID)
	}
	return nil
}

const lineInsertQuery = `INSERT INTO transaction_lines (` + lineColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);`

func lineInsertArgs(m models.TransactionLine) []any {
	return []any{
		m.LineID,
		m.TransactionID,
		m.LineNo,
		m.ProductID,
		m.VariantID,
		m.Quantity,
		m.UnitPrice,
		m.Discount,
		m.Subtotal,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	}
}

// UpdateTransaction rewrites the mutable header columns.
func (r *PgxTransactionRepository) UpdateTransaction(ctx context.Context, txn domain.Transaction) error {
	m := mapping.ToModelTransaction(txn)
	query := `
		UPDATE transactions
		SET subtotal = $2, discount = $3, tax = $4, loyalty_discount = $5, total = $6,
		    status = $7, points_awarded = $8, points_used = $9, completed_at = $10,
		    is_active = $11, notes = $12, last_updated_at = $13, last_updated_by = $14,
		    document_number = $15, occurred_at = $16, due_at = $17,
		    payment_method = $18, receipt_number = $19
		WHERE transaction_id = $1;
	`
	tag, err := r.DB().Exec(ctx, query,
		m.TransactionID,
		m.Subtotal,
		m.Discount,
		m.Tax,
		m.LoyaltyDiscount,
		m.Total,
		m.Status,
		m.PointsAwarded,
		m.PointsUsed,
		m.CompletedAt,
		m.IsActive,
		m.Notes,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.DocumentNumber,
		m.OccurredAt,
		m.DueAt,
		m.PaymentMethod,
		m.ReceiptNumber,
	)
	if err != nil {
		return mapError(err, "failed to update transaction "+txn.TransactionID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction %s: %w", txn.TransactionID, apperrors.ErrNotFound)
	}
	return nil
}

// SaveLine appends a line after the existing ones.
func (r *PgxTransactionRepository) SaveLine(ctx context.Context, line domain.TransactionLine) error {
	var lineNo int
	err := r.DB().QueryRow(ctx,
		`SELECT COALESCE(MAX(line_no) + 1, 0) FROM transaction_lines WHERE transaction_id = $1;`,
		line.TransactionID).Scan(&lineNo)
	if err != nil {
		return mapError(err, "failed to number line of transaction "+line.TransactionID)
	}

	if _, err := r.DB().Exec(ctx, lineInsertQuery, lineInsertArgs(mapping.ToModelTransactionLine(line, lineNo))...); err != nil {
		return mapError(err, "failed to insert line "+line.LineID)
	}
	return nil
}

func (r *PgxTransactionRepository) DeleteLine(ctx context.Context, transactionID, lineID string) error {
	tag, err := r.DB().Exec(ctx, `DELETE FROM transaction_lines WHERE transaction_id = $1 AND line_id = $2;`, transactionID, lineID)
	if err != nil {
		return mapError(err, "failed to delete line "+lineID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("line %s: %w", lineID, apperrors.ErrNotFound)
	}
	return nil
}

// DeleteTransaction removes the header; lines go with it via ON DELETE CASCADE.
func (r *PgxTransactionRepository) DeleteTransaction(ctx context.Context, transactionID string) error {
	tag, err := r.DB().Exec(ctx, `DELETE FROM transactions WHERE transaction_id = $1;`, transactionID)
	if err != nil {
		return mapError(err, "failed to delete transaction "+transactionID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction %s: %w", transactionID, apperrors.ErrNotFound)
	}
	return nil
}
