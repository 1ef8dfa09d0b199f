package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/retail_management_app/internal/apperrors"
	"github.com/SscSPs/retail_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/retail_management_app/internal/core/ports/repositories"
	"github.com/SscSPs/retail_management_app/internal/utils/pagination"
)

type transactionRepository struct {
	*view
}

var _ portsrepo.TransactionRepositoryFacade = (*transactionRepository)(nil)

func (r *transactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	var txn domain.Transaction
	err := r.read(func(d *dataset) error {
		t, ok := d.transactions[transactionID]
		if !ok {
			return apperrors.ErrNotFound
		}
		txn = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// FindTransactionByIDForUpdate needs no row lock here: units of work are already serialized.
func (r *transactionRepository) FindTransactionByIDForUpdate(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return r.FindTransactionByID(ctx, transactionID)
}

func (r *transactionRepository) FindLinesByTransactionID(ctx context.Context, transactionID string) ([]domain.TransactionLine, error) {
	var lines []domain.TransactionLine
	err := r.read(func(d *dataset) error {
		lines = append([]domain.TransactionLine{}, d.lines[transactionID]...)
		return nil
	})
	return lines, err
}

func (r *transactionRepository) FindLineByID(ctx context.Context, transactionID, lineID string) (*domain.TransactionLine, error) {
	var line *domain.TransactionLine
	err := r.read(func(d *dataset) error {
		for _, l := range d.lines[transactionID] {
			if l.LineID == lineID {
				found := l
				line = &found
				return nil
			}
		}
		return apperrors.ErrNotFound
	})
	return line, err
}

func (r *transactionRepository) DocumentNumberExists(ctx context.Context, documentNumber string) (bool, error) {
	exists := false
	err := r.read(func(d *dataset) error {
		exists = documentNumberTaken(d, documentNumber)
		return nil
	})
	return exists, err
}

func documentNumberTaken(d *dataset, documentNumber string) bool {
	for _, t := range d.transactions {
		if t.DocumentNumber == documentNumber {
			return true
		}
	}
	return false
}

func (r *transactionRepository) ListTransactions(ctx context.Context, filter domain.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	var after *pagination.Cursor
	if nextToken != nil && *nextToken != "" {
		c, err := pagination.DecodeCursor(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		after = &c
	}

	var matched []domain.Transaction
	err := r.read(func(d *dataset) error {
		for _, t := range d.transactions {
			if !filter.Matches(t) {
				continue
			}
			if after != nil && !cursorOf(t).Before(*after) {
				continue
			}
			matched = append(matched, t)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	// Newest first.
	sort.Slice(matched, func(i, j int) bool {
		return cursorOf(matched[j]).Before(cursorOf(matched[i]))
	})

	var next *string
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
		token := pagination.EncodeCursor(cursorOf(matched[limit-1]))
		next = &token
	}
	return matched, next, nil
}

func cursorOf(t domain.Transaction) pagination.Cursor {
	return pagination.Cursor{OccurredAt: t.OccurredAt, CreatedAt: t.CreatedAt, ID: t.TransactionID}
}

func (r *transactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	return r.write(func(d *dataset) error {
		if _, ok := d.transactions[txn.TransactionID]; ok {
			return fmt.Errorf("%w: transaction %s", apperrors.ErrDuplicate, txn.TransactionID)
		}
		if documentNumberTaken(d, txn.DocumentNumber) {
			return fmt.Errorf("%w: document number %s", apperrors.ErrDuplicate, txn.DocumentNumber)
		}
		lines := append([]domain.TransactionLine{}, txn.Lines...)
		txn.Lines = nil
		d.transactions[txn.TransactionID] = txn
		d.lines[txn.TransactionID] = lines
		return nil
	})
}

func (r *transactionRepository) UpdateTransaction(ctx context.Context, txn domain.Transaction) error {
	return r.write(func(d *dataset) error {
		if _, ok := d.transactions[txn.TransactionID]; !ok {
			return apperrors.ErrNotFound
		}
		txn.Lines = nil
		d.transactions[txn.TransactionID] = txn
		return nil
	})
}

func (r *transactionRepository) SaveLine(ctx context.Context, line domain.TransactionLine) error {
	return r.write(func(d *dataset) error {
		if _, ok := d.transactions[line.TransactionID]; !ok {
			return fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, line.TransactionID)
		}
		d.lines[line.TransactionID] = append(d.lines[line.TransactionID], line)
		return nil
	})
}

func (r *transactionRepository) DeleteLine(ctx context.Context, transactionID, lineID string) error {
	return r.write(func(d *dataset) error {
		lines := d.lines[transactionID]
		for i, l := range lines {
			if l.LineID == lineID {
				kept := append([]domain.TransactionLine{}, lines[:i]...)
				d.lines[transactionID] = append(kept, lines[i+1:]...)
				return nil
			}
		}
		return apperrors.ErrNotFound
	})
}

func (r *transactionRepository) DeleteTransaction(ctx context.Context, transactionID string) error {
	return r.write(func(d *dataset) error {
		if _, ok := d.transactions[transactionID]; !ok {
			return apperrors.ErrNotFound
		}
		delete(d.transactions, transactionID)
		delete(d.lines, transactionID)
		return nil
	})
}
