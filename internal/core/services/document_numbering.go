package services

import (
	"context"
	"fmt"

	"github.com/SscSPs/retail_management_app/internal/apperrors"
	"github.com/SscSPs/retail_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/retail_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/retail_management_app/internal/core/ports/services"
)

type documentNumbering struct {
	BaseService
	sequencer portsrepo.DocumentSequencer
}

var _ portssvc.DocumentNumberSvc = (*documentNumbering)(nil)

// NewDocumentNumbering creates a generator backed by an atomic sequencer.
func NewDocumentNumbering(sequencer portsrepo.DocumentSequencer) portssvc.DocumentNumberSvc {
	return &documentNumbering{sequencer: sequencer}
}

// Next returns the next document number for direction, e.g. VENT-000123.
func (n *documentNumbering) Next(ctx context.Context, direction domain.Direction) (string, error) {
	if !direction.IsValid() {
		return "", fmt.Errorf("%w: unknown direction %q", apperrors.ErrValidation, direction)
	}
	prefix := direction.DocumentPrefix()
	seq, err := n.sequencer.NextSequence(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("next %s document sequence: %w", prefix, err)
	}
	return FormatDocumentNumber(prefix, seq), nil
}

// FormatDocumentNumber renders PREFIX-NNNNNN, zero padded to six digits.
func FormatDocumentNumber(prefix string, seq int64) string {
	return fmt.Sprintf("%s-%06d", prefix, seq)
}
