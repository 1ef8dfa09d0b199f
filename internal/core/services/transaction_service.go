package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/retail_management_app/internal/apperrors"
	"github.com/SscSPs/retail_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/retail_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/retail_management_app/internal/core/ports/services"
	"github.com/SscSPs/retail_management_app/internal/dto"
	"github.com/SscSPs/retail_management_app/internal/utils/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100

	maxNumberingAttempts = 5
)

var errDocumentNumberTaken = fmt.Errorf("%w: document number", apperrors.ErrDuplicate)

// TransactionDeps are the collaborators of the transaction orchestrator.
type TransactionDeps struct {
	TxManager portsrepo.TransactionManager
	Reader    portsrepo.TransactionReader
	Parties   portsrepo.PartyReader
	Lines     portssvc.LineProcessorSvc
	Totals    portssvc.TotalsCalculatorSvc
	Ledger    portssvc.StockLedgerSvc
	Loyalty   portssvc.LoyaltySvc
	Numbering portssvc.DocumentNumberSvc
}

// TransactionOption is a functional option for configuring the transaction service
type TransactionOption func(*transactionService)

// WithEventPublisher publishes committed changes to p.
func WithEventPublisher(p portssvc.EventPublisher) TransactionOption {
	return func(s *transactionService) {
		s.publisher = p
	}
}

// WithSaleInitialStatus sets the status new sales start in (COMPLETED or PENDING).
func WithSaleInitialStatus(status domain.TransactionStatus) TransactionOption {
	return func(s *transactionService) {
		if status == domain.StatusCompleted || status == domain.StatusPending {
			s.saleInitialStatus = status
		}
	}
}

// WithTransactionClock overrides the time source of the orchestrator.
func WithTransactionClock(option BaseOption) TransactionOption {
	return func(s *transactionService) {
		option(&s.BaseService)
	}
}

type transactionService struct {
	BaseService
	TransactionDeps
	publisher         portssvc.EventPublisher
	saleInitialStatus domain.TransactionStatus
}

var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

// NewTransactionService creates the purchase/sale orchestrator.
func NewTransactionService(deps TransactionDeps, options ...TransactionOption) portssvc.TransactionSvcFacade {
	svc := &transactionService{
		TransactionDeps:   deps,
		saleInitialStatus: domain.StatusCompleted,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// --- Reads ---

func (s *transactionService) GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	txn, err := s.Reader.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", transactionID, err)
	}
	lines, err := s.Reader.FindLinesByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("lines of transaction %s: %w", transactionID, err)
	}
	txn.Lines = lines
	return txn, nil
}

func (s *transactionService) ListTransactions(ctx context.Context, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	filter, err := s.listFilter(params)
	if err != nil {
		return nil, err
	}
	if params.NextToken != nil && *params.NextToken != "" {
		if _, err := pagination.DecodeCursor(*params.NextToken); err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
	}

	limit := pagination.NormalizeLimit(params.Limit, defaultListLimit, maxListLimit)
	txns, next, err := s.Reader.ListTransactions(ctx, filter, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions")
		return nil, err
	}

	return &dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(txns),
		NextToken:    next,
	}, nil
}

// listFilter validates the listing parameters and turns them into a filter.
func (s *transactionService) listFilter(params dto.ListTransactionsParams) (domain.TransactionFilter, error) {
	filter := domain.TransactionFilter{IncludeInactive: params.IncludeInactive}
	if params.Direction != "" {
		d := domain.Direction(strings.ToUpper(params.Direction))
		if !d.IsValid() {
			return filter, fmt.Errorf("%w: unknown direction %q", apperrors.ErrValidation, params.Direction)
		}
		filter.Direction = &d
	}
	if params.Status != "" {
		st := domain.TransactionStatus(strings.ToUpper(params.Status))
		if !st.IsValid() {
			return filter, fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, params.Status)
		}
		filter.Status = &st
	}
	if id := strings.TrimSpace(params.CounterpartyID); id != "" {
		filter.CounterpartyID = &id
	}
	if params.OccurredFrom != nil {
		from := params.OccurredFrom.UTC()
		filter.OccurredFrom = &from
	}
	if params.OccurredTo != nil {
		to := params.OccurredTo.UTC()
		filter.OccurredTo = &to
	}
	if filter.OccurredFrom != nil && filter.OccurredTo != nil && filter.OccurredFrom.After(*filter.OccurredTo) {
		return filter, fmt.Errorf("%w: occurredFrom is after occurredTo", apperrors.ErrValidation)
	}

	if params.Overdue {
		inbound, pending := domain.Inbound, domain.StatusPending
		if filter.Direction != nil && *filter.Direction != inbound {
			return filter, fmt.Errorf("%w: only purchases can be overdue", apperrors.ErrValidation)
		}
		if filter.Status != nil && *filter.Status != pending {
			return filter, fmt.Errorf("%w: only pending purchases can be overdue", apperrors.ErrValidation)
		}
		now := s.Now()
		filter.Direction = &inbound
		filter.Status = &pending
		filter.DueBefore = &now
	}
	return filter, nil
}

// --- Creation ---

func (s *transactionService) CreatePurchase(ctx context.Context, req dto.CreateTransactionRequest, operatorID string) (*domain.Transaction, error) {
	return s.create(ctx, domain.Inbound, req, operatorID)
}

func (s *transactionService) CreateSale(ctx context.Context, req dto.CreateTransactionRequest, operatorID string) (*domain.Transaction, error) {
	return s.create(ctx, domain.Outbound, req, operatorID)
}

func (s *transactionService) create(ctx context.Context, direction domain.Direction, req dto.CreateTransactionRequest, operatorID string) (*domain.Transaction, error) {
	logger := s.GetLogger(ctx).With(slog.String("direction", string(direction)))

	header, err := s.buildHeader(ctx, direction, req, operatorID)
	if err != nil {
		logger.Warn("Rejected transaction request", slog.String("error", err.Error()))
		return nil, err
	}

	lines := make([]domain.TransactionLine, 0, len(req.Lines))
	for i, lr := range req.Lines {
		line, err := s.Lines.Process(ctx, header.TransactionID, i, lr)
		if err != nil {
			logger.Warn("Rejected transaction line", slog.Int("line", i), slog.String("error", err.Error()))
			return nil, err
		}
		line.AuditFields = header.AuditFields
		lines = append(lines, line)
	}
	header.Lines = lines

	generated := header.DocumentNumber == ""
	var result *domain.Transaction
	for attempt := 1; ; attempt++ {
		if generated {
			number, err := s.Numbering.Next(ctx, direction)
			if err != nil {
				s.LogError(ctx, err, "Failed to generate document number")
				return nil, err
			}
			header.DocumentNumber = number
		}

		result, err = s.save(ctx, header, lines)
		// A generated number may collide with one supplied by a caller or
		// issued before the sequencer was switched; draw the next one.
		if generated && errors.Is(err, errDocumentNumberTaken) && attempt < maxNumberingAttempts {
			logger.Warn("Generated document number already taken, retrying",
				slog.String("document_number", header.DocumentNumber),
				slog.Int("attempt", attempt))
			continue
		}
		break
	}
	if err != nil {
		s.logFailure(ctx, err, "create", header.TransactionID)
		return nil, err
	}

	logger.Info("Transaction created",
		slog.String("transaction_id", result.TransactionID),
		slog.String("document_number", result.DocumentNumber),
		slog.String("total", result.Total.String()),
		slog.Int("lines", len(result.Lines)))
	s.publish(ctx, domain.EventCreated, *result)
	return result, nil
}

// save persists header and lines and applies their stock in one unit of work.
func (s *transactionService) save(ctx context.Context, header *domain.Transaction, lines []domain.TransactionLine) (*domain.Transaction, error) {
	var result *domain.Transaction
	err := s.TxManager.WithTransaction(ctx, func(ctx context.Context, repos portsrepo.TxRepositories) error {
		if err := s.checkDocumentNumber(ctx, repos.Transactions, header.DocumentNumber); err != nil {
			return err
		}
		if err := repos.Transactions.SaveTransaction(ctx, *header); err != nil {
			return fmt.Errorf("save transaction %s: %w", header.TransactionID, err)
		}
		if err := s.applyStock(ctx, repos.Stock, *header, lines, false); err != nil {
			return err
		}

		var err error
		result, err = s.Totals.Recalculate(ctx, repos.Transactions, header.TransactionID)
		return err
	})
	return result, err
}

// checkDocumentNumber fails with errDocumentNumberTaken when number is in use.
func (s *transactionService) checkDocumentNumber(ctx context.Context, txns portsrepo.TransactionReader, number string) error {
	exists, err := txns.DocumentNumberExists(ctx, number)
	if err != nil {
		return fmt.Errorf("check document number %s: %w", number, err)
	}
	if exists {
		return fmt.Errorf("%w %s", errDocumentNumberTaken, number)
	}
	return nil
}

func (s *transactionService) buildHeader(ctx context.Context, direction domain.Direction, req dto.CreateTransactionRequest, operatorID string) (*domain.Transaction, error) {
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: at least one line is required", apperrors.ErrValidation)
	}
	discount, err := nonNegative("discount", req.Discount)
	if err != nil {
		return nil, err
	}
	tax, err := nonNegative("tax", req.Tax)
	if err != nil {
		return nil, err
	}
	if direction == domain.Outbound && req.DueAt != nil {
		return nil, fmt.Errorf("%w: dueAt only applies to purchases", apperrors.ErrValidation)
	}

	if err := s.requireParty(ctx, domain.PartyOperator, operatorID); err != nil {
		return nil, err
	}

	var counterpartyID *string
	if req.CounterpartyID != nil && strings.TrimSpace(*req.CounterpartyID) != "" {
		id := strings.TrimSpace(*req.CounterpartyID)
		counterpartyID = &id
	}
	kind := direction.CounterpartyKind()
	if counterpartyID == nil {
		if direction == domain.Inbound {
			return nil, fmt.Errorf("%w: supplier is required for purchases", apperrors.ErrValidation)
		}
	} else if err := s.requireParty(ctx, kind, *counterpartyID); err != nil {
		return nil, err
	}

	now := s.Now()
	occurredAt := now
	if req.OccurredAt != nil && !req.OccurredAt.IsZero() {
		occurredAt = req.OccurredAt.UTC()
	}
	status := domain.StatusPending
	if direction == domain.Outbound {
		status = s.saleInitialStatus
	}

	return &domain.Transaction{
		TransactionID:   uuid.NewString(),
		Direction:       direction,
		DocumentNumber:  strings.TrimSpace(req.DocumentNumber),
		CounterpartyID:  counterpartyID,
		OperatorID:      operatorID,
		OccurredAt:      occurredAt,
		DueAt:           req.DueAt,
		Subtotal:        decimal.Zero,
		Discount:        discount,
		Tax:             tax,
		LoyaltyDiscount: decimal.Zero,
		Total:           decimal.Zero,
		Status:          status,
		PaymentMethod:   req.PaymentMethod,
		ReceiptNumber:   req.ReceiptNumber,
		Notes:           req.Notes,
		IsActive:        true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     operatorID,
			LastUpdatedAt: now,
			LastUpdatedBy: operatorID,
		},
	}, nil
}

// --- Header editing ---

func (s *transactionService) UpdateTransaction(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest, operatorID string) (*domain.Transaction, error) {
	if _, err := nonNegative("discount", req.Discount); err != nil {
		return nil, err
	}
	if _, err := nonNegative("tax", req.Tax); err != nil {
		return nil, err
	}
	return s.mutate(ctx, "update", transactionID, operatorID, nil, func(ctx context.Context, repos portsrepo.TxRepositories, txn *domain.Transaction) (domain.EventType, error) {
		if !txn.IsOpen() {
			return "", fmt.Errorf("%w: transaction %s is %s and can no longer be edited", apperrors.ErrInvalidStateTransition, txn.TransactionID, txn.Status)
		}

		if req.DocumentNumber != nil {
			number := strings.TrimSpace(*req.DocumentNumber)
			if number == "" {
				return "", fmt.Errorf("%w: document number cannot be empty", apperrors.ErrValidation)
			}
			if number != txn.DocumentNumber {
				if err := s.checkDocumentNumber(ctx, repos.Transactions, number); err != nil {
					return "", err
				}
				txn.DocumentNumber = number
			}
		}
		if req.DueAt != nil {
			if txn.Direction != domain.Inbound {
				return "", fmt.Errorf("%w: dueAt only applies to purchases", apperrors.ErrValidation)
			}
			due := req.DueAt.UTC()
			txn.DueAt = &due
		}
		if req.OccurredAt != nil && !req.OccurredAt.IsZero() {
			txn.OccurredAt = req.OccurredAt.UTC()
		}
		if req.Discount != nil {
			txn.Discount = *req.Discount
		}
		if req.Tax != nil {
			txn.Tax = *req.Tax
		}
		if req.PaymentMethod != nil {
			txn.PaymentMethod = *req.PaymentMethod
		}
		if req.ReceiptNumber != nil {
			txn.ReceiptNumber = *req.ReceiptNumber
		}
		if req.Notes != nil {
			txn.Notes = *req.Notes
		}

		// Totals follow in mutate; a negative result rolls the edit back.
		if err := s.touch(ctx, repos, txn, operatorID); err != nil {
			return "", err
		}
		return domain.EventUpdated, nil
	})
}

// --- Line editing ---

func (s *transactionService) AddLine(ctx context.Context, transactionID string, req dto.TransactionLineRequest, operatorID string) (*domain.Transaction, error) {
	return s.mutate(ctx, "add_line", transactionID, operatorID, nil, func(ctx context.Context, repos portsrepo.TxRepositories, txn *domain.Transaction) (domain.EventType, error) {
		if !txn.IsOpen() {
			return "", fmt.Errorf("%w: transaction %s is %s and no longer accepts line changes", apperrors.ErrInvalidStateTransition, txn.TransactionID, txn.Status)
		}

		line, err := s.Lines.Process(ctx, txn.TransactionID, len(txn.Lines), req)
		if err != nil {
			return "", err
		}
		now := s.Now()
		line.AuditFields = domain.AuditFields{CreatedAt: now, CreatedBy: operatorID, LastUpdatedAt: now, LastUpdatedBy: operatorID}

		if err := repos.Transactions.SaveLine(ctx, line); err != nil {
			return "", fmt.Errorf("save line of transaction %s: %w", txn.TransactionID, err)
		}
		if err := s.applyStock(ctx, repos.Stock, *txn, []domain.TransactionLine{line}, false); err != nil {
			return "", err
		}
		if err := s.touch(ctx, repos, txn, operatorID); err != nil {
			return "", err
		}
		return domain.EventLinesChanged, nil
	})
}

func (s *transactionService) RemoveLine(ctx context.Context, transactionID, lineID, operatorID string) (*domain.Transaction, error) {
	return s.mutate(ctx, "remove_line", transactionID, operatorID, nil, func(ctx context.Context, repos portsrepo.TxRepositories, txn *domain.Transaction) (domain.EventType, error) {
		if !txn.IsOpen() {
			return "", fmt.Errorf("%w: transaction %s is %s and no longer accepts line changes", apperrors.ErrInvalidStateTransition, txn.TransactionID, txn.Status)
		}

		line, err := repos.Transactions.FindLineByID(ctx, txn.TransactionID, lineID)
		if err != nil {
			return "", fmt.Errorf("line %s of transaction %s: %w", lineID, txn.TransactionID, err)
		}
		// Stock goes back before the line disappears.
		if err := s.applyStock(ctx, repos.Stock, *txn, []domain.TransactionLine{*line}, true); err != nil {
			return "", err
		}
		if err := repos.Transactions.DeleteLine(ctx, txn.TransactionID, lineID); err != nil {
			return "", fmt.Errorf("delete line %s of transaction %s: %w", lineID, txn.TransactionID, err)
		}
		if err := s.touch(ctx, repos, txn, operatorID); err != nil {
			return "", err
		}
		return domain.EventLinesChanged, nil
	})
}

func (s *transactionService) Recalculate(ctx context.Context, transactionID, operatorID string) (*domain.Transaction, error) {
	return s.mutate(ctx, "recalculate", transactionID, operatorID, nil, func(ctx context.Context, repos portsrepo.TxRepositories, txn *domain.Transaction) (domain.EventType, error) {
		return domain.EventRecalculated, nil
	})
}

// --- Lifecycle ---

func (s *transactionService) CancelTransaction(ctx context.Context, transactionID, operatorID string) (*domain.Transaction, error) {
	return s.cancel(ctx, transactionID, operatorID, nil)
}

func (s *transactionService) CancelPurchase(ctx context.Context, transactionID, operatorID string) (*domain.Transaction, error) {
	d := domain.Inbound
	return s.cancel(ctx, transactionID, operatorID, &d)
}

func (s *transactionService) CancelSale(ctx context.Context, transactionID, operatorID string) (*domain.Transaction, error) {
	d := domain.Outbound
	return s.cancel(ctx, transactionID, operatorID, &d)
}

func (s *transactionService) cancel(ctx context.Context, transactionID, operatorID string, expected *domain.Direction) (*domain.Transaction, error) {
	return s.mutate(ctx, "cancel", transactionID, operatorID, expected, func(ctx context.Context, repos portsrepo.TxRepositories, txn *domain.Transaction) (domain.EventType, error) {
		if err := s.transition(txn, domain.StatusCancelled); err != nil {
			return "", err
		}
		if err := s.reverseEffects(ctx, repos, txn); err != nil {
			return "", err
		}
		txn.Status = domain.StatusCancelled
		if err := s.touch(ctx, repos, txn, operatorID); err != nil {
			return "", err
		}
		return domain.EventCancelled, nil
	})
}

func (s *transactionService) MarkPurchasePaid(ctx context.Context, transactionID, operatorID string) (*domain.Transaction, error) {
	d := domain.Inbound
	return s.mutate(ctx, "mark_paid", transactionID, operatorID, &d, func(ctx context.Context, repos portsrepo.TxRepositories, txn *domain.Transaction) (domain.EventType, error) {
		if err := s.transition(txn, domain.StatusPaid); err != nil {
			return "", err
		}
		txn.Status = domain.StatusPaid
		if err := s.touch(ctx, repos, txn, operatorID); err != nil {
			return "", err
		}
		return domain.EventPaid, nil
	})
}

func (s *transactionService) CompleteSale(ctx context.Context, transactionID, operatorID string) (*domain.Transaction, error) {
	d := domain.Outbound
	return s.mutate(ctx, "complete", transactionID, operatorID, &d, func(ctx context.Context, repos portsrepo.TxRepositories, txn *domain.Transaction) (domain.EventType, error) {
		if !txn.IsActive {
			return "", fmt.Errorf("%w: transaction %s is deleted", apperrors.ErrInvalidStateTransition, txn.TransactionID)
		}
		// A sale may start out COMPLETED; completing it then only awards points, once.
		alreadyAwarded := txn.Status == domain.StatusCompleted && txn.CompletedAt != nil
		if alreadyAwarded || (txn.Status != domain.StatusCompleted && !txn.Status.CanTransition(txn.Direction, domain.StatusCompleted)) {
			return "", fmt.Errorf("%w: cannot complete %s sale %s", apperrors.ErrInvalidStateTransition, txn.Status, txn.TransactionID)
		}

		now := s.Now()
		txn.Status = domain.StatusCompleted
		txn.CompletedAt = &now
		txn.PointsAwarded = 0
		if txn.HasCustomer() {
			points := s.Loyalty.PointsForTotal(txn.Total)
			if points > 0 {
				if _, err := s.Loyalty.Award(ctx, repos.Customers, *txn.CounterpartyID, points); err != nil {
					return "", err
				}
			}
			txn.PointsAwarded = points
		}
		if err := s.touch(ctx, repos, txn, operatorID); err != nil {
			return "", err
		}
		return domain.EventCompleted, nil
	})
}

func (s *transactionService) ReturnSale(ctx context.Context, transactionID, operatorID string) (*domain.Transaction, error) {
	d := domain.Outbound
	return s.mutate(ctx, "return", transactionID, operatorID, &d, func(ctx context.Context, repos portsrepo.TxRepositories, txn *domain.Transaction) (domain.EventType, error) {
		if err := s.transition(txn, domain.StatusReturned); err != nil {
			return "", err
		}
		if err := s.reverseEffects(ctx, repos, txn); err != nil {
			return "", err
		}
		txn.Status = domain.StatusReturned
		if err := s.touch(ctx, repos, txn, operatorID); err != nil {
			return "", err
		}
		return domain.EventReturned, nil
	})
}

// ApplyLoyaltyDiscount redeems points against an open sale. Points are taken
// from the customer's balance immediately; applying again replaces the
// previous redemption, refunding its points first.
func (s *transactionService) ApplyLoyaltyDiscount(ctx context.Context, transactionID string, points int64, operatorID string) (*domain.Transaction, error) {
	if points <= 0 {
		return nil, fmt.Errorf("%w: points must be positive, got %d", apperrors.ErrValidation, points)
	}
	d := domain.Outbound
	return s.mutate(ctx, "apply_loyalty_discount", transactionID, operatorID, &d, func(ctx context.Context, repos portsrepo.TxRepositories, txn *domain.Transaction) (domain.EventType, error) {
		if !txn.HasCustomer() {
			return "", fmt.Errorf("%w: sale %s has no customer attached", apperrors.ErrValidation, txn.TransactionID)
		}
		if !txn.IsOpen() {
			return "", fmt.Errorf("%w: sale %s is %s and no longer accepts discounts", apperrors.ErrInvalidStateTransition, txn.TransactionID, txn.Status)
		}
		customerID := *txn.CounterpartyID

		if txn.PointsUsed > 0 {
			if _, err := s.Loyalty.Award(ctx, repos.Customers, customerID, txn.PointsUsed); err != nil {
				return "", fmt.Errorf("refund previously used points: %w", err)
			}
		}
		if _, err := s.Loyalty.Consume(ctx, repos.Customers, customerID, points); err != nil {
			return "", err
		}

		txn.LoyaltyDiscount = s.Loyalty.DiscountForPoints(points)
		txn.PointsUsed = points
		if err := s.touch(ctx, repos, txn, operatorID); err != nil {
			return "", err
		}
		return domain.EventLoyaltyApplied, nil
	})
}

// --- Deletion ---

func (s *transactionService) DeleteTransaction(ctx context.Context, transactionID, operatorID string) error {
	_, err := s.mutate(ctx, "delete", transactionID, operatorID, nil, func(ctx context.Context, repos portsrepo.TxRepositories, txn *domain.Transaction) (domain.EventType, error) {
		if !txn.IsActive {
			return "", fmt.Errorf("%w: transaction %s is already deleted", apperrors.ErrInvalidStateTransition, txn.TransactionID)
		}
		if !txn.Status.EffectsReversed() {
			if err := s.reverseEffects(ctx, repos, txn); err != nil {
				return "", err
			}
		}
		txn.IsActive = false
		if err := s.touch(ctx, repos, txn, operatorID); err != nil {
			return "", err
		}
		return domain.EventDeactivated, nil
	})
	return err
}

func (s *transactionService) DeleteTransactionPermanently(ctx context.Context, transactionID, operatorID string) error {
	_, err := s.mutate(ctx, "delete_permanently", transactionID, operatorID, nil, func(ctx context.Context, repos portsrepo.TxRepositories, txn *domain.Transaction) (domain.EventType, error) {
		// Inactive transactions were reversed when they were soft-deleted.
		if txn.IsActive && !txn.Status.EffectsReversed() {
			if err := s.reverseEffects(ctx, repos, txn); err != nil {
				return "", err
			}
		}
		if err := repos.Transactions.DeleteTransaction(ctx, txn.TransactionID); err != nil {
			return "", fmt.Errorf("delete transaction %s: %w", txn.TransactionID, err)
		}
		txn.IsActive = false
		return domain.EventPermanentlyDeleted, nil
	})
	return err
}

// --- Shared workflow ---

type mutation func(ctx context.Context, repos portsrepo.TxRepositories, txn *domain.Transaction) (domain.EventType, error)

// mutate runs fn against a locked transaction inside one unit of work, then
// returns the reloaded transaction and publishes the event fn reported.
func (s *transactionService) mutate(ctx context.Context, op, transactionID, operatorID string, expected *domain.Direction, fn mutation) (*domain.Transaction, error) {
	if strings.TrimSpace(transactionID) == "" {
		return nil, fmt.Errorf("%w: transaction id is required", apperrors.ErrValidation)
	}
	if err := s.requireParty(ctx, domain.PartyOperator, operatorID); err != nil {
		return nil, err
	}

	var (
		result    *domain.Transaction
		eventType domain.EventType
		snapshot  domain.Transaction
	)
	err := s.TxManager.WithTransaction(ctx, func(ctx context.Context, repos portsrepo.TxRepositories) error {
		txn, err := repos.Transactions.FindTransactionByIDForUpdate(ctx, transactionID)
		if err != nil {
			return fmt.Errorf("transaction %s: %w", transactionID, err)
		}
		if expected != nil && txn.Direction != *expected {
			return fmt.Errorf("%w: transaction %s not found as %s", apperrors.ErrNotFound, transactionID, describe(*expected))
		}
		if txn.Lines, err = repos.Transactions.FindLinesByTransactionID(ctx, transactionID); err != nil {
			return fmt.Errorf("lines of transaction %s: %w", transactionID, err)
		}

		if eventType, err = fn(ctx, repos, txn); err != nil {
			return err
		}
		if eventType == domain.EventPermanentlyDeleted {
			snapshot = *txn
			return nil
		}

		result, err = s.Totals.Recalculate(ctx, repos.Transactions, transactionID)
		if err != nil {
			return err
		}
		snapshot = *result
		return nil
	})
	if err != nil {
		s.logFailure(ctx, err, op, transactionID)
		return nil, err
	}

	s.LogInfo(ctx, "Transaction updated",
		slog.String("operation", op),
		slog.String("transaction_id", transactionID),
		slog.String("status", string(snapshot.Status)))
	s.publish(ctx, eventType, snapshot)
	return result, nil
}

// transition checks that txn may move to next.
func (s *transactionService) transition(txn *domain.Transaction, next domain.TransactionStatus) error {
	if !txn.IsActive {
		return fmt.Errorf("%w: transaction %s is deleted", apperrors.ErrInvalidStateTransition, txn.TransactionID)
	}
	if !txn.Status.CanTransition(txn.Direction, next) {
		return fmt.Errorf("%w: %s %s cannot move from %s to %s", apperrors.ErrInvalidStateTransition, describe(txn.Direction), txn.TransactionID, txn.Status, next)
	}
	return nil
}

// reverseEffects undoes stock movements of every line and, for sales, the
// loyalty points awarded for and redeemed on the sale.
func (s *transactionService) reverseEffects(ctx context.Context, repos portsrepo.TxRepositories, txn *domain.Transaction) error {
	if err := s.applyStock(ctx, repos.Stock, *txn, txn.Lines, true); err != nil {
		return err
	}
	if !txn.HasCustomer() {
		return nil
	}
	customerID := *txn.CounterpartyID
	if txn.PointsAwarded > 0 {
		if _, err := s.Loyalty.ConsumeUpTo(ctx, repos.Customers, customerID, txn.PointsAwarded); err != nil {
			return fmt.Errorf("revert awarded points of sale %s: %w", txn.TransactionID, err)
		}
	}
	if txn.PointsUsed > 0 {
		if _, err := s.Loyalty.Award(ctx, repos.Customers, customerID, txn.PointsUsed); err != nil {
			return fmt.Errorf("refund redeemed points of sale %s: %w", txn.TransactionID, err)
		}
	}
	return nil
}

// applyStock moves stock for lines in order. On failure the lines already
// moved are compensated in reverse order before the error is returned.
func (s *transactionService) applyStock(ctx context.Context, stock portsrepo.StockRepositoryFacade, txn domain.Transaction, lines []domain.TransactionLine, reverse bool) error {
	kind := txn.Direction.StockMovement()
	reason := domain.ReasonApply
	if reverse {
		kind = kind.Inverse()
		reason = domain.ReasonReverse
	}

	applied := make([]domain.TransactionLine, 0, len(lines))
	for i, line := range lines {
		if err := s.moveStock(ctx, stock, kind, reason, txn.TransactionID, line); err != nil {
			s.compensate(ctx, stock, kind, txn.TransactionID, applied)
			return fmt.Errorf("line %d (product %s) of transaction %s: %w", i, line.ProductID, txn.TransactionID, err)
		}
		applied = append(applied, line)
	}
	return nil
}

func (s *transactionService) compensate(ctx context.Context, stock portsrepo.StockRepositoryFacade, kind domain.MovementKind, transactionID string, applied []domain.TransactionLine) {
	for i := len(applied) - 1; i >= 0; i-- {
		line := applied[i]
		if err := s.moveStock(ctx, stock, kind.Inverse(), domain.ReasonReverse, transactionID, line); err != nil {
			s.LogError(ctx, err, "Stock compensation failed",
				slog.String("transaction_id", transactionID),
				slog.String("line_id", line.LineID),
				slog.String("stock_ref", line.StockRef().Key()))
		}
	}
}

func (s *transactionService) moveStock(ctx context.Context, stock portsrepo.StockRepositoryFacade, kind domain.MovementKind, reason domain.MovementReason, transactionID string, line domain.TransactionLine) error {
	var err error
	if kind == domain.MovementIn {
		_, err = s.Ledger.Increase(ctx, stock, line.StockRef(), line.Quantity, transactionID, reason)
	} else {
		_, err = s.Ledger.Decrease(ctx, stock, line.StockRef(), line.Quantity, transactionID, reason)
	}
	return err
}

// touch stamps the header and persists its non-total fields.
func (s *transactionService) touch(ctx context.Context, repos portsrepo.TxRepositories, txn *domain.Transaction, operatorID string) error {
	txn.LastUpdatedAt = s.Now()
	txn.LastUpdatedBy = operatorID
	if err := repos.Transactions.UpdateTransaction(ctx, *txn); err != nil {
		return fmt.Errorf("update transaction %s: %w", txn.TransactionID, err)
	}
	return nil
}

func (s *transactionService) requireParty(ctx context.Context, kind domain.PartyKind, partyID string) error {
	role := strings.ToLower(string(kind))
	if strings.TrimSpace(partyID) == "" {
		return fmt.Errorf("%w: %s is required", apperrors.ErrValidation, role)
	}
	party, err := s.Parties.FindParty(ctx, kind, partyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: %s %s", apperrors.ErrNotFound, role, partyID)
		}
		return fmt.Errorf("lookup %s %s: %w", role, partyID, err)
	}
	if !party.IsActive {
		return fmt.Errorf("%w: %s %s is inactive", apperrors.ErrNotFound, role, partyID)
	}
	return nil
}

func (s *transactionService) publish(ctx context.Context, eventType domain.EventType, txn domain.Transaction) {
	if s.publisher == nil || eventType == "" {
		return
	}
	event := domain.NewTransactionEvent(eventType, txn, s.Now())
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.LogError(ctx, err, "Failed to publish transaction event",
			slog.String("event_type", string(eventType)),
			slog.String("transaction_id", txn.TransactionID))
	}
}

func (s *transactionService) logFailure(ctx context.Context, err error, op, transactionID string) {
	attrs := []any{slog.String("operation", op), slog.String("transaction_id", transactionID)}
	if isClientError(err) {
		s.LogWarn(ctx, "Transaction operation rejected", append(attrs, slog.String("error", err.Error()))...)
		return
	}
	s.LogError(ctx, err, "Transaction operation failed", attrs...)
}

func isClientError(err error) bool {
	for _, target := range []error{
		apperrors.ErrNotFound,
		apperrors.ErrValidation,
		apperrors.ErrDuplicate,
		apperrors.ErrInsufficientStock,
		apperrors.ErrInsufficientPoints,
		apperrors.ErrInvalidStateTransition,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func nonNegative(field string, v *decimal.Decimal) (decimal.Decimal, error) {
	if v == nil {
		return decimal.Zero, nil
	}
	if v.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s cannot be negative", apperrors.ErrValidation, field)
	}
	return *v, nil
}

func describe(d domain.Direction) string {
	if d == domain.Inbound {
		return "purchase"
	}
	return "sale"
}
