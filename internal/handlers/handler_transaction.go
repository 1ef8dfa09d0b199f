package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/SscSPs/retail_management_app/internal/core/domain"
	portssvc "github.com/SscSPs/retail_management_app/internal/core/ports/services"
	"github.com/SscSPs/retail_management_app/internal/dto"
	"github.com/SscSPs/retail_management_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// transactionHandler handles HTTP requests for purchases and sales.
type transactionHandler struct {
	transactionService portssvc.TransactionSvcFacade
}

func newTransactionHandler(ts portssvc.TransactionSvcFacade) *transactionHandler {
	return &transactionHandler{transactionService: ts}
}

// RegisterTransactionRoutes registers purchase, sale and shared transaction routes.
func RegisterTransactionRoutes(rg *gin.RouterGroup, transactionService portssvc.TransactionSvcFacade) {
	h := newTransactionHandler(transactionService)

	purchases := rg.Group("/purchases")
	{
		purchases.POST("", h.createPurchase)
		purchases.POST("/:transactionID/pay", h.markPurchasePaid)
		purchases.POST("/:transactionID/cancel", h.cancelPurchase)
	}

	sales := rg.Group("/sales")
	{
		sales.POST("", h.createSale)
		sales.POST("/:transactionID/complete", h.completeSale)
		sales.POST("/:transactionID/return", h.returnSale)
		sales.POST("/:transactionID/cancel", h.cancelSale)
		sales.POST("/:transactionID/loyalty-discount", h.applyLoyaltyDiscount)
	}

	transactions := rg.Group("/transactions")
	{
		transactions.GET("", h.listTransactions)
		transactions.GET("/:transactionID", h.getTransaction)
		transactions.PUT("/:transactionID", h.updateTransaction)
		transactions.POST("/:transactionID/cancel", h.cancelTransaction)
		transactions.POST("/:transactionID/recalculate", h.recalculate)
		transactions.POST("/:transactionID/lines", h.addLine)
		transactions.DELETE("/:transactionID/lines/:lineID", h.removeLine)
		transactions.DELETE("/:transactionID", h.deleteTransaction)
		transactions.DELETE("/:transactionID/permanent", h.deleteTransactionPermanently)
	}
}

// operator returns the acting operator or writes a 400 and reports false.
func operator(c *gin.Context, logger *slog.Logger) (string, bool) {
	operatorID, ok := middleware.GetOperatorIDFromContext(c)
	if !ok {
		logger.Warn("Operator ID not found in context")
		c.JSON(http.StatusBadRequest, gin.H{"error": middleware.OperatorHeader + " header is required"})
		return "", false
	}
	return operatorID, true
}

// createPurchase godoc
// @Summary Create a purchase
// @Description Records goods received from a supplier and increases stock for every line
// @Tags purchases
// @Accept  json
// @Produce  json
// @Param   X-Operator-ID header string true "Acting operator"
// @Param   purchase body dto.CreateTransactionRequest true "Purchase details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 404 {object} map[string]string "Supplier, operator or product not found"
// @Failure 409 {object} map[string]string "Document number already used"
// @Failure 500 {object} map[string]string "Failed to create purchase"
// @Router /purchases [post]
func (h *transactionHandler) createPurchase(c *gin.Context) {
	h.create(c, "purchase", h.transactionService.CreatePurchase)
}

// createSale godoc
// @Summary Create a sale
// @Description Records goods sold to an optional customer and decreases stock for every line
// @Tags sales
// @Accept  json
// @Produce  json
// @Param   X-Operator-ID header string true "Acting operator"
// @Param   sale body dto.CreateTransactionRequest true "Sale details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 404 {object} map[string]string "Customer, operator or product not found"
// @Failure 409 {object} map[string]string "Document number already used"
// @Failure 422 {object} map[string]string "Insufficient stock"
// @Failure 500 {object} map[string]string "Failed to create sale"
// @Router /sales [post]
func (h *transactionHandler) createSale(c *gin.Context) {
	h.create(c, "sale", h.transactionService.CreateSale)
}

type createFunc = func(ctx context.Context, req dto.CreateTransactionRequest, operatorID string) (*domain.Transaction, error)

func (h *transactionHandler) create(c *gin.Context, kind string, create createFunc) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for create "+kind, slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	operatorID, ok := operator(c, logger)
	if !ok {
		return
	}

	logger.Info("Received request to create "+kind, slog.Int("line_count", len(req.Lines)))

	txn, err := create(c.Request.Context(), req, operatorID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create "+kind)
		return
	}

	logger.Info("Transaction created successfully",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("document_number", txn.DocumentNumber))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// getTransaction godoc
// @Summary Get a transaction by ID
// @Description Retrieves a purchase or sale with its lines
// @Tags transactions
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 500 {object} map[string]string "Failed to retrieve transaction"
// @Router /transactions/{transactionID} [get]
func (h *transactionHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")
	logger = logger.With(slog.String("transaction_id", transactionID))

	txn, err := h.transactionService.GetTransaction(c.Request.Context(), transactionID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// listTransactions godoc
// @Summary List transactions
// @Description Lists purchases and sales newest first, using token based pagination
// @Tags transactions
// @Produce  json
// @Param   direction query string false "INBOUND or OUTBOUND"
// @Param   status query string false "Transaction status"
// @Param   includeInactive query bool false "Include soft-deleted transactions"
// @Param   counterpartyID query string false "Supplier or customer ID"
// @Param   occurredFrom query string false "Earliest occurrence time (RFC 3339), inclusive"
// @Param   occurredTo query string false "Latest occurrence time (RFC 3339), inclusive"
// @Param   overdue query bool false "Only pending purchases past their due date"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 500 {object} map[string]string "Failed to list transactions"
// @Router /transactions [get]
func (h *transactionHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListTransactions", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.transactionService.ListTransactions(c.Request.Context(), params)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list transactions")
		return
	}

	logger.Debug("Transactions listed", slog.Int("count", len(resp.Transactions)))
	c.JSON(http.StatusOK, resp)
}

// updateTransaction godoc
// @Summary Update a transaction header
// @Description Edits document number, dates, discount, tax, payment and notes of an open transaction and recalculates totals
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   X-Operator-ID header string true "Acting operator"
// @Param   transactionID path string true "Transaction ID"
// @Param   transaction body dto.UpdateTransactionRequest true "Fields to change"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input or negative total"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Transaction is not open or document number already used"
// @Router /transactions/{transactionID} [put]
func (h *transactionHandler) updateTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")
	logger = logger.With(slog.String("transaction_id", transactionID))

	var req dto.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	operatorID, ok := operator(c, logger)
	if !ok {
		return
	}

	txn, err := h.transactionService.UpdateTransaction(c.Request.Context(), transactionID, req, operatorID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to update transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// addLine godoc
// @Summary Add a line
// @Description Adds a product line to an open transaction, moves stock and recalculates totals
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   X-Operator-ID header string true "Acting operator"
// @Param   transactionID path string true "Transaction ID"
// @Param   line body dto.TransactionLineRequest true "Line details"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Transaction or product not found"
// @Failure 409 {object} map[string]string "Transaction is not open"
// @Failure 422 {object} map[string]string "Insufficient stock"
// @Router /transactions/{transactionID}/lines [post]
func (h *transactionHandler) addLine(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")
	logger = logger.With(slog.String("transaction_id", transactionID))

	var req dto.TransactionLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AddLine", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	operatorID, ok := operator(c, logger)
	if !ok {
		return
	}

	txn, err := h.transactionService.AddLine(c.Request.Context(), transactionID, req, operatorID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to add line")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// removeLine godoc
// @Summary Remove a line
// @Description Removes a line from an open transaction, reverses its stock movement and recalculates totals
// @Tags transactions
// @Produce  json
// @Param   X-Operator-ID header string true "Acting operator"
// @Param   transactionID path string true "Transaction ID"
// @Param   lineID path string true "Line ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} map[string]string "Transaction or line not found"
// @Failure 409 {object} map[string]string "Transaction is not open"
// @Failure 422 {object} map[string]string "Insufficient stock to reverse a purchase line"
// @Router /transactions/{transactionID}/lines/{lineID} [delete]
func (h *transactionHandler) removeLine(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")
	lineID := c.Param("lineID")
	logger = logger.With(slog.String("transaction_id", transactionID), slog.String("line_id", lineID))

	operatorID, ok := operator(c, logger)
	if !ok {
		return
	}

	txn, err := h.transactionService.RemoveLine(c.Request.Context(), transactionID, lineID, operatorID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to remove line")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// recalculate godoc
// @Summary Recalculate totals
// @Description Recomputes the header totals from the persisted lines
// @Tags transactions
// @Produce  json
// @Param   X-Operator-ID header string true "Acting operator"
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} map[string]string "Transaction not found"
// @Router /transactions/{transactionID}/recalculate [post]
func (h *transactionHandler) recalculate(c *gin.Context) {
	h.transition(c, "recalculate", h.transactionService.Recalculate)
}

// cancelTransaction godoc
// @Summary Cancel a transaction
// @Description Cancels a purchase or sale and reverses its stock and loyalty effects
// @Tags transactions
// @Produce  json
// @Param   X-Operator-ID header string true "Acting operator"
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Status does not allow cancellation"
// @Failure 422 {object} map[string]string "Stock already consumed"
// @Router /transactions/{transactionID}/cancel [post]
func (h *transactionHandler) cancelTransaction(c *gin.Context) {
	h.transition(c, "cancel transaction", h.transactionService.CancelTransaction)
}

// cancelPurchase godoc
// @Summary Cancel a purchase
// @Tags purchases
// @Produce  json
// @Param   X-Operator-ID header string true "Acting operator"
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} map[string]string "Purchase not found"
// @Failure 409 {object} map[string]string "Status does not allow cancellation"
// @Router /purchases/{transactionID}/cancel [post]
func (h *transactionHandler) cancelPurchase(c *gin.Context) {
	h.transition(c, "cancel purchase", h.transactionService.CancelPurchase)
}

// cancelSale godoc
// @Summary Cancel a sale
// @Tags sales
// @Produce  json
// @Param   X-Operator-ID header string true "Acting operator"
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} map[string]string "Sale not found"
// @Failure 409 {object} map[string]string "Status does not allow cancellation"
// @Router /sales/{transactionID}/cancel [post]
func (h *transactionHandler) cancelSale(c *gin.Context) {
	h.transition(c, "cancel sale", h.transactionService.CancelSale)
}

// markPurchasePaid godoc
// @Summary Mark a purchase as paid
// @Tags purchases
// @Produce  json
// @Param   X-Operator-ID header string true "Acting operator"
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} map[string]string "Purchase not found"
// @Failure 409 {object} map[string]string "Purchase is not pending"
// @Router /purchases/{transactionID}/pay [post]
func (h *transactionHandler) markPurchasePaid(c *gin.Context) {
	h.transition(c, "mark purchase paid", h.transactionService.MarkPurchasePaid)
}

// completeSale godoc
// @Summary Complete a sale
// @Description Completes a sale and awards loyalty points to its customer
// @Tags sales
// @Produce  json
// @Param   X-Operator-ID header string true "Acting operator"
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} map[string]string "Sale not found"
// @Failure 409 {object} map[string]string "Sale cannot be completed"
// @Router /sales/{transactionID}/complete [post]
func (h *transactionHandler) completeSale(c *gin.Context) {
	h.transition(c, "complete sale", h.transactionService.CompleteSale)
}

// returnSale godoc
// @Summary Return a sale
// @Description Restocks the goods of a completed sale and takes back its loyalty effects
// @Tags sales
// @Produce  json
// @Param   X-Operator-ID header string true "Acting operator"
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} map[string]string "Sale not found"
// @Failure 409 {object} map[string]string "Sale is not completed"
// @Router /sales/{transactionID}/return [post]
func (h *transactionHandler) returnSale(c *gin.Context) {
	h.transition(c, "return sale", h.transactionService.ReturnSale)
}

type transitionFunc = func(ctx context.Context, transactionID, operatorID string) (*domain.Transaction, error)

func (h *transactionHandler) transition(c *gin.Context, action string, fn transitionFunc) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")
	logger = logger.With(slog.String("transaction_id", transactionID), slog.String("action", action))

	operatorID, ok := operator(c, logger)
	if !ok {
		return
	}

	txn, err := fn(c.Request.Context(), transactionID, operatorID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to "+action)
		return
	}

	logger.Info("Transaction updated", slog.String("status", string(txn.Status)))
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// applyLoyaltyDiscount godoc
// @Summary Redeem loyalty points on a sale
// @Description Consumes customer points and applies their value as a discount, replacing any earlier redemption
// @Tags sales
// @Accept  json
// @Produce  json
// @Param   X-Operator-ID header string true "Acting operator"
// @Param   transactionID path string true "Transaction ID"
// @Param   redemption body dto.ApplyLoyaltyDiscountRequest true "Points to redeem"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input or sale has no customer"
// @Failure 404 {object} map[string]string "Sale not found"
// @Failure 409 {object} map[string]string "Sale is not open"
// @Failure 422 {object} map[string]string "Insufficient points"
// @Router /sales/{transactionID}/loyalty-discount [post]
func (h *transactionHandler) applyLoyaltyDiscount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")
	logger = logger.With(slog.String("transaction_id", transactionID))

	var req dto.ApplyLoyaltyDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ApplyLoyaltyDiscount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	operatorID, ok := operator(c, logger)
	if !ok {
		return
	}

	txn, err := h.transactionService.ApplyLoyaltyDiscount(c.Request.Context(), transactionID, req.Points, operatorID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to apply loyalty discount")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// deleteTransaction godoc
// @Summary Deactivate a transaction
// @Description Reverses live stock and loyalty effects and marks the transaction inactive
// @Tags transactions
// @Param   X-Operator-ID header string true "Acting operator"
// @Param   transactionID path string true "Transaction ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Transaction already inactive"
// @Router /transactions/{transactionID} [delete]
func (h *transactionHandler) deleteTransaction(c *gin.Context) {
	h.delete(c, "deactivate", h.transactionService.DeleteTransaction)
}

// deleteTransactionPermanently godoc
// @Summary Delete a transaction permanently
// @Description Reverses live effects and removes the transaction together with its lines
// @Tags transactions
// @Param   X-Operator-ID header string true "Acting operator"
// @Param   transactionID path string true "Transaction ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Router /transactions/{transactionID}/permanent [delete]
func (h *transactionHandler) deleteTransactionPermanently(c *gin.Context) {
	h.delete(c, "permanently delete", h.transactionService.DeleteTransactionPermanently)
}

func (h *transactionHandler) delete(c *gin.Context, action string, fn func(ctx context.Context, transactionID, operatorID string) error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")
	logger = logger.With(slog.String("transaction_id", transactionID))

	operatorID, ok := operator(c, logger)
	if !ok {
		return
	}

	if err := fn(c.Request.Context(), transactionID, operatorID); err != nil {
		respondWithError(c, logger, err, "Failed to "+action+" transaction")
		return
	}

	logger.Info("Transaction deleted", slog.String("mode", action))
	c.Status(http.StatusNoContent)
}
