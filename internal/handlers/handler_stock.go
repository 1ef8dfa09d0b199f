package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/retail_management_app/internal/core/domain"
	portssvc "github.com/SscSPs/retail_management_app/internal/core/ports/services"
	"github.com/SscSPs/retail_management_app/internal/dto"
	"github.com/SscSPs/retail_management_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

type stockHandler struct {
	stockService portssvc.StockReaderSvc
}

// RegisterStockRoutes registers the read-only stock routes.
func RegisterStockRoutes(rg *gin.RouterGroup, stockService portssvc.StockReaderSvc) {
	h := &stockHandler{stockService: stockService}
	rg.GET("/stock/:productID", h.getStock)
}

// getStock godoc
// @Summary Get on-hand stock
// @Description Returns the stock record of a product, or of one of its variants
// @Tags stock
// @Produce  json
// @Param   productID path string true "Product ID"
// @Param   variantID query string false "Variant ID"
// @Success 200 {object} dto.StockResponse
// @Failure 404 {object} map[string]string "No stock record"
// @Failure 500 {object} map[string]string "Failed to retrieve stock"
// @Router /stock/{productID} [get]
func (h *stockHandler) getStock(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ref := domain.StockRef{ProductID: c.Param("productID")}
	if v := strings.TrimSpace(c.Query("variantID")); v != "" {
		ref.VariantID = &v
	}
	logger = logger.With(slog.String("stock_ref", ref.Key()))

	record, err := h.stockService.GetStock(c.Request.Context(), ref)
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve stock")
		return
	}
	c.JSON(http.StatusOK, dto.ToStockResponse(record))
}
