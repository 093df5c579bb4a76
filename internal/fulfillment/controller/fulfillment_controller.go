package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"warehouse/internal/dto"
	apperrors "warehouse/internal/errors"
)

type SellUseCase interface {
	SellProduct(ctx context.Context, productID int64) error
	SellArticles(ctx context.Context, articleID int64, quantity int) error
}

type ListUseCase interface {
	ListProducts(ctx context.Context) (*dto.ProductInventoryDTO, error)
}

type FulfillmentController struct {
	sellUC SellUseCase
	listUC ListUseCase
	logger *zap.Logger
}

func NewFulfillmentController(sellUC SellUseCase, listUC ListUseCase, logger *zap.Logger) *FulfillmentController {
	return &FulfillmentController{
		sellUC: sellUC,
		listUC: listUC,
		logger: logger,
	}
}

func (c *FulfillmentController) ListProducts(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	inventory, err := c.listUC.ListProducts(r.Context())
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	if inventory.Products == nil {
		inventory.Products = []dto.ProductDTO{}
	}

	c.writeJSON(w, http.StatusOK, inventory)
}

func (c *FulfillmentController) SellProduct(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	productID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || productID <= 0 {
		c.writeValidationError(w, "invalid product id", apperrors.ValidationDetail{
			Field:   "id",
			Message: "id must be a positive integer",
		})
		return
	}

	logger.Info("selling product", zap.Int64("productId", productID))

	if err := c.sellUC.SellProduct(r.Context(), productID); err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (c *FulfillmentController) SellArticles(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	articleID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || articleID <= 0 {
		c.writeValidationError(w, "invalid article id", apperrors.ValidationDetail{
			Field:   "id",
			Message: "id must be a positive integer",
		})
		return
	}

	var req dto.SellArticlesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if req.Amount <= 0 {
		c.writeValidationError(w, "invalid amount", apperrors.ValidationDetail{
			Field:   "amount",
			Message: "amount must be a positive integer",
		})
		return
	}

	logger.Info("selling articles", zap.Int64("articleId", articleID), zap.Int("amount", req.Amount))

	if err := c.sellUC.SellArticles(r.Context(), articleID, req.Amount); err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (c *FulfillmentController) handleError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeErrorResponse(w, traceID, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}

	if _, ok := apperrors.IsInsufficientStockError(err); ok {
		c.writeErrorResponse(w, traceID, http.StatusConflict, "INSUFFICIENT_STOCK", err.Error())
		return
	}

	if _, ok := apperrors.IsDeadlockError(err); ok {
		c.writeErrorResponse(w, traceID, http.StatusConflict, "DEADLOCK", err.Error())
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	c.writeErrorResponse(w, traceID, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
}

func (c *FulfillmentController) writeErrorResponse(w http.ResponseWriter, traceID string, status int, code, message string) {
	c.writeJSON(w, status, dto.ErrorResponse{
		TraceID:   traceID,
		Status:    status,
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

type validationErrorResponse struct {
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

func (c *FulfillmentController) writeValidationError(w http.ResponseWriter, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *FulfillmentController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
