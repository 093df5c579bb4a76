package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"warehouse/internal/catalog/usecase"
	"warehouse/internal/domain"
	"warehouse/internal/dto"
	apperrors "warehouse/internal/errors"
)

const maxUploadBytes = 10 << 20

type RegisterUseCase interface {
	RegisterProduct(ctx context.Context, info usecase.ProductInfo) error
	RegisterProducts(ctx context.Context, infos []usecase.ProductInfo) error
}

type ProductsController struct {
	registerUC RegisterUseCase
	logger     *zap.Logger
}

func NewProductsController(registerUC RegisterUseCase, logger *zap.Logger) *ProductsController {
	return &ProductsController{
		registerUC: registerUC,
		logger:     logger,
	}
}

func (c *ProductsController) AddProduct(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.ProductInfoDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if err := validateProducts([]dto.ProductInfoDTO{req}, ""); err != nil {
		ve, _ := apperrors.IsValidationError(err)
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}

	logger.Info("registering product", zap.String("name", req.Name))

	if err := c.registerUC.RegisterProduct(r.Context(), toProductInfo(req)); err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// UploadProducts ingests a multipart file holding a products payload and
// registers it as one batch.
func (c *ProductsController) UploadProducts(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		logger.Warn("invalid multipart form", zap.Error(err))
		c.writeValidationError(w, "invalid multipart form", apperrors.ValidationDetail{
			Field:   "file",
			Message: "request must be a multipart form with a file field",
		})
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		c.writeValidationError(w, "missing file", apperrors.ValidationDetail{
			Field:   "file",
			Message: "file field is required",
		})
		return
	}
	defer file.Close()

	var payload dto.ProductsInfoDTO
	if err := json.NewDecoder(file).Decode(&payload); err != nil {
		logger.Warn("invalid products file", zap.Error(err))
		c.writeValidationError(w, "invalid products file", apperrors.ValidationDetail{
			Field:   "file",
			Message: "file must contain a valid products JSON payload",
		})
		return
	}

	if err := validateProducts(payload.Products, "products"); err != nil {
		ve, _ := apperrors.IsValidationError(err)
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}

	logger.Info("uploading products", zap.Int("count", len(payload.Products)))

	infos := make([]usecase.ProductInfo, len(payload.Products))
	for i, p := range payload.Products {
		infos[i] = toProductInfo(p)
	}

	if err := c.registerUC.RegisterProducts(r.Context(), infos); err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func toProductInfo(p dto.ProductInfoDTO) usecase.ProductInfo {
	components := make([]domain.Component, len(p.ContainArticles))
	for i, ca := range p.ContainArticles {
		components[i] = domain.Component{ArticleID: ca.ArtID, Amount: ca.AmountOf}
	}
	return usecase.ProductInfo{Name: p.Name, Components: components}
}

func validateProducts(products []dto.ProductInfoDTO, prefix string) error {
	var details []apperrors.ValidationDetail

	if prefix != "" && len(products) == 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   prefix,
			Message: "products must not be empty",
		})
	}

	for idx, p := range products {
		field := func(name string) string {
			if prefix == "" {
				return name
			}
			return prefix + "[" + strconv.Itoa(idx) + "]." + name
		}

		if p.Name == "" {
			details = append(details, apperrors.ValidationDetail{
				Field:   field("name"),
				Message: "name is required",
			})
		}

		if len(p.ContainArticles) == 0 {
			details = append(details, apperrors.ValidationDetail{
				Field:   field("contain_articles"),
				Message: "contain_articles must not be empty",
			})
		}

		seen := make(map[int64]bool)
		for i, ca := range p.ContainArticles {
			caField := field("contain_articles[" + strconv.Itoa(i) + "]")

			if ca.ArtID <= 0 {
				details = append(details, apperrors.ValidationDetail{
					Field:   caField + ".art_id",
					Message: "art_id must be a positive integer",
				})
			}
			if seen[ca.ArtID] {
				details = append(details, apperrors.ValidationDetail{
					Field:   caField + ".art_id",
					Message: "art_id must not be duplicated",
				})
			}
			seen[ca.ArtID] = true

			if ca.AmountOf <= 0 {
				details = append(details, apperrors.ValidationDetail{
					Field:   caField + ".amount_of",
					Message: "amount_of must be a positive integer",
				})
			}
		}
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}

	return nil
}

func (c *ProductsController) handleError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeErrorResponse(w, traceID, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}

	if _, ok := apperrors.IsConflictError(err); ok {
		c.writeErrorResponse(w, traceID, http.StatusConflict, "CONFLICT", err.Error())
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	c.writeErrorResponse(w, traceID, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
}

func (c *ProductsController) writeErrorResponse(w http.ResponseWriter, traceID string, status int, code, message string) {
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

func (c *ProductsController) writeValidationError(w http.ResponseWriter, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *ProductsController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
