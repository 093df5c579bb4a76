package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"warehouse/internal/domain"
	"warehouse/internal/dto"
	apperrors "warehouse/internal/errors"
)

const maxUploadBytes = 10 << 20

type RegisterUseCase interface {
	RegisterArticle(ctx context.Context, article domain.Article) error
	RegisterArticles(ctx context.Context, articles []domain.Article) error
}

type ListUseCase interface {
	ListArticles(ctx context.Context) ([]domain.Article, error)
}

type ArticlesController struct {
	registerUC RegisterUseCase
	listUC     ListUseCase
	logger     *zap.Logger
}

func NewArticlesController(registerUC RegisterUseCase, listUC ListUseCase, logger *zap.Logger) *ArticlesController {
	return &ArticlesController{
		registerUC: registerUC,
		listUC:     listUC,
		logger:     logger,
	}
}

func (c *ArticlesController) AddArticle(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.ArticleDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if err := validateArticles([]dto.ArticleDTO{req}, ""); err != nil {
		ve, _ := apperrors.IsValidationError(err)
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}

	logger.Info("registering article", zap.Int64("artId", req.ArtID))

	article := domain.Article{ID: req.ArtID, Name: req.Name, Stock: req.Stock}
	if err := c.registerUC.RegisterArticle(r.Context(), article); err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (c *ArticlesController) ListArticles(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	articles, err := c.listUC.ListArticles(r.Context())
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	inventory := make([]dto.ArticleDTO, len(articles))
	for i, a := range articles {
		inventory[i] = dto.ArticleDTO{ArtID: a.ID, Name: a.Name, Stock: a.Stock}
	}

	c.writeJSON(w, http.StatusOK, dto.ArticleInventoryDTO{Inventory: inventory})
}

// UploadArticles ingests a multipart file holding an article inventory payload
// and registers it as one batch.
func (c *ArticlesController) UploadArticles(w http.ResponseWriter, r *http.Request) {
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

	var payload dto.ArticleInventoryDTO
	if err := json.NewDecoder(file).Decode(&payload); err != nil {
		logger.Warn("invalid inventory file", zap.Error(err))
		c.writeValidationError(w, "invalid inventory file", apperrors.ValidationDetail{
			Field:   "file",
			Message: "file must contain a valid inventory JSON payload",
		})
		return
	}

	if err := validateArticles(payload.Inventory, "inventory"); err != nil {
		ve, _ := apperrors.IsValidationError(err)
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}

	logger.Info("uploading articles", zap.Int("count", len(payload.Inventory)))

	articles := make([]domain.Article, len(payload.Inventory))
	for i, a := range payload.Inventory {
		articles[i] = domain.Article{ID: a.ArtID, Name: a.Name, Stock: a.Stock}
	}

	if err := c.registerUC.RegisterArticles(r.Context(), articles); err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func validateArticles(articles []dto.ArticleDTO, prefix string) error {
	var details []apperrors.ValidationDetail

	if prefix != "" && len(articles) == 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   prefix,
			Message: "inventory must not be empty",
		})
	}

	for idx, a := range articles {
		field := func(name string) string {
			if prefix == "" {
				return name
			}
			return prefix + "[" + strconv.Itoa(idx) + "]." + name
		}

		if a.ArtID <= 0 {
			details = append(details, apperrors.ValidationDetail{
				Field:   field("art_id"),
				Message: "art_id must be a positive integer",
			})
		}
		if a.Name == "" {
			details = append(details, apperrors.ValidationDetail{
				Field:   field("name"),
				Message: "name is required",
			})
		}
		if a.Stock < 0 {
			details = append(details, apperrors.ValidationDetail{
				Field:   field("stock"),
				Message: "stock must be non-negative",
			})
		}
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}

	return nil
}

func (c *ArticlesController) handleError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
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

func (c *ArticlesController) writeErrorResponse(w http.ResponseWriter, traceID string, status int, code, message string) {
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

func (c *ArticlesController) writeValidationError(w http.ResponseWriter, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *ArticlesController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
