package service

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"warehouse/internal/domain"
	apperrors "warehouse/internal/errors"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type ArticleRepository interface {
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Article, error)
	DecrementStock(ctx context.Context, tx *sql.Tx, id int64, quantity int) error
	FindAll(ctx context.Context) ([]domain.Article, error)
}

type ComponentRepository interface {
	FindByProductID(ctx context.Context, productID int64) ([]domain.Component, error)
	FindAll(ctx context.Context) ([]domain.Component, error)
}

type ProductRepository interface {
	FindAll(ctx context.Context) ([]domain.Product, error)
}

// FulfillmentService keeps article stock and product availability mutually
// consistent. It is the only writer of article stock.
type FulfillmentService struct {
	db            TransactionManager
	articleRepo   ArticleRepository
	componentRepo ComponentRepository
	productRepo   ProductRepository
	logger        *zap.Logger
	txTimeout     time.Duration
}

func NewFulfillmentService(
	db TransactionManager,
	articleRepo ArticleRepository,
	componentRepo ComponentRepository,
	productRepo ProductRepository,
	logger *zap.Logger,
	txTimeout time.Duration,
) *FulfillmentService {
	return &FulfillmentService{
		db:            db,
		articleRepo:   articleRepo,
		componentRepo: componentRepo,
		productRepo:   productRepo,
		logger:        logger,
		txTimeout:     txTimeout,
	}
}

// ListProductsWithAvailability recomputes availability from current article
// stock on every call. Results are never cached: any stock mutation would
// invalidate them for every product sharing the article.
func (s *FulfillmentService) ListProductsWithAvailability(ctx context.Context) ([]domain.ProductStock, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, nil
	}

	components, err := s.componentRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	byProduct := make(map[int64][]domain.Component)
	for _, c := range components {
		byProduct[c.ProductID] = append(byProduct[c.ProductID], c)
	}

	articles, err := s.articleRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	stocks := make(map[int64]int, len(articles))
	for _, a := range articles {
		stocks[a.ID] = a.Stock
	}

	result := make([]domain.ProductStock, 0, len(products))
	for _, p := range products {
		comps := byProduct[p.ID]
		if len(comps) == 0 {
			continue
		}

		available, err := availability(comps, stocks)
		if err != nil {
			return nil, err
		}

		result = append(result, domain.ProductStock{
			Product:     p,
			Components:  comps,
			Stock:       available,
			IsAvailable: available > 0,
		})
	}

	return result, nil
}

// availability is the floor-min over components of stock/amount. A component
// whose article is missing from stocks means the stores disagree, which the
// engine reports as NotFound rather than guessing.
func availability(components []domain.Component, stocks map[int64]int) (int, error) {
	minAvailability := math.MaxInt
	for _, c := range components {
		stock, ok := stocks[c.ArticleID]
		if !ok {
			return 0, apperrors.NewNotFoundError("failed to retrieve products information")
		}

		perArticle := stock / c.Amount
		if perArticle < minAvailability {
			minAvailability = perArticle
		}
		if minAvailability == 0 {
			break
		}
	}
	return minAvailability, nil
}

// SellProduct decrements the stock of every component article needed for one
// unit, all inside a single transaction. A failed sale leaves every stock
// exactly as it was.
func (s *FulfillmentService) SellProduct(ctx context.Context, productID int64) error {
	components, err := s.componentRepo.FindByProductID(ctx, productID)
	if err != nil {
		return err
	}
	if len(components) == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("product with id %d not found", productID))
	}

	// Lock article rows in ascending id order so concurrent sales over
	// overlapping articles cannot deadlock each other.
	sort.Slice(components, func(i, j int) bool { return components[i].ArticleID < components[j].ArticleID })

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return err
	}
	// MySQL ignores rollback if already committed.
	defer tx.Rollback()

	for _, component := range components {
		article, err := s.articleRepo.FindByIDForUpdate(txCtx, tx, component.ArticleID)
		if err != nil {
			return err
		}

		if article.Stock < component.Amount {
			return apperrors.NewInsufficientStockError(
				fmt.Sprintf("product with id %d has insufficient stock", productID))
		}

		if err := s.articleRepo.DecrementStock(txCtx, tx, component.ArticleID, component.Amount); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit transaction", zap.Int64("productId", productID), zap.Error(err))
		return err
	}

	s.logger.Info("product sold", zap.Int64("productId", productID), zap.Int("componentCount", len(components)))
	return nil
}

// SellArticles is the single-article sale primitive: one atomic
// check-then-decrement.
func (s *FulfillmentService) SellArticles(ctx context.Context, articleID int64, quantity int) error {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	article, err := s.articleRepo.FindByIDForUpdate(txCtx, tx, articleID)
	if err != nil {
		return err
	}

	if article.Stock < quantity {
		return apperrors.NewInsufficientStockError(fmt.Sprintf(
			"article with id %d has insufficient stock (requested: %d, available: %d)",
			articleID, quantity, article.Stock))
	}

	if err := s.articleRepo.DecrementStock(txCtx, tx, articleID, quantity); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit transaction", zap.Int64("articleId", articleID), zap.Error(err))
		return err
	}

	s.logger.Info("articles sold", zap.Int64("articleId", articleID), zap.Int("quantity", quantity))
	return nil
}
