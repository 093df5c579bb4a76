package usecase

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"warehouse/internal/domain"
	apperrors "warehouse/internal/errors"
)

// ProductInfo is a product definition before the catalog assigns it an id.
type ProductInfo struct {
	Name       string
	Components []domain.Component
}

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type ProductRepository interface {
	FindByName(ctx context.Context, tx *sql.Tx, name string) (*domain.Product, error)
	Insert(ctx context.Context, tx *sql.Tx, name string) (int64, error)
}

type ComponentRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, component domain.Component) error
}

type ArticleRepository interface {
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Article, error)
}

type RegisterProductsUseCase struct {
	db            TransactionManager
	productRepo   ProductRepository
	componentRepo ComponentRepository
	articleRepo   ArticleRepository
	logger        *zap.Logger
}

func NewRegisterProductsUseCase(
	db TransactionManager,
	productRepo ProductRepository,
	componentRepo ComponentRepository,
	articleRepo ArticleRepository,
	logger *zap.Logger,
) *RegisterProductsUseCase {
	return &RegisterProductsUseCase{
		db:            db,
		productRepo:   productRepo,
		componentRepo: componentRepo,
		articleRepo:   articleRepo,
		logger:        logger,
	}
}

func (uc *RegisterProductsUseCase) RegisterProduct(ctx context.Context, info ProductInfo) error {
	return uc.RegisterProducts(ctx, []ProductInfo{info})
}

// RegisterProducts registers every product in one transaction. Any failure
// rolls the whole batch back, so a partially defined product can never exist.
func (uc *RegisterProductsUseCase) RegisterProducts(ctx context.Context, infos []ProductInfo) error {
	tx, err := uc.db.BeginTx(ctx, nil)
	if err != nil {
		uc.logger.Error("failed to begin transaction", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	for _, info := range infos {
		if err := uc.registerOne(ctx, tx, info); err != nil {
			uc.logger.Warn("product registration failed",
				zap.String("name", info.Name), zap.Error(err))
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		uc.logger.Error("failed to commit transaction", zap.Error(err))
		return err
	}

	uc.logger.Info("products registered", zap.Int("count", len(infos)))
	return nil
}

func (uc *RegisterProductsUseCase) registerOne(ctx context.Context, tx *sql.Tx, info ProductInfo) error {
	_, err := uc.productRepo.FindByName(ctx, tx, info.Name)
	if err == nil {
		return apperrors.NewConflictError(
			fmt.Sprintf("product with name %s already exists in the warehouse", info.Name))
	}
	if _, ok := apperrors.IsNotFoundError(err); !ok {
		return err
	}

	productID, err := uc.productRepo.Insert(ctx, tx, info.Name)
	if err != nil {
		return err
	}

	// Article rows are taken in ascending id order, matching the sale path.
	components := make([]domain.Component, len(info.Components))
	copy(components, info.Components)
	sort.Slice(components, func(i, j int) bool { return components[i].ArticleID < components[j].ArticleID })

	for _, component := range components {
		if _, err := uc.articleRepo.FindByIDForUpdate(ctx, tx, component.ArticleID); err != nil {
			if _, ok := apperrors.IsNotFoundError(err); ok {
				return apperrors.NewNotFoundError(
					"product contains articles which are not available in the warehouse")
			}
			return err
		}

		component.ProductID = productID
		if err := uc.componentRepo.Insert(ctx, tx, component); err != nil {
			return err
		}
	}

	return nil
}
