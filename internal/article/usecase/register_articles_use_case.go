package usecase

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"warehouse/internal/domain"
	apperrors "warehouse/internal/errors"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type ArticleRepository interface {
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Article, error)
	Insert(ctx context.Context, tx *sql.Tx, article domain.Article) error
	AddStock(ctx context.Context, tx *sql.Tx, id int64, quantity int) error
}

type RegisterArticlesUseCase struct {
	db          TransactionManager
	articleRepo ArticleRepository
	logger      *zap.Logger
}

func NewRegisterArticlesUseCase(
	db TransactionManager,
	articleRepo ArticleRepository,
	logger *zap.Logger,
) *RegisterArticlesUseCase {
	return &RegisterArticlesUseCase{
		db:          db,
		articleRepo: articleRepo,
		logger:      logger,
	}
}

func (uc *RegisterArticlesUseCase) RegisterArticle(ctx context.Context, article domain.Article) error {
	return uc.RegisterArticles(ctx, []domain.Article{article})
}

// RegisterArticles registers every article in one transaction. A Conflict on
// any entry rolls the whole batch back.
func (uc *RegisterArticlesUseCase) RegisterArticles(ctx context.Context, articles []domain.Article) error {
	tx, err := uc.db.BeginTx(ctx, nil)
	if err != nil {
		uc.logger.Error("failed to begin transaction", zap.Error(err))
		return err
	}
	// MySQL ignores rollback if already committed.
	defer tx.Rollback()

	for _, article := range articles {
		if err := uc.registerOne(ctx, tx, article); err != nil {
			uc.logger.Warn("article registration failed",
				zap.Int64("articleId", article.ID), zap.Error(err))
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		uc.logger.Error("failed to commit transaction", zap.Error(err))
		return err
	}

	uc.logger.Info("articles registered", zap.Int("count", len(articles)))
	return nil
}

func (uc *RegisterArticlesUseCase) registerOne(ctx context.Context, tx *sql.Tx, article domain.Article) error {
	existing, err := uc.articleRepo.FindByIDForUpdate(ctx, tx, article.ID)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return uc.articleRepo.Insert(ctx, tx, article)
		}
		return err
	}

	if existing.Name != article.Name {
		return apperrors.NewConflictError(
			fmt.Sprintf("article with id %d already exists in the warehouse", article.ID))
	}

	return uc.articleRepo.AddStock(ctx, tx, article.ID, article.Stock)
}
