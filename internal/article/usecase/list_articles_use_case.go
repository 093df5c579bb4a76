package usecase

import (
	"context"

	"warehouse/internal/domain"
)

type ArticleLister interface {
	FindAll(ctx context.Context) ([]domain.Article, error)
}

type ListArticlesUseCase struct {
	articleRepo ArticleLister
}

func NewListArticlesUseCase(articleRepo ArticleLister) *ListArticlesUseCase {
	return &ListArticlesUseCase{articleRepo: articleRepo}
}

func (uc *ListArticlesUseCase) ListArticles(ctx context.Context) ([]domain.Article, error) {
	return uc.articleRepo.FindAll(ctx)
}
