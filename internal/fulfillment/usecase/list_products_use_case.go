package usecase

import (
	"context"

	"warehouse/internal/domain"
	"warehouse/internal/dto"
)

type AvailabilityService interface {
	ListProductsWithAvailability(ctx context.Context) ([]domain.ProductStock, error)
}

type ListProductsUseCase struct {
	fulfillmentSvc AvailabilityService
}

func NewListProductsUseCase(fulfillmentSvc AvailabilityService) *ListProductsUseCase {
	return &ListProductsUseCase{fulfillmentSvc: fulfillmentSvc}
}

func (uc *ListProductsUseCase) ListProducts(ctx context.Context) (*dto.ProductInventoryDTO, error) {
	stocks, err := uc.fulfillmentSvc.ListProductsWithAvailability(ctx)
	if err != nil {
		return nil, err
	}

	products := make([]dto.ProductDTO, len(stocks))
	for i, ps := range stocks {
		containArticles := make([]dto.ContainArticleDTO, len(ps.Components))
		for j, c := range ps.Components {
			containArticles[j] = dto.ContainArticleDTO{ArtID: c.ArticleID, AmountOf: c.Amount}
		}

		products[i] = dto.ProductDTO{
			ID:              ps.Product.ID,
			Name:            ps.Product.Name,
			IsAvailable:     ps.IsAvailable,
			Stock:           ps.Stock,
			ContainArticles: containArticles,
		}
	}

	return &dto.ProductInventoryDTO{Products: products}, nil
}
