package dto

type ContainArticleDTO struct {
	ArtID    int64 `json:"art_id"`
	AmountOf int   `json:"amount_of"`
}

type ProductInfoDTO struct {
	Name            string              `json:"name"`
	ContainArticles []ContainArticleDTO `json:"contain_articles"`
}

type ProductsInfoDTO struct {
	Products []ProductInfoDTO `json:"products"`
}

type ProductDTO struct {
	ID              int64               `json:"id"`
	Name            string              `json:"name"`
	IsAvailable     bool                `json:"is_available"`
	Stock           int                 `json:"stock"`
	ContainArticles []ContainArticleDTO `json:"contain_articles"`
}

type ProductInventoryDTO struct {
	Products []ProductDTO `json:"products"`
}
