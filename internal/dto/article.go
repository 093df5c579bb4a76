package dto

type ArticleDTO struct {
	ArtID int64  `json:"art_id"`
	Name  string `json:"name"`
	Stock int    `json:"stock"`
}

type ArticleInventoryDTO struct {
	Inventory []ArticleDTO `json:"inventory"`
}
