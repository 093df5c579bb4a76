package dto

type SellArticlesRequest struct {
	Amount int `json:"amount"`
}
