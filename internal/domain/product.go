package domain

// Product is a sellable good assembled from articles. Availability is derived
// from article stock at read time and is never stored.
type Product struct {
	ID   int64
	Name string
}

// Component binds a product to one of its articles with the amount of that
// article needed to assemble a single unit.
type Component struct {
	ProductID int64
	ArticleID int64
	Amount    int
}

// ProductStock is a product together with its computed availability.
type ProductStock struct {
	Product     Product
	Components  []Component
	Stock       int
	IsAvailable bool
}
