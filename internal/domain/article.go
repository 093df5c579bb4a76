package domain

// Article is a raw inventory unit. IDs are caller-supplied, not generated.
type Article struct {
	ID    int64
	Name  string
	Stock int
}
