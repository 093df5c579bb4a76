package repository

import (
	"context"
	"database/sql"
	"fmt"

	"warehouse/internal/domain"
)

type MySQLComponentRepository struct {
	db *sql.DB
}

func NewMySQLComponentRepository(db *sql.DB) *MySQLComponentRepository {
	return &MySQLComponentRepository{db: db}
}

func (r *MySQLComponentRepository) Insert(ctx context.Context, tx *sql.Tx, component domain.Component) error {
	query := `INSERT INTO Component (productId, articleId, amount) VALUES (?, ?, ?)`

	if _, err := tx.ExecContext(ctx, query, component.ProductID, component.ArticleID, component.Amount); err != nil {
		return fmt.Errorf("inserting component: %w", err)
	}

	return nil
}

func (r *MySQLComponentRepository) FindByProductID(ctx context.Context, productID int64) ([]domain.Component, error) {
	query := `SELECT productId, articleId, amount FROM Component WHERE productId = ?`

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("querying components by product id: %w", err)
	}
	defer rows.Close()

	return scanComponents(rows)
}

func (r *MySQLComponentRepository) FindAll(ctx context.Context) ([]domain.Component, error) {
	query := `SELECT productId, articleId, amount FROM Component`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying components: %w", err)
	}
	defer rows.Close()

	return scanComponents(rows)
}

func scanComponents(rows *sql.Rows) ([]domain.Component, error) {
	var components []domain.Component
	for rows.Next() {
		var c domain.Component
		if err := rows.Scan(&c.ProductID, &c.ArticleID, &c.Amount); err != nil {
			return nil, fmt.Errorf("scanning component row: %w", err)
		}
		components = append(components, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating component rows: %w", err)
	}

	return components, nil
}
