package repository

import (
	"context"
	"database/sql"
	"fmt"

	"warehouse/internal/domain"
	"warehouse/internal/errors"
)

type MySQLProductRepository struct {
	db *sql.DB
}

func NewMySQLProductRepository(db *sql.DB) *MySQLProductRepository {
	return &MySQLProductRepository{db: db}
}

func (r *MySQLProductRepository) FindByName(ctx context.Context, tx *sql.Tx, name string) (*domain.Product, error) {
	query := `SELECT id, name FROM Product WHERE name = ?`

	var product domain.Product
	err := tx.QueryRowContext(ctx, query, name).Scan(&product.ID, &product.Name)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("product with name %s not found", name))
	}
	if err != nil {
		return nil, fmt.Errorf("querying product by name: %w", err)
	}

	return &product, nil
}

func (r *MySQLProductRepository) Insert(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	query := `INSERT INTO Product (name) VALUES (?)`

	result, err := tx.ExecContext(ctx, query, name)
	if err != nil {
		return 0, fmt.Errorf("inserting product: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return lastInsertID, nil
}

func (r *MySQLProductRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT id, name FROM Product`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("scanning product row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product rows: %w", err)
	}

	return products, nil
}
