package repository

import (
	"context"
	"database/sql"
	"fmt"

	"warehouse/internal/domain"
	"warehouse/internal/errors"
)

type MySQLArticleRepository struct {
	db *sql.DB
}

func NewMySQLArticleRepository(db *sql.DB) *MySQLArticleRepository {
	return &MySQLArticleRepository{db: db}
}

func (r *MySQLArticleRepository) FindByID(ctx context.Context, id int64) (*domain.Article, error) {
	query := `SELECT id, name, stock FROM Article WHERE id = ?`

	var article domain.Article
	err := r.db.QueryRowContext(ctx, query, id).Scan(&article.ID, &article.Name, &article.Stock)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("article with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying article by id: %w", err)
	}

	return &article, nil
}

// FindByIDForUpdate locks the article row for the duration of tx.
func (r *MySQLArticleRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Article, error) {
	query := `SELECT id, name, stock FROM Article WHERE id = ? FOR UPDATE`

	var article domain.Article
	err := tx.QueryRowContext(ctx, query, id).Scan(&article.ID, &article.Name, &article.Stock)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("article with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying article for update: %w", err)
	}

	return &article, nil
}

func (r *MySQLArticleRepository) FindAll(ctx context.Context) ([]domain.Article, error) {
	query := `SELECT id, name, stock FROM Article`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		var a domain.Article
		if err := rows.Scan(&a.ID, &a.Name, &a.Stock); err != nil {
			return nil, fmt.Errorf("scanning article row: %w", err)
		}
		articles = append(articles, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating article rows: %w", err)
	}

	return articles, nil
}

func (r *MySQLArticleRepository) Insert(ctx context.Context, tx *sql.Tx, article domain.Article) error {
	query := `INSERT INTO Article (id, name, stock) VALUES (?, ?, ?)`

	if _, err := tx.ExecContext(ctx, query, article.ID, article.Name, article.Stock); err != nil {
		return fmt.Errorf("inserting article: %w", err)
	}

	return nil
}

func (r *MySQLArticleRepository) AddStock(ctx context.Context, tx *sql.Tx, id int64, quantity int) error {
	query := `UPDATE Article SET stock = stock + ? WHERE id = ?`

	result, err := tx.ExecContext(ctx, query, quantity, id)
	if err != nil {
		return fmt.Errorf("adding article stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("article with id %d not found", id))
	}

	return nil
}

// DecrementStock applies a guarded decrement. The stock >= quantity predicate
// makes a committed negative stock impossible even if a caller skips the
// availability check.
func (r *MySQLArticleRepository) DecrementStock(ctx context.Context, tx *sql.Tx, id int64, quantity int) error {
	query := `UPDATE Article SET stock = stock - ? WHERE id = ? AND stock >= ?`

	result, err := tx.ExecContext(ctx, query, quantity, id, quantity)
	if err != nil {
		return fmt.Errorf("decrementing article stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewInsufficientStockError(fmt.Sprintf("article with id %d has insufficient stock", id))
	}

	return nil
}
