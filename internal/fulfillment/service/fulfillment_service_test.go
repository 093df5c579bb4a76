package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"warehouse/internal/domain"
	apperrors "warehouse/internal/errors"
)

// Helper to create FulfillmentService with test defaults
func newTestFulfillmentService(
	txMgr TransactionManager,
	articleRepo ArticleRepository,
	componentRepo ComponentRepository,
	productRepo ProductRepository,
) *FulfillmentService {
	return NewFulfillmentService(
		txMgr,
		articleRepo,
		componentRepo,
		productRepo,
		zap.NewNop(),
		5*time.Second,
	)
}

// Mock implementations
type mockTransactionManager struct {
	BeginTxFunc func(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

func (m *mockTransactionManager) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return m.BeginTxFunc(ctx, opts)
}

type mockArticleRepository struct {
	FindByIDForUpdateFunc func(ctx context.Context, tx *sql.Tx, id int64) (*domain.Article, error)
	DecrementStockFunc    func(ctx context.Context, tx *sql.Tx, id int64, quantity int) error
	FindAllFunc           func(ctx context.Context) ([]domain.Article, error)
}

func (m *mockArticleRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Article, error) {
	return m.FindByIDForUpdateFunc(ctx, tx, id)
}

func (m *mockArticleRepository) DecrementStock(ctx context.Context, tx *sql.Tx, id int64, quantity int) error {
	return m.DecrementStockFunc(ctx, tx, id, quantity)
}

func (m *mockArticleRepository) FindAll(ctx context.Context) ([]domain.Article, error) {
	return m.FindAllFunc(ctx)
}

type mockComponentRepository struct {
	FindByProductIDFunc func(ctx context.Context, productID int64) ([]domain.Component, error)
	FindAllFunc         func(ctx context.Context) ([]domain.Component, error)
}

func (m *mockComponentRepository) FindByProductID(ctx context.Context, productID int64) ([]domain.Component, error) {
	return m.FindByProductIDFunc(ctx, productID)
}

func (m *mockComponentRepository) FindAll(ctx context.Context) ([]domain.Component, error) {
	return m.FindAllFunc(ctx)
}

type mockProductRepository struct {
	FindAllFunc func(ctx context.Context) ([]domain.Product, error)
}

func (m *mockProductRepository) FindAll(ctx context.Context) ([]domain.Product, error) {
	return m.FindAllFunc(ctx)
}

// Availability computation tests

func TestAvailability_FloorMinLaw(t *testing.T) {
	components := []domain.Component{
		{ProductID: 1, ArticleID: 1, Amount: 4},
		{ProductID: 1, ArticleID: 2, Amount: 20},
	}
	stocks := map[int64]int{1: 20, 2: 20}

	got, err := availability(components, stocks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// min(20/4, 20/20) = min(5, 1) = 1
	if got != 1 {
		t.Errorf("expected availability 1, got %d", got)
	}
}

func TestAvailability_FloorDivision(t *testing.T) {
	components := []domain.Component{
		{ProductID: 1, ArticleID: 1, Amount: 3},
	}
	stocks := map[int64]int{1: 10}

	got, err := availability(components, stocks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != 3 {
		t.Errorf("expected availability 3, got %d", got)
	}
}

func TestAvailability_ZeroStock(t *testing.T) {
	components := []domain.Component{
		{ProductID: 1, ArticleID: 1, Amount: 1},
		{ProductID: 1, ArticleID: 2, Amount: 1},
	}
	stocks := map[int64]int{1: 0, 2: 50}

	got, err := availability(components, stocks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != 0 {
		t.Errorf("expected availability 0, got %d", got)
	}
}

func TestAvailability_MissingArticleIsNotFound(t *testing.T) {
	components := []domain.Component{
		{ProductID: 1, ArticleID: 1, Amount: 1},
		{ProductID: 1, ArticleID: 99, Amount: 1},
	}
	stocks := map[int64]int{1: 10}

	_, err := availability(components, stocks)
	if err == nil {
		t.Fatalf("expected error, got nil")
	}

	if _, ok := apperrors.IsNotFoundError(err); !ok {
		t.Errorf("expected NotFoundError, got %T", err)
	}
}

func TestAvailability_ShortCircuitSkipsRemainingComponents(t *testing.T) {
	// The second component's article is missing, but the first already pins
	// the minimum at 0, so the scan stops before reaching it.
	components := []domain.Component{
		{ProductID: 1, ArticleID: 1, Amount: 5},
		{ProductID: 1, ArticleID: 99, Amount: 1},
	}
	stocks := map[int64]int{1: 2}

	got, err := availability(components, stocks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != 0 {
		t.Errorf("expected availability 0, got %d", got)
	}
}

// ListProductsWithAvailability tests

func TestListProductsWithAvailability_ComputesDerivedFields(t *testing.T) {
	ctx := context.Background()

	productRepo := &mockProductRepository{
		FindAllFunc: func(ctx context.Context) ([]domain.Product, error) {
			return []domain.Product{
				{ID: 1, Name: "Marius Stool"},
				{ID: 2, Name: "Billy Bookshelf"},
			}, nil
		},
	}
	componentRepo := &mockComponentRepository{
		FindAllFunc: func(ctx context.Context) ([]domain.Component, error) {
			return []domain.Component{
				{ProductID: 1, ArticleID: 1, Amount: 4},
				{ProductID: 1, ArticleID: 2, Amount: 20},
				{ProductID: 2, ArticleID: 3, Amount: 10},
			}, nil
		},
	}
	articleRepo := &mockArticleRepository{
		FindAllFunc: func(ctx context.Context) ([]domain.Article, error) {
			return []domain.Article{
				{ID: 1, Name: "leg", Stock: 20},
				{ID: 2, Name: "screw", Stock: 20},
				{ID: 3, Name: "shelf", Stock: 3},
			}, nil
		},
	}

	svc := newTestFulfillmentService(&mockTransactionManager{}, articleRepo, componentRepo, productRepo)

	stocks, err := svc.ListProductsWithAvailability(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(stocks) != 2 {
		t.Fatalf("expected 2 products, got %d", len(stocks))
	}

	if stocks[0].Stock != 1 || !stocks[0].IsAvailable {
		t.Errorf("expected stool stock 1 and available, got stock=%d available=%v",
			stocks[0].Stock, stocks[0].IsAvailable)
	}

	// 3 shelves with 10 needed per unit: zero units sellable.
	if stocks[1].Stock != 0 || stocks[1].IsAvailable {
		t.Errorf("expected bookshelf stock 0 and unavailable, got stock=%d available=%v",
			stocks[1].Stock, stocks[1].IsAvailable)
	}
}

func TestListProductsWithAvailability_DanglingComponentFails(t *testing.T) {
	ctx := context.Background()

	productRepo := &mockProductRepository{
		FindAllFunc: func(ctx context.Context) ([]domain.Product, error) {
			return []domain.Product{{ID: 1, Name: "Marius Stool"}}, nil
		},
	}
	componentRepo := &mockComponentRepository{
		FindAllFunc: func(ctx context.Context) ([]domain.Component, error) {
			return []domain.Component{{ProductID: 1, ArticleID: 42, Amount: 1}}, nil
		},
	}
	articleRepo := &mockArticleRepository{
		FindAllFunc: func(ctx context.Context) ([]domain.Article, error) {
			return nil, nil
		},
	}

	svc := newTestFulfillmentService(&mockTransactionManager{}, articleRepo, componentRepo, productRepo)

	_, err := svc.ListProductsWithAvailability(ctx)
	if err == nil {
		t.Fatalf("expected error, got nil")
	}

	if _, ok := apperrors.IsNotFoundError(err); !ok {
		t.Errorf("expected NotFoundError, got %T", err)
	}
}

func TestListProductsWithAvailability_EmptyCatalog(t *testing.T) {
	ctx := context.Background()

	productRepo := &mockProductRepository{
		FindAllFunc: func(ctx context.Context) ([]domain.Product, error) {
			return nil, nil
		},
	}

	svc := newTestFulfillmentService(&mockTransactionManager{}, &mockArticleRepository{}, &mockComponentRepository{}, productRepo)

	stocks, err := svc.ListProductsWithAvailability(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stocks) != 0 {
		t.Errorf("expected no products, got %d", len(stocks))
	}
}

// SellProduct tests

func TestSellProduct_NotFoundWhenNoComponents(t *testing.T) {
	ctx := context.Background()

	componentRepo := &mockComponentRepository{
		FindByProductIDFunc: func(ctx context.Context, productID int64) ([]domain.Component, error) {
			return nil, nil
		},
	}

	svc := newTestFulfillmentService(&mockTransactionManager{}, &mockArticleRepository{}, componentRepo, &mockProductRepository{})

	err := svc.SellProduct(ctx, 77)
	if err == nil {
		t.Fatalf("expected error, got nil")
	}

	if _, ok := apperrors.IsNotFoundError(err); !ok {
		t.Errorf("expected NotFoundError, got %T", err)
	}
}

func TestSellProduct_ComponentLookupErrorPropagates(t *testing.T) {
	ctx := context.Background()

	componentRepo := &mockComponentRepository{
		FindByProductIDFunc: func(ctx context.Context, productID int64) ([]domain.Component, error) {
			return nil, errors.New("query failed")
		},
	}

	svc := newTestFulfillmentService(&mockTransactionManager{}, &mockArticleRepository{}, componentRepo, &mockProductRepository{})

	err := svc.SellProduct(ctx, 1)
	if err == nil || err.Error() != "query failed" {
		t.Errorf("expected query failed error, got %v", err)
	}
}

func TestSellProduct_BeginTxError(t *testing.T) {
	ctx := context.Background()

	componentRepo := &mockComponentRepository{
		FindByProductIDFunc: func(ctx context.Context, productID int64) ([]domain.Component, error) {
			return []domain.Component{{ProductID: 1, ArticleID: 1, Amount: 1}}, nil
		},
	}
	txMgr := &mockTransactionManager{
		BeginTxFunc: func(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
			return nil, errors.New("connection lost")
		},
	}

	svc := newTestFulfillmentService(txMgr, &mockArticleRepository{}, componentRepo, &mockProductRepository{})

	err := svc.SellProduct(ctx, 1)
	if err == nil || err.Error() != "connection lost" {
		t.Errorf("expected connection lost error, got %v", err)
	}
}

func TestSellArticles_BeginTxError(t *testing.T) {
	ctx := context.Background()

	txMgr := &mockTransactionManager{
		BeginTxFunc: func(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
			return nil, errors.New("connection lost")
		},
	}

	svc := newTestFulfillmentService(txMgr, &mockArticleRepository{}, &mockComponentRepository{}, &mockProductRepository{})

	err := svc.SellArticles(ctx, 1, 1)
	if err == nil || err.Error() != "connection lost" {
		t.Errorf("expected connection lost error, got %v", err)
	}
}
