package usecase

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	articlerepo "warehouse/internal/article/repository"
	"warehouse/internal/catalog/repository"
	"warehouse/internal/domain"
	apperrors "warehouse/internal/errors"
	"warehouse/internal/testutil"
)

// Unit Tests

type mockTransactionManager struct {
	BeginTxFunc func(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

func (m *mockTransactionManager) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return m.BeginTxFunc(ctx, opts)
}

type noopProductRepository struct{}

func (noopProductRepository) FindByName(ctx context.Context, tx *sql.Tx, name string) (*domain.Product, error) {
	return nil, nil
}

func (noopProductRepository) Insert(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	return 0, nil
}

type noopComponentRepository struct{}

func (noopComponentRepository) Insert(ctx context.Context, tx *sql.Tx, component domain.Component) error {
	return nil
}

type noopArticleRepository struct{}

func (noopArticleRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Article, error) {
	return nil, nil
}

func TestRegisterProducts_BeginTxError(t *testing.T) {
	txMgr := &mockTransactionManager{
		BeginTxFunc: func(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
			return nil, errors.New("connection lost")
		},
	}

	uc := NewRegisterProductsUseCase(txMgr, noopProductRepository{}, noopComponentRepository{}, noopArticleRepository{}, zap.NewNop())

	err := uc.RegisterProduct(context.Background(), ProductInfo{Name: "Stool"})
	if err == nil || err.Error() != "connection lost" {
		t.Errorf("expected connection lost error, got %v", err)
	}
}

// Integration Tests

func newIntegrationUseCase(db *sql.DB) *RegisterProductsUseCase {
	return NewRegisterProductsUseCase(
		db,
		repository.NewMySQLProductRepository(db),
		repository.NewMySQLComponentRepository(db),
		articlerepo.NewMySQLArticleRepository(db),
		zap.NewNop(),
	)
}

func seedArticles(t *testing.T, db *sql.DB) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO Article (id, name, stock) VALUES (1, 'leg', 20), (2, 'screw', 40)`)
	require.NoError(t, err)
}

func productCount(t *testing.T, db *sql.DB) int {
	t.Helper()
	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM Product`).Scan(&count))
	return count
}

func TestRegisterProduct_Success(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	seedArticles(t, db)
	uc := newIntegrationUseCase(db)

	err := uc.RegisterProduct(context.Background(), ProductInfo{
		Name: "Stool",
		Components: []domain.Component{
			{ArticleID: 1, Amount: 4},
			{ArticleID: 2, Amount: 8},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, productCount(t, db))

	var componentCount int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM Component`).Scan(&componentCount))
	assert.Equal(t, 2, componentCount)
}

func TestRegisterProduct_ConflictOnDuplicateName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	seedArticles(t, db)
	uc := newIntegrationUseCase(db)
	ctx := context.Background()

	info := ProductInfo{
		Name:       "Stool",
		Components: []domain.Component{{ArticleID: 1, Amount: 4}},
	}

	require.NoError(t, uc.RegisterProduct(ctx, info))

	err := uc.RegisterProduct(ctx, info)
	require.Error(t, err)

	ce, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)
	assert.NotNil(t, ce)
	assert.Equal(t, 1, productCount(t, db))
}

func TestRegisterProduct_MissingArticleLeavesNoProduct(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	seedArticles(t, db)
	uc := newIntegrationUseCase(db)

	err := uc.RegisterProduct(context.Background(), ProductInfo{
		Name: "Ghost Chair",
		Components: []domain.Component{
			{ArticleID: 1, Amount: 2},
			{ArticleID: 999, Amount: 1},
		},
	})
	require.Error(t, err)

	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)

	// All-or-nothing: no product record may remain.
	assert.Equal(t, 0, productCount(t, db))
}

func TestRegisterProducts_BatchAllOrNothing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	seedArticles(t, db)
	uc := newIntegrationUseCase(db)

	err := uc.RegisterProducts(context.Background(), []ProductInfo{
		{Name: "Stool", Components: []domain.Component{{ArticleID: 1, Amount: 4}}},
		{Name: "Ghost Chair", Components: []domain.Component{{ArticleID: 999, Amount: 1}}},
	})
	require.Error(t, err)

	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
	assert.Equal(t, 0, productCount(t, db))
}

func TestRegisterProducts_BatchSuccess(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	seedArticles(t, db)
	uc := newIntegrationUseCase(db)

	err := uc.RegisterProducts(context.Background(), []ProductInfo{
		{Name: "Stool", Components: []domain.Component{{ArticleID: 1, Amount: 4}}},
		{Name: "Table", Components: []domain.Component{{ArticleID: 1, Amount: 4}, {ArticleID: 2, Amount: 16}}},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, productCount(t, db))
}
