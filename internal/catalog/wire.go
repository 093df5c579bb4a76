package catalog

import (
	"database/sql"

	"go.uber.org/zap"

	articlerepo "warehouse/internal/article/repository"
	"warehouse/internal/catalog/controller"
	"warehouse/internal/catalog/repository"
	"warehouse/internal/catalog/usecase"
)

func NewModule(db *sql.DB, logger *zap.Logger) *controller.ProductsController {
	productRepo := repository.NewMySQLProductRepository(db)
	componentRepo := repository.NewMySQLComponentRepository(db)
	articleRepo := articlerepo.NewMySQLArticleRepository(db)

	registerUC := usecase.NewRegisterProductsUseCase(db, productRepo, componentRepo, articleRepo, logger)
	return controller.NewProductsController(registerUC, logger)
}
