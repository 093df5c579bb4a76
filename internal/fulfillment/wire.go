package fulfillment

import (
	"database/sql"

	"go.uber.org/zap"

	articlerepo "warehouse/internal/article/repository"
	catalogrepo "warehouse/internal/catalog/repository"
	"warehouse/internal/config"
	"warehouse/internal/fulfillment/controller"
	"warehouse/internal/fulfillment/service"
	"warehouse/internal/fulfillment/usecase"
)

func NewModule(db *sql.DB, cfg config.WarehouseConfig, logger *zap.Logger) *controller.FulfillmentController {
	articleRepo := articlerepo.NewMySQLArticleRepository(db)
	componentRepo := catalogrepo.NewMySQLComponentRepository(db)
	productRepo := catalogrepo.NewMySQLProductRepository(db)

	fulfillmentSvc := service.NewFulfillmentService(
		db,
		articleRepo,
		componentRepo,
		productRepo,
		logger,
		cfg.SellTxTimeout,
	)

	sellUC := usecase.NewSellProductUseCase(fulfillmentSvc, logger, cfg.MaxRetryAttempts)
	listUC := usecase.NewListProductsUseCase(fulfillmentSvc)

	return controller.NewFulfillmentController(sellUC, listUC, logger)
}
