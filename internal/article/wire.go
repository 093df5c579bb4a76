package article

import (
	"database/sql"

	"go.uber.org/zap"

	"warehouse/internal/article/controller"
	"warehouse/internal/article/repository"
	"warehouse/internal/article/usecase"
)

func NewModule(db *sql.DB, logger *zap.Logger) *controller.ArticlesController {
	repo := repository.NewMySQLArticleRepository(db)
	registerUC := usecase.NewRegisterArticlesUseCase(db, repo, logger)
	listUC := usecase.NewListArticlesUseCase(repo)
	return controller.NewArticlesController(registerUC, listUC, logger)
}
