package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	articlectrl "warehouse/internal/article/controller"
	catalogctrl "warehouse/internal/catalog/controller"
	fulfillmentctrl "warehouse/internal/fulfillment/controller"
)

func NewRouter(
	articlesCtrl *articlectrl.ArticlesController,
	productsCtrl *catalogctrl.ProductsController,
	fulfillmentCtrl *fulfillmentctrl.FulfillmentController,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Route("/articles", func(r chi.Router) {
		r.Post("/", articlesCtrl.AddArticle)
		r.Get("/", articlesCtrl.ListArticles)
		r.Post("/file", articlesCtrl.UploadArticles)
		r.Post("/{id}/sell", fulfillmentCtrl.SellArticles)
	})

	r.Route("/products", func(r chi.Router) {
		r.Post("/", productsCtrl.AddProduct)
		r.Get("/", fulfillmentCtrl.ListProducts)
		r.Post("/file", productsCtrl.UploadProducts)
		r.Post("/{id}/sell", fulfillmentCtrl.SellProduct)
	})

	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("request handled",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
