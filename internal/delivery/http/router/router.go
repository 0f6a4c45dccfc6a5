package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/user/price-scraper/internal/delivery/http/handler"
	"github.com/user/price-scraper/internal/delivery/http/middleware"
)

// requestTimeout leaves room for a live scrape plus its courtesy wait.
const requestTimeout = 60 * time.Second

func New(h *handler.Handler, logger *zap.Logger, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(allowedOrigins))
	r.Use(middleware.Metrics)
	r.Use(chimw.Timeout(requestTimeout))

	r.Get("/", h.HandleRoot)
	r.Get("/health", h.HandleHealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.HandleListProducts)
		r.Post("/scrape", h.HandleScrape)
		r.Get("/{id}", h.HandleGetProduct)
		r.Delete("/{id}", h.HandleDeleteProduct)
	})

	return r
}
