package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dvalenzuela/retrade-backend/api/controllers"
	"github.com/dvalenzuela/retrade-backend/api/middleware"
	"github.com/dvalenzuela/retrade-backend/internal/catalog"
	"github.com/dvalenzuela/retrade-backend/internal/orders"
	"github.com/dvalenzuela/retrade-backend/internal/quotecart"
	"github.com/dvalenzuela/retrade-backend/pkg/config"
	"github.com/dvalenzuela/retrade-backend/pkg/db"
	"github.com/dvalenzuela/retrade-backend/pkg/logger"
	"github.com/dvalenzuela/retrade-backend/pkg/redis"
)

// Deps bundles everything the router needs wired in.
type Deps struct {
	Config  *config.Config
	Logger  *logger.Logger
	DB      db.Pinger
	Redis   *redis.Client
	Carts   *quotecart.Manager
	Catalog *catalog.Service
	Orders  *orders.Service
	Metrics prometheus.Gatherer
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORS.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.SessionHeader, "X-Request-Id"},
			ExposedHeaders:   []string{middleware.SessionHeader, "X-Request-Id"},
			AllowCredentials: false,
			MaxAge:           300,
		}),
	)

	submitPolicy := middleware.NewSubmitRateLimitPolicy(
		"submit",
		cfg.RateLimit.SubmitWindow,
		cfg.RateLimit.SubmitLimit,
		cfg.RateLimit.SubmitIPLimit,
	)
	// a nil *redis.Client must not reach the limiter as a non-nil interface
	submitLimit := func(next http.Handler) http.Handler { return next }
	if deps.Redis != nil {
		submitLimit = middleware.SubmitRateLimit(submitPolicy, deps.Redis, logg)
	}

	ready := controllers.ReadyDeps(deps.DB, nil)
	if deps.Redis != nil {
		ready = controllers.ReadyDeps(deps.DB, deps.Redis)
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, ready))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/categories", controllers.CatalogCategories(deps.Catalog, logg))
			r.Get("/brands", controllers.CatalogBrands(deps.Catalog, logg))
			r.Get("/conditions", controllers.CatalogConditions(deps.Catalog, logg))
			r.Get("/models", controllers.CatalogModels(deps.Catalog, logg))
			r.Get("/models/{modelId}", controllers.CatalogModelDetail(deps.Catalog, logg))
			r.Post("/quote", controllers.CatalogQuotePreview(deps.Catalog, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(deps.Carts, logg))
				r.Post("/items", controllers.CartAddItem(deps.Carts, deps.Catalog, logg))
				r.Delete("/items/{itemId}", controllers.CartRemoveItem(deps.Carts, logg))
				r.Delete("/", controllers.CartClear(deps.Carts, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.With(submitLimit).Post("/", controllers.OrderSubmit(deps.Orders, logg))
				r.Get("/track", controllers.OrderTrack(deps.Orders, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.AdminAuth(cfg.Admin, logg))
		r.Get("/ping", controllers.AdminPing())
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrderList(deps.Orders, logg))
			r.Get("/{orderNumber}", controllers.AdminOrderDetail(deps.Orders, logg))
			r.Post("/{orderNumber}/status", controllers.AdminOrderUpdateStatus(deps.Orders, logg))
		})
		r.Patch("/models/{modelId}/base-price", controllers.AdminModelBasePrice(deps.Catalog, logg))
		r.Patch("/conditions/{conditionId}/multiplier", controllers.AdminConditionMultiplier(deps.Catalog, logg))
	})

	return r
}
