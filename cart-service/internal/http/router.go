package http

import (
	"net/http"
	"time"

	"github.com/fjod/kanap/cart-service/internal/catalog"
	"github.com/fjod/kanap/cart-service/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Deps are the collaborators of the HTTP layer.
type Deps struct {
	Managers ManagerFactory
	Catalog  catalog.Catalog
	Orders   catalog.OrderSubmitter
	Events   OrderEvents
	Metrics  *metrics.ServerMetrics
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
	Timeout  time.Duration
}

func NewRouter(d Deps) http.Handler {
	cartHandler := NewCartHandler(d.Managers, d.Catalog, d.Timeout, d.Logger)
	productHandler := NewProductHandler(d.Catalog, d.Timeout, d.Logger)
	orderHandler := NewOrderHandler(d.Managers, d.Catalog, d.Orders, d.Events, d.Timeout, d.Logger)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(MetricsMiddleware(d.Metrics))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(d.Gatherer))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(SessionMiddleware)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Get("/{id}", productHandler.Get)
		})
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{id}/{color}", cartHandler.UpdateQuantity)
			r.Delete("/items/{id}/{color}", cartHandler.RemoveItem)
		})
		r.Post("/order", orderHandler.Submit)
	})

	return otelhttp.NewHandler(r, "kanap-cart")
}
