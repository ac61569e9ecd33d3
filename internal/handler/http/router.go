package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/EcommerceGo/clientstate/pkg/health"
	"github.com/utafrali/EcommerceGo/clientstate/pkg/middleware"
)

const serviceName = "clientstate"

// NewRouter creates a chi router with every state service route registered.
func NewRouter(sessions SessionSource, healthHandler *health.Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(serviceName))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	cart := NewCartHandler(logger)
	wishlist := NewWishlistHandler(logger)
	favorites := NewFavoritesHandler(logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(SessionFromHeader(sessions, logger))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cart.GetCart)
			r.Delete("/", cart.ClearCart)
			r.Get("/summary", cart.GetSummary)
			r.Post("/undo", cart.Undo)
			r.Post("/redo", cart.Redo)

			r.Post("/items", cart.AddItem)
			r.Get("/items/{productId}", cart.GetItem)
			r.Put("/items/{productId}", cart.UpdateQuantity)
			r.Delete("/items/{productId}", cart.RemoveItem)
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", wishlist.GetWishlist)
			r.Delete("/", wishlist.ClearWishlist)
			r.Post("/toggle", wishlist.ToggleItem)
			r.Put("/order", wishlist.Reorder)

			r.Post("/items", wishlist.AddItem)
			r.Get("/items/{productId}", wishlist.Contains)
			r.Delete("/items/{productId}", wishlist.RemoveItem)
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", favorites.GetFavorites)
			r.Delete("/", favorites.ClearFavorites)
			r.Post("/toggle", favorites.ToggleFavorite)

			r.Post("/items", favorites.AddFavorite)
			r.Get("/items/{productId}", favorites.IsFavorite)
			r.Delete("/items/{productId}", favorites.RemoveFavorite)
		})
	})

	return r
}
