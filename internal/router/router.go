package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"nexus-store/internal/auth"
	"nexus-store/internal/config"
	"nexus-store/internal/handler"
	"nexus-store/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Handlers groups the API handlers mounted under /api.
type Handlers struct {
	Categories *handler.CategoryHandler
	Products   *handler.ProductHandler
	Cart       *handler.CartHandler
	Orders     *handler.OrderHandler
	Payments   *handler.PaymentHandler
	Reviews    *handler.ReviewHandler
}

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, verifier auth.Verifier, limits config.RateLimitConfig, dbCheck HealthCheck, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// RequestID runs first so that every log line and error body carries it.
	r.Use(chimw.RequestID)
	// Forwarded headers are client controlled unless a proxy rewrites them.
	if limits.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.StripSlashes)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)
	r.Use(middleware.RateLimit(limits.RPS, limits.Burst, logger))

	r.Get("/health", health(dbCheck))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Authenticate(verifier, logger))

		r.Route("/categories", h.Categories.RegisterRoutes)
		r.Route("/products", h.Products.RegisterRoutes)
		r.Route("/cart", h.Cart.RegisterRoutes)
		r.Route("/orders", h.Orders.RegisterRoutes)
		r.Route("/payments", h.Payments.RegisterRoutes)
		r.Route("/reviews", h.Reviews.RegisterRoutes)
	})

	return r
}

func health(dbCheck HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "healthy"}
		status := http.StatusOK

		if dbCheck != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := dbCheck(ctx); err != nil {
				resp = healthResponse{Status: "unhealthy", Database: "unreachable"}
				status = http.StatusServiceUnavailable
			} else {
				resp.Database = "ok"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(resp)
	}
}
