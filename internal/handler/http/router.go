package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Shorabul/Homigo-Server/internal/service"
	"github.com/Shorabul/Homigo-Server/pkg/health"
	"github.com/Shorabul/Homigo-Server/pkg/middleware"
)

// RouterConfig bundles the dependencies for route registration.
type RouterConfig struct {
	Catalog  *service.CatalogService
	Bookings *service.BookingService
	Reviews  *service.ReviewService

	// Verify validates bearer tokens for the gated route group.
	Verify middleware.Verifier

	Health     *health.Handler
	Logger     *slog.Logger
	CORS       middleware.CORSConfig
	PprofCIDRs []string

	// BrowseCacheTTL controls the Cache-Control max-age on public catalog
	// reads. Zero disables the header group.
	BrowseCacheTTL time.Duration
}

// NewRouter creates a chi router with all marketplace routes registered.
// Catalog browsing and reviews are public; everything that writes to the
// catalog or touches bookings sits behind the auth gate.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.PrometheusMetrics("homigo"))
	r.Use(middleware.Tracing("homigo"))
	r.Use(middleware.RequestLogger(cfg.Logger))

	// Health check endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofCIDRs, cfg.Logger)

	serviceHandler := NewServiceHandler(cfg.Catalog, cfg.Logger)
	bookingHandler := NewBookingHandler(cfg.Bookings, cfg.Logger)
	reviewHandler := NewReviewHandler(cfg.Reviews, cfg.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// Public catalog reads and reviews.
		r.Group(func(r chi.Router) {
			if cfg.BrowseCacheTTL > 0 {
				r.Use(middleware.CacheControl(cfg.BrowseCacheTTL))
			}
			r.Get("/services", serviceHandler.ListServices)
			r.Get("/services/top-rated", serviceHandler.ListTopRated)
			r.Get("/services/banner", serviceHandler.ListBanner)
			r.Get("/services/{id}/reviews", reviewHandler.ListServiceReviews)
			r.Post("/services/{id}/reviews", reviewHandler.SubmitReview)
			r.Get("/reviews", reviewHandler.ListAllReviews)
		})

		// Gated routes. RequestLogger runs again after Auth so the
		// request-scoped logger picks up the actor.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.Verify))
			r.Use(middleware.RequestLogger(cfg.Logger))

			r.Get("/services/{id}", serviceHandler.GetService)
			r.Post("/services", serviceHandler.CreateService)
			r.Patch("/services/{id}", serviceHandler.UpdateService)
			r.Delete("/services/{id}", serviceHandler.DeleteService)
			r.Get("/my-services", serviceHandler.ListMyServices)

			r.Post("/bookings", bookingHandler.CreateBooking)
			r.Get("/my-bookings", bookingHandler.ListMyBookings)
			r.Delete("/bookings/{id}", bookingHandler.DeleteBooking)
		})
	})

	return r
}
