package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/openhaus/tour-scheduler/internal/http/middleware"
	"github.com/openhaus/tour-scheduler/internal/tours"
	"github.com/openhaus/tour-scheduler/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	ToursHandler       *tours.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// Per-IP rate limit on tour submissions; zero disables limiting.
	SubmitRatePerSec float64
	SubmitRateBurst  int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", cfg.ToursHandler.HealthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/listings/{listingID}/tours", func(r chi.Router) {
		r.Get("/active", cfg.ToursHandler.ActiveListingTour)
		r.Group(func(r chi.Router) {
			if cfg.SubmitRatePerSec > 0 {
				r.Use(httpmiddleware.RateLimit(cfg.SubmitRatePerSec, cfg.SubmitRateBurst))
			}
			r.Post("/", cfg.ToursHandler.SubmitTour)
		})
	})

	r.Route("/users/{userID}/tours", func(r chi.Router) {
		r.Get("/", cfg.ToursHandler.ListUserTours)
		r.Post("/conflicts", cfg.ToursHandler.CheckConflicts)
	})

	r.Route("/tours/{tourID}", func(r chi.Router) {
		r.Get("/summary", cfg.ToursHandler.TourSummary)
		r.Delete("/", cfg.ToursHandler.CancelTour)
		r.Patch("/status", cfg.ToursHandler.UpdateTourStatus)
	})

	return r
}
