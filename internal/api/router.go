// Package api provides the HTTP API for the emissions service.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/shaardie/emissions-api/internal/api/handler"
	"github.com/shaardie/emissions-api/internal/api/middleware"
	"github.com/shaardie/emissions-api/internal/api/response"
	"github.com/shaardie/emissions-api/internal/emissions"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	Service   *emissions.Service
	Countries *emissions.CountryTable

	// Store is pinged by the readiness endpoint. Optional.
	Store emissions.Pinger

	// PromHandler serves /metrics when set.
	PromHandler http.Handler

	CORSOrigins        []string
	RateLimitPerMinute int
	RequireTLS         bool
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "emissions-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers
	r.Use(middleware.RequireTLS(cfg.RequireTLS))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.ContentTypeJSON)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, r, "No resource at "+r.URL.Path)
	})
	r.MethodNotAllowed(response.MethodNotAllowed)

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Store, cfg.Countries)
	emissionsHandler := handler.NewEmissionsHandler(cfg.Service)

	dataRateLimit := middleware.RateLimitByIP(middleware.PerMinute(cfg.RateLimitPerMinute))

	r.Get("/", opsHandler.Root)
	if cfg.PromHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.PromHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
		})

		r.Get("/countries", opsHandler.ListCountries)

		r.Group(func(r chi.Router) {
			r.Use(dataRateLimit)
			r.Get("/geo.json", emissionsHandler.Points)
			r.Get("/average.json", emissionsHandler.Averages)
		})
	})

	return r
}
