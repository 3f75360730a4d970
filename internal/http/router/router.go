package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/facturaec/proforma-api/internal/auth"
	"github.com/facturaec/proforma-api/internal/config"
	"github.com/facturaec/proforma-api/internal/database"
	"github.com/facturaec/proforma-api/internal/http/handler"
	"github.com/facturaec/proforma-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/facturaec/proforma-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg              *config.Config
	logger           *zap.Logger
	db               *gorm.DB
	authMiddleware   *auth.Middleware
	rateLimiter      *middleware.RateLimiter
	clientHandler    *handler.ClientHandler
	proformaHandler  *handler.ProformaHandler
	authHandler      *handler.AuthHandler
	dashboardHandler *handler.DashboardHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	clientHandler *handler.ClientHandler,
	proformaHandler *handler.ProformaHandler,
	authHandler *handler.AuthHandler,
	dashboardHandler *handler.DashboardHandler,
) *Router {
	return &Router{
		cfg:              cfg,
		logger:           logger,
		db:               db,
		authMiddleware:   authMiddleware,
		rateLimiter:      rateLimiter,
		clientHandler:    clientHandler,
		proformaHandler:  proformaHandler,
		authHandler:      authHandler,
		dashboardHandler: dashboardHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with pool stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(r.Context(), rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
			},
		})
	})

	// Combined readiness check (checks all dependencies)
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.HealthCheck(r.Context(), rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if allHealthy {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "healthy",
				"checks": checks,
			})
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "unhealthy",
				"checks": checks,
			})
		}
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.rateLimiter.Limit)

			// Auth
			r.Get("/auth/me", rt.authHandler.Me)

			// Dashboard
			r.Get("/dashboard", rt.dashboardHandler.GetStats)

			// Clients
			r.Route("/clients", func(r chi.Router) {
				r.Get("/", rt.clientHandler.List)
				r.Post("/", rt.clientHandler.Create)
				r.Get("/{id}", rt.clientHandler.GetByID)
				r.Put("/{id}", rt.clientHandler.Update)
				r.Delete("/{id}", rt.clientHandler.Delete)
			})

			// Proformas
			r.Route("/proformas", func(r chi.Router) {
				r.Get("/", rt.proformaHandler.List)
				r.Post("/", rt.proformaHandler.Create)
				r.Get("/next-number", rt.proformaHandler.NextNumber)
				r.Get("/{id}", rt.proformaHandler.GetByID)
				r.Put("/{id}", rt.proformaHandler.Update)
				r.Delete("/{id}", rt.proformaHandler.Delete)

				// Lifecycle endpoints
				r.Post("/{id}/finalize", rt.proformaHandler.Finalize)
				r.Post("/{id}/clone", rt.proformaHandler.Clone)

				// Export
				r.Get("/{id}/pdf", rt.proformaHandler.ExportPDF)
			})
		})
	})

	return r
}
