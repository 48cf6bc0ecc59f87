// Package server configures the HTTP server and routes.
package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/firegeo/brand-monitor/internal/config"
	"github.com/firegeo/brand-monitor/internal/handler"
	"github.com/firegeo/brand-monitor/internal/middleware"
	"github.com/firegeo/brand-monitor/internal/storage"
)

// Deps carries the collaborators handlers need. Dependencies are passed
// explicitly; each handler gets exactly what it uses.
type Deps struct {
	Runner       handler.AnalysisRunner
	UsageRepo    storage.UsageRepository
	AnalysisRepo storage.AnalysisRepository
}

// RegisterRoutes sets up all HTTP routes on the Gin engine.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, deps Deps, logger *zap.Logger) {
	healthHandler := handler.NewHealthHandler()
	analysisHandler := handler.NewAnalysisHandler(deps.Runner, deps.AnalysisRepo, deps.UsageRepo, cfg.Providers, logger)
	catalogHandler := handler.NewCatalogHandler(cfg.Providers, logger)
	statsHandler := handler.NewStatsHandler(deps.UsageRepo, deps.AnalysisRepo, logger)

	// Public endpoints (no auth)
	r.GET("/healthz", healthHandler.Healthz)

	api := r.Group("/api/v1")
	api.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	authed := api.Group("")
	authed.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
	authed.Use(middleware.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	{
		authed.POST("/analyses", analysisHandler.Create)
		authed.GET("/analyses", analysisHandler.List)
		authed.GET("/models", catalogHandler.Models)
		authed.POST("/keys/validate", catalogHandler.ValidateKeys)
	}

	// Admin endpoints (separate auth with admin keys)
	admin := api.Group("/admin")
	admin.Use(middleware.AdminKeyAuth(cfg.Auth.AdminKeys))
	{
		admin.GET("/stats", statsHandler.Stats)
	}
}
