package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/harvest/api/handler"
	"github.com/use-agent/harvest/api/middleware"
	"github.com/use-agent/harvest/config"
	"github.com/use-agent/harvest/metrics"
	"github.com/use-agent/harvest/webhook"
)

// Deps are the collaborators the routes are wired to.
type Deps struct {
	Runner   handler.Runner
	Pool     handler.PoolStatter
	Jobs     *handler.JobStore
	Notifier *webhook.Notifier
	Metrics  *metrics.Metrics
}

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health and metrics stay outside auth so probes and scrapers always work.
func NewRouter(deps Deps, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	v1.GET("/health", handler.Health(deps.Pool, startTime))
	v1.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Synchronous harvest, returns the artifact.
	protected.GET("/companies", handler.Companies(deps.Runner, deps.Metrics))

	// Async harvest jobs.
	protected.POST("/harvest", handler.PostHarvest(deps.Runner, deps.Jobs, deps.Notifier, deps.Metrics))
	protected.GET("/harvest/:id", handler.GetHarvest(deps.Jobs))
	protected.GET("/harvest/:id/export", handler.ExportHarvest(deps.Jobs, deps.Metrics))

	return r
}
