package server

import (
	"github.com/abduss/filecrypt/internal/catalog"
	"github.com/abduss/filecrypt/internal/config"
	"github.com/abduss/filecrypt/internal/logger"
	"github.com/abduss/filecrypt/internal/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies groups the services required by the HTTP router.
type Dependencies struct {
	Config  config.Config
	Catalog *catalog.Service
	Logger  *zap.Logger
	Checks  []Check
}

// NewRouter builds a Gin engine with foundational middleware and routes.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.Middleware())
	router.Use(metrics.Middleware())

	registerHealthRoutes(router, deps.Checks)
	metrics.Register(router, deps.Config.Metrics.PrometheusPath)

	if deps.Catalog != nil {
		catalog.RegisterRoutes(router.Group("/api"), deps.Catalog, deps.Logger)
	}

	return router
}
