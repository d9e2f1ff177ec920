package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/degree-registry-api/api/swagger"
	"github.com/noah-isme/degree-registry-api/internal/handler"
	"github.com/noah-isme/degree-registry-api/internal/middleware"
	"github.com/noah-isme/degree-registry-api/internal/service"
	"github.com/noah-isme/degree-registry-api/pkg/config"
	"github.com/noah-isme/degree-registry-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/degree-registry-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/degree-registry-api/pkg/middleware/requestid"
)

type routerDeps struct {
	auth     middleware.TokenValidator
	registry *handler.RegistryHandler
	tokens   *handler.AuthHandler
	metrics  *service.MetricsService
	health   *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, deps routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(corsmiddleware.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: cfg.CORS.AllowedMethods,
		AllowedHeaders: cfg.CORS.AllowedHeaders,
		ExposedHeaders: cfg.CORS.ExposedHeaders,
		MaxAge:         cfg.CORS.MaxAge,
	}))
	r.Use(middleware.Metrics(deps.metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", deps.health.Health)
	r.GET("/ready", deps.health.Ready)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", deps.health.Prometheus)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	if cfg.JWT.DevTokens {
		api.POST("/auth/dev-token", deps.tokens.DevToken)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(deps.auth))
	deps.registry.Register(protected)

	return r
}
