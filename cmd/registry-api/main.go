package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/degree-registry-api/internal/handler"
	"github.com/noah-isme/degree-registry-api/internal/repository"
	"github.com/noah-isme/degree-registry-api/internal/service"
	"github.com/noah-isme/degree-registry-api/pkg/cache"
	"github.com/noah-isme/degree-registry-api/pkg/config"
	"github.com/noah-isme/degree-registry-api/pkg/database"
	"github.com/noah-isme/degree-registry-api/pkg/logger"
)

// @title Degree Registry API
// @version 0.1.0
// @description Professors, students, courses, classes and degrees with a command journal
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	checks := make(map[string]handler.ReadinessCheck)

	journal, closeJournal, err := openJournal(ctx, cfg, logr, checks)
	if err != nil {
		return err
	}
	defer closeJournal()

	reg, err := service.BootstrapRegistry(ctx, journal, logr)
	if err != nil {
		return fmt.Errorf("restore registry: %w", err)
	}

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	redisClient := openRedis(cfg, logr, checks)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, redisClient != nil)

	validate := validator.New()
	authSvc := service.NewAuthService(validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	registrySvc := service.NewRegistryService(reg, journal, cacheSvc, metricsSvc, validate, logr)

	router := newRouter(cfg, logr, routerDeps{
		auth:     authSvc,
		registry: handler.NewRegistryHandler(registrySvc),
		tokens:   handler.NewAuthHandler(authSvc),
		metrics:  metricsSvc,
		health:   handler.NewMetricsHandler(metricsSvc, checks),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openJournal returns the PostgreSQL journal when enabled, otherwise an
// in-process journal that does not survive restarts.
func openJournal(ctx context.Context, cfg *config.Config, logr *zap.Logger, checks map[string]handler.ReadinessCheck) (service.JournalStore, func(), error) {
	if !cfg.Journal.Enabled {
		logr.Warn("journal persistence disabled, registry state is lost on restart")
		return repository.NewMemoryJournal(), func() {}, nil
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect journal database: %w", err)
	}
	repo := repository.NewJournalRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("prepare journal schema: %w", err)
	}
	checks["journal"] = db.PingContext
	return repo, func() { _ = db.Close() }, nil
}

// openRedis connects the degree listing cache. Failures disable caching
// instead of aborting startup.
func openRedis(cfg *config.Config, logr *zap.Logger, checks map[string]handler.ReadinessCheck) *redis.Client {
	if !cfg.Cache.Enabled {
		return nil
	}
	client, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.String("addr", cache.Addr(cfg.Redis)), zap.Error(err))
		return nil
	}
	checks["cache"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	return client
}
