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

	_ "github.com/noah-isme/sikampus-api/api/swagger"
	"github.com/noah-isme/sikampus-api/internal/handler"
	"github.com/noah-isme/sikampus-api/internal/repository"
	"github.com/noah-isme/sikampus-api/internal/service"
	"github.com/noah-isme/sikampus-api/pkg/cache"
	"github.com/noah-isme/sikampus-api/pkg/config"
	"github.com/noah-isme/sikampus-api/pkg/database"
	"github.com/noah-isme/sikampus-api/pkg/logger"
)

// @title SiKampus API
// @version 1.0.0
// @description Project module registration for scholars and staff
// @BasePath /api/v1
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(db.DB, logr); err != nil {
			logr.Fatal("failed to run migrations", zap.Error(err))
		}
	}
	if cfg.Database.SeedModules {
		seeded, err := database.SeedModules(context.Background(), db)
		if err != nil {
			logr.Fatal("failed to seed modules", zap.Error(err))
		}
		if seeded > 0 {
			logr.Info("seeded module catalogue", zap.Int("modules", seeded))
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, module cache disabled", zap.Error(err))
			redisClient = nil
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient)
	defer cacheRepo.Close() //nolint:errcheck

	validate := validator.New()
	metrics := service.NewMetricsService()
	fees := service.NewFeeCalculator(cfg.Registration.FeePerCredit)

	moduleRepo := repository.NewModuleRepository(db)
	scholarRepo := repository.NewScholarRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	summaryRepo := repository.NewSummaryRepository(db)

	cacheEnabled := cfg.ModuleCache.Enabled && redisClient != nil
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.ModuleCache.CacheTTL, logr, cacheEnabled)

	authSvc := service.NewAuthService(validate, logr, service.AuthConfig{
		Secret: cfg.JWT.Secret,
		Expiry: cfg.JWT.Expiration,
	})
	moduleSvc := service.NewModuleService(moduleRepo, cacheSvc, fees, cfg.ModuleCache.CacheTTL, validate, logr)
	scholarSvc := service.NewScholarService(scholarRepo, validate, logr, metrics, cfg.Registration.ResolveRetries)
	registrationSvc := service.NewRegistrationService(registrationRepo, scholarSvc, fees, validate, metrics, logr)
	summarySvc := service.NewSummaryService(summaryRepo, metrics, logr)
	exportSvc := service.NewExportService(registrationRepo, logr)

	r := newRouter(routerDeps{
		cfg:            cfg,
		logger:         logr,
		metrics:        metrics,
		tokens:         authSvc,
		auth:           handler.NewAuthHandler(authSvc),
		modules:        handler.NewModuleHandler(moduleSvc),
		registrations:  handler.NewRegistrationHandler(registrationSvc, moduleSvc, exportSvc, logr),
		summary:        handler.NewSummaryHandler(summarySvc),
		metricsHandler: handler.NewMetricsHandler(metrics, db),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
