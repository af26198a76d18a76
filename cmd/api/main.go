package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/spot-review-api/api/swagger"
	"github.com/noah-isme/spot-review-api/internal/handler"
	internalmiddleware "github.com/noah-isme/spot-review-api/internal/middleware"
	"github.com/noah-isme/spot-review-api/internal/repository"
	"github.com/noah-isme/spot-review-api/internal/service"
	"github.com/noah-isme/spot-review-api/pkg/cache"
	"github.com/noah-isme/spot-review-api/pkg/config"
	"github.com/noah-isme/spot-review-api/pkg/database"
	"github.com/noah-isme/spot-review-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/spot-review-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/spot-review-api/pkg/middleware/requestid"
	"github.com/noah-isme/spot-review-api/pkg/storage"
)

// @title Spot Review API
// @version 1.0.0
// @description Location and profile submissions with admin review
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey AdminSecret
// @in header
// @name X-Admin-Secret

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	cacheRepo := repository.NewCacheRepository(nil, logr)
	cacheEnabled := cfg.Cache.Enabled
	if cacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
			cacheEnabled = false
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cacheEnabled)

	blobs, err := storage.NewLocalStorage(cfg.Images.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare image storage", zap.Error(err))
	}

	validate := validator.New()
	submissionCfg := service.SubmissionServiceConfig{APIPrefix: cfg.APIPrefix, CacheTTL: cfg.Cache.TTL}

	imageSvc := service.NewImageService(blobs, metricsSvc, logr, service.ImageServiceConfig{MaxFileSize: cfg.Images.MaxFileSizeBytes})
	locationSvc := service.NewLocationService(repository.NewLocationRepository(db), imageSvc, cacheSvc, metricsSvc, validate, logr, submissionCfg)
	profileSvc := service.NewProfileService(repository.NewProfileRepository(db), imageSvc, cacheSvc, metricsSvc, validate, logr, submissionCfg)
	exportSvc := service.NewExportService(locationSvc, profileSvc, logr)
	joinSvc := service.NewJoinRequestService(repository.NewJoinRequestRepository(db), locationSvc, imageSvc, metricsSvc, validate, logr, submissionCfg)
	adminSvc := service.NewAdminService(service.AdminConfig{Secret: cfg.Admin.Secret, SecretHash: cfg.Admin.SecretHash}, logr)
	notificationSvc := service.NewNotificationService(validate, logr)

	if !adminSvc.Configured() {
		logr.Warn("no admin secret configured, admin routes will reject every request")
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc, "/metrics", "/health", "/ready"))

	checks := map[string]handler.ReadinessCheck{
		"postgres": func(ctx context.Context) error { return db.PingContext(ctx) },
	}
	if cacheEnabled {
		checks["redis"] = cacheRepo.Ping
	}
	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", metricsHandler.Prometheus)
	}

	var adminGuard gin.HandlerFunc
	if cfg.Admin.GuardEnabled {
		adminGuard = internalmiddleware.AdminSecret(adminSvc)
	}
	handler.RegisterRoutes(r.Group(cfg.APIPrefix), handler.Handlers{
		Locations:     handler.NewLocationHandler(locationSvc, cfg.Images.CacheMaxAge),
		Profiles:      handler.NewProfileHandler(profileSvc, cfg.Images.CacheMaxAge),
		JoinRequests:  handler.NewJoinRequestHandler(joinSvc, cfg.Images.CacheMaxAge),
		Admin:         handler.NewAdminHandler(adminSvc),
		Notifications: handler.NewNotificationHandler(notificationSvc),
		Exports:       handler.NewExportHandler(exportSvc),
	}, adminGuard)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "prefix", cfg.APIPrefix)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
