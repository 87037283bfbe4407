package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/bssic/school-portal-api/api/swagger"
	"github.com/bssic/school-portal-api/internal/handler"
	"github.com/bssic/school-portal-api/internal/middleware"
	"github.com/bssic/school-portal-api/internal/models"
	"github.com/bssic/school-portal-api/internal/repository"
	"github.com/bssic/school-portal-api/internal/service"
	"github.com/bssic/school-portal-api/pkg/cache"
	"github.com/bssic/school-portal-api/pkg/config"
	"github.com/bssic/school-portal-api/pkg/database"
	"github.com/bssic/school-portal-api/pkg/logger"
	corsmiddleware "github.com/bssic/school-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/bssic/school-portal-api/pkg/middleware/requestid"
	"github.com/bssic/school-portal-api/pkg/storage"

	"github.com/go-playground/validator/v10"
)

// @title School Portal API
// @version 1.0.0
// @description Admission, result and contact backend for the school website and admin panel
// @BasePath /api/v1
// @schemes http https

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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if redisClient, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
	} else {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		defer cacheRepo.Close() //nolint:errcheck
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Results.CacheTTL, logr)
	}

	store, err := storage.NewLocalStorage(cfg.Documents.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init document storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Documents.SignedURLSecret, cfg.Documents.SignedURLTTL)

	applicationRepo := repository.NewApplicationRepository(db)
	resultRepo := repository.NewResultRepository(db)
	contactRepo := repository.NewContactRepository(db)
	userRepo := repository.NewUserRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
		BootstrapEnabled:   cfg.Bootstrap.Enabled,
	})
	documentSvc := service.NewDocumentService(store, signer, service.DocumentConfig{
		MaxFileSizeBytes: cfg.Documents.MaxFileSizeBytes,
		AllowedMIMEs:     cfg.Documents.AllowedMIMEs,
		DownloadBasePath: cfg.APIPrefix + "/documents/download",
	}, logr)
	applicationSvc := service.NewApplicationService(applicationRepo, userRepo, cacheSvc, documentSvc, validate, logr)
	resultSvc := service.NewResultService(resultRepo, userRepo, cacheSvc, cfg.Results.CacheTTL, cfg.SchoolName, validate, logr)
	contactSvc := service.NewContactService(contactRepo, cacheSvc, validate, logr)
	adminSvc := service.NewAdminService(userRepo, service.SystemResetTargets{
		Applications: applicationRepo,
		Results:      resultRepo,
		Contacts:     contactRepo,
	}, cacheSvc, validate, logr)
	dashboardSvc := service.NewDashboardService(applicationRepo, resultRepo, contactRepo, cacheSvc, cfg.Dashboard.CacheTTL, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	applicationHandler := handler.NewApplicationHandler(applicationSvc, documentSvc)
	resultHandler := handler.NewResultHandler(resultSvc)
	contactHandler := handler.NewContactHandler(contactSvc)
	adminHandler := handler.NewAdminHandler(adminSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	documentHandler := handler.NewDocumentHandler(documentSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/admissions", applicationHandler.Submit)
		api.POST("/contact", contactHandler.Submit)
		api.POST("/documents", documentHandler.Upload)
		api.GET("/documents/download", documentHandler.Download)
		api.GET("/results/:rollNumber", resultHandler.Lookup)
		api.GET("/results/:rollNumber/marksheet", resultHandler.Marksheet)

		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/bootstrap", authHandler.Bootstrap)

			authed := auth.Group("", middleware.JWT(authSvc))
			{
				authed.POST("/logout", authHandler.Logout)
				authed.POST("/change-password", authHandler.ChangePassword)
				authed.GET("/me", authHandler.Me)
			}
		}

		admin := api.Group("/admin", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin))
		{
			admin.GET("/dashboard/stats", dashboardHandler.Stats)

			admin.GET("/admissions", applicationHandler.List)
			admin.GET("/admissions/export", applicationHandler.Export)
			admin.GET("/admissions/:id", applicationHandler.Get)
			admin.PATCH("/admissions/:id/status", applicationHandler.UpdateStatus)
			admin.PATCH("/admissions/:id/field", applicationHandler.UpdateField)
			admin.PUT("/admissions/:id/documents", applicationHandler.UpdateDocuments)
			admin.DELETE("/admissions/:id", applicationHandler.Delete)

			admin.POST("/results", resultHandler.Submit)
			admin.GET("/results", resultHandler.List)
			admin.DELETE("/results/:rollNumber", resultHandler.Delete)

			admin.GET("/contact", contactHandler.List)

			admin.GET("/admins", adminHandler.List)
			admin.POST("/admins", adminHandler.Add)
			admin.DELETE("/admins/:id", middleware.RequireRoles(models.RoleSuperAdmin), adminHandler.Remove)

			admin.POST("/system/reset", middleware.RequireRoles(models.RoleSuperAdmin), adminHandler.ResetSystem)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
