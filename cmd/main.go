package main

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fx0883/productsShow/internal/handler"
	mid "github.com/fx0883/productsShow/internal/middleware"
	"github.com/fx0883/productsShow/internal/quota"
	"github.com/fx0883/productsShow/internal/repository"
	"github.com/fx0883/productsShow/internal/transfer"
	"github.com/fx0883/productsShow/pkg/config"
	"github.com/fx0883/productsShow/pkg/database"
	"github.com/fx0883/productsShow/pkg/jwtutil"
	"github.com/fx0883/productsShow/pkg/logger"
	"github.com/fx0883/productsShow/prometheus"
)

func main() {
	// Load configuration (reads .env when present, falls back to env vars)
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	logger.InitLogger(appConfig)
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting products-show",
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	// Initialize JWT utility
	jwtutil.Initialize(&appConfig.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	if err := database.InitDB(appConfig); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	db := database.GetDB()
	log.Info("Database connection established")

	// Repositories
	tenantRepo := repository.NewTenantRepository(db, log)
	userRepo := repository.NewUserRepository(db, log)
	quotaRepo := repository.NewQuotaRepository(db, appConfig.Quota, log)
	productRepo := repository.NewProductRepository(db, log)
	categoryRepo := repository.NewCategoryRepository(db, log)
	attributeRepo := repository.NewAttributeRepository(db, log)
	tokenRepo := repository.NewTokenRepository(db, log)
	transferRepo := repository.NewTransferRepository(db, log)

	// Quota ledger guards user and product creation
	ledger := quota.NewLedger(db, quotaRepo, userRepo, productRepo, appConfig.Quota.StrictMode, log)
	if appConfig.Quota.StrictMode {
		log.Info("Quota enforcement running in strict mode")
	}

	// Background storage recompute keeps the cached usage figures honest
	recomputeCtx, stopRecompute := context.WithCancel(context.Background())
	defer stopRecompute()
	go ledger.RunRecomputeLoop(recomputeCtx, tenantRepo, appConfig.Quota.RecomputeInterval)

	// Hourly sweep of expired token rows
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-recomputeCtx.Done():
				return
			case <-ticker.C:
				if purged, err := tokenRepo.PurgeExpired(recomputeCtx); err != nil {
					log.Error("Failed to purge expired tokens", zap.Error(err))
				} else if purged > 0 {
					log.Info("Expired tokens purged", zap.Int64("count", purged))
				}
			}
		}
	}()

	// CSV import/export
	transferSvc := transfer.NewService(ledger, productRepo, transferRepo, appConfig.Transfer, log)

	// Handlers
	authHandler := handler.NewAuthHandler(userRepo, ledger, tokenRepo, tenantRepo)
	tenantHandler := handler.NewTenantHandler(tenantRepo, ledger, quotaRepo)
	userHandler := handler.NewUserHandler(userRepo, ledger)
	productHandler := handler.NewProductHandler(productRepo, ledger, ledger)
	categoryHandler := handler.NewCategoryHandler(categoryRepo)
	attributeHandler := handler.NewAttributeHandler(attributeRepo)
	transferHandler := handler.NewTransferHandler(transferSvc, transferRepo)

	// Initialize Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(logger.AccessLog())
	e.Use(mid.MetricsMiddleware)

	// Metrics and health endpoints
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/health", handler.Health(db))

	// Auth routes
	authAPI := e.Group("/api/auth")
	authAPI.POST("/register", authHandler.Register)
	authAPI.POST("/login", authHandler.Login)
	authAPI.POST("/refresh", authHandler.Refresh)
	authAPI.POST("/logout", authHandler.Logout, mid.AuthMiddleware)

	// Tenant administration, super admin only
	tenantAPI := e.Group("/api/tenants", mid.AuthMiddleware, mid.RequireSuperAdmin)
	tenantAPI.POST("", tenantHandler.Create)
	tenantAPI.GET("", tenantHandler.List)
	tenantAPI.GET("/:id", tenantHandler.Get)
	tenantAPI.PUT("/:id", tenantHandler.Update)
	tenantAPI.DELETE("/:id", tenantHandler.Delete)
	tenantAPI.GET("/:id/quota", tenantHandler.GetQuota)
	tenantAPI.PUT("/:id/quota", tenantHandler.UpdateQuota)

	// User management within a tenant, admin only
	userAPI := e.Group("/api/users", mid.AuthMiddleware, mid.RequireAdmin)
	userAPI.POST("", userHandler.Create)
	userAPI.GET("", userHandler.List)
	userAPI.GET("/:id", userHandler.Get)
	userAPI.PUT("/:id", userHandler.Update)
	userAPI.DELETE("/:id", userHandler.Delete)
	userAPI.PUT("/:id/tenant", userHandler.Reassign, mid.RequireSuperAdmin)

	// Product catalog
	productAPI := e.Group("/api/products", mid.AuthMiddleware)
	productAPI.GET("", productHandler.List)
	productAPI.GET("/:id", productHandler.Get)
	productAPI.POST("", productHandler.Create)
	productAPI.PUT("/:id", productHandler.Update)
	productAPI.DELETE("/:id", productHandler.Delete)
	productAPI.POST("/:id/images", productHandler.AddImage)
	productAPI.GET("/:id/images", productHandler.ListImages)
	productAPI.DELETE("/:id/images/:imageId", productHandler.DeleteImage)
	productAPI.POST("/:id/variations", productHandler.CreateVariation)
	productAPI.GET("/:id/variations", productHandler.ListVariations)
	productAPI.DELETE("/:id/variations/:variationId", productHandler.DeleteVariation)

	// Categories and tags
	categoryAPI := e.Group("/api/categories", mid.AuthMiddleware)
	categoryAPI.GET("", categoryHandler.List)
	categoryAPI.GET("/:id", categoryHandler.Get)
	categoryAPI.POST("", categoryHandler.Create)
	categoryAPI.PUT("/:id", categoryHandler.Update)
	categoryAPI.DELETE("/:id", categoryHandler.Delete)

	tagAPI := e.Group("/api/tags", mid.AuthMiddleware)
	tagAPI.GET("", categoryHandler.ListTags)
	tagAPI.POST("", categoryHandler.CreateTag)
	tagAPI.DELETE("/:id", categoryHandler.DeleteTag)

	// Attributes
	attributeAPI := e.Group("/api/attributes", mid.AuthMiddleware)
	attributeAPI.GET("", attributeHandler.List)
	attributeAPI.GET("/:id", attributeHandler.Get)
	attributeAPI.POST("", attributeHandler.Create)
	attributeAPI.POST("/:id/values", attributeHandler.AddValue)
	attributeAPI.DELETE("/:id", attributeHandler.Delete)

	// CSV import/export
	transferAPI := e.Group("/api/transfer", mid.AuthMiddleware)
	transferAPI.POST("/import", transferHandler.Import)
	transferAPI.GET("/import", transferHandler.ListImports)
	transferAPI.GET("/import/:id", transferHandler.GetImport)
	transferAPI.POST("/export", transferHandler.Export)
	transferAPI.GET("/export", transferHandler.ListExports)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
