package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	bundleapp "github.com/merchdash/backend/internal/application/bundle"
	identityapp "github.com/merchdash/backend/internal/application/identity"
	importapp "github.com/merchdash/backend/internal/application/import"
	"github.com/merchdash/backend/internal/application/ingestion"
	listingapp "github.com/merchdash/backend/internal/application/listing"
	rankingapp "github.com/merchdash/backend/internal/application/ranking"
	reportapp "github.com/merchdash/backend/internal/application/report"
	shopapp "github.com/merchdash/backend/internal/application/shop"
	"github.com/merchdash/backend/internal/infrastructure/auth"
	"github.com/merchdash/backend/internal/infrastructure/cache"
	"github.com/merchdash/backend/internal/infrastructure/config"
	"github.com/merchdash/backend/internal/infrastructure/event"
	"github.com/merchdash/backend/internal/infrastructure/export"
	"github.com/merchdash/backend/internal/infrastructure/logger"
	"github.com/merchdash/backend/internal/infrastructure/persistence"
	"github.com/merchdash/backend/internal/infrastructure/scheduler"
	"github.com/merchdash/backend/internal/infrastructure/shopify"
	"github.com/merchdash/backend/internal/infrastructure/storage"
	"github.com/merchdash/backend/internal/infrastructure/telemetry"
	"github.com/merchdash/backend/internal/interfaces/http/handler"
	"github.com/merchdash/backend/internal/interfaces/http/middleware"
	"github.com/merchdash/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/merchdash/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			Merchant Dashboard API
//	@version		1.0
//	@description	Backend for the merchant admin dashboard: order ingestion, collection ranking, inventory analytics and bundle capacity.
//	@termsOfService	http://swagger.io/terms/

//	@contact.name	API Support
//	@contact.url	https://github.com/merchdash/backend
//	@contact.email	support@merchdash.example.com

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

//	@externalDocs.description	OpenAPI
//	@externalDocs.url			https://swagger.io/resources/open-api/

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting merchant dashboard backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize telemetry. Every signal degrades to a no-op when
	// disabled, so the provider is always safe to wire through.
	telemetryProvider, err := telemetry.NewProvider(context.Background(), telemetry.ProviderConfig{
		ServiceName:           cfg.Telemetry.ServiceName,
		CollectorEndpoint:     cfg.Telemetry.CollectorEndpoint,
		Insecure:              cfg.Telemetry.Insecure,
		TracesEnabled:         cfg.Telemetry.Enabled,
		SamplingRatio:         cfg.Telemetry.SamplingRatio,
		MetricsEnabled:        cfg.Telemetry.MetricsEnabled,
		ExportInterval:        cfg.Telemetry.MetricsInterval,
		LogsEnabled:           cfg.Telemetry.LogsEnabled,
		ProfilerEnabled:       cfg.Telemetry.ProfilerEnabled,
		ProfilerServerAddress: cfg.Telemetry.ProfilerServerAddress,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := telemetryProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()

	// Ship application logs to the collector alongside stdout
	logLevel, parseErr := zapcore.ParseLevel(cfg.Log.Level)
	if parseErr != nil {
		logLevel = zapcore.InfoLevel
	}
	log = telemetryProvider.BridgeLogger(log, logLevel)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Register query tracing on the GORM instance
	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBName:          cfg.Database.DBName,
	}, log)
	if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
		log.Warn("Failed to register database tracing", zap.Error(err))
	}

	// Initialize repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	variantRepo := persistence.NewGormVariantRepository(db.DB)
	orderLineRepo := persistence.NewGormOrderLineRepository(db.DB)
	cursorRepo := persistence.NewGormCursorRepository(db.DB)
	snapshotRepo := persistence.NewGormSnapshotRepository(db.DB)
	bundleRepo := persistence.NewGormBundleRepository(db.DB)
	combinedListingRepo := persistence.NewGormCombinedListingRepository(db.DB)
	operatorRepo := persistence.NewGormOperatorRepository(db.DB)
	shopRepo := persistence.NewGormShopRepository(db.DB)
	ruleSetRepo := persistence.NewGormRuleSetRepository(db.DB)
	productAttrRepo := persistence.NewGormProductAttrRepository(db.DB)
	reportRepo := persistence.NewGormReportRepository(db.DB)
	importHistoryRepo := persistence.NewGormImportHistoryRepository(db.DB)

	// Commerce platform adapter. Tokens come from the shop registry so
	// a re-installed shop picks up its new token without a restart.
	platformConfig := shopify.NewConfig(cfg.Shopify.APIVersion)
	if cfg.Shopify.Timeout > 0 {
		platformConfig.TimeoutSeconds = int(cfg.Shopify.Timeout / time.Second)
	}
	if cfg.Shopify.MaxResponseBytes > 0 {
		platformConfig.MaxResponseBytes = cfg.Shopify.MaxResponseBytes
	}
	if cfg.Shopify.PageSize > 0 {
		platformConfig.PageSize = cfg.Shopify.PageSize
	}
	platform, err := shopify.NewAdapter(platformConfig, shopify.NewRepositoryTokenSource(shopRepo))
	if err != nil {
		log.Fatal("Failed to initialize platform adapter", zap.Error(err))
	}

	// Redis-backed caches and run locks, with in-memory fallback so a
	// missing Redis degrades to per-process behavior instead of failing
	cacheFactory := cache.NewFactory(cfg.Redis,
		cache.WithFactoryLogger(log),
		cache.WithInMemoryFallback(true),
	)
	rollupCache, err := cacheFactory.CreateRollupCache(
		cache.WithRollupTTL(cfg.Report.CacheTTL),
		cache.WithRollupLogger(log),
	)
	if err != nil {
		log.Warn("Rollup cache unavailable, reports will compute on every request", zap.Error(err))
	}
	runLock, err := cacheFactory.CreateRunLock()
	if err != nil {
		log.Warn("Run lock unavailable, concurrent ingestion runs will not be fenced", zap.Error(err))
	}

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)

	// Ingestion services
	ordersService := ingestion.NewOrdersService(platform, productRepo, variantRepo, orderLineRepo, cursorRepo, log)
	ordersService.SetEventPublisher(eventBus)
	ordersService.SetLookbackDays(cfg.Ingestion.DefaultLookbackDays)
	snapshotService := ingestion.NewSnapshotService(platform, productRepo, variantRepo, snapshotRepo, log)
	snapshotService.SetEventPublisher(eventBus)
	snapshotService.SetBatchSize(cfg.Ingestion.SnapshotBatchSize)
	if runLock != nil {
		ordersService.SetRunLock(runLock)
		snapshotService.SetRunLock(runLock)
	}
	statusService := ingestion.NewStatusService(cursorRepo, orderLineRepo, snapshotRepo)

	// Ranking service
	rankingService := rankingapp.NewService(platform, ruleSetRepo, rankingapp.Options{
		TopN:            cfg.Ranking.DefaultTopN,
		SoldWindowDays:  cfg.Ranking.SoldWindowDays,
		JobPollInterval: cfg.Ranking.JobPollInterval,
		MaxJobPolls:     cfg.Ranking.MaxJobPolls,
		BatchDelay:      cfg.Ranking.BatchDelay,
		PreviewSize:     cfg.Ranking.PreviewSize,
	}, log)

	// Aggregation service with cached rollups invalidated on ingestion
	aggregationService := reportapp.NewAggregationService(reportRepo, reportapp.Options{
		CacheTTL:      cfg.Report.CacheTTL,
		KPIWindowDays: cfg.Report.KPIWindowDays,
		TopProducts:   cfg.Report.TopProducts,
		AtRiskLimit:   cfg.Report.AtRiskLimit,
	}, log)
	if rollupCache != nil {
		aggregationService.SetCache(rollupCache)
	}
	invalidationHandler := reportapp.NewCacheInvalidationHandler(aggregationService, log)
	eventBus.Subscribe(invalidationHandler, invalidationHandler.EventTypes()...)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Report export: CSV always, PDF through headless Chrome when
	// configured, finished files staged in object storage
	rendererOpts := []export.RendererOption{export.WithLogger(log)}
	if cfg.Export.PDFEnabled {
		pdfEngine, err := export.NewChromeEngine(&export.ChromeEngineConfig{
			RemoteURL: cfg.Export.ChromeURL,
			Timeout:   cfg.Export.RenderTimeout,
			Logger:    log,
		})
		if err != nil {
			log.Warn("PDF engine unavailable, exports limited to CSV", zap.Error(err))
		} else {
			rendererOpts = append(rendererOpts, export.WithPDFEngine(pdfEngine))
		}
	}
	renderer, err := export.NewRenderer(rendererOpts...)
	if err != nil {
		log.Fatal("Failed to initialize export renderer", zap.Error(err))
	}
	defer func() {
		if err := renderer.Close(); err != nil {
			log.Error("Error closing export renderer", zap.Error(err))
		}
	}()

	var objectStorage reportapp.ObjectStorage
	if cfg.Storage.Bucket != "" {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiry(cfg.Storage.PresignExpiry),
		)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		objectStorage = s3Storage
	} else {
		log.Warn("No storage bucket configured, report exports are kept in memory")
		objectStorage = storage.NewStubObjectStorage()
	}
	exportService := reportapp.NewExportService(aggregationService, renderer, objectStorage, log)
	exportService.SetDownloadExpiry(cfg.Storage.PresignExpiry)

	// Catalog structure and shop registry services
	bundleService := bundleapp.NewService(bundleRepo, platform, log)
	listingService := listingapp.NewService(combinedListingRepo, log)
	shopService := shopapp.NewService(shopRepo, log)

	// Identity services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(operatorRepo, shopRepo, jwtService, identityapp.DefaultAuthServiceConfig(), log)
	operatorService := identityapp.NewOperatorService(operatorRepo, log)

	var tokenBlacklist auth.TokenBlacklist
	redisBlacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis token blacklist unavailable, falling back to in-memory", zap.Error(err))
		tokenBlacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		tokenBlacklist = redisBlacklist
	}
	authService.SetTokenBlacklist(tokenBlacklist)

	// CSV attribute import
	attrImportService := importapp.NewAttrImportService(productAttrRepo, importHistoryRepo, nil, log)
	importHistoryService := importapp.NewImportHistoryService(importHistoryRepo, log)

	// Business metrics gauges collected from the shop registry
	if cfg.Telemetry.MetricsEnabled && telemetryProvider.MeterProvider().IsEnabled() {
		businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:           telemetryProvider.MeterProvider().Meter("merchdash.business"),
			Logger:          log,
			CollectInterval: cfg.Telemetry.MetricsInterval,
			StatsProvider:   telemetry.NewGormIngestionStatsProvider(db.DB),
		})
		if err != nil {
			log.Warn("Business metrics unavailable", zap.Error(err))
		} else {
			businessMetrics.StartPeriodicCollection(context.Background(),
				telemetry.NewGormShopProvider(db.DB), cfg.Telemetry.MetricsInterval)
		}
	}

	// Background ingestion scheduler (if enabled)
	if cfg.Scheduler.Enabled {
		schedulerConfig := scheduler.SchedulerConfig{
			Enabled:           cfg.Scheduler.Enabled,
			OrdersCron:        cfg.Scheduler.OrdersCron,
			SnapshotCron:      cfg.Scheduler.SnapshotCron,
			MaxConcurrentJobs: cfg.Scheduler.MaxConcurrentJobs,
			JobTimeout:        cfg.Scheduler.JobTimeout,
			RetryAttempts:     cfg.Scheduler.RetryAttempts,
			RetryDelay:        cfg.Scheduler.RetryDelay,
		}
		executor := scheduler.NewIngestionExecutor(ordersService, snapshotService, log)
		ingestScheduler := scheduler.NewScheduler(schedulerConfig, executor, log)
		if err := ingestScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start ingestion scheduler", zap.Error(err))
		}
		defer func() {
			if err := ingestScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping ingestion scheduler", zap.Error(err))
			}
		}()

		cronTrigger := scheduler.NewCronTrigger(schedulerConfig, ingestScheduler, shopRepo, log)
		if err := cronTrigger.Start(context.Background()); err != nil {
			log.Fatal("Failed to start cron trigger", zap.Error(err))
		}
		defer func() {
			if err := cronTrigger.Stop(context.Background()); err != nil {
				log.Error("Error stopping cron trigger", zap.Error(err))
			}
		}()
		log.Info("Ingestion scheduler started",
			zap.String("orders_cron", cfg.Scheduler.OrdersCron),
			zap.String("snapshot_cron", cfg.Scheduler.SnapshotCron),
			zap.Int("max_concurrent_jobs", cfg.Scheduler.MaxConcurrentJobs),
		)
	}

	// Initialize HTTP handlers
	ingestionHandler := handler.NewIngestionHandler(ordersService, snapshotService, statusService)
	rankingHandler := handler.NewRankingHandler(rankingService)
	reportHandler := handler.NewReportHandler(aggregationService, exportService)
	bundleHandler := handler.NewBundleHandler(bundleService)
	listingHandler := handler.NewListingHandler(listingService)
	shopHandler := handler.NewShopHandler(shopService)
	authHandler := handler.NewAuthHandler(authService)
	operatorHandler := handler.NewOperatorHandler(operatorService)
	importHandler := handler.NewImportHandler(attrImportService, importHistoryService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Tracing/metrics/profiling - Observability (no-ops when disabled)
	// 5. Security - Add security headers
	// 6. CORS - Handle cross-origin requests
	// 7. BodyLimit - Limit request body size
	// 8. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.TracingAttributeInjector())
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: telemetryProvider.MeterProvider(),
		ServiceName:   cfg.Telemetry.ServiceName,
		Enabled:       cfg.Telemetry.MetricsEnabled,
	}))
	engine.Use(middleware.ProfilingWithConfig(middleware.ProfilingConfig{
		Enabled:   cfg.Telemetry.ProfilerEnabled,
		SkipPaths: []string{"/health", "/api/v1/system/ping"},
	}))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Apply JWT authentication middleware to API routes
	// Configure skip paths for public endpoints
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: tokenBlacklist,
		SkipPaths: []string{
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	jwtMiddleware := middleware.JWTAuthMiddlewareWithConfig(jwtConfig)

	// Swagger documentation endpoint, guarded in non-dev environments
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}, jwtMiddleware),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(jwtMiddleware)

	// Authentication - login and refresh are in the JWT skip list
	authRoutes := router.NewDomainGroup("auth", "/auth")
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.RefreshToken)
	authRoutes.POST("/logout", authHandler.Logout)
	authRoutes.GET("/me", authHandler.GetCurrentOperator)
	authRoutes.PUT("/password", authHandler.ChangePassword)

	// Operator management
	operatorRoutes := router.NewDomainGroup("operators", "/operators")
	operatorRoutes.POST("", operatorHandler.Create)
	operatorRoutes.GET("", operatorHandler.List)
	operatorRoutes.GET("/:id", operatorHandler.GetByID)
	operatorRoutes.PUT("/:id", operatorHandler.Update)
	operatorRoutes.DELETE("/:id", operatorHandler.Delete)
	operatorRoutes.POST("/:id/activate", operatorHandler.Activate)
	operatorRoutes.POST("/:id/deactivate", operatorHandler.Deactivate)
	operatorRoutes.POST("/:id/reset-password", operatorHandler.ResetPassword)

	// Shop registry
	shopRoutes := router.NewDomainGroup("shops", "/shops")
	shopRoutes.POST("", shopHandler.Install)
	shopRoutes.GET("", shopHandler.List)
	shopRoutes.GET("/:domain", shopHandler.GetByDomain)
	shopRoutes.DELETE("/:domain", shopHandler.Uninstall)

	// Ingestion engine
	ingestionRoutes := router.NewDomainGroup("ingestion", "/ingestion")
	ingestionRoutes.POST("/orders/run", ingestionHandler.RunOrders)
	ingestionRoutes.POST("/snapshots/run", ingestionHandler.RunSnapshot)
	ingestionRoutes.GET("/status", ingestionHandler.Status)

	// Ranking engine
	rankingRoutes := router.NewDomainGroup("ranking", "/ranking")
	rankingRoutes.POST("/run", rankingHandler.Run)
	rankingRoutes.POST("/run-all", rankingHandler.RunAll)
	rankingRoutes.GET("/collections", rankingHandler.ListCollections)
	rankingRoutes.GET("/collections/:id/rules", rankingHandler.GetRules)
	rankingRoutes.PUT("/collections/:id/rules", rankingHandler.SaveRules)

	// Aggregation reports
	reportRoutes := router.NewDomainGroup("reports", "/reports")
	reportRoutes.GET("/overview", reportHandler.Overview)
	reportRoutes.GET("/size-curve", reportHandler.SizeCurve)
	reportRoutes.GET("/color-curve", reportHandler.ColorCurve)
	reportRoutes.GET("/kpis", reportHandler.KPIs)
	reportRoutes.GET("/aging-stock", reportHandler.AgingStock)
	reportRoutes.POST("/export", reportHandler.Export)

	// Bundles and capacity
	bundleRoutes := router.NewDomainGroup("bundles", "/bundles")
	bundleRoutes.POST("", bundleHandler.Create)
	bundleRoutes.GET("", bundleHandler.List)
	bundleRoutes.POST("/capacity", bundleHandler.CapacityForComponents)
	bundleRoutes.GET("/:id", bundleHandler.GetByID)
	bundleRoutes.GET("/:id/capacity", bundleHandler.Capacity)
	bundleRoutes.DELETE("/:id", bundleHandler.Delete)

	// Combined listings
	listingRoutes := router.NewDomainGroup("listings", "/listings")
	listingRoutes.POST("", listingHandler.Create)
	listingRoutes.GET("", listingHandler.List)
	listingRoutes.GET("/lookup", listingHandler.Lookup)
	listingRoutes.GET("/:id", listingHandler.GetByID)
	listingRoutes.DELETE("/:id", listingHandler.Delete)

	// CSV imports
	importRoutes := router.NewDomainGroup("imports", "/imports")
	importRoutes.POST("/attributes", importHandler.ImportAttributes)
	importRoutes.GET("", importHandler.ListImportRuns)
	importRoutes.GET("/:id", importHandler.GetImportRun)

	// System
	systemHandler := handler.NewSystemHandler()
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	// Register all domain groups
	r.Register(authRoutes).
		Register(operatorRoutes).
		Register(shopRoutes).
		Register(ingestionRoutes).
		Register(rankingRoutes).
		Register(reportRoutes).
		Register(bundleRoutes).
		Register(listingRoutes).
		Register(importRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
