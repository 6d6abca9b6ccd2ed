package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bsm/redislock"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	dashboardapp "github.com/marketsync/backend/internal/application/dashboard"
	inventoryapp "github.com/marketsync/backend/internal/application/inventory"
	orderapp "github.com/marketsync/backend/internal/application/order"
	platformapp "github.com/marketsync/backend/internal/application/platform"
	syncapp "github.com/marketsync/backend/internal/application/sync"
	"github.com/marketsync/backend/internal/infrastructure/auth"
	"github.com/marketsync/backend/internal/infrastructure/cache"
	"github.com/marketsync/backend/internal/infrastructure/config"
	"github.com/marketsync/backend/internal/infrastructure/event"
	"github.com/marketsync/backend/internal/infrastructure/logger"
	"github.com/marketsync/backend/internal/infrastructure/marketplace"
	"github.com/marketsync/backend/internal/infrastructure/persistence"
	"github.com/marketsync/backend/internal/infrastructure/scheduler"
	"github.com/marketsync/backend/internal/infrastructure/storage"
	"github.com/marketsync/backend/internal/infrastructure/telemetry"
	"github.com/marketsync/backend/internal/interfaces/http/handler"
	"github.com/marketsync/backend/internal/interfaces/http/middleware"
	"github.com/marketsync/backend/internal/interfaces/http/router"

	_ "github.com/marketsync/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			MarketSync API
//	@version		1.0
//	@description	Multi-platform marketplace inventory and order sync backend

//	@contact.name	API Support

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

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
		_ = logger.Sync(log)
	}()

	log.Info("Starting MarketSync backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Tracing (optional)
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Metrics (optional)
	metricsEnabled := cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled
	meterProvider, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		Enabled:           metricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	// Log export (optional). The zap logger keeps writing to its configured
	// output; the OTLP bridge is an additional sink.
	loggerProvider, err := telemetry.NewLoggerProvider(context.Background(), telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down logger provider", zap.Error(err))
		}
	}()
	if loggerProvider.IsEnabled() {
		otelCore := telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
			ServiceName:    cfg.Telemetry.ServiceName,
			LoggerProvider: loggerProvider,
			Level:          zapcore.InfoLevel,
		})
		log = telemetry.NewBridgedLogger(log.Core(), otelCore)
	}

	// Continuous profiling (optional)
	if cfg.Telemetry.ProfilingEnabled {
		profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
			Enabled:             true,
			ServerAddress:       cfg.Telemetry.ProfilingServer,
			ApplicationName:     cfg.Telemetry.ServiceName,
			ProfileCPU:          true,
			ProfileAllocObjects: true,
			ProfileAllocSpace:   true,
			ProfileInuseObjects: true,
			ProfileInuseSpace:   true,
			ProfileGoroutines:   true,
		}, log)
		if err != nil {
			log.Warn("Failed to start profiler", zap.Error(err))
		} else {
			defer func() {
				if err := profiler.Stop(); err != nil {
					log.Error("Error stopping profiler", zap.Error(err))
				}
			}()
			if err := tracerProvider.EnableSpanProfiles(); err != nil {
				log.Warn("Failed to enable span profiles", zap.Error(err))
			}
		}
	}

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

	// Database query tracing (otelgorm)
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		}, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	// Database pool and query metrics
	if metricsEnabled {
		if _, err := telemetry.RegisterDBMetrics(db.DB, meterProvider, telemetry.DBMetricsConfig{
			Enabled:            true,
			SlowQueryThreshold: cfg.Telemetry.DBSlowQueryThresh,
		}, log); err != nil {
			log.Warn("Failed to register database metrics", zap.Error(err))
		}
	}

	// Business metrics with periodic stock health collection
	if metricsEnabled {
		businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:             meterProvider.Meter("marketsync.business"),
			Logger:            log,
			InventoryProvider: telemetry.NewGormInventoryMetricsProvider(db.DB),
		})
		if err != nil {
			log.Warn("Failed to initialize business metrics", zap.Error(err))
		} else {
			businessMetrics.StartPeriodicCollection(
				context.Background(),
				telemetry.NewGormOrgProvider(db.DB),
				cfg.Telemetry.MetricsInterval,
			)
			defer businessMetrics.Stop()
		}
	}

	// Credential cipher for platform API secrets at rest
	cipher, err := auth.NewAESCredentialCipher(cfg.Crypto.CredentialKey)
	if err != nil {
		log.Fatal("Failed to initialize credential cipher", zap.Error(err))
	}

	// Optional Redis client, shared by the summary cache and the
	// auto-sync leader lock
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Warn("Redis unreachable, falling back to in-process cache", zap.Error(err))
			redisClient = nil
		}
	}

	// Initialize repositories
	itemRepo := persistence.NewGormInventoryItemRepository(db.DB)
	movementRepo := persistence.NewGormStockMovementRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	connectionRepo := persistence.NewGormConnectionRepository(db.DB, cipher)
	listingRepo := persistence.NewGormListingRepository(db.DB)
	jobRepo := persistence.NewGormSyncJobRepository(db.DB)
	syncLogRepo := persistence.NewGormSyncLogRepository(db.DB)

	// Marketplace clients
	clients := marketplace.NewRegistry(marketplace.DefaultConfig())

	// Object storage for order exports
	var objectStorage orderapp.ObjectStorageService
	if cfg.Storage.Enabled {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		objectStorage = s3Storage
		log.Info("Object storage enabled", zap.String("bucket", cfg.Storage.Bucket))
	} else {
		objectStorage = storage.NewStubObjectStorage()
	}

	// Dashboard summary cache
	var summaryCache dashboardapp.SummaryCache
	if redisClient != nil {
		summaryCache = cache.NewRedisSummaryCacheWithClient(redisClient, log)
	} else {
		summaryCache = cache.NewInMemorySummaryCache()
	}

	// Initialize application services
	inventoryService := inventoryapp.NewService(itemRepo, movementRepo)
	orderService := orderapp.NewService(orderRepo, itemRepo, movementRepo, connectionRepo, listingRepo, clients, log)
	exportService := orderapp.NewExportService(orderRepo, objectStorage, log)
	connectionService := platformapp.NewConnectionService(connectionRepo, clients, syncLogRepo)
	dashboardService := dashboardapp.NewService(itemRepo, orderRepo, connectionRepo, jobRepo, summaryCache, log)

	// Sync executor and worker pool
	executor := syncapp.NewExecutor(jobRepo, syncLogRepo, connectionRepo, itemRepo, listingRepo, orderService, clients, syncapp.ExecutorConfig{
		PlatformTimeout: cfg.Sync.PlatformTimeout,
		OrderWindow:     cfg.Sync.OrderWindow,
	}, log)
	workerPool, err := scheduler.NewWorkerPool(scheduler.WorkerPoolConfig{
		Workers:    cfg.Sync.Workers,
		QueueSize:  cfg.Sync.QueueSize,
		JobTimeout: cfg.Sync.PlatformTimeout * 3,
	}, executor, log)
	if err != nil {
		log.Fatal("Failed to create sync worker pool", zap.Error(err))
	}
	if err := workerPool.Start(context.Background()); err != nil {
		log.Fatal("Failed to start sync worker pool", zap.Error(err))
	}
	defer func() {
		if err := workerPool.Stop(context.Background()); err != nil {
			log.Error("Error stopping sync worker pool", zap.Error(err))
		}
	}()
	log.Info("Sync worker pool started",
		zap.Int("workers", cfg.Sync.Workers),
		zap.Int("queue_size", cfg.Sync.QueueSize),
	)

	syncService := syncapp.NewService(jobRepo, syncLogRepo, connectionRepo, workerPool, log)

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	lowStockHandler := inventoryapp.NewLowStockHandler(log)
	eventBus.Subscribe(lowStockHandler, lowStockHandler.EventTypes()...)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Inject event bus into services that publish events
	inventoryService.SetEventPublisher(eventBus)
	orderService.SetEventPublisher(eventBus)
	connectionService.SetEventPublisher(eventBus)

	// Auto-sync ticker (if enabled)
	if cfg.Sync.AutoSyncEnabled {
		var locker *redislock.Client
		if redisClient != nil {
			locker = redislock.New(redisClient)
		}
		autoSync, err := scheduler.NewAutoSyncScheduler(scheduler.AutoSyncConfig{
			CheckInterval: cfg.Sync.AutoSyncCheckInterval,
			LockTTL:       cfg.Sync.AutoSyncLockTTL,
		}, connectionRepo, syncService, locker, log)
		if err != nil {
			log.Fatal("Failed to create auto-sync scheduler", zap.Error(err))
		}
		if err := autoSync.Start(context.Background()); err != nil {
			log.Fatal("Failed to start auto-sync scheduler", zap.Error(err))
		}
		defer func() {
			if err := autoSync.Stop(context.Background()); err != nil {
				log.Error("Error stopping auto-sync scheduler", zap.Error(err))
			}
		}()
		log.Info("Auto-sync scheduler started",
			zap.Duration("check_interval", cfg.Sync.AutoSyncCheckInterval),
			zap.Bool("distributed_lock", locker != nil),
		)
	}

	// JWT service
	jwtService := auth.NewJWTService(cfg.JWT)

	// Initialize HTTP handlers
	inventoryHandler := handler.NewInventoryHandler(inventoryService)
	orderHandler := handler.NewOrderHandler(orderService, exportService)
	platformHandler := handler.NewPlatformHandler(connectionService)
	syncHandler := handler.NewSyncHandler(syncService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	systemHandler := handler.NewSystemHandler()

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
	// 4. Tracing - OpenTelemetry spans (if enabled)
	// 5. Security - Add security headers
	// 6. CORS - Handle cross-origin requests
	// 7. BodyLimit - Limit request body size
	// 8. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
	}
	if metricsEnabled {
		engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			MeterProvider: meterProvider,
			ServiceName:   cfg.Telemetry.ServiceName,
			Enabled:       true,
		}))
	}
	if cfg.Telemetry.ProfilingEnabled {
		engine.Use(middleware.Profiling())
	}
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

	// Swagger documentation endpoint
	if cfg.Swagger.Enabled {
		swaggerProtection := middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}, middleware.JWTAuthMiddleware(jwtService))
		engine.GET("/swagger/*any", swaggerProtection, ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes. Revoked tokens
	// are tracked in Redis when it is available.
	var tokenBlacklist auth.TokenBlacklist
	if redisClient != nil {
		tokenBlacklist = auth.NewRedisTokenBlacklistWithClient(redisClient)
	}
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: tokenBlacklist,
		SkipPaths: []string{
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Resolve org context from JWT claims or the X-Org-ID header.
	// Org context is enforced in production and best-effort in development.
	orgConfig := middleware.DefaultOrgConfig()
	orgConfig.Required = cfg.App.Env == "production"
	orgConfig.SkipPaths = append(orgConfig.SkipPaths,
		"/api/v1/ping", "/api/v1/system/ping", "/api/v1/system/info")
	orgConfig.Logger = log
	r.Use(middleware.OrgMiddlewareWithConfig(orgConfig))

	// Inventory ledger
	inventoryRoutes := router.NewDomainGroup("inventory", "/inventory")
	inventoryRoutes.GET("/items", inventoryHandler.List)
	inventoryRoutes.POST("/items", inventoryHandler.Create)
	inventoryRoutes.GET("/items/:id", inventoryHandler.GetByID)
	inventoryRoutes.POST("/items/:id/adjust", inventoryHandler.Adjust)
	inventoryRoutes.POST("/items/:id/reserve", inventoryHandler.Reserve)
	inventoryRoutes.POST("/items/:id/release", inventoryHandler.Release)
	inventoryRoutes.PUT("/items/:id/listing", inventoryHandler.UpdateListing)
	inventoryRoutes.PUT("/items/:id/threshold", inventoryHandler.UpdateThreshold)
	inventoryRoutes.PUT("/items/:id/location", inventoryHandler.UpdateLocation)
	inventoryRoutes.GET("/products/:product_id/items", inventoryHandler.ListByProduct)
	inventoryRoutes.GET("/movements", inventoryHandler.ListMovements)
	inventoryRoutes.GET("/stats", inventoryHandler.Stats)

	// Orders
	orderRoutes := router.NewDomainGroup("orders", "/orders")
	orderRoutes.GET("", orderHandler.List)
	orderRoutes.GET("/stats", orderHandler.Stats)
	orderRoutes.GET("/export", orderHandler.Export)
	orderRoutes.GET("/:id", orderHandler.GetByID)
	orderRoutes.PUT("/:id/status", orderHandler.UpdateStatus)
	orderRoutes.POST("/:id/notes", orderHandler.AddNote)

	// Platform connections
	platformRoutes := router.NewDomainGroup("platforms", "/platforms")
	platformRoutes.GET("/connections", platformHandler.List)
	platformRoutes.POST("/connections", platformHandler.Connect)
	platformRoutes.GET("/connections/:id", platformHandler.GetByID)
	platformRoutes.PUT("/connections/:id/settings", platformHandler.UpdateSettings)
	platformRoutes.POST("/connections/:id/disconnect", platformHandler.Disconnect)
	platformRoutes.POST("/connections/:id/refresh-token", platformHandler.RefreshToken)
	platformRoutes.DELETE("/connections/:id", platformHandler.Remove)

	// Sync orchestration
	syncRoutes := router.NewDomainGroup("sync", "/sync")
	syncRoutes.POST("/inventory/push", syncHandler.PushInventory)
	syncRoutes.POST("/orders/pull", syncHandler.PullOrders)
	syncRoutes.POST("/products/push", syncHandler.PushProducts)
	syncRoutes.POST("/full", syncHandler.FullSync)
	syncRoutes.GET("/jobs", syncHandler.ListJobs)
	syncRoutes.GET("/jobs/:id", syncHandler.GetJob)
	syncRoutes.POST("/jobs/:id/retry", syncHandler.RetryJob)
	syncRoutes.GET("/logs", syncHandler.ListLogs)

	// Dashboard
	dashboardRoutes := router.NewDomainGroup("dashboard", "/dashboard")
	dashboardRoutes.GET("/summary", dashboardHandler.Summary)
	dashboardRoutes.POST("/summary/refresh", dashboardHandler.Refresh)

	// System
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	// Register all domain groups
	r.Register(inventoryRoutes).
		Register(orderRoutes).
		Register(platformRoutes).
		Register(syncRoutes).
		Register(dashboardRoutes).
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
