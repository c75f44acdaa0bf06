package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	workpaperapp "github.com/fdccore/backend/internal/application/workpaper"
	"github.com/fdccore/backend/internal/domain/motorvehicle"
	"github.com/fdccore/backend/internal/infrastructure/auth"
	"github.com/fdccore/backend/internal/infrastructure/cache"
	"github.com/fdccore/backend/internal/infrastructure/config"
	"github.com/fdccore/backend/internal/infrastructure/event"
	"github.com/fdccore/backend/internal/infrastructure/logger"
	"github.com/fdccore/backend/internal/infrastructure/persistence"
	"github.com/fdccore/backend/internal/interfaces/http/handler"
	"github.com/fdccore/backend/internal/interfaces/http/middleware"
	"github.com/fdccore/backend/internal/interfaces/http/router"
)

//	@title			FDC Backend API
//	@version		1.0
//	@description	Workpaper backend for family day care tax preparation

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
		Service:    "fdc-backend",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting FDC Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

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

	// Redis backs the distributed freeze lock
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing redis client", zap.Error(err))
		}
	}()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Fatal("Failed to connect to redis", zap.Error(err))
	}
	cancelPing()
	log.Info("Redis connected successfully")

	lockManager := cache.NewRedisLockManager(redisClient, "lock:")

	// Initialize repositories
	jobRepo := persistence.NewGormWorkpaperJobRepository(db.DB)
	moduleRepo := persistence.NewGormModuleInstanceRepository(db.DB)
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)
	overrideRepo := persistence.NewGormTransactionOverrideRepository(db.DB)
	fieldOverrideRepo := persistence.NewGormFieldOverrideRepository(db.DB)
	queryRepo := persistence.NewGormQueryRepository(db.DB)
	taskRepo := persistence.NewGormTaskRepository(db.DB)
	snapshotRepo := persistence.NewGormFreezeSnapshotRepository(db.DB)
	freezeUnit := persistence.NewGormFreezeUnit(db.DB)

	// Initialize application services
	calculator := motorvehicle.NewCalculator(cfg.Tax.Rates())
	jobService := workpaperapp.NewJobService(jobRepo, moduleRepo)
	transactionService := workpaperapp.NewTransactionService(transactionRepo, jobRepo)
	overrideService := workpaperapp.NewOverrideService(overrideRepo, fieldOverrideRepo, transactionRepo, jobRepo, moduleRepo, lockManager)
	calculationService := workpaperapp.NewCalculationService(jobRepo, moduleRepo, transactionRepo, overrideRepo, fieldOverrideRepo, calculator)
	freezeService := workpaperapp.NewFreezeService(jobRepo, moduleRepo, snapshotRepo, fieldOverrideRepo, freezeUnit, calculationService, lockManager)
	queryService := workpaperapp.NewQueryService(queryRepo, taskRepo, jobRepo)

	jwtService := auth.NewJWTService(cfg.JWT)

	// Initialize event bus with the audit log subscriber
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewAuditLogHandler(log))

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Inject event bus into services that publish events
	jobService.SetEventPublisher(eventBus)
	transactionService.SetEventPublisher(eventBus)
	overrideService.SetEventPublisher(eventBus)
	freezeService.SetEventPublisher(eventBus)
	queryService.SetEventPublisher(eventBus)

	// Initialize HTTP handlers
	jobHandler := handler.NewJobHandler(jobService, calculationService)
	transactionHandler := handler.NewTransactionHandler(transactionService)
	overrideHandler := handler.NewOverrideHandler(overrideService, calculationService)
	calculationHandler := handler.NewCalculationHandler(calculationService)
	freezeHandler := handler.NewFreezeHandler(freezeService)
	queryHandler := handler.NewQueryHandler(queryService)
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
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log, "/health"))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	staffOnly := middleware.RequireAdmin()

	// Job and module routes. Everything that mutates workpapers is staff-only.
	jobRoutes := router.NewDomainGroup("jobs", "/jobs")
	jobRoutes.Use(staffOnly)
	jobRoutes.POST("", jobHandler.Create)
	jobRoutes.GET("/:id", jobHandler.GetByID)
	jobRoutes.PUT("/:id/notes", jobHandler.UpdateNotes)
	jobRoutes.PUT("/:id/status", jobHandler.SetStatus)
	jobRoutes.GET("/:id/summary", jobHandler.Summary)
	jobRoutes.POST("/:id/modules", jobHandler.CreateModule)
	jobRoutes.GET("/:id/modules", jobHandler.ListModules)
	jobRoutes.GET("/:id/overrides", overrideHandler.ListJobOverrides)
	jobRoutes.GET("/:id/effective-transactions", overrideHandler.EffectiveTransactions)
	jobRoutes.PUT("/:id/transactions/:transaction_id/override", overrideHandler.UpsertTransactionOverride)
	jobRoutes.DELETE("/:id/transactions/:transaction_id/override", overrideHandler.DeleteTransactionOverride)
	jobRoutes.POST("/:id/freeze", freezeHandler.FreezeJob)
	jobRoutes.POST("/:id/reopen", freezeHandler.ReopenJob)
	jobRoutes.GET("/:id/snapshots", freezeHandler.ListJobSnapshots)
	jobRoutes.GET("/:id/queries", queryHandler.ListByJob)
	jobRoutes.GET("/:id/queries/summary", queryHandler.Summary)

	moduleRoutes := router.NewDomainGroup("modules", "/modules")
	moduleRoutes.Use(staffOnly)
	moduleRoutes.GET("/:id", jobHandler.GetModule)
	moduleRoutes.PUT("/:id/config", jobHandler.UpdateModuleConfig)
	moduleRoutes.PUT("/:id/status", jobHandler.SetModuleStatus)
	moduleRoutes.POST("/:id/calculate", calculationHandler.Calculate)
	moduleRoutes.PUT("/:id/field-overrides", overrideHandler.UpsertFieldOverride)
	moduleRoutes.GET("/:id/field-overrides", overrideHandler.ListFieldOverrides)
	moduleRoutes.DELETE("/:id/field-overrides/:field_key", overrideHandler.DeleteFieldOverride)
	moduleRoutes.POST("/:id/freeze", freezeHandler.FreezeModule)
	moduleRoutes.POST("/:id/reopen", freezeHandler.ReopenModule)
	moduleRoutes.GET("/:id/snapshots", freezeHandler.ListModuleSnapshots)
	moduleRoutes.GET("/:id/snapshots/latest", freezeHandler.LatestModuleSnapshot)

	transactionRoutes := router.NewDomainGroup("transactions", "/transactions")
	transactionRoutes.Use(staffOnly)
	transactionRoutes.POST("", transactionHandler.Ingest)
	transactionRoutes.GET("/:id", transactionHandler.GetByID)
	transactionRoutes.DELETE("/:id", transactionHandler.Delete)

	snapshotRoutes := router.NewDomainGroup("snapshots", "/snapshots")
	snapshotRoutes.Use(staffOnly)
	snapshotRoutes.GET("/:id", freezeHandler.GetSnapshot)

	// Query routes stay open to client tokens; creation, sending, and
	// lifecycle changes are gated per-handler by the domain rules.
	queryRoutes := router.NewDomainGroup("queries", "/queries")
	queryRoutes.POST("", staffOnly, queryHandler.Create)
	queryRoutes.POST("/bulk-send", staffOnly, queryHandler.BulkSend)
	queryRoutes.GET("/:id", queryHandler.GetByID)
	queryRoutes.POST("/:id/send", staffOnly, queryHandler.Send)
	queryRoutes.POST("/:id/messages", queryHandler.AddMessage)
	queryRoutes.POST("/:id/respond", queryHandler.Respond)
	queryRoutes.POST("/:id/resolve", staffOnly, queryHandler.Resolve)
	queryRoutes.POST("/:id/dismiss", staffOnly, queryHandler.Dismiss)

	clientRoutes := router.NewDomainGroup("clients", "/clients")
	clientRoutes.GET("/:client_id/jobs", staffOnly, jobHandler.ListByClient)
	clientRoutes.GET("/:client_id/transactions", staffOnly, transactionHandler.ListByClient)
	clientRoutes.GET("/:client_id/tasks", queryHandler.ListClientTasks)

	// Reference data
	referenceRoutes := router.NewDomainGroup("reference", "")
	referenceRoutes.GET("/rates", calculationHandler.Rates)
	referenceRoutes.GET("/module-types/:module_type/methods", calculationHandler.MethodCatalog)

	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Health)

	r.Register(jobRoutes).
		Register(moduleRoutes).
		Register(transactionRoutes).
		Register(snapshotRoutes).
		Register(queryRoutes).
		Register(clientRoutes).
		Register(referenceRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

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
func healthHandler(db *persistence.Database) gin.HandlerFunc {
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
