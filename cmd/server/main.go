package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appaudit "github.com/gastoserp/backend/internal/application/audit"
	appreq "github.com/gastoserp/backend/internal/application/requisition"
	"github.com/gastoserp/backend/internal/domain/shared"
	"github.com/gastoserp/backend/internal/infrastructure/auth"
	"github.com/gastoserp/backend/internal/infrastructure/cache"
	"github.com/gastoserp/backend/internal/infrastructure/config"
	"github.com/gastoserp/backend/internal/infrastructure/event"
	"github.com/gastoserp/backend/internal/infrastructure/logger"
	"github.com/gastoserp/backend/internal/infrastructure/notification"
	"github.com/gastoserp/backend/internal/infrastructure/persistence"
	"github.com/gastoserp/backend/internal/infrastructure/storage"
	"github.com/gastoserp/backend/internal/infrastructure/telemetry"
	"github.com/gastoserp/backend/internal/interfaces/http/handler"
	"github.com/gastoserp/backend/internal/interfaces/http/middleware"
	"github.com/gastoserp/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting requisition backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize tracing
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

	// Database connection with zap-backed GORM logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Per-query tracing spans on top of the GORM logger
	if cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.App.Env != "production",
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
			DBSystem:        "postgresql",
		}, log)
		if err := dbTracing.Register(db.DB); err != nil {
			log.Fatal("Failed to register database tracing plugin", zap.Error(err))
		}
	}

	// Idempotency store: Redis when reachable, in-memory fallback so a
	// missing Redis never takes the service down outside production
	var idempotencyStore shared.IdempotencyStore
	redisStore, err := cache.NewRedisIdempotencyStore(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		if cfg.App.Env == "production" {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		log.Warn("Redis unavailable, using in-memory idempotency store", zap.Error(err))
		idempotencyStore = cache.NewInMemoryIdempotencyStore()
	} else {
		idempotencyStore = redisStore
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()
	idempotencyCfg := shared.IdempotencyConfig{
		Enabled: cfg.Idempotency.Enabled,
		TTL:     cfg.Idempotency.TTL,
	}

	// Object storage for payment vouchers and evidence files
	var objectStorage appreq.ObjectStorageService
	if cfg.Storage.Endpoint == "" && cfg.App.Env != "production" {
		log.Warn("No object storage endpoint configured, using stub storage")
		objectStorage = storage.NewStubObjectStorage()
	} else {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		if err := s3Storage.EnsureBucket(context.Background()); err != nil {
			log.Fatal("Failed to ensure storage bucket", zap.Error(err))
		}
		objectStorage = s3Storage
	}

	// Review-notice webhook. A broken notifier configuration must fail
	// at startup in production, not on the first evidence upload.
	notifier := notification.NewWebhookNotifier(&cfg.Notification, log)
	if err := notifier.Validate(); err != nil {
		if cfg.App.Env == "production" {
			log.Fatal("Invalid notification configuration", zap.Error(err))
		}
		log.Warn("Notification configuration incomplete, evidence uploads will fail until fixed", zap.Error(err))
	}

	// Domain event bus
	eventBus := event.NewInMemoryEventBus(log)

	// Repositories and transaction scope
	activityLogRepo := persistence.NewGormActivityLogRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Application services
	requisitionService := appreq.NewRequisitionService(txScope, activityLogRepo, eventBus, log)
	paymentService := appreq.NewPaymentService(txScope, objectStorage, activityLogRepo, eventBus, idempotencyStore, idempotencyCfg, log)
	evidenceService := appreq.NewEvidenceService(txScope, objectStorage, notifier, activityLogRepo, eventBus, idempotencyStore, idempotencyCfg, log)
	adjustmentService := appreq.NewAdjustmentService(txScope, activityLogRepo, eventBus, log)
	activityService := appaudit.NewActivityService(activityLogRepo)

	// JWT authentication
	jwtService := auth.NewJWTService(cfg.JWT)

	// Gin mode
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order: request ID first so recovery and logging can tag
	// entries, then CORS, then the body limit
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside API versioning, no auth)
	engine.GET("/health", healthHandler(db))

	// API routes behind JWT authentication
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		Logger:     log,
	}))

	r.Register(handler.NewRequisitionHandler(requisitionService)).
		Register(handler.NewPaymentHandler(paymentService)).
		Register(handler.NewEvidenceHandler(evidenceService)).
		Register(handler.NewAdjustmentHandler(adjustmentService)).
		Register(handler.NewActivityHandler(activityService))

	r.Setup()

	// HTTP server
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

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

// healthHandler reports liveness plus database reachability
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
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
