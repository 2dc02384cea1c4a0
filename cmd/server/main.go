package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	merchapp "github.com/curator/backend/internal/application/merchandising"
	"github.com/curator/backend/internal/domain/merchandising"
	"github.com/curator/backend/internal/domain/shared"
	"github.com/curator/backend/internal/infrastructure/auth"
	"github.com/curator/backend/internal/infrastructure/cache"
	"github.com/curator/backend/internal/infrastructure/config"
	"github.com/curator/backend/internal/infrastructure/event"
	"github.com/curator/backend/internal/infrastructure/logger"
	"github.com/curator/backend/internal/infrastructure/scheduler"
	"github.com/curator/backend/internal/infrastructure/snapshot"
	"github.com/curator/backend/internal/infrastructure/storefront"
	"github.com/curator/backend/internal/infrastructure/telemetry"
	"github.com/curator/backend/internal/interfaces/http/handler"
	"github.com/curator/backend/internal/interfaces/http/middleware"
	"github.com/curator/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/curator/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			Curator Backend API
//	@version		1.0
//	@description	Storefront product curation service - classifies product titles and assigns products to collections
//	@termsOfService	http://swagger.io/terms/

//	@contact.name	API Support
//	@contact.url	https://github.com/curator/backend
//	@contact.email	support@curator.example.com

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
		_ = logger.Sync(log)
	}()

	log.Info("Starting Curator Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize OpenTelemetry tracer provider (no-op when disabled)
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
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Initialize OpenTelemetry meter provider
	meterProvider, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	// Initialize OpenTelemetry logger provider and bridge zap into OTLP
	loggerProvider, err := telemetry.NewLoggerProvider(context.Background(), telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := loggerProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down logger provider", zap.Error(err))
		}
	}()

	if loggerProvider.IsEnabled() {
		otelCore := telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
			ServiceName:    cfg.Telemetry.ServiceName,
			LoggerProvider: loggerProvider,
			Level:          zapcore.InfoLevel,
		})
		log = telemetry.NewBridgedLogger(log.Core(), otelCore,
			zap.AddCaller(),
			zap.AddStacktrace(zapcore.ErrorLevel),
		)
		log.Info("Logs bridged to OTLP collector")
	}

	// Start continuous profiler
	profilerConfig := telemetry.DefaultProfilerConfig(cfg.Telemetry.ServiceName, cfg.Telemetry.ProfilingServerAddress)
	profilerConfig.Enabled = cfg.Telemetry.ProfilingEnabled
	profilerConfig.BasicAuthUser = cfg.Telemetry.ProfilingBasicAuthUser
	profilerConfig.BasicAuthPassword = cfg.Telemetry.ProfilingBasicAuthPass
	profiler, err := telemetry.NewProfiler(profilerConfig, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()

	// Span profiles need the profiler running before they are enabled
	if profiler.IsEnabled() {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to enable span profiles", zap.Error(err))
		}
	}

	// Domain metric instruments
	curationMetrics := telemetry.NewNopCurationMetrics()
	if meterProvider.IsEnabled() {
		curationMetrics, err = telemetry.NewCurationMetrics(telemetry.CurationMetricsConfig{
			Meter:  meterProvider.Meter("curator.merchandising"),
			Logger: log,
		})
		if err != nil {
			log.Fatal("Failed to initialize curation metrics", zap.Error(err))
		}
	}

	// Load the collection taxonomy from the configured snapshot source
	snapshotSource, err := snapshot.NewSource(&cfg.Snapshot, log)
	if err != nil {
		log.Fatal("Failed to initialize snapshot source", zap.Error(err))
	}
	taxonomyProvider := merchandising.NewTaxonomyProvider(snapshotSource)
	taxonomy, err := taxonomyProvider.Taxonomy(context.Background())
	if err != nil {
		log.Fatal("Failed to load collection taxonomy", zap.Error(err))
	}
	log.Info("Collection taxonomy loaded",
		zap.String("source", cfg.Snapshot.Source),
		zap.Int("collections", taxonomy.Size()),
	)

	// Storefront REST client for product reads and collection writes
	storefrontClient, err := storefront.NewClient(&cfg.Storefront, storefront.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to initialize storefront client", zap.Error(err))
	}

	// Webhook signature verifier
	verifier := storefront.NewVerifier(&cfg.Webhook, log)

	// Webhook dedup store (memory or Redis per config)
	storeFactory := cache.NewIdempotencyStoreFactory(cfg.Idempotency, cfg.Redis, cache.WithLogger(log))
	idempotencyStore, err := storeFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)

	// Product processor: classify titles, assign storefront collections
	processor := merchapp.NewProcessor(storefrontClient, taxonomyProvider, cfg.Processor, log, curationMetrics)

	// Sync scheduler runs batch jobs on a single worker to keep writes ordered
	schedulerConfig := scheduler.DefaultSyncSchedulerConfig()
	schedulerConfig.Interval = cfg.Scheduler.Interval
	schedulerConfig.Lookback = cfg.Processor.WindowLookback
	schedulerConfig.JobTimeout = cfg.Scheduler.JobTimeout
	schedulerConfig.RetryAttempts = cfg.Scheduler.RetryAttempts
	schedulerConfig.RetryDelay = cfg.Scheduler.RetryDelay
	schedulerConfig.HistorySize = cfg.Scheduler.HistorySize
	syncScheduler, err := scheduler.NewSyncScheduler(
		schedulerConfig,
		merchapp.NewCurationExecutor(processor, log),
		log,
		scheduler.WithQueueDepthRecorder(curationMetrics),
	)
	if err != nil {
		log.Fatal("Failed to initialize sync scheduler", zap.Error(err))
	}

	// Register event handlers for webhook-driven processing
	// Product upserts are deduplicated by event ID before reaching the scheduler
	idempotencyMetrics := &event.IdempotencyMetrics{}
	productUpsertedHandler := event.NewIdempotentHandler(
		merchapp.NewProductUpsertedHandler(syncScheduler, log),
		idempotencyStore,
		log,
		event.WithIdempotencyConfig(shared.IdempotencyConfig{
			TTL:     cfg.Idempotency.TTL,
			Enabled: true,
		}),
		event.WithIdempotencyMetrics(idempotencyMetrics),
		event.WithDuplicateRecorder(curationMetrics),
	)
	productDeletedHandler := merchapp.NewProductDeletedHandler(log)
	eventBus.Subscribe(productUpsertedHandler)
	eventBus.Subscribe(productDeletedHandler)

	log.Info("Event handlers registered",
		zap.Strings("product_upserted_events", productUpsertedHandler.EventTypes()),
		zap.Strings("product_deleted_events", productDeletedHandler.EventTypes()),
	)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Start sync scheduler
	if err := syncScheduler.Start(context.Background()); err != nil {
		log.Fatal("Failed to start sync scheduler", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := syncScheduler.Stop(ctx); err != nil {
			log.Error("Error stopping sync scheduler", zap.Error(err))
		}
	}()

	// Webhook intake service
	webhookService := merchapp.NewWebhookService(verifier, eventBus, log, curationMetrics)

	// Admin API token validation. Revocation shares the Redis instance
	// with the dedup store when one is configured, otherwise tokens are
	// revocable per process only.
	jwtService := auth.NewJWTService(cfg.Auth)
	var tokenBlacklist auth.TokenBlacklist
	if cfg.Idempotency.Store == "redis" {
		blacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn("redis token blacklist unavailable, using in-memory revocation", zap.Error(err))
			tokenBlacklist = auth.NewInMemoryTokenBlacklist()
		} else {
			tokenBlacklist = blacklist
		}
	} else {
		tokenBlacklist = auth.NewInMemoryTokenBlacklist()
	}

	// Initialize HTTP handlers
	webhookHandler := handler.NewWebhookHandler(webhookService, cfg.Webhook.MaxBodySize, log)
	syncHandler := handler.NewSyncHandler(syncScheduler, cfg.Processor.WindowLookback, log)
	systemHandler := handler.NewSystemHandler(cfg, taxonomyProvider, syncScheduler, verifier, idempotencyMetrics, log)

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
	// 7. RateLimit - Apply rate limiting (if enabled)
	// 8. Tracing/Metrics/Profiling - Telemetry (no-ops when disabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
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
	var rateLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: meterProvider,
		ServiceName:   cfg.Telemetry.ServiceName,
		Enabled:       cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.ProfilingWithConfig(middleware.ProfilingConfig{
		Enabled:          cfg.Telemetry.ProfilingEnabled,
		SkipPaths:        []string{"/health"},
		SkipPathPrefixes: []string{"/swagger"},
	}))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", systemHandler.Health)

	// Swagger documentation endpoint, gated per config
	if cfg.Swagger.Enabled {
		swaggerGuard := middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}, middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			JWTService: jwtService,
			Logger:     log,
		}))
		engine.GET("/swagger/*any", swaggerGuard, ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Storefront webhook endpoints (no JWT - verified by HMAC signature)
	// These endpoints are called directly by the storefront platform
	webhookGroup := engine.Group("/webhooks")
	if rateLimiter != nil {
		webhookGroup.Use(middleware.WebhookRateLimit(rateLimiter))
	}
	webhookGroup.POST("/products/create", webhookHandler.HandleProductCreate)
	webhookGroup.POST("/products/update", webhookHandler.HandleProductUpdate)
	webhookGroup.POST("/products/delete", webhookHandler.HandleProductDelete)

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	// Configure skip paths for public endpoints
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: tokenBlacklist,
		SkipPaths: []string{
			"/api/v1/system/ping",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Sync domain (manual triggers, job history)
	syncRoutes := router.NewDomainGroup("/sync")
	syncRoutes.POST("/trigger", middleware.RequireScope(auth.ScopeSyncTrigger), syncHandler.TriggerSync)
	syncRoutes.GET("/jobs", middleware.RequireScope(auth.ScopeSystemRead), syncHandler.ListJobs)
	syncRoutes.GET("/jobs/:id", middleware.RequireScope(auth.ScopeSystemRead), syncHandler.GetJob)

	// System domain (environment check, event stats)
	systemRoutes := router.NewDomainGroup("/system")
	systemRoutes.GET("/env-check", middleware.RequireScope(auth.ScopeSystemRead), systemHandler.EnvCheck)
	systemRoutes.GET("/event-stats", middleware.RequireScope(auth.ScopeSystemRead), systemHandler.EventStats)
	systemRoutes.GET("/ping", systemHandler.Ping)

	// Register all domain groups
	r.Register(syncRoutes).
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
