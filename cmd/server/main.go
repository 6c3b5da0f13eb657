package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/signbridge/backend/internal/application/workflow"
	"github.com/signbridge/backend/internal/domain/signing"
	"github.com/signbridge/backend/internal/domain/workitem"
	"github.com/signbridge/backend/internal/infrastructure/cache"
	"github.com/signbridge/backend/internal/infrastructure/config"
	"github.com/signbridge/backend/internal/infrastructure/esign"
	"github.com/signbridge/backend/internal/infrastructure/logger"
	"github.com/signbridge/backend/internal/infrastructure/preview"
	"github.com/signbridge/backend/internal/infrastructure/storage"
	"github.com/signbridge/backend/internal/infrastructure/telemetry"
	"github.com/signbridge/backend/internal/infrastructure/workboard"
	"github.com/signbridge/backend/internal/interfaces/http/handler"
	"github.com/signbridge/backend/internal/interfaces/http/middleware"
	"github.com/signbridge/backend/internal/interfaces/http/router"
	"go.uber.org/zap"

	_ "github.com/signbridge/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			SignBridge API
//	@version		1.0
//	@description	Sends work-board item documents for e-signature: resolves the item, maps its contacts to template roles and dispatches the submission.

//	@contact.name	API Support

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@externalDocs.description	OpenAPI
//	@externalDocs.url			https://swagger.io/resources/open-api/

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = logger.Sync(log) }()

	ctx := context.Background()

	// Telemetry
	telCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Environment:       cfg.App.Env,
		Insecure:          cfg.Telemetry.Insecure,
		AlwaysSample:      []string{"workflow.submit", "workflow.create_template"},
	}
	tp, err := telemetry.NewTracerProvider(ctx, telCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	mp, err := telemetry.NewMeterProvider(ctx, telCfg, cfg.Telemetry.MetricsInterval, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	lp, err := telemetry.NewLoggerProvider(ctx, telCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log = lp.Bridge(log, logger.ParseLevel(cfg.Log.Level))

	log.Info("Starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.Bool("telemetry", cfg.Telemetry.Enabled),
	)

	metrics, err := telemetry.NewWorkflowMetrics(mp.Meter("signbridge/workflow"))
	if err != nil {
		log.Fatal("Failed to initialize workflow metrics", zap.Error(err))
	}

	// Work board and signing platform
	fixtures := workboard.NewFixtureBoard()
	board, boardMode := newWorkBoard(cfg, fixtures, log)
	signer, signerMode := newSigner(cfg, log)

	// Stores
	assetFactory := cache.NewAssetURLCacheFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.IsProduction()),
		cache.WithSweepInterval(cfg.Session.SweepInterval),
	)
	assets, err := assetFactory.CreateCache()
	if err != nil {
		log.Fatal("Failed to create asset URL cache", zap.Error(err))
	}
	sessions := cache.NewInMemorySessionStore(cfg.Session.IdleTimeout, cfg.Session.SweepInterval,
		cache.WithSessionLogger(log),
	)
	blobs, err := newBlobStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to create preview store", zap.Error(err))
	}
	previews := preview.NewRegistry(blobs, preview.Config{
		TTL:           cfg.Preview.TTL,
		SweepInterval: cfg.Preview.SweepInterval,
		MaxBytes:      cfg.Preview.MaxBytes,
	}, preview.WithLogger(log))

	// Workflow
	resolver := workflow.NewContextResolver(board, workflow.ResolverConfig{
		TestMode:    cfg.Monday.TestMode,
		TestBoardID: cfg.Monday.TestBoardID,
		TestItems:   cfg.Monday.TestItems,
	}, metrics)
	workflowService := workflow.NewService(workflow.Dependencies{
		Resolver: resolver,
		Live:     board,
		Fixtures: fixtures,
		Signer:   signer,
		Extractor: workitem.NewExtractor(workitem.ExtractorConfig{
			EmailKeywords: cfg.Extraction.EmailKeywords,
			FileKeywords:  cfg.Extraction.FileKeywords,
		}),
		Sessions: sessions,
		Assets:   assets,
		Previews: previews,
	},
		workflow.WithLogger(log),
		workflow.WithMetrics(metrics),
		workflow.WithTestBoard(cfg.Monday.TestBoardID, cfg.Monday.TestItems),
		workflow.WithAssetURLTTL(cfg.AssetCache.TTL),
	)

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log, "/health"))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
		SkipPaths:   []string{"/health"},
	}))
	engine.Use(middleware.SpanAttributes())
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: mp,
		Enabled:       cfg.Telemetry.Enabled,
		SkipPaths:     []string{"/health"},
	}))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	security := middleware.EmbeddedSecurityConfig("https://*.monday.com")
	security.FrameSources = []string{cfg.DocuSeal.BaseURL}
	security.ConnectSources = []string{cfg.DocuSeal.BaseURL}
	security.HSTSEnabled = cfg.IsProduction()
	engine.Use(middleware.SecureWithConfig(security))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize, "/signing-api/"))

	var limiter *middleware.RateLimiter
	var downloadLimit gin.HandlerFunc
	if cfg.HTTP.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		downloadLimit = middleware.RateLimit(limiter)
	}

	// Handlers
	var checks []handler.HealthCheck
	if redisCache, ok := assets.(*cache.RedisAssetURLCache); ok {
		checks = append(checks, handler.HealthCheck{Name: "redis", Check: redisCache.Ping})
	}
	systemHandler := handler.NewSystemHandler(cfg.App.Name, cfg.App.Version, map[string]string{
		"workboard":   boardMode,
		"signing":     signerMode,
		"previews":    cfg.Preview.Backend,
		"asset_cache": cacheMode(assets),
	}, checks...)
	proxyHandler, err := handler.NewProxyHandler(handler.ProxyConfig{
		SigningBaseURL:  cfg.DocuSeal.BaseURL,
		SigningAPIKey:   cfg.DocuSeal.APIKey,
		DownloadHosts:   cfg.HTTP.DownloadAllowedHosts,
		DownloadTimeout: cfg.HTTP.DownloadTimeout,
	})
	if err != nil {
		log.Fatal("Failed to create proxy handler", zap.Error(err))
	}

	// Swagger documentation endpoint
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.NewRouter(engine, router.WithAPIVersion("v1"), router.WithLogger(log)).
		RegisterRoot(handler.RootRoutes(systemHandler, proxyHandler, downloadLimit)).
		Register(
			handler.SessionRoutes(handler.NewSessionHandler(workflowService)),
			handler.SigningRoutes(handler.NewSigningHandler(workflowService)),
			handler.PreviewRoutes(handler.NewPreviewHandler(workflowService)),
			handler.SystemRoutes(systemHandler),
		).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if limiter != nil {
		limiter.Stop()
	}
	if err := previews.Close(); err != nil {
		log.Warn("Failed to revoke previews", zap.Error(err))
	}
	if err := sessions.Close(); err != nil {
		log.Warn("Failed to close session store", zap.Error(err))
	}
	if err := assets.Close(); err != nil {
		log.Warn("Failed to close asset URL cache", zap.Error(err))
	}

	if err := lp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Failed to shutdown logger provider", zap.Error(err))
	}
	if err := mp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Failed to shutdown meter provider", zap.Error(err))
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Failed to shutdown tracer provider", zap.Error(err))
	}

	log.Info("Server exited")
}

// newWorkBoard returns the live work-board adapter, or the fixtures when
// mocking is configured
func newWorkBoard(cfg *config.Config, fixtures *workboard.FixtureBoard, log *zap.Logger) (workitem.Platform, string) {
	if cfg.Monday.UseMock {
		log.Info("Work board running on fixtures")
		return fixtures, "fixture"
	}
	adapter, err := workboard.NewMondayAdapter(workboard.NewMondayConfig(cfg.Monday))
	if err != nil {
		log.Fatal("Failed to create work board adapter", zap.Error(err))
	}
	return adapter, "live"
}

func newSigner(cfg *config.Config, log *zap.Logger) (signing.Platform, string) {
	if cfg.DocuSeal.UseMock {
		log.Info("Signing platform running on fixtures")
		return esign.NewFixtureSigner(cfg.DocuSeal.BaseURL), "fixture"
	}
	adapter, err := esign.NewDocuSealAdapter(esign.NewDocuSealConfig(cfg.DocuSeal))
	if err != nil {
		log.Fatal("Failed to create signing adapter", zap.Error(err))
	}
	return adapter, "live"
}

func newBlobStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (storage.BlobStore, error) {
	if cfg.Preview.Backend != "s3" {
		return storage.NewMemoryBlobStore(cfg.Preview.PublicBaseURL), nil
	}
	store, err := storage.NewS3BlobStore(ctx, &cfg.Storage, storage.WithLogger(log))
	if err != nil {
		return nil, err
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func cacheMode(c cache.AssetURLCache) string {
	if _, ok := c.(*cache.RedisAssetURLCache); ok {
		return "redis"
	}
	return "memory"
}
