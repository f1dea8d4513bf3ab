package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	browseapp "github.com/carbure/backend/internal/application/browse"
	declapp "github.com/carbure/backend/internal/application/declaration"
	lotapp "github.com/carbure/backend/internal/application/lot"
	settingsapp "github.com/carbure/backend/internal/application/settings"
	stockapp "github.com/carbure/backend/internal/application/stock"
	"github.com/carbure/backend/internal/domain/lot"
	"github.com/carbure/backend/internal/infrastructure/cache"
	"github.com/carbure/backend/internal/infrastructure/config"
	"github.com/carbure/backend/internal/infrastructure/event"
	"github.com/carbure/backend/internal/infrastructure/logger"
	"github.com/carbure/backend/internal/infrastructure/persistence"
	"github.com/carbure/backend/internal/infrastructure/scheduler"
	"github.com/carbure/backend/internal/interfaces/http/handler"
	"github.com/carbure/backend/internal/interfaces/http/middleware"
	"github.com/carbure/backend/internal/interfaces/http/router"
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

	log.Info("Starting Carbure Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level)))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Repositories
	lotRepo := persistence.NewGormLotRepository(db.DB)
	stockRepo := persistence.NewGormStockRepository(db.DB)
	transformationRepo := persistence.NewGormTransformationRepository(db.DB)
	declarationRepo := persistence.NewGormDeclarationRepository(db.DB)
	settingsRepo := persistence.NewGormSettingsRepository(db.DB)

	// Event bus: accepted deliveries derive custody positions asynchronously
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(stockapp.NewLotAcceptedHandler(lotRepo, stockRepo, log), lot.EventTypeLotAccepted)
	eventBus.Subscribe(stockapp.NewLotAcceptanceCancelledHandler(stockRepo, log), lot.EventTypeLotAcceptanceCancelled)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Listing cache and its invalidation dispatcher
	cacheFactory := cache.NewScopeCacheFactory(cfg.Cache, cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	)
	listingCache, err := cacheFactory.CreateCache()
	if err != nil {
		log.Fatal("Failed to create listing cache", zap.Error(err))
	}
	defer func() {
		if err := listingCache.Close(); err != nil {
			log.Error("Error closing listing cache", zap.Error(err))
		}
	}()
	invalidator := cache.NewInvalidationDispatcher(listingCache, log)

	// Application services
	lotService := lotapp.NewService(lotRepo, stockRepo)
	lotService.SetEventPublisher(eventBus)
	stockService := stockapp.NewService(stockRepo, transformationRepo, lotRepo)
	stockService.SetEventPublisher(eventBus)
	declarationService := declapp.NewService(declarationRepo, lotRepo, log)
	declarationService.SetEventPublisher(eventBus)
	settingsService := settingsapp.NewService(settingsRepo)

	// Browsing coordinator collaborators
	tickScheduler := scheduler.NewTickScheduler(log)
	if err := tickScheduler.Start(context.Background()); err != nil {
		log.Fatal("Failed to start scheduler", zap.Error(err))
	}
	browseGateway := browseapp.NewLocalGateway(lotRepo, stockRepo, settingsRepo)
	routeSink := handler.NewLogRouteSink(log)
	newCoordinator := func() *browseapp.Coordinator {
		return browseapp.NewCoordinator(browseGateway, tickScheduler, settingsService, routeSink, log)
	}

	// HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Routes
	browseHandler := handler.NewBrowseHandler(newCoordinator)
	r := router.NewRouter(engine)
	r.Register(handler.NewLotHandler(lotService, listingCache, invalidator, log).WithSelectionPruner(browseHandler)).
		Register(handler.NewStockHandler(stockService, listingCache, invalidator, log).WithSelectionPruner(browseHandler)).
		Register(handler.NewDeclarationHandler(declarationService, invalidator)).
		Register(handler.NewSettingsHandler(settingsService)).
		Register(browseHandler).
		Register(handler.NewSystemHandler(db))
	r.Setup()

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
	if err := tickScheduler.Stop(ctx); err != nil {
		log.Error("Scheduler did not stop cleanly", zap.Error(err))
	}
	if err := eventBus.Stop(ctx); err != nil {
		log.Error("Event bus did not stop cleanly", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
