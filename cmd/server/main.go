package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	appcl "github.com/erp/invoicelock/internal/application/customerlock"
	"github.com/erp/invoicelock/internal/domain/customerlock"
	"github.com/erp/invoicelock/internal/infrastructure/cache"
	"github.com/erp/invoicelock/internal/infrastructure/config"
	"github.com/erp/invoicelock/internal/infrastructure/event"
	"github.com/erp/invoicelock/internal/infrastructure/logger"
	"github.com/erp/invoicelock/internal/infrastructure/migration"
	"github.com/erp/invoicelock/internal/infrastructure/notification"
	"github.com/erp/invoicelock/internal/infrastructure/persistence"
	"github.com/erp/invoicelock/internal/infrastructure/scheduler"
	"github.com/erp/invoicelock/internal/infrastructure/telemetry"
	"github.com/erp/invoicelock/internal/interfaces/http/handler"
	"github.com/erp/invoicelock/internal/interfaces/http/middleware"
	"github.com/erp/invoicelock/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("Server exited with error", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	log.Info("Server exited gracefully")
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Starting invoice lock service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Tracing
	tp, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, version, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Warn("Tracer shutdown failed", zap.Error(err))
		}
	}()

	// Log export
	lp, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, version, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := lp.Shutdown(context.Background()); err != nil {
			log.Warn("Logger provider shutdown failed", zap.Error(err))
		}
	}()
	log = lp.Bridge(log, logger.ParseLevel(cfg.Log.Level))

	// Database
	if err := migrateSchema(cfg, log); err != nil {
		return err
	}
	db, err := persistence.NewDatabase(&cfg.Database, log, cfg.Log.SQLLevel)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Database.Driver == "sqlite" {
		if err := db.AutoMigrate(); err != nil {
			return fmt.Errorf("failed to create sqlite schema: %w", err)
		}
	}
	if err := telemetry.RegisterDBTracing(db.DB, cfg.Telemetry, dbSystem(cfg.Database.Driver), nil, log); err != nil {
		return err
	}
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	lockRepo := persistence.NewGormCustomerLockRepository(db.DB)
	invoiceRepo := persistence.NewGormSalesInvoiceRepository(db.DB)

	checks := map[string]handler.Pinger{"database": handler.PingFunc(db.Ping)}

	// Status cache and scan lock
	var (
		statusCache appcl.StatusCache
		scanLocker  appcl.ScanLocker = cache.NewLocalScanLocker()
	)
	if cfg.Redis.Enabled {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()

		scanLocker = cache.NewRedisScanLocker(rdb)
		if cfg.Lock.CacheTTL > 0 {
			statusCache = cache.NewTieredStatusCache(
				cache.NewMemoryStatusCache(localCacheTTL(cfg.Lock.CacheTTL)),
				cache.NewRedisStatusCache(rdb, "", cfg.Lock.CacheTTL),
				log,
			)
		}
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	} else if cfg.Lock.CacheTTL > 0 {
		statusCache = cache.NewMemoryStatusCache(cfg.Lock.CacheTTL)
	}

	// Notifications
	var notifier appcl.Notifier
	if cfg.Notification.Enabled {
		n, err := notification.NewShoutrrrNotifier(
			cfg.Notification.URLs,
			cfg.Notification.Timeout,
			cfg.Notification.RecipientParam,
			log,
		)
		if err != nil {
			return err
		}
		notifier = n
	}

	// Event bus
	bus := event.NewInMemoryEventBus(log, event.DefaultQueueSize)
	audit := appcl.NewAuditHandler(log)
	bus.Subscribe(audit, audit.EventTypes()...)
	if err := bus.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := bus.Stop(stopCtx); err != nil {
			log.Warn("Event bus stop failed", zap.Error(err))
		}
	}()

	// Services
	metrics := telemetry.NewMetrics()
	if stats, ok := statusCache.(telemetry.StatusCacheStats); ok {
		if err := metrics.RegisterStatusCache(stats); err != nil {
			return err
		}
	}
	policy := customerlock.Policy{BlockSoft: cfg.Lock.BlockSoft, ClearOnHard: cfg.Lock.ClearOnHard}

	statusService := appcl.NewStatusService(lockRepo, statusCache, log)
	documentValidator := appcl.NewDocumentValidator(statusService, policy, log)
	scanService := appcl.NewScanService(appcl.ScanServiceConfig{
		InvoiceRepo: invoiceRepo,
		LockRepo:    lockRepo,
		Notifier:    notifier,
		Publisher:   bus,
		Cache:       statusCache,
		Locker:      scanLocker,
		LockTTL:     cfg.Scheduler.LockTTL,
		Recorder:    metrics,
		Logger:      log,
	})
	unlockService := appcl.NewUnlockService(lockRepo, statusCache, bus, log)

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engineCfg := router.EngineConfig{
		Logger: log,
		CORS:   corsConfig(cfg.HTTP),
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     tp.IsEnabled(),
		},
		TrustedProxies: cfg.HTTP.TrustedProxies,
		Health:         handler.NewHealthHandler(version, checks),
	}
	if cfg.HTTP.MetricsEnabled {
		engineCfg.Metrics = metrics
	}
	engine, err := router.NewEngine(engineCfg)
	if err != nil {
		return err
	}
	router.NewRouter(engine).
		Register(handler.NewCustomerLockHandler(statusService, scanService, unlockService)).
		Register(handler.NewDocumentHandler(documentValidator, metrics)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Daily scan
	var trigger *scheduler.DailyTrigger
	if cfg.Scheduler.Enabled {
		trigger = scheduler.NewDailyTrigger(scheduler.DailyTriggerConfig{
			Hour:          cfg.Scheduler.Hour,
			Minute:        cfg.Scheduler.Minute,
			Location:      cfg.Scheduler.Location(),
			CheckInterval: cfg.Scheduler.CheckInterval,
			JobTimeout:    cfg.Scheduler.JobTimeout,
		}, scanService, log)
		if err := trigger.Start(ctx); err != nil {
			return err
		}
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
	}
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if trigger != nil {
		if err := trigger.Stop(shutdownCtx); err != nil {
			log.Warn("Scan trigger stop failed", zap.Error(err))
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// migrateSchema applies the embedded SQL migrations on postgres. It uses its
// own connection because closing the migrator closes the database handle.
func migrateSchema(cfg *config.Config, log *zap.Logger) error {
	if cfg.Database.Driver != "postgres" {
		return nil
	}
	sqlDB, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer sqlDB.Close()

	m, err := migration.New(sqlDB, "", log)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Debug("Migrator close", zap.Error(err))
		}
	}()
	return m.Up()
}

// dbSystem maps the configured driver to the semconv db.system value
func dbSystem(driver string) string {
	if driver == "postgres" {
		return "postgresql"
	}
	return driver
}

// localCacheTTL keeps the per-replica tier shorter than the shared one so
// invalidations made by other replicas are picked up quickly
func localCacheTTL(shared time.Duration) time.Duration {
	const maxLocal = 30 * time.Second
	return min(shared, maxLocal)
}

func corsConfig(cfg config.HTTPConfig) middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	if len(cfg.CORSAllowOrigins) > 0 {
		cors.AllowOrigins = cfg.CORSAllowOrigins
	}
	if len(cfg.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.CORSAllowMethods
	}
	if len(cfg.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.CORSAllowHeaders
	}
	return cors
}
