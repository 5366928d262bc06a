package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appinv "github.com/erp/procurement/internal/application/inventory"
	apppur "github.com/erp/procurement/internal/application/purchasing"
	"github.com/erp/procurement/internal/infrastructure/cache"
	"github.com/erp/procurement/internal/infrastructure/config"
	"github.com/erp/procurement/internal/infrastructure/event"
	"github.com/erp/procurement/internal/infrastructure/logger"
	"github.com/erp/procurement/internal/infrastructure/migration"
	"github.com/erp/procurement/internal/infrastructure/persistence"
	"github.com/erp/procurement/internal/infrastructure/scheduler"
	"github.com/erp/procurement/internal/infrastructure/storage"
	"github.com/erp/procurement/internal/infrastructure/telemetry"
	"github.com/erp/procurement/internal/infrastructure/telemetry/businessmetrics"
	"github.com/erp/procurement/internal/interfaces/http/handler"
	"github.com/erp/procurement/internal/interfaces/http/router"
	"github.com/erp/procurement/migrations"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

//	@title			Procurement API
//	@version		1.0
//	@description	Purchase orders, estimates and the inventory ledger they feed.
//	@BasePath		/api/v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()
	tel := setupTelemetry(ctx, cfg, log)
	if tel.logs.IsEnabled() {
		// Re-create the logger so every entry is also exported over OTLP
		if otelLog, err := logger.New(logCfg, tel.logs.ZapCore()); err == nil {
			log = otelLog
		} else {
			log.Warn("Failed to attach OTLP log core", zap.Error(err))
		}
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting procurement service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := openDatabase(cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	locker, err := cache.NewLockerFactory(cfg.Redis, cache.WithLogger(log)).CreateLocker()
	if err != nil {
		log.Fatal("Failed to create reconciliation locker", zap.Error(err))
	}
	defer func() {
		if err := locker.Close(); err != nil {
			log.Error("Error closing locker", zap.Error(err))
		}
	}()

	// Repositories
	orderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	itemRepo := persistence.NewGormPurchaseOrderItemRepository(db.DB)
	estimateRepo := persistence.NewGormPurchaseOrderEstimateRepository(db.DB)
	recordRepo := persistence.NewGormInventoryRecordRepository(db.DB)
	movementRepo := persistence.NewGormMovementRepository(db.DB)
	driftRepo := persistence.NewGormDriftRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Application services
	engine := apppur.NewReconciliationEngine(itemRepo, txScope.PurchasingScope(), locker, apppur.EngineConfig{
		PageSize: cfg.Reconciliation.PageSize,
		LockTTL:  cfg.Reconciliation.LockTTL,
	}, log)
	orderService := apppur.NewPurchaseOrderService(orderRepo, txScope.PurchasingScope(), engine, log)
	estimateService := apppur.NewEstimateService(orderRepo, estimateRepo, log)
	itemService := apppur.NewItemService(orderRepo, itemRepo, engine, log)
	varianceService := apppur.NewVarianceService(orderRepo, itemRepo, estimateRepo)
	inventoryService := appinv.NewInventoryService(recordRepo, movementRepo, txScope.InventoryScope(), log)
	driftService := appinv.NewDriftCheckService(driftRepo, txScope.InventoryScope(), appinv.DriftCheckConfig{
		AutoCorrect:  cfg.Drift.AutoCorrect,
		ExportPrefix: cfg.Storage.Prefix,
	}, log)

	// Events
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewLogHandler(log))
	orderService.SetEventPublisher(eventBus)
	inventoryService.SetEventPublisher(eventBus)
	driftService.SetEventPublisher(eventBus)

	// Business metrics
	var httpMeter metric.Meter
	if tel.meter.IsEnabled() {
		httpMeter = tel.meter.Meter("http.server")
		recorder, err := businessmetrics.New(tel.meter.Meter(telemetry.TracerName))
		if err != nil {
			log.Warn("Business metrics disabled", zap.Error(err))
		} else {
			engine.SetMetrics(recorder)
			driftService.SetMetrics(recorder)
		}
	}

	if exporter := reportExporter(ctx, cfg.Storage, log); exporter != nil {
		driftService.SetExporter(exporter)
	}

	var driftScheduler *scheduler.DriftScheduler
	if cfg.Drift.Enabled {
		driftScheduler = scheduler.NewDriftScheduler(scheduler.DriftSchedulerConfig{
			Interval: cfg.Drift.Interval,
			Timeout:  cfg.Drift.Timeout,
		}, driftService, locker, log)
		if err := driftScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start drift scheduler", zap.Error(err))
		}
		log.Info("Drift scheduler started",
			zap.Duration("interval", cfg.Drift.Interval),
			zap.Bool("auto_correct", cfg.Drift.AutoCorrect),
		)
	}

	// HTTP
	mode := gin.DebugMode
	if cfg.App.Env == "production" {
		mode = gin.ReleaseMode
	}
	ginEngine := router.NewEngine(router.EngineConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		Mode:           mode,
		TracingEnabled: tel.tracer.IsEnabled(),
		Profiling:      tel.profiler.IsEnabled(),
		MaxBodyBytes:   cfg.HTTP.MaxBodySize,
		Meter:          httpMeter,
	}, log)
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := ginEngine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	healthHandler := handler.NewHealthHandler(db, log)
	ginEngine.GET("/health", healthHandler.Health)

	router.NewRouter(ginEngine).
		Register(router.PurchasingRoutes{
			Orders:    handler.NewPurchaseOrderHandler(orderService),
			Estimates: handler.NewEstimateHandler(estimateService),
			Items:     handler.NewItemHandler(itemService, varianceService),
		}).
		Register(router.InventoryRoutes{
			Inventory: handler.NewInventoryHandler(inventoryService),
			Drift:     handler.NewDriftHandler(driftService),
		}).
		Register(router.HealthRoutes{Health: healthHandler}).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        ginEngine,
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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if driftScheduler != nil {
		if err := driftScheduler.Stop(shutdownCtx); err != nil {
			log.Error("Error stopping drift scheduler", zap.Error(err))
		}
	}
	tel.shutdown(shutdownCtx, log)

	log.Info("Server exited gracefully")
}

type telemetryStack struct {
	tracer   *telemetry.TracerProvider
	meter    *telemetry.MeterProvider
	logs     *telemetry.LoggerProvider
	profiler *telemetry.Profiler
}

// setupTelemetry starts every exporter that is configured. A failing exporter
// is logged and replaced by a disabled one; the service still starts.
func setupTelemetry(ctx context.Context, cfg *config.Config, log *zap.Logger) *telemetryStack {
	disabled := config.TelemetryConfig{}
	tel := &telemetryStack{}

	var err error
	if tel.tracer, err = telemetry.NewTracerProvider(ctx, cfg.Telemetry, log); err != nil {
		log.Warn("Tracing disabled", zap.Error(err))
		tel.tracer, _ = telemetry.NewTracerProvider(ctx, disabled, log)
	}
	if tel.meter, err = telemetry.NewMeterProvider(ctx, cfg.Telemetry, log); err != nil {
		log.Warn("Metrics disabled", zap.Error(err))
		tel.meter, _ = telemetry.NewMeterProvider(ctx, disabled, log)
	}
	if tel.logs, err = telemetry.NewLoggerProvider(ctx, cfg.Telemetry, log); err != nil {
		log.Warn("OTLP log export disabled", zap.Error(err))
		tel.logs, _ = telemetry.NewLoggerProvider(ctx, disabled, log)
	}
	if tel.profiler, err = telemetry.NewProfiler(cfg.Profiling, cfg.Telemetry.ServiceName, log); err != nil {
		log.Warn("Continuous profiling disabled", zap.Error(err))
		tel.profiler, _ = telemetry.NewProfiler(config.ProfilingConfig{}, cfg.Telemetry.ServiceName, log)
	}
	if cfg.Profiling.SpanProfiles && tel.profiler.IsEnabled() {
		tel.tracer.EnableSpanProfiles()
	}
	return tel
}

func (t *telemetryStack) shutdown(ctx context.Context, log *zap.Logger) {
	if err := t.profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := t.tracer.Shutdown(ctx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := t.meter.Shutdown(ctx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := t.logs.Shutdown(ctx); err != nil {
		log.Error("Error shutting down logger provider", zap.Error(err))
	}
}

func openDatabase(cfg *config.Config, log *zap.Logger) (*persistence.Database, error) {
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		return nil, err
	}
	if err := telemetry.InstrumentDB(db.DB, cfg.Telemetry, log); err != nil {
		log.Warn("Database tracing disabled", zap.Error(err))
	}
	log.Info("Database connected successfully")

	if cfg.Database.AutoMigrate {
		sqlDB, err := db.DB.DB()
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		m, err := migration.NewFromFS(sqlDB, migrations.FS, ".", log)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		// Closing the migrator would close the shared *sql.DB
		if err := m.Up(); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

// reportExporter returns the drift summary sink: S3 when a bucket is
// configured, nothing otherwise.
func reportExporter(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) appinv.ReportExporter {
	if cfg.Bucket == "" {
		log.Info("Report storage not configured, drift summaries are kept in the database only")
		return nil
	}
	initCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	store, err := storage.NewS3ReportStore(initCtx, cfg, log)
	if err != nil {
		log.Warn("Report storage disabled", zap.Error(err))
		return nil
	}
	if err := store.EnsureBucket(initCtx); err != nil {
		log.Warn("Report bucket unavailable, drift summaries will not be exported", zap.Error(err))
		return nil
	}
	return store
}
