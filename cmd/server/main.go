package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	catalogapp "github.com/soko/backend/internal/application/catalog"
	disputeapp "github.com/soko/backend/internal/application/dispute"
	escrowapp "github.com/soko/backend/internal/application/escrow"
	orderapp "github.com/soko/backend/internal/application/order"
	trustapp "github.com/soko/backend/internal/application/trust"
	"github.com/soko/backend/internal/domain/shop"
	"github.com/soko/backend/internal/infrastructure/auth"
	"github.com/soko/backend/internal/infrastructure/cache"
	"github.com/soko/backend/internal/infrastructure/config"
	"github.com/soko/backend/internal/infrastructure/event"
	"github.com/soko/backend/internal/infrastructure/logger"
	"github.com/soko/backend/internal/infrastructure/persistence"
	"github.com/soko/backend/internal/infrastructure/scheduler"
	"github.com/soko/backend/internal/interfaces/http/handler"
	"github.com/soko/backend/internal/interfaces/http/middleware"
	"github.com/soko/backend/internal/interfaces/http/router"
)

// Cross-service ports. Services expose rich responses; the consuming side
// only needs the error.

type escrowReleaser struct{ svc *escrowapp.Service }

func (a escrowReleaser) ReleaseEscrow(ctx context.Context, orderID uuid.UUID) error {
	_, err := a.svc.ReleaseEscrow(ctx, orderID)
	return err
}

type escrowRefunder struct{ svc *escrowapp.Service }

func (a escrowRefunder) RefundEscrow(ctx context.Context, orderID uuid.UUID) error {
	_, err := a.svc.RefundEscrow(ctx, orderID)
	return err
}

type violationRecorder struct{ svc *trustapp.Service }

func (a violationRecorder) RecordViolation(ctx context.Context, shopID uuid.UUID, vtype shop.ViolationType, severity shop.Severity, details shop.ViolationDetails) error {
	_, err := a.svc.RecordViolation(ctx, shopID, vtype, severity, details)
	return err
}

type violationAppender struct{ svc *trustapp.Service }

func (a violationAppender) AppendViolation(ctx context.Context, shopID uuid.UUID, vtype shop.ViolationType, severity shop.Severity, details shop.ViolationDetails) error {
	_, err := a.svc.AppendViolation(ctx, shopID, vtype, severity, details)
	return err
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Soko backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database connected")

	// Repositories
	shopRepo := persistence.NewShopRepository(db.DB)
	productRepo := persistence.NewProductRepository(db.DB)
	scoreRepo := persistence.NewTrustScoreRepository(db.DB)
	violationRepo := persistence.NewViolationRepository(db.DB)
	orderRepo := persistence.NewOrderRepository(db.DB)
	escrowRepo := persistence.NewEscrowRepository(db.DB)
	payoutRepo := persistence.NewPayoutRepository(db.DB)
	disputeRepo := persistence.NewDisputeRepository(db.DB)
	outboxRepo := event.NewOutboxRepository(db.DB)
	metricsSource := persistence.NewTrustMetricsSource(db.DB)

	// Trust service, with the badge cache when redis is reachable
	trustOpts := []trustapp.ServiceOption{
		trustapp.WithRestrictionPolicy(shop.RestrictionPolicy{
			NewSellerDays:    cfg.Trust.NewSellerDays,
			MaxDailyListings: cfg.Trust.MaxDailyListingsNew,
		}),
	}
	scoreCache, err := cache.NewRedisScoreCache(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cfg.Trust.BadgeCacheTTL)
	if err != nil {
		log.Warn("Redis unavailable, trust badges will be computed per request", zap.Error(err))
	} else {
		defer func() { _ = scoreCache.Close() }()
		trustOpts = append(trustOpts, trustapp.WithScoreCache(scoreCache))
	}
	trustService := trustapp.NewService(shopRepo, scoreRepo, violationRepo, productRepo, metricsSource, trustOpts...)

	// Application services
	escrowService := escrowapp.NewService(escrowRepo, orderRepo, shopRepo, trustService)
	payoutService := escrowapp.NewPayoutService(escrowRepo, payoutRepo, shopRepo, log)
	orderService := orderapp.NewService(orderRepo, productRepo, shopRepo, escrowReleaser{escrowService})
	catalogService := catalogapp.NewService(shopRepo, productRepo, trustService, violationRecorder{trustService})
	disputeService := disputeapp.NewService(disputeRepo, orderRepo, shopRepo, escrowRefunder{escrowService}, violationAppender{trustService}, log)

	// Outbox processor handles escrow creation after checkout commits
	processorCfg := event.DefaultOutboxProcessorConfig()
	if cfg.Outbox.BatchSize > 0 {
		processorCfg.BatchSize = cfg.Outbox.BatchSize
	}
	if cfg.Outbox.PollInterval > 0 {
		processorCfg.PollInterval = cfg.Outbox.PollInterval
	}
	processor := event.NewOutboxProcessor(outboxRepo, processorCfg, log)
	processor.Register(orderapp.EscrowCreateKind, event.EscrowCreateHandler(escrowService))

	processorCtx, cancelProcessor := context.WithCancel(context.Background())
	defer cancelProcessor()
	if cfg.Outbox.Enabled {
		if err := processor.Start(processorCtx); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
	}

	// Weekly payout batching
	schedCfg := scheduler.DefaultPayoutSchedulerConfig()
	schedCfg.Enabled = cfg.Scheduler.Enabled
	if cfg.Scheduler.PayoutCronSpec != "" {
		schedCfg.CronSpec = cfg.Scheduler.PayoutCronSpec
	}
	payoutScheduler := scheduler.NewPayoutScheduler(payoutService, schedCfg, log)
	if err := payoutScheduler.Start(); err != nil {
		log.Fatal("Failed to start payout scheduler", zap.Error(err))
	}

	// HTTP layer
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.CORSWithConfig(middleware.DefaultCORSConfig()))

	jwtService := auth.NewJWTService(cfg.JWT)
	authRequired := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		Logger:     log,
	})
	authOptional := middleware.OptionalJWTAuthMiddleware(jwtService)

	r := router.NewRouter(engine)
	r.Register(handler.NewHealthHandler(db))
	r.Register(handler.NewCatalogHandler(catalogService, authRequired))
	r.Register(handler.NewOrderHandler(orderService, authRequired, authOptional))
	r.Register(handler.NewDisputeHandler(disputeService, authRequired))
	r.Register(handler.NewTrustHandler(trustService, authRequired))
	r.Register(handler.NewSettlementHandler(escrowService, payoutService, authRequired))
	r.Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := payoutScheduler.Stop(ctx); err != nil {
		log.Error("Payout scheduler did not stop cleanly", zap.Error(err))
	}
	cancelProcessor()
	if cfg.Outbox.Enabled {
		if err := processor.Stop(ctx); err != nil {
			log.Error("Outbox processor did not stop cleanly", zap.Error(err))
		}
	}

	log.Info("Server exited gracefully")
}
