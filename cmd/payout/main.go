package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	escrowapp "github.com/soko/backend/internal/application/escrow"
	"github.com/soko/backend/internal/infrastructure/config"
	"github.com/soko/backend/internal/infrastructure/logger"
	"github.com/soko/backend/internal/infrastructure/persistence"
)

// One-shot payout sweep. The server runs the same sweep on a cron schedule;
// this binary lets operators trigger or replay a run from the command line.
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

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	escrowRepo := persistence.NewEscrowRepository(db.DB)
	payoutRepo := persistence.NewPayoutRepository(db.DB)
	shopRepo := persistence.NewShopRepository(db.DB)
	payoutService := escrowapp.NewPayoutService(escrowRepo, payoutRepo, shopRepo, log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	run, err := payoutService.ProcessScheduledPayouts(ctx)
	if err != nil {
		log.Fatal("Payout run failed", zap.Error(err))
	}
	log.Info("Payout run completed",
		zap.Int("processed", run.Processed),
		zap.Int("total_shops", run.TotalShops),
		zap.Int("total_transactions", run.TotalTransactions),
		zap.Int("skipped", run.Skipped),
		zap.Int("failed", run.Failed),
	)
}
