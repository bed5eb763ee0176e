package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/soko/backend/internal/application/escrow"
)

// PayoutSchedulerConfig holds configuration for the weekly payout run
type PayoutSchedulerConfig struct {
	// Enabled indicates if the scheduler runs at all
	Enabled bool
	// CronSpec is a standard five-field cron expression
	CronSpec string
	// RunTimeout bounds a single payout run
	RunTimeout time.Duration
}

// DefaultPayoutSchedulerConfig returns the default configuration, running
// every Monday at 06:00.
func DefaultPayoutSchedulerConfig() PayoutSchedulerConfig {
	return PayoutSchedulerConfig{
		Enabled:    true,
		CronSpec:   "0 6 * * 1",
		RunTimeout: 10 * time.Minute,
	}
}

// PayoutScheduler triggers the payout batching run on a cron schedule. The
// run itself is idempotent, so an overlapping or repeated trigger only wastes
// a query.
type PayoutScheduler struct {
	service *escrow.PayoutService
	config  PayoutSchedulerConfig
	logger  *zap.Logger

	cron    *cron.Cron
	mu      sync.Mutex
	running bool
}

// NewPayoutScheduler creates a new payout scheduler
func NewPayoutScheduler(service *escrow.PayoutService, config PayoutSchedulerConfig, logger *zap.Logger) *PayoutScheduler {
	return &PayoutScheduler{
		service: service,
		config:  config,
		logger:  logger,
	}
}

// Start registers the cron entry and starts the scheduler
func (s *PayoutScheduler) Start() error {
	if !s.config.Enabled {
		s.logger.Info("payout scheduler disabled")
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(s.config.CronSpec, s.runOnce); err != nil {
		return fmt.Errorf("invalid payout cron spec %q: %w", s.config.CronSpec, err)
	}
	c.Start()
	s.cron = c

	s.logger.Info("payout scheduler started", zap.String("cron_spec", s.config.CronSpec))
	return nil
}

// Stop stops the scheduler and waits for an in-flight run to finish
func (s *PayoutScheduler) Stop(ctx context.Context) error {
	if s.cron == nil {
		return nil
	}

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
		s.logger.Info("payout scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runOnce executes a single payout run, skipping if one is still in flight
func (s *PayoutScheduler) runOnce() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("payout run still in flight, skipping trigger")
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.config.RunTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.service.ProcessScheduledPayouts(ctx)
	if err != nil {
		s.logger.Error("payout run failed", zap.Error(err))
		return
	}

	s.logger.Info("payout run finished",
		zap.Int("payouts_created", result.Processed),
		zap.Int("shops", result.TotalShops),
		zap.Int("transactions", result.TotalTransactions),
		zap.Int("skipped", result.Skipped),
		zap.Duration("took", time.Since(start)),
	)
}
