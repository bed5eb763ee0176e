package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/soko/backend/internal/domain/shared"
)

// Handler performs the deferred work recorded by an outbox entry kind
type Handler func(ctx context.Context, entry *shared.OutboxEntry) error

// OutboxProcessorConfig holds configuration for the outbox processor
type OutboxProcessorConfig struct {
	BatchSize        int
	PollInterval     time.Duration
	CleanupEnabled   bool
	CleanupRetention time.Duration
	CleanupInterval  time.Duration
}

// DefaultOutboxProcessorConfig returns default configuration
func DefaultOutboxProcessorConfig() OutboxProcessorConfig {
	return OutboxProcessorConfig{
		BatchSize:        100,
		PollInterval:     5 * time.Second,
		CleanupEnabled:   true,
		CleanupRetention: 7 * 24 * time.Hour,
		CleanupInterval:  1 * time.Hour,
	}
}

// OutboxProcessor drains the outbox in the background, dispatching entries to
// the handler registered for their kind. Entries whose handler fails are
// retried with backoff until they go dead.
type OutboxProcessor struct {
	repo     shared.OutboxRepository
	handlers map[string]Handler
	config   OutboxProcessorConfig
	logger   *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOutboxProcessor creates a new outbox processor
func NewOutboxProcessor(repo shared.OutboxRepository, config OutboxProcessorConfig, logger *zap.Logger) *OutboxProcessor {
	return &OutboxProcessor{
		repo:     repo,
		handlers: make(map[string]Handler),
		config:   config,
		logger:   logger,
	}
}

// Register binds a handler to an entry kind. Must be called before Start.
func (p *OutboxProcessor) Register(kind string, h Handler) {
	p.handlers[kind] = h
}

// Start starts the background processing
func (p *OutboxProcessor) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go p.processLoop(ctx)

	if p.config.CleanupEnabled {
		p.wg.Add(1)
		go p.cleanupLoop(ctx)
	}

	p.logger.Info("outbox processor started",
		zap.Int("batch_size", p.config.BatchSize),
		zap.Duration("poll_interval", p.config.PollInterval),
	)
	return nil
}

// Stop gracefully stops the processor
func (p *OutboxProcessor) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("outbox processor stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *OutboxProcessor) processLoop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.ProcessBatch(ctx)
		}
	}
}

// ProcessBatch drains one batch of pending and retryable entries. Exposed so
// tests and one-shot tools can drive the processor without the ticker.
func (p *OutboxProcessor) ProcessBatch(ctx context.Context) {
	pending, err := p.repo.FindPending(ctx, p.config.BatchSize)
	if err != nil {
		p.logger.Error("failed to find pending entries", zap.Error(err))
		return
	}
	for _, entry := range pending {
		p.processEntry(ctx, entry)
	}

	retryable, err := p.repo.FindRetryable(ctx, time.Now(), p.config.BatchSize)
	if err != nil {
		p.logger.Error("failed to find retryable entries", zap.Error(err))
		return
	}
	for _, entry := range retryable {
		p.processEntry(ctx, entry)
	}
}

func (p *OutboxProcessor) processEntry(ctx context.Context, entry *shared.OutboxEntry) {
	if err := entry.MarkProcessing(); err != nil {
		return
	}
	if err := p.repo.Update(ctx, entry); err != nil {
		p.logger.Error("failed to claim outbox entry",
			zap.String("entry_id", entry.ID.String()),
			zap.Error(err),
		)
		return
	}

	err := p.handle(ctx, entry)
	if err == nil {
		entry.MarkDone()
		if updateErr := p.repo.Update(ctx, entry); updateErr != nil {
			p.logger.Error("failed to mark entry done",
				zap.String("entry_id", entry.ID.String()),
				zap.Error(updateErr),
			)
		}
		return
	}

	p.logger.Error("outbox entry failed",
		zap.String("entry_id", entry.ID.String()),
		zap.String("kind", entry.Kind),
		zap.Error(err),
	)
	entry.MarkFailed(err.Error())
	if entry.IsDead() {
		p.logger.Warn("outbox entry moved to dead letter",
			zap.String("entry_id", entry.ID.String()),
			zap.String("kind", entry.Kind),
			zap.String("aggregate_id", entry.AggregateID.String()),
			zap.Int("retry_count", entry.RetryCount),
			zap.String("last_error", entry.LastError),
		)
	}
	if updateErr := p.repo.Update(ctx, entry); updateErr != nil {
		p.logger.Error("failed to update failed entry", zap.Error(updateErr))
	}
}

func (p *OutboxProcessor) handle(ctx context.Context, entry *shared.OutboxEntry) error {
	h, ok := p.handlers[entry.Kind]
	if !ok {
		return fmt.Errorf("no handler registered for kind %q", entry.Kind)
	}
	return h(ctx, entry)
}

func (p *OutboxProcessor) cleanupLoop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.cleanup(ctx)
		}
	}
}

func (p *OutboxProcessor) cleanup(ctx context.Context) {
	cutoff := time.Now().Add(-p.config.CleanupRetention)
	deleted, err := p.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		p.logger.Error("failed to clean up old entries", zap.Error(err))
		return
	}
	if deleted > 0 {
		p.logger.Info("cleaned up old outbox entries",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
	}
}
