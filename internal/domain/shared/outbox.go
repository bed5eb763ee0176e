package shared

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// OutboxStatus represents the status of an outbox entry
type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "PENDING"
	OutboxStatusProcessing OutboxStatus = "PROCESSING"
	OutboxStatusDone       OutboxStatus = "DONE"
	OutboxStatusFailed     OutboxStatus = "FAILED"
	OutboxStatusDead       OutboxStatus = "DEAD"
)

// Default retry configuration
const (
	DefaultMaxRetries  = 5
	DefaultBaseBackoff = time.Second
)

// OutboxEntry represents a unit of deferred work recorded transactionally with
// the write that requires it. The canonical use is escrow creation: checkout
// commits the order and an escrow.create entry in one transaction, and the
// outbox processor performs the escrow write afterwards. An order may therefore
// transiently exist without an escrow transaction.
type OutboxEntry struct {
	ID          uuid.UUID
	Kind        string
	AggregateID uuid.UUID
	Payload     []byte
	Status      OutboxStatus
	RetryCount  int
	MaxRetries  int
	LastError   string
	NextRetryAt *time.Time
	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewOutboxEntry creates a new pending outbox entry
func NewOutboxEntry(kind string, aggregateID uuid.UUID, payload []byte) *OutboxEntry {
	now := time.Now()
	return &OutboxEntry{
		ID:          uuid.New(),
		Kind:        kind,
		AggregateID: aggregateID,
		Payload:     payload,
		Status:      OutboxStatusPending,
		MaxRetries:  DefaultMaxRetries,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// MarkProcessing marks the entry as being processed
func (e *OutboxEntry) MarkProcessing() error {
	if e.Status != OutboxStatusPending && e.Status != OutboxStatusFailed {
		return errors.New("can only mark pending or failed entries as processing")
	}
	e.Status = OutboxStatusProcessing
	e.UpdatedAt = time.Now()
	return nil
}

// MarkDone marks the entry as successfully processed
func (e *OutboxEntry) MarkDone() {
	now := time.Now()
	e.Status = OutboxStatusDone
	e.ProcessedAt = &now
	e.UpdatedAt = now
}

// MarkFailed records a failure and schedules the next retry with exponential
// backoff. Entries that exhaust their retries move to DEAD and stay there
// until an operator resets them.
func (e *OutboxEntry) MarkFailed(errMsg string) {
	e.RetryCount++
	e.LastError = errMsg
	e.UpdatedAt = time.Now()

	if e.RetryCount >= e.MaxRetries {
		e.Status = OutboxStatusDead
		return
	}
	e.Status = OutboxStatusFailed
	backoff := DefaultBaseBackoff * time.Duration(1<<uint(e.RetryCount-1))
	nextRetry := time.Now().Add(backoff)
	e.NextRetryAt = &nextRetry
}

// ResetForRetry resets a dead entry for another attempt
func (e *OutboxEntry) ResetForRetry() error {
	if e.Status != OutboxStatusDead {
		return errors.New("can only retry dead entries")
	}
	e.Status = OutboxStatusPending
	e.RetryCount = 0
	e.LastError = ""
	e.NextRetryAt = nil
	e.UpdatedAt = time.Now()
	return nil
}

// IsDead returns true if the entry exhausted its retries
func (e *OutboxEntry) IsDead() bool {
	return e.Status == OutboxStatusDead
}

// OutboxRepository defines the interface for outbox persistence
type OutboxRepository interface {
	// Save persists one or more outbox entries
	Save(ctx context.Context, entries ...*OutboxEntry) error
	// FindPending retrieves pending entries up to the specified limit
	FindPending(ctx context.Context, limit int) ([]*OutboxEntry, error)
	// FindRetryable retrieves failed entries that are due for retry
	FindRetryable(ctx context.Context, before time.Time, limit int) ([]*OutboxEntry, error)
	// FindByID retrieves a single outbox entry by ID
	FindByID(ctx context.Context, id uuid.UUID) (*OutboxEntry, error)
	// Update updates an existing outbox entry
	Update(ctx context.Context, entry *OutboxEntry) error
	// DeleteOlderThan deletes processed entries older than the specified time
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}
