package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/soko/backend/internal/domain/shared"
	"github.com/soko/backend/internal/infrastructure/persistence/models"
)

type gormOutboxRepository struct {
	db *gorm.DB
}

// NewOutboxRepository creates a GORM-backed outbox repository
func NewOutboxRepository(db *gorm.DB) shared.OutboxRepository {
	return &gormOutboxRepository{db: db}
}

func (r *gormOutboxRepository) Save(ctx context.Context, entries ...*shared.OutboxEntry) error {
	if len(entries) == 0 {
		return nil
	}
	ms := make([]models.OutboxEntryModel, len(entries))
	for i, e := range entries {
		ms[i].FromDomain(e)
	}
	if err := r.db.WithContext(ctx).Create(&ms).Error; err != nil {
		return fmt.Errorf("failed to save outbox entries: %w", err)
	}
	return nil
}

func (r *gormOutboxRepository) FindPending(ctx context.Context, limit int) ([]*shared.OutboxEntry, error) {
	var ms []models.OutboxEntryModel
	err := r.db.WithContext(ctx).
		Where("status = ?", string(shared.OutboxStatusPending)).
		Order("created_at ASC").
		Limit(limit).
		Find(&ms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find pending entries: %w", err)
	}
	return toDomainEntries(ms), nil
}

func (r *gormOutboxRepository) FindRetryable(ctx context.Context, before time.Time, limit int) ([]*shared.OutboxEntry, error) {
	var ms []models.OutboxEntryModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_retry_at <= ?", string(shared.OutboxStatusFailed), before).
		Order("next_retry_at ASC").
		Limit(limit).
		Find(&ms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find retryable entries: %w", err)
	}
	return toDomainEntries(ms), nil
}

func (r *gormOutboxRepository) FindByID(ctx context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	var m models.OutboxEntryModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find outbox entry: %w", err)
	}
	return m.ToDomain(), nil
}

func (r *gormOutboxRepository) Update(ctx context.Context, entry *shared.OutboxEntry) error {
	var m models.OutboxEntryModel
	m.FromDomain(entry)
	if err := r.db.WithContext(ctx).Save(&m).Error; err != nil {
		return fmt.Errorf("failed to update outbox entry: %w", err)
	}
	return nil
}

func (r *gormOutboxRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status = ? AND processed_at < ?", string(shared.OutboxStatusDone), before).
		Delete(&models.OutboxEntryModel{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete old outbox entries: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func toDomainEntries(ms []models.OutboxEntryModel) []*shared.OutboxEntry {
	out := make([]*shared.OutboxEntry, 0, len(ms))
	for i := range ms {
		out = append(out, ms[i].ToDomain())
	}
	return out
}
