package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/soko/backend/internal/domain/shop"
	"github.com/soko/backend/internal/infrastructure/persistence/models"
)

type trustScoreRepository struct {
	db *gorm.DB
}

// NewTrustScoreRepository creates a GORM-backed trust score repository
func NewTrustScoreRepository(db *gorm.DB) shop.TrustScoreRepository {
	return &trustScoreRepository{db: db}
}

func (r *trustScoreRepository) FindByShop(ctx context.Context, shopID uuid.UUID) (*shop.TrustScoreRecord, error) {
	var m models.TrustScoreModel
	err := r.db.WithContext(ctx).First(&m, "shop_id = ?", shopID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find trust score: %w", err)
	}
	return m.ToDomain(), nil
}

func (r *trustScoreRepository) Upsert(ctx context.Context, record *shop.TrustScoreRecord) error {
	var m models.TrustScoreModel
	m.FromDomain(record)

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "shop_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"score", "total_orders", "completed_orders", "dispute_count",
			"refund_count", "avg_fulfillment_hours", "last_calculated_at", "updated_at",
		}),
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("failed to upsert trust score: %w", err)
	}
	return nil
}
