package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/soko/backend/internal/domain/shop"
	"github.com/soko/backend/internal/infrastructure/persistence/models"
)

type violationRepository struct {
	db *gorm.DB
}

// NewViolationRepository creates a GORM-backed violation log
func NewViolationRepository(db *gorm.DB) shop.ViolationRepository {
	return &violationRepository{db: db}
}

func (r *violationRepository) Append(ctx context.Context, v *shop.Violation) error {
	var m models.ViolationModel
	m.FromDomain(v)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("failed to append violation: %w", err)
	}
	return nil
}

func (r *violationRepository) CountByTypeSince(ctx context.Context, shopID uuid.UUID, vtype shop.ViolationType, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ViolationModel{}).
		Where("shop_id = ? AND type = ? AND created_at > ?", shopID, string(vtype), since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count violations: %w", err)
	}
	return count, nil
}

func (r *violationRepository) FindByShop(ctx context.Context, shopID uuid.UUID, limit int) ([]shop.Violation, error) {
	if limit <= 0 {
		limit = 50
	}
	var ms []models.ViolationModel
	err := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Order("created_at DESC").
		Limit(limit).
		Find(&ms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list violations: %w", err)
	}

	out := make([]shop.Violation, 0, len(ms))
	for i := range ms {
		out = append(out, *ms[i].ToDomain())
	}
	return out, nil
}
