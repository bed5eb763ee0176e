package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/soko/backend/internal/domain/shared"
	"github.com/soko/backend/internal/domain/shop"
	"github.com/soko/backend/internal/infrastructure/persistence/models"
)

type shopRepository struct {
	db *gorm.DB
}

// NewShopRepository creates a GORM-backed shop repository
func NewShopRepository(db *gorm.DB) shop.Repository {
	return &shopRepository{db: db}
}

func (r *shopRepository) FindByID(ctx context.Context, id uuid.UUID) (*shop.Shop, error) {
	var m models.ShopModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find shop: %w", err)
	}
	return m.ToDomain(), nil
}

func (r *shopRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*shop.Shop, error) {
	var m models.ShopModel
	err := r.db.WithContext(ctx).First(&m, "owner_id = ?", ownerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find shop by owner: %w", err)
	}
	return m.ToDomain(), nil
}

func (r *shopRepository) Save(ctx context.Context, s *shop.Shop) error {
	var m models.ShopModel
	m.FromDomain(s)
	if err := r.db.WithContext(ctx).Save(&m).Error; err != nil {
		return fmt.Errorf("failed to save shop: %w", err)
	}
	return nil
}

func (r *shopRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status shop.Status) error {
	res := r.db.WithContext(ctx).Model(&models.ShopModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update shop status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
