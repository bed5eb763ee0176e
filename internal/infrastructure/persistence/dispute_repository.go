package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/soko/backend/internal/domain/dispute"
	"github.com/soko/backend/internal/domain/shared"
	"github.com/soko/backend/internal/infrastructure/persistence/models"
)

type disputeRepository struct {
	db *gorm.DB
}

// NewDisputeRepository creates a GORM-backed dispute repository
func NewDisputeRepository(db *gorm.DB) dispute.Repository {
	return &disputeRepository{db: db}
}

func (r *disputeRepository) FindByID(ctx context.Context, id uuid.UUID) (*dispute.Dispute, error) {
	var m models.DisputeModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find dispute: %w", err)
	}
	return m.ToDomain(), nil
}

func (r *disputeRepository) FindOpenByOrder(ctx context.Context, orderID uuid.UUID) (*dispute.Dispute, error) {
	var m models.DisputeModel
	err := r.db.WithContext(ctx).
		First(&m, "order_id = ? AND status = ?", orderID, string(dispute.StatusOpen)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find open dispute: %w", err)
	}
	return m.ToDomain(), nil
}

func (r *disputeRepository) Save(ctx context.Context, d *dispute.Dispute) error {
	var m models.DisputeModel
	m.FromDomain(d)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("failed to save dispute: %w", err)
	}
	return nil
}

func (r *disputeRepository) Update(ctx context.Context, d *dispute.Dispute) error {
	var m models.DisputeModel
	m.FromDomain(d)
	if err := r.db.WithContext(ctx).Save(&m).Error; err != nil {
		return fmt.Errorf("failed to update dispute: %w", err)
	}
	return nil
}

func (r *disputeRepository) FindByBuyer(ctx context.Context, buyerID uuid.UUID, filter shared.Filter) (*shared.Paginated[dispute.Dispute], error) {
	return r.findPaginated(ctx, "buyer_id = ?", buyerID, filter)
}

func (r *disputeRepository) FindByShop(ctx context.Context, shopID uuid.UUID, filter shared.Filter) (*shared.Paginated[dispute.Dispute], error) {
	return r.findPaginated(ctx, "shop_id = ?", shopID, filter)
}

func (r *disputeRepository) findPaginated(ctx context.Context, cond string, arg uuid.UUID, filter shared.Filter) (*shared.Paginated[dispute.Dispute], error) {
	filter.Normalize()

	query := r.db.WithContext(ctx).Model(&models.DisputeModel{}).Where(cond, arg)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count disputes: %w", err)
	}

	var ms []models.DisputeModel
	err := query.
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&ms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list disputes: %w", err)
	}

	items := make([]dispute.Dispute, 0, len(ms))
	for i := range ms {
		items = append(items, *ms[i].ToDomain())
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

func (r *disputeRepository) StatsByShop(ctx context.Context, shopID uuid.UUID) (dispute.Stats, error) {
	var stats dispute.Stats
	err := r.db.WithContext(ctx).Model(&models.DisputeModel{}).
		Select(
			"COUNT(*) AS total_disputes, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS open_disputes, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS refunded_disputes",
			string(dispute.StatusOpen), string(dispute.StatusRefunded),
		).
		Where("shop_id = ?", shopID).
		Scan(&stats).Error
	if err != nil {
		return dispute.Stats{}, fmt.Errorf("failed to compute dispute stats: %w", err)
	}
	return stats, nil
}
