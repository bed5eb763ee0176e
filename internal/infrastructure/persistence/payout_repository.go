package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/soko/backend/internal/domain/escrow"
	"github.com/soko/backend/internal/domain/shared"
	"github.com/soko/backend/internal/infrastructure/persistence/models"
)

type payoutRepository struct {
	db *gorm.DB
}

// NewPayoutRepository creates a GORM-backed payout repository
func NewPayoutRepository(db *gorm.DB) escrow.PayoutRepository {
	return &payoutRepository{db: db}
}

func (r *payoutRepository) FindByID(ctx context.Context, id uuid.UUID) (*escrow.Payout, error) {
	var m models.PayoutModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find payout: %w", err)
	}
	return m.ToDomain(), nil
}

func (r *payoutRepository) Save(ctx context.Context, p *escrow.Payout) error {
	var m models.PayoutModel
	m.FromDomain(p)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("failed to save payout: %w", err)
	}
	return nil
}

func (r *payoutRepository) Update(ctx context.Context, p *escrow.Payout) error {
	var m models.PayoutModel
	m.FromDomain(p)
	if err := r.db.WithContext(ctx).Save(&m).Error; err != nil {
		return fmt.Errorf("failed to update payout: %w", err)
	}
	return nil
}

func (r *payoutRepository) FindByShop(ctx context.Context, shopID uuid.UUID, filter shared.Filter) (*shared.Paginated[escrow.Payout], error) {
	filter.Normalize()

	query := r.db.WithContext(ctx).Model(&models.PayoutModel{}).Where("shop_id = ?", shopID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count payouts: %w", err)
	}

	var ms []models.PayoutModel
	err := query.
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&ms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payouts: %w", err)
	}

	items := make([]escrow.Payout, 0, len(ms))
	for i := range ms {
		items = append(items, *ms[i].ToDomain())
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

func (r *payoutRepository) FindPending(ctx context.Context) ([]escrow.Payout, error) {
	var ms []models.PayoutModel
	err := r.db.WithContext(ctx).
		Where("status = ?", string(escrow.PayoutPending)).
		Order("created_at ASC").
		Find(&ms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending payouts: %w", err)
	}

	out := make([]escrow.Payout, 0, len(ms))
	for i := range ms {
		out = append(out, *ms[i].ToDomain())
	}
	return out, nil
}
