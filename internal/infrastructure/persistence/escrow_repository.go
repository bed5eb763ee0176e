package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/soko/backend/internal/domain/escrow"
	"github.com/soko/backend/internal/domain/shared"
	"github.com/soko/backend/internal/infrastructure/persistence/models"
)

type escrowRepository struct {
	db *gorm.DB
}

// NewEscrowRepository creates a GORM-backed escrow transaction repository
func NewEscrowRepository(db *gorm.DB) escrow.Repository {
	return &escrowRepository{db: db}
}

func (r *escrowRepository) FindByID(ctx context.Context, id uuid.UUID) (*escrow.Transaction, error) {
	var m models.EscrowTransactionModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find escrow transaction: %w", err)
	}
	return m.ToDomain(), nil
}

func (r *escrowRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) (*escrow.Transaction, error) {
	var m models.EscrowTransactionModel
	err := r.db.WithContext(ctx).First(&m, "order_id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find escrow transaction: %w", err)
	}
	return m.ToDomain(), nil
}

func (r *escrowRepository) Save(ctx context.Context, t *escrow.Transaction) error {
	var m models.EscrowTransactionModel
	m.FromDomain(t)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("failed to save escrow transaction: %w", err)
	}
	return nil
}

// ReleaseHeld is a compare-and-swap on the held status. When a concurrent
// release or refund won, zero rows match and the caller sees ErrNotFound.
func (r *escrowRepository) ReleaseHeld(ctx context.Context, orderID uuid.UUID, now time.Time) (*escrow.Transaction, error) {
	return r.transitionHeld(ctx, orderID, escrow.StatusReleased, "released_at", now)
}

// RefundHeld is the refund counterpart to ReleaseHeld
func (r *escrowRepository) RefundHeld(ctx context.Context, orderID uuid.UUID, now time.Time) (*escrow.Transaction, error) {
	return r.transitionHeld(ctx, orderID, escrow.StatusRefunded, "refunded_at", now)
}

func (r *escrowRepository) transitionHeld(ctx context.Context, orderID uuid.UUID, to escrow.Status, stampColumn string, now time.Time) (*escrow.Transaction, error) {
	res := r.db.WithContext(ctx).Model(&models.EscrowTransactionModel{}).
		Where("order_id = ? AND status = ?", orderID, string(escrow.StatusHeld)).
		Updates(map[string]any{
			"status":    string(to),
			stampColumn: now,
			"updated_at": now,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update escrow transaction: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, shared.ErrNotFound
	}
	return r.FindByOrder(ctx, orderID)
}

// FindPayoutEligible lists released transactions past their delay that no
// payout batch has claimed. Membership is checked with JSONB containment
// against payouts.transaction_ids.
func (r *escrowRepository) FindPayoutEligible(ctx context.Context, now time.Time) ([]escrow.Transaction, error) {
	var ms []models.EscrowTransactionModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND payout_eligible_at <= ?", string(escrow.StatusReleased), now).
		Where("NOT EXISTS (SELECT 1 FROM payouts WHERE payouts.transaction_ids @> to_jsonb(escrow_transactions.id::text))").
		Order("shop_id, payout_eligible_at").
		Find(&ms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payout-eligible transactions: %w", err)
	}

	out := make([]escrow.Transaction, 0, len(ms))
	for i := range ms {
		out = append(out, *ms[i].ToDomain())
	}
	return out, nil
}

func (r *escrowRepository) FindByShop(ctx context.Context, shopID uuid.UUID, filter shared.Filter) (*shared.Paginated[escrow.Transaction], error) {
	filter.Normalize()

	query := r.db.WithContext(ctx).Model(&models.EscrowTransactionModel{}).Where("shop_id = ?", shopID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count escrow transactions: %w", err)
	}

	var ms []models.EscrowTransactionModel
	err := query.
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&ms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list escrow transactions: %w", err)
	}

	items := make([]escrow.Transaction, 0, len(ms))
	for i := range ms {
		items = append(items, *ms[i].ToDomain())
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

func (r *escrowRepository) SumReleasedByShop(ctx context.Context, shopID uuid.UUID) (float64, error) {
	var sum float64
	err := r.db.WithContext(ctx).Model(&models.EscrowTransactionModel{}).
		Where("shop_id = ? AND status = ?", shopID, string(escrow.StatusReleased)).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum released funds: %w", err)
	}
	return sum, nil
}
