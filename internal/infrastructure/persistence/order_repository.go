package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/soko/backend/internal/domain/order"
	"github.com/soko/backend/internal/domain/shared"
	"github.com/soko/backend/internal/infrastructure/persistence/models"
)

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a GORM-backed order repository
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{db: db}
}

func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var m models.OrderModel
	err := r.db.WithContext(ctx).Preload("Items").First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	return m.ToDomain(), nil
}

// Save persists order state changes. Items are immutable after checkout, so
// they are omitted here; Checkout is the only writer of line items.
func (r *orderRepository) Save(ctx context.Context, o *order.Order) error {
	var m models.OrderModel
	m.FromDomain(o)
	if err := r.db.WithContext(ctx).Omit("Items").Save(&m).Error; err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}
	return nil
}

func (r *orderRepository) FindByShop(ctx context.Context, shopID uuid.UUID, filter shared.Filter) (*shared.Paginated[order.Order], error) {
	return r.findPaginated(ctx, "shop_id = ?", shopID, filter)
}

func (r *orderRepository) FindByBuyer(ctx context.Context, buyerID uuid.UUID, filter shared.Filter) (*shared.Paginated[order.Order], error) {
	return r.findPaginated(ctx, "buyer_id = ?", buyerID, filter)
}

func (r *orderRepository) findPaginated(ctx context.Context, cond string, arg uuid.UUID, filter shared.Filter) (*shared.Paginated[order.Order], error) {
	filter.Normalize()

	query := r.db.WithContext(ctx).Model(&models.OrderModel{}).Where(cond, arg)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	var ms []models.OrderModel
	err := query.
		Preload("Items").
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&ms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	items := make([]order.Order, 0, len(ms))
	for i := range ms {
		items = append(items, *ms[i].ToDomain())
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

func (r *orderRepository) CountNonCancelledByShop(ctx context.Context, shopID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("shop_id = ? AND status <> ?", shopID, order.StatusCancelled).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

// Checkout commits the order, its line items, the per-item stock decrements
// and the outbox entry in one transaction. Any item short on stock rolls the
// whole checkout back.
func (r *orderRepository) Checkout(ctx context.Context, o *order.Order, entry *shared.OutboxEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, it := range o.Items {
			res := tx.Model(&models.ProductModel{}).
				Where("id = ? AND stock >= ?", it.ProductID, it.Quantity).
				Updates(map[string]any{
					"stock":      gorm.Expr("stock - ?", it.Quantity),
					"updated_at": time.Now(),
				})
			if res.Error != nil {
				return fmt.Errorf("failed to decrement stock: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return shared.ErrInsufficientStock
			}
		}

		var m models.OrderModel
		m.FromDomain(o)
		if err := tx.Create(&m).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		if entry != nil {
			var em models.OutboxEntryModel
			em.FromDomain(entry)
			if err := tx.Create(&em).Error; err != nil {
				return fmt.Errorf("failed to create outbox entry: %w", err)
			}
		}
		return nil
	})
}
