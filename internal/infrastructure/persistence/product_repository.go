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

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a GORM-backed product repository
func NewProductRepository(db *gorm.DB) shop.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*shop.Product, error) {
	var m models.ProductModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return m.ToDomain(), nil
}

func (r *productRepository) Save(ctx context.Context, p *shop.Product) error {
	var m models.ProductModel
	m.FromDomain(p)
	if err := r.db.WithContext(ctx).Save(&m).Error; err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}
	return nil
}

func (r *productRepository) FindByShop(ctx context.Context, shopID uuid.UUID, filter shared.Filter) (*shared.Paginated[shop.Product], error) {
	filter.Normalize()

	query := r.db.WithContext(ctx).Model(&models.ProductModel{}).Where("shop_id = ?", shopID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	var ms []models.ProductModel
	err := query.
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&ms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	items := make([]shop.Product, 0, len(ms))
	for i := range ms {
		items = append(items, *ms[i].ToDomain())
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

func (r *productRepository) CountCreatedSince(ctx context.Context, shopID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("shop_id = ? AND created_at > ?", shopID, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}
	return count, nil
}

// DecrementStock is a single conditional update; zero affected rows means the
// remaining stock cannot cover the quantity.
func (r *productRepository) DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	res := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock - ?", quantity),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to decrement stock: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return shared.ErrInsufficientStock
	}
	return nil
}
