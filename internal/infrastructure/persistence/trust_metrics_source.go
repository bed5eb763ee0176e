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
	"github.com/soko/backend/internal/domain/shop"
	"github.com/soko/backend/internal/infrastructure/persistence/models"
)

// trustMetricsSource reads trust inputs straight from the order, dispute and
// review tables so a recomputed score never drifts from the source of truth.
type trustMetricsSource struct {
	db *gorm.DB
}

// NewTrustMetricsSource creates a GORM-backed trust metrics source
func NewTrustMetricsSource(db *gorm.DB) shop.TrustMetricsSource {
	return &trustMetricsSource{db: db}
}

func (s *trustMetricsSource) GatherMetrics(ctx context.Context, shopID uuid.UUID) (shop.TrustMetrics, error) {
	var sm models.ShopModel
	err := s.db.WithContext(ctx).First(&sm, "id = ?", shopID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shop.TrustMetrics{}, shared.ErrNotFound
	}
	if err != nil {
		return shop.TrustMetrics{}, fmt.Errorf("failed to load shop: %w", err)
	}

	base := sm.BaseModel.ToDomain()
	m := shop.TrustMetrics{
		ShopAgeDays: base.AgeDays(time.Now()),
	}

	// The rate denominators cover fulfilled orders only; pending and paid
	// orders have no outcome yet and would dilute the penalties.
	fulfilled := []string{
		string(order.StatusCompleted),
		string(order.StatusShipped),
		string(order.StatusDisputed),
		string(order.StatusRefunded),
	}
	var total int64
	err = s.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("shop_id = ? AND status IN ?", shopID, fulfilled).
		Count(&total).Error
	if err != nil {
		return shop.TrustMetrics{}, fmt.Errorf("failed to count orders: %w", err)
	}
	m.TotalOrders = int(total)

	var completed int64
	err = s.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("shop_id = ? AND completed_at IS NOT NULL", shopID).
		Count(&completed).Error
	if err != nil {
		return shop.TrustMetrics{}, fmt.Errorf("failed to count completed orders: %w", err)
	}
	m.CompletedOrders = int(completed)

	var disputes int64
	err = s.db.WithContext(ctx).Model(&models.DisputeModel{}).
		Where("shop_id = ?", shopID).
		Count(&disputes).Error
	if err != nil {
		return shop.TrustMetrics{}, fmt.Errorf("failed to count disputes: %w", err)
	}
	m.DisputeCount = int(disputes)

	var refunds int64
	err = s.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("shop_id = ? AND status = ?", shopID, string(order.StatusRefunded)).
		Count(&refunds).Error
	if err != nil {
		return shop.TrustMetrics{}, fmt.Errorf("failed to count refunds: %w", err)
	}
	m.RefundCount = int(refunds)

	avgHours, err := s.avgFulfillmentHours(ctx, shopID)
	if err != nil {
		return shop.TrustMetrics{}, err
	}
	m.AvgFulfillmentHours = avgHours

	var avgRating float64
	err = s.db.WithContext(ctx).Model(&models.ReviewModel{}).
		Where("shop_id = ?", shopID).
		Select("COALESCE(AVG(rating), 0)").
		Scan(&avgRating).Error
	if err != nil {
		return shop.TrustMetrics{}, fmt.Errorf("failed to average ratings: %w", err)
	}
	m.AvgRating = avgRating

	return m, nil
}

// avgFulfillmentHours averages the paid-to-shipped gap in application code;
// interval arithmetic differs too much across SQL dialects to push down.
func (s *trustMetricsSource) avgFulfillmentHours(ctx context.Context, shopID uuid.UUID) (float64, error) {
	var spans []struct {
		PaidAt    time.Time
		ShippedAt time.Time
	}
	err := s.db.WithContext(ctx).Model(&models.OrderModel{}).
		Select("paid_at, shipped_at").
		Where("shop_id = ? AND paid_at IS NOT NULL AND shipped_at IS NOT NULL", shopID).
		Scan(&spans).Error
	if err != nil {
		return 0, fmt.Errorf("failed to load fulfillment spans: %w", err)
	}
	if len(spans) == 0 {
		return 0, nil
	}

	var totalHours float64
	for _, span := range spans {
		totalHours += span.ShippedAt.Sub(span.PaidAt).Hours()
	}
	return totalHours / float64(len(spans)), nil
}

func (s *trustMetricsSource) CountListingsSince(ctx context.Context, shopID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("shop_id = ? AND created_at > ?", shopID, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}
	return count, nil
}
