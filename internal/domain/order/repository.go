package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/soko/backend/internal/domain/shared"
)

// Repository defines the interface for order persistence
type Repository interface {
	// FindByID finds an order with its items by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// Save creates or updates an order together with its items
	Save(ctx context.Context, o *Order) error

	// FindByShop lists a shop's orders, newest first
	FindByShop(ctx context.Context, shopID uuid.UUID, filter shared.Filter) (*shared.Paginated[Order], error)

	// FindByBuyer lists a buyer's orders, newest first
	FindByBuyer(ctx context.Context, buyerID uuid.UUID, filter shared.Filter) (*shared.Paginated[Order], error)

	// CountNonCancelledByShop counts a shop's orders excluding cancelled ones,
	// the denominator for dispute-rate checks.
	CountNonCancelledByShop(ctx context.Context, shopID uuid.UUID) (int64, error)

	// Checkout atomically persists a new order with its items, decrements
	// product stock per line item, and writes the given outbox entry in the
	// same transaction. Fails with shared.ErrInsufficientStock when any item
	// cannot be covered, rolling everything back.
	Checkout(ctx context.Context, o *Order, entry *shared.OutboxEntry) error
}
