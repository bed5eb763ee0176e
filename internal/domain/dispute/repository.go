package dispute

import (
	"context"

	"github.com/google/uuid"
	"github.com/soko/backend/internal/domain/shared"
)

// Stats are aggregate dispute counts for a shop, used by the freeze check
type Stats struct {
	TotalDisputes    int64 `json:"total_disputes"`
	OpenDisputes     int64 `json:"open_disputes"`
	RefundedDisputes int64 `json:"refunded_disputes"`
}

// Repository defines the interface for dispute persistence
type Repository interface {
	// FindByID finds a dispute by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Dispute, error)

	// FindOpenByOrder finds the open dispute for an order, or nil when none
	FindOpenByOrder(ctx context.Context, orderID uuid.UUID) (*Dispute, error)

	// Save creates a new dispute
	Save(ctx context.Context, d *Dispute) error

	// Update persists resolution changes to an existing dispute
	Update(ctx context.Context, d *Dispute) error

	// FindByBuyer lists a buyer's disputes, newest first
	FindByBuyer(ctx context.Context, buyerID uuid.UUID, filter shared.Filter) (*shared.Paginated[Dispute], error)

	// FindByShop lists disputes against a shop, newest first
	FindByShop(ctx context.Context, shopID uuid.UUID, filter shared.Filter) (*shared.Paginated[Dispute], error)

	// StatsByShop returns aggregate dispute counts for a shop. Refunded
	// counts both auto-resolved and manually refunded disputes.
	StatsByShop(ctx context.Context, shopID uuid.UUID) (Stats, error)
}
