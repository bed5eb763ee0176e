package escrow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/soko/backend/internal/domain/shared"
)

// Repository defines the interface for escrow transaction persistence.
// ReleaseHeld and RefundHeld are the only ways out of the held state; both
// are conditional updates that affect zero rows when another caller got
// there first, and implementations must report that as shared.ErrNotFound.
type Repository interface {
	// FindByID finds an escrow transaction by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// FindByOrder finds the escrow transaction holding funds for an order
	FindByOrder(ctx context.Context, orderID uuid.UUID) (*Transaction, error)

	// Save inserts a new escrow transaction
	Save(ctx context.Context, t *Transaction) error

	// ReleaseHeld atomically moves the order's escrow from held to released.
	// Returns the updated transaction, or shared.ErrNotFound when no held
	// transaction exists for the order.
	ReleaseHeld(ctx context.Context, orderID uuid.UUID, now time.Time) (*Transaction, error)

	// RefundHeld atomically moves the order's escrow from held to refunded.
	// Returns the updated transaction, or shared.ErrNotFound when no held
	// transaction exists for the order.
	RefundHeld(ctx context.Context, orderID uuid.UUID, now time.Time) (*Transaction, error)

	// FindPayoutEligible lists released transactions whose delay has cleared
	// and which are not bundled into any payout yet.
	FindPayoutEligible(ctx context.Context, now time.Time) ([]Transaction, error)

	// FindByShop lists a shop's escrow transactions, newest first
	FindByShop(ctx context.Context, shopID uuid.UUID, filter shared.Filter) (*shared.Paginated[Transaction], error)

	// SumReleasedByShop totals released funds for a shop, for earnings views
	SumReleasedByShop(ctx context.Context, shopID uuid.UUID) (float64, error)
}

// PayoutRepository defines the interface for payout batch persistence
type PayoutRepository interface {
	// FindByID finds a payout by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Payout, error)

	// Save inserts a new payout batch
	Save(ctx context.Context, p *Payout) error

	// Update persists status changes to an existing payout
	Update(ctx context.Context, p *Payout) error

	// FindByShop lists a shop's payouts, newest first
	FindByShop(ctx context.Context, shopID uuid.UUID, filter shared.Filter) (*shared.Paginated[Payout], error)

	// FindPending lists all payouts awaiting disbursement
	FindPending(ctx context.Context) ([]Payout, error)
}
