package escrow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/soko/backend/internal/domain/escrow"
	"github.com/soko/backend/internal/domain/order"
	"github.com/soko/backend/internal/domain/shared"
	"github.com/soko/backend/internal/domain/shared/valueobject"
	"github.com/soko/backend/internal/domain/shop"
)

// ScoreProvider supplies a shop's current trust score for delay tiering
type ScoreProvider interface {
	CurrentScore(ctx context.Context, shopID uuid.UUID) (int, error)
}

// Service provides application-level escrow operations
type Service struct {
	escrowRepo escrow.Repository
	orderRepo  order.Repository
	shopRepo   shop.Repository
	scores     ScoreProvider
}

// NewService creates a new escrow Service
func NewService(
	escrowRepo escrow.Repository,
	orderRepo order.Repository,
	shopRepo shop.Repository,
	scores ScoreProvider,
) *Service {
	return &Service{
		escrowRepo: escrowRepo,
		orderRepo:  orderRepo,
		shopRepo:   shopRepo,
		scores:     scores,
	}
}

// TransactionResponse represents an escrow transaction in API responses
type TransactionResponse struct {
	ID               uuid.UUID         `json:"id"`
	OrderID          uuid.UUID         `json:"order_id"`
	ShopID           uuid.UUID         `json:"shop_id"`
	Amount           valueobject.Money `json:"amount"`
	Status           string            `json:"status"`
	HeldAt           time.Time         `json:"held_at"`
	ReleasedAt       *time.Time        `json:"released_at,omitempty"`
	RefundedAt       *time.Time        `json:"refunded_at,omitempty"`
	PayoutEligibleAt time.Time         `json:"payout_eligible_at"`
}

// CreateEscrow holds the given amount for an order. The payout delay is
// derived from the owning shop's age and trust score at hold time. Called
// from the outbox processor, so a retry for an order that already holds
// funds returns the existing transaction instead of failing.
func (s *Service) CreateEscrow(ctx context.Context, orderID uuid.UUID, amount valueobject.Money) (*TransactionResponse, error) {
	existing, err := s.escrowRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return toTransactionResponse(existing), nil
	}

	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Order not found")
	}

	sh, err := s.shopRepo.FindByID(ctx, o.ShopID)
	if err != nil {
		return nil, err
	}
	if sh == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Shop not found")
	}

	if amount.IsZero() {
		amount = o.TotalAmount
	}

	score, err := s.scores.CurrentScore(ctx, sh.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	delay := escrow.PayoutDelayDays(sh.AgeDays(now), score)
	tx, err := escrow.NewTransaction(o.ID, sh.ID, amount, delay, now)
	if err != nil {
		return nil, err
	}
	if err := s.escrowRepo.Save(ctx, tx); err != nil {
		return nil, err
	}
	return toTransactionResponse(tx), nil
}

// ReleaseEscrow moves the order's held funds to the seller. The held-to-
// released transition is a conditional single-row update; when another
// caller already released or refunded, this returns NotFound.
func (s *Service) ReleaseEscrow(ctx context.Context, orderID uuid.UUID) (*TransactionResponse, error) {
	tx, err := s.escrowRepo.ReleaseHeld(ctx, orderID, time.Now())
	if err != nil {
		return nil, err
	}

	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o != nil {
		o.MarkEscrowReleased()
		if err := s.orderRepo.Save(ctx, o); err != nil {
			return nil, err
		}
	}
	return toTransactionResponse(tx), nil
}

// RefundEscrow returns the order's held funds to the buyer and forces the
// order into the refunded state. Same idempotence guard as release.
func (s *Service) RefundEscrow(ctx context.Context, orderID uuid.UUID) (*TransactionResponse, error) {
	tx, err := s.escrowRepo.RefundHeld(ctx, orderID, time.Now())
	if err != nil {
		return nil, err
	}

	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o != nil && o.Status != order.StatusRefunded {
		if err := o.MarkRefunded(); err == nil {
			if err := s.orderRepo.Save(ctx, o); err != nil {
				return nil, err
			}
		}
	}
	return toTransactionResponse(tx), nil
}

// GetEscrowByOrder returns the escrow transaction holding an order's funds
func (s *Service) GetEscrowByOrder(ctx context.Context, orderID uuid.UUID) (*TransactionResponse, error) {
	tx, err := s.escrowRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "No escrow transaction for order")
	}
	return toTransactionResponse(tx), nil
}

func toTransactionResponse(t *escrow.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:               t.ID,
		OrderID:          t.OrderID,
		ShopID:           t.ShopID,
		Amount:           t.Amount,
		Status:           t.Status.String(),
		HeldAt:           t.HeldAt,
		ReleasedAt:       t.ReleasedAt,
		RefundedAt:       t.RefundedAt,
		PayoutEligibleAt: t.PayoutEligibleAt,
	}
}
