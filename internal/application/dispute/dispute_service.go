package dispute

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/soko/backend/internal/domain/dispute"
	"github.com/soko/backend/internal/domain/order"
	"github.com/soko/backend/internal/domain/shared"
	"github.com/soko/backend/internal/domain/shop"
)

// EscrowRefunder returns an order's held escrow funds to the buyer
type EscrowRefunder interface {
	RefundEscrow(ctx context.Context, orderID uuid.UUID) error
}

// ViolationAppender appends a violation without escalation. The freeze path
// records one on every freeze; freezing itself is the sanction.
type ViolationAppender interface {
	AppendViolation(ctx context.Context, shopID uuid.UUID, vtype shop.ViolationType, severity shop.Severity, details shop.ViolationDetails) error
}

// Freeze thresholds for the post-resolution shop check
const (
	freezeMinOrders        = 5
	freezeDisputeRate      = 0.10
	freezeRefundedDisputes = 5
)

// Service provides application-level dispute operations
type Service struct {
	disputeRepo dispute.Repository
	orderRepo   order.Repository
	shopRepo    shop.Repository
	refunder    EscrowRefunder
	violations  ViolationAppender
	logger      *zap.Logger
}

// NewService creates a new dispute Service
func NewService(
	disputeRepo dispute.Repository,
	orderRepo order.Repository,
	shopRepo shop.Repository,
	refunder EscrowRefunder,
	violations ViolationAppender,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		disputeRepo: disputeRepo,
		orderRepo:   orderRepo,
		shopRepo:    shopRepo,
		refunder:    refunder,
		violations:  violations,
		logger:      logger,
	}
}

// DisputeResponse represents a dispute in API responses
type DisputeResponse struct {
	ID         uuid.UUID  `json:"id"`
	OrderID    uuid.UUID  `json:"order_id"`
	BuyerID    uuid.UUID  `json:"buyer_id"`
	ShopID     uuid.UUID  `json:"shop_id"`
	Reason     string     `json:"reason"`
	Status     string     `json:"status"`
	Resolution string     `json:"resolution,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// StatsResponse summarizes a shop's dispute history
type StatsResponse struct {
	TotalDisputes    int64   `json:"total_disputes"`
	OpenDisputes     int64   `json:"open_disputes"`
	RefundedDisputes int64   `json:"refunded_disputes"`
	DisputeRate      float64 `json:"dispute_rate"`
}

// CreateDispute opens a dispute for an order and immediately runs the
// auto-resolution rules. The caller gets the post-resolution record: either
// still open, or already resolved with a refund.
func (s *Service) CreateDispute(ctx context.Context, orderID, buyerID uuid.UUID, reason string) (*DisputeResponse, error) {
	if len(strings.TrimSpace(reason)) < 10 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Dispute reason must be at least 10 characters")
	}

	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Order not found")
	}
	if !o.BelongsToBuyer(buyerID) {
		return nil, shared.NewDomainError("FORBIDDEN", "Only the buyer can dispute this order")
	}
	if o.Status == order.StatusCancelled {
		return nil, shared.NewDomainError("BAD_REQUEST", "Cancelled orders cannot be disputed")
	}

	open, err := s.disputeRepo.FindOpenByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, shared.NewDomainError("CONFLICT", "An open dispute already exists for this order")
	}

	d, err := dispute.NewDispute(orderID, buyerID, o.ShopID, reason)
	if err != nil {
		return nil, err
	}
	if err := s.disputeRepo.Save(ctx, d); err != nil {
		return nil, err
	}

	if err := s.attemptAutoResolve(ctx, d, o); err != nil {
		return nil, err
	}
	return toDisputeResponse(d), nil
}

// attemptAutoResolve applies the resolution rules; when one fires the buyer
// is refunded and the shop is re-checked against the freeze thresholds.
func (s *Service) attemptAutoResolve(ctx context.Context, d *dispute.Dispute, o *order.Order) error {
	facts := dispute.OrderFacts{
		CreatedAt: o.CreatedAt,
		Shipped:   o.Status.HasShipped() || o.ShippedAt != nil,
	}
	resolution, fires := dispute.EvaluateAutoResolution(d.Reason, facts, time.Now())
	if !fires {
		return nil
	}

	if err := d.AutoResolve(resolution, time.Now()); err != nil {
		return err
	}
	if err := s.disputeRepo.Update(ctx, d); err != nil {
		return err
	}

	if err := s.refunder.RefundEscrow(ctx, d.OrderID); err != nil {
		// the dispute stays resolved; refund retries are an operator concern
		s.logger.Error("auto-resolve: escrow refund failed",
			zap.String("dispute_id", d.ID.String()),
			zap.String("order_id", d.OrderID.String()),
			zap.Error(err))
	}

	if err := s.CheckAndFreezeShop(ctx, d.ShopID); err != nil {
		s.logger.Error("auto-resolve: freeze check failed",
			zap.String("shop_id", d.ShopID.String()), zap.Error(err))
	}
	return nil
}

// CheckAndFreezeShop freezes a shop whose refunded-dispute history crosses
// the thresholds. Freezing is one-directional; this never unfreezes. An
// already-frozen shop that crosses a threshold again still gets a violation
// appended, so the record keeps growing with each refunded dispute.
func (s *Service) CheckAndFreezeShop(ctx context.Context, shopID uuid.UUID) error {
	sh, err := s.shopRepo.FindByID(ctx, shopID)
	if err != nil {
		return err
	}
	if sh == nil {
		return nil
	}

	stats, err := s.disputeRepo.StatsByShop(ctx, shopID)
	if err != nil {
		return err
	}
	totalOrders, err := s.orderRepo.CountNonCancelledByShop(ctx, shopID)
	if err != nil {
		return err
	}

	var reason string
	if totalOrders > freezeMinOrders {
		rate := float64(stats.RefundedDisputes) / float64(totalOrders)
		if rate > freezeDisputeRate {
			reason = fmt.Sprintf("High dispute rate: %.1f%%", rate*100)
		}
	}
	if reason == "" && stats.RefundedDisputes >= freezeRefundedDisputes {
		reason = fmt.Sprintf("Too many refunded disputes: %d", stats.RefundedDisputes)
	}
	if reason == "" {
		return nil
	}

	if sh.IsActive() {
		sh.Freeze(reason)
		if err := s.shopRepo.UpdateStatus(ctx, sh.ID, shop.StatusFrozen); err != nil {
			return err
		}
	}

	if err := s.violations.AppendViolation(ctx, sh.ID, shop.ViolationHighDisputeRate, shop.SeverityMedium, shop.ViolationDetails{
		"reason":            reason,
		"refunded_disputes": stats.RefundedDisputes,
		"total_orders":      totalOrders,
	}); err != nil {
		s.logger.Error("freeze: violation record failed",
			zap.String("shop_id", sh.ID.String()), zap.Error(err))
	}
	return nil
}

// GetDispute returns a dispute by ID
func (s *Service) GetDispute(ctx context.Context, disputeID uuid.UUID) (*DisputeResponse, error) {
	d, err := s.disputeRepo.FindByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Dispute not found")
	}
	return toDisputeResponse(d), nil
}

// ListBuyerDisputes lists the disputes a buyer has opened
func (s *Service) ListBuyerDisputes(ctx context.Context, buyerID uuid.UUID, filter shared.Filter) ([]DisputeResponse, int64, error) {
	page, err := s.disputeRepo.FindByBuyer(ctx, buyerID, filter)
	if err != nil {
		return nil, 0, err
	}
	return toDisputeResponses(page.Items), page.Total, nil
}

// ListShopDisputes lists disputes against a shop. Only the shop owner may
// see them.
func (s *Service) ListShopDisputes(ctx context.Context, shopID, actorID uuid.UUID, filter shared.Filter) ([]DisputeResponse, int64, error) {
	sh, err := s.shopRepo.FindByID(ctx, shopID)
	if err != nil {
		return nil, 0, err
	}
	if sh == nil {
		return nil, 0, shared.NewDomainError("NOT_FOUND", "Shop not found")
	}
	if sh.OwnerID != actorID {
		return nil, 0, shared.NewDomainError("FORBIDDEN", "Not the owner of this shop")
	}

	page, err := s.disputeRepo.FindByShop(ctx, shopID, filter)
	if err != nil {
		return nil, 0, err
	}
	return toDisputeResponses(page.Items), page.Total, nil
}

// ShopDisputeStats returns a shop's dispute counts and dispute rate
func (s *Service) ShopDisputeStats(ctx context.Context, shopID uuid.UUID) (*StatsResponse, error) {
	stats, err := s.disputeRepo.StatsByShop(ctx, shopID)
	if err != nil {
		return nil, err
	}
	totalOrders, err := s.orderRepo.CountNonCancelledByShop(ctx, shopID)
	if err != nil {
		return nil, err
	}

	var rate float64
	if totalOrders > 0 {
		rate = float64(stats.TotalDisputes) / float64(totalOrders)
	}
	return &StatsResponse{
		TotalDisputes:    stats.TotalDisputes,
		OpenDisputes:     stats.OpenDisputes,
		RefundedDisputes: stats.RefundedDisputes,
		DisputeRate:      rate,
	}, nil
}

func toDisputeResponse(d *dispute.Dispute) *DisputeResponse {
	return &DisputeResponse{
		ID:         d.ID,
		OrderID:    d.OrderID,
		BuyerID:    d.BuyerID,
		ShopID:     d.ShopID,
		Reason:     d.Reason,
		Status:     d.Status.String(),
		Resolution: d.Resolution,
		ResolvedAt: d.ResolvedAt,
		CreatedAt:  d.CreatedAt,
	}
}

func toDisputeResponses(items []dispute.Dispute) []DisputeResponse {
	responses := make([]DisputeResponse, 0, len(items))
	for i := range items {
		responses = append(responses, *toDisputeResponse(&items[i]))
	}
	return responses
}
