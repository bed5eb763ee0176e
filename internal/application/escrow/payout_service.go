package escrow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/soko/backend/internal/domain/escrow"
	"github.com/soko/backend/internal/domain/shared"
	"github.com/soko/backend/internal/domain/shared/valueobject"
	"github.com/soko/backend/internal/domain/shop"
)

// PayoutService batches eligible escrow transactions into per-shop payouts
type PayoutService struct {
	escrowRepo escrow.Repository
	payoutRepo escrow.PayoutRepository
	shopRepo   shop.Repository
	logger     *zap.Logger
}

// NewPayoutService creates a new PayoutService
func NewPayoutService(
	escrowRepo escrow.Repository,
	payoutRepo escrow.PayoutRepository,
	shopRepo shop.Repository,
	logger *zap.Logger,
) *PayoutService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PayoutService{
		escrowRepo: escrowRepo,
		payoutRepo: payoutRepo,
		shopRepo:   shopRepo,
		logger:     logger,
	}
}

// PayoutRunResponse summarizes one payout batching run
type PayoutRunResponse struct {
	Processed         int `json:"processed"`
	TotalShops        int `json:"total_shops"`
	TotalTransactions int `json:"total_transactions"`
	Skipped           int `json:"skipped,omitempty"`
	Failed            int `json:"failed,omitempty"`
}

// PayoutResponse represents a payout batch in API responses
type PayoutResponse struct {
	ID               uuid.UUID         `json:"id"`
	ShopID           uuid.UUID         `json:"shop_id"`
	Amount           valueobject.Money `json:"amount"`
	TransactionCount int               `json:"transaction_count"`
	Status           string            `json:"status"`
	ProcessedAt      *time.Time        `json:"processed_at,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}

// ScheduleEntry is one upcoming payout-eligibility bucket for a shop
type ScheduleEntry struct {
	EligibleAt       time.Time         `json:"eligible_at"`
	Amount           valueobject.Money `json:"amount"`
	TransactionCount int               `json:"transaction_count"`
}

// EarningsResponse summarizes a shop's released funds
type EarningsResponse struct {
	TotalReleased float64 `json:"total_released"`
	PaidOut       float64 `json:"paid_out"`
	Pending       float64 `json:"pending"`
}

// ProcessPayouts bundles all payout-eligible transactions into one pending
// payout per shop. Eligibility excludes transactions already covered by any
// payout, so re-running immediately produces zero new batches.
func (s *PayoutService) ProcessPayouts(ctx context.Context) (*PayoutRunResponse, error) {
	eligible, err := s.escrowRepo.FindPayoutEligible(ctx, time.Now())
	if err != nil {
		return nil, err
	}

	byShop := groupByShop(eligible)
	result := &PayoutRunResponse{TotalShops: len(byShop)}

	for shopID, txs := range byShop {
		payout, err := escrow.NewPayout(shopID, txs)
		if err != nil {
			return nil, err
		}
		if err := s.payoutRepo.Save(ctx, payout); err != nil {
			return nil, err
		}
		result.Processed++
		result.TotalTransactions += len(txs)
	}
	return result, nil
}

// ProcessScheduledPayouts is the weekly sweep variant. It re-checks that the
// owning shop is still active, leaving funds of frozen or suspended shops
// released but unpaid, and isolates per-shop failures so one bad batch never
// aborts the run.
func (s *PayoutService) ProcessScheduledPayouts(ctx context.Context) (*PayoutRunResponse, error) {
	eligible, err := s.escrowRepo.FindPayoutEligible(ctx, time.Now())
	if err != nil {
		return nil, err
	}

	byShop := groupByShop(eligible)
	result := &PayoutRunResponse{TotalShops: len(byShop)}

	for shopID, txs := range byShop {
		sh, err := s.shopRepo.FindByID(ctx, shopID)
		if err != nil {
			s.logger.Error("payout sweep: shop lookup failed",
				zap.String("shop_id", shopID.String()), zap.Error(err))
			result.Failed++
			continue
		}
		if sh == nil || !sh.IsActive() {
			s.logger.Info("payout sweep: skipping inactive shop",
				zap.String("shop_id", shopID.String()))
			result.Skipped++
			continue
		}

		payout, err := escrow.NewPayout(shopID, txs)
		if err != nil {
			s.logger.Error("payout sweep: batch build failed",
				zap.String("shop_id", shopID.String()), zap.Error(err))
			result.Failed++
			continue
		}
		if err := s.payoutRepo.Save(ctx, payout); err != nil {
			s.logger.Error("payout sweep: batch save failed",
				zap.String("shop_id", shopID.String()), zap.Error(err))
			result.Failed++
			continue
		}
		result.Processed++
		result.TotalTransactions += len(txs)
	}
	return result, nil
}

// MarkPayoutProcessed records a pending payout as disbursed. Disbursement
// itself is simulated; there is no gateway integration.
func (s *PayoutService) MarkPayoutProcessed(ctx context.Context, payoutID uuid.UUID) (*PayoutResponse, error) {
	p, err := s.payoutRepo.FindByID(ctx, payoutID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Payout not found")
	}
	if err := p.MarkProcessed(time.Now()); err != nil {
		return nil, err
	}
	if err := s.payoutRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	return toPayoutResponse(p), nil
}

// ListPayouts lists a shop's payout batches
func (s *PayoutService) ListPayouts(ctx context.Context, shopID uuid.UUID, filter shared.Filter) ([]PayoutResponse, int64, error) {
	page, err := s.payoutRepo.FindByShop(ctx, shopID, filter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]PayoutResponse, 0, len(page.Items))
	for i := range page.Items {
		responses = append(responses, *toPayoutResponse(&page.Items[i]))
	}
	return responses, page.Total, nil
}

// PendingPayouts lists all payouts awaiting disbursement
func (s *PayoutService) PendingPayouts(ctx context.Context) ([]PayoutResponse, error) {
	payouts, err := s.payoutRepo.FindPending(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]PayoutResponse, 0, len(payouts))
	for i := range payouts {
		responses = append(responses, *toPayoutResponse(&payouts[i]))
	}
	return responses, nil
}

// PayoutSchedule lists a shop's released funds that have not cleared their
// delay yet, bucketed by eligibility date.
func (s *PayoutService) PayoutSchedule(ctx context.Context, shopID uuid.UUID) ([]ScheduleEntry, error) {
	page, err := s.escrowRepo.FindByShop(ctx, shopID, shared.Filter{Page: 1, PageSize: 100})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	buckets := make(map[time.Time]*ScheduleEntry)
	var order []time.Time
	for i := range page.Items {
		tx := &page.Items[i]
		if tx.Status != escrow.StatusReleased || !tx.PayoutEligibleAt.After(now) {
			continue
		}
		day := tx.PayoutEligibleAt.Truncate(24 * time.Hour)
		entry, ok := buckets[day]
		if !ok {
			entry = &ScheduleEntry{EligibleAt: day, Amount: valueobject.Zero()}
			buckets[day] = entry
			order = append(order, day)
		}
		entry.Amount = entry.Amount.MustAdd(tx.Amount)
		entry.TransactionCount++
	}

	entries := make([]ScheduleEntry, 0, len(order))
	for _, day := range order {
		entries = append(entries, *buckets[day])
	}
	return entries, nil
}

// Earnings summarizes a shop's released funds split into paid out and pending
func (s *PayoutService) Earnings(ctx context.Context, shopID uuid.UUID) (*EarningsResponse, error) {
	totalReleased, err := s.escrowRepo.SumReleasedByShop(ctx, shopID)
	if err != nil {
		return nil, err
	}

	page, err := s.payoutRepo.FindByShop(ctx, shopID, shared.Filter{Page: 1, PageSize: 100})
	if err != nil {
		return nil, err
	}

	var paidOut float64
	for i := range page.Items {
		if page.Items[i].Status == escrow.PayoutProcessed {
			paidOut += page.Items[i].Amount.Float64()
		}
	}
	return &EarningsResponse{
		TotalReleased: totalReleased,
		PaidOut:       paidOut,
		Pending:       totalReleased - paidOut,
	}, nil
}

func toPayoutResponse(p *escrow.Payout) *PayoutResponse {
	return &PayoutResponse{
		ID:               p.ID,
		ShopID:           p.ShopID,
		Amount:           p.Amount,
		TransactionCount: len(p.TransactionIDs),
		Status:           p.Status.String(),
		ProcessedAt:      p.ProcessedAt,
		CreatedAt:        p.CreatedAt,
	}
}

func groupByShop(txs []escrow.Transaction) map[uuid.UUID][]escrow.Transaction {
	byShop := make(map[uuid.UUID][]escrow.Transaction)
	for _, tx := range txs {
		byShop[tx.ShopID] = append(byShop[tx.ShopID], tx)
	}
	return byShop
}
