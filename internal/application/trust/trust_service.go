package trust

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/soko/backend/internal/domain/shared"
	"github.com/soko/backend/internal/domain/shop"
)

// ScoreCache is an optional read-through cache for trust badges. Implemented
// over redis in infrastructure; a nil cache disables caching.
type ScoreCache interface {
	GetScore(ctx context.Context, shopID uuid.UUID) (int, bool, error)
	SetScore(ctx context.Context, shopID uuid.UUID, score int) error
}

// Service provides application-level trust and restriction operations
type Service struct {
	shopRepo      shop.Repository
	scoreRepo     shop.TrustScoreRepository
	violationRepo shop.ViolationRepository
	productRepo   shop.ProductRepository
	metrics       shop.TrustMetricsSource
	policy        shop.RestrictionPolicy
	cache         ScoreCache
}

// ServiceOption is a functional option for configuring Service
type ServiceOption func(*Service)

// WithScoreCache enables badge caching
func WithScoreCache(cache ScoreCache) ServiceOption {
	return func(s *Service) {
		s.cache = cache
	}
}

// WithRestrictionPolicy overrides the default restriction tunables
func WithRestrictionPolicy(policy shop.RestrictionPolicy) ServiceOption {
	return func(s *Service) {
		s.policy = policy
	}
}

// NewService creates a new trust Service
func NewService(
	shopRepo shop.Repository,
	scoreRepo shop.TrustScoreRepository,
	violationRepo shop.ViolationRepository,
	productRepo shop.ProductRepository,
	metrics shop.TrustMetricsSource,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		shopRepo:      shopRepo,
		scoreRepo:     scoreRepo,
		violationRepo: violationRepo,
		productRepo:   productRepo,
		metrics:       metrics,
		policy:        shop.DefaultRestrictionPolicy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TrustScoreResponse represents a computed trust score in API responses
type TrustScoreResponse struct {
	ShopID              uuid.UUID `json:"shop_id"`
	Score               int       `json:"score"`
	TotalOrders         int       `json:"total_orders"`
	CompletedOrders     int       `json:"completed_orders"`
	DisputeCount        int       `json:"dispute_count"`
	RefundCount         int       `json:"refund_count"`
	AvgFulfillmentHours float64   `json:"avg_fulfillment_hours"`
	LastCalculatedAt    time.Time `json:"last_calculated_at"`
}

// TrustBadgeResponse is the public badge surface for a shop
type TrustBadgeResponse struct {
	ShopID uuid.UUID `json:"shop_id"`
	Score  int       `json:"score"`
	Tier   string    `json:"tier"`
}

// ViolationResponse represents a recorded violation in API responses
type ViolationResponse struct {
	ID          uuid.UUID     `json:"id"`
	ShopID      uuid.UUID     `json:"shop_id"`
	Type        string        `json:"type"`
	Severity    string        `json:"severity"`
	ActionTaken string        `json:"action_taken"`
	Suspended   bool          `json:"suspended"`
	CreatedAt   time.Time     `json:"created_at"`
}

// CalculateTrustScore recomputes a shop's trust score from source data and
// upserts the cached record.
func (s *Service) CalculateTrustScore(ctx context.Context, shopID uuid.UUID) (*TrustScoreResponse, error) {
	sh, err := s.findShop(ctx, shopID)
	if err != nil {
		return nil, err
	}

	metrics, err := s.metrics.GatherMetrics(ctx, sh.ID)
	if err != nil {
		return nil, err
	}
	metrics.ShopAgeDays = sh.AgeDays(time.Now())

	record := shop.NewTrustScoreRecord(sh.ID, metrics, time.Now())
	if err := s.scoreRepo.Upsert(ctx, record); err != nil {
		return nil, err
	}

	if s.cache != nil {
		// best effort; a stale badge is acceptable
		_ = s.cache.SetScore(ctx, sh.ID, record.Score)
	}
	return toTrustScoreResponse(record), nil
}

// CurrentScore returns the shop's trust score, recomputing from source data
func (s *Service) CurrentScore(ctx context.Context, shopID uuid.UUID) (int, error) {
	resp, err := s.CalculateTrustScore(ctx, shopID)
	if err != nil {
		return 0, err
	}
	return resp.Score, nil
}

// GetTrustBadge returns the public badge, served from cache when possible
func (s *Service) GetTrustBadge(ctx context.Context, shopID uuid.UUID) (*TrustBadgeResponse, error) {
	if s.cache != nil {
		if score, ok, err := s.cache.GetScore(ctx, shopID); err == nil && ok {
			return &TrustBadgeResponse{ShopID: shopID, Score: score, Tier: tierFor(score)}, nil
		}
	}

	resp, err := s.CalculateTrustScore(ctx, shopID)
	if err != nil {
		return nil, err
	}
	return &TrustBadgeResponse{ShopID: shopID, Score: resp.Score, Tier: tierFor(resp.Score)}, nil
}

// CheckNewSellerThrottle decides whether the shop may list another product
// right now, counting its listings over the trailing 24 hours.
func (s *Service) CheckNewSellerThrottle(ctx context.Context, sh *shop.Shop) (shop.ListingDecision, error) {
	ageDays := sh.AgeDays(time.Now())
	if ageDays >= s.policy.NewSellerDays {
		return shop.ListingDecision{Allowed: true}, nil
	}

	listed, err := s.productRepo.CountCreatedSince(ctx, sh.ID, time.Now().Add(-24*time.Hour))
	if err != nil {
		return shop.ListingDecision{}, err
	}
	return s.policy.CheckNewSellerThrottle(ageDays, int(listed)), nil
}

// CheckHighRiskCategory reports whether the shop may list in the category
func (s *Service) CheckHighRiskCategory(sh *shop.Shop, category string) bool {
	return s.policy.CheckHighRiskCategory(category, sh.AgeDays(time.Now()))
}

// ScanListingText runs the contact-sharing detector over listing text
func (s *Service) ScanListingText(text string) shop.ContactCheck {
	return shop.DetectContactSharing(text)
}

// RecordViolation appends a violation and applies escalation: a high-severity
// violation suspends the shop immediately; three same-type violations inside
// the trailing 30 days suspend it as well.
func (s *Service) RecordViolation(ctx context.Context, shopID uuid.UUID, vtype shop.ViolationType, severity shop.Severity, details shop.ViolationDetails) (*ViolationResponse, error) {
	sh, err := s.findShop(ctx, shopID)
	if err != nil {
		return nil, err
	}

	violation, err := shop.NewViolation(sh.ID, vtype, severity, details)
	if err != nil {
		return nil, err
	}
	if err := s.violationRepo.Append(ctx, violation); err != nil {
		return nil, err
	}

	suspended := false
	if violation.RequiresImmediateSuspension() {
		suspended = true
	} else {
		since := time.Now().Add(-shop.EscalationWindow)
		count, err := s.violationRepo.CountByTypeSince(ctx, sh.ID, vtype, since)
		if err != nil {
			return nil, err
		}
		if count >= shop.EscalationThreshold {
			suspended = true
		}
	}

	if suspended && sh.Status != shop.StatusSuspended {
		sh.Suspend("Repeated policy violations: " + vtype.String())
		if err := s.shopRepo.UpdateStatus(ctx, sh.ID, shop.StatusSuspended); err != nil {
			return nil, err
		}
	}

	return &ViolationResponse{
		ID:          violation.ID,
		ShopID:      violation.ShopID,
		Type:        violation.Type.String(),
		Severity:    string(violation.Severity),
		ActionTaken: violation.ActionTaken,
		Suspended:   suspended,
		CreatedAt:   violation.CreatedAt,
	}, nil
}

// AppendViolation records a violation without running the escalation rules.
// The dispute freeze path uses it: freezing is already the sanction, and a
// frozen shop keeps accumulating the record on every subsequent freeze check.
func (s *Service) AppendViolation(ctx context.Context, shopID uuid.UUID, vtype shop.ViolationType, severity shop.Severity, details shop.ViolationDetails) (*ViolationResponse, error) {
	sh, err := s.findShop(ctx, shopID)
	if err != nil {
		return nil, err
	}

	violation, err := shop.NewViolation(sh.ID, vtype, severity, details)
	if err != nil {
		return nil, err
	}
	if err := s.violationRepo.Append(ctx, violation); err != nil {
		return nil, err
	}

	return &ViolationResponse{
		ID:          violation.ID,
		ShopID:      violation.ShopID,
		Type:        violation.Type.String(),
		Severity:    string(violation.Severity),
		ActionTaken: violation.ActionTaken,
		CreatedAt:   violation.CreatedAt,
	}, nil
}

// ListViolations returns a shop's recent violations, newest first
func (s *Service) ListViolations(ctx context.Context, shopID uuid.UUID, limit int) ([]ViolationResponse, error) {
	if limit <= 0 {
		limit = 50
	}
	violations, err := s.violationRepo.FindByShop(ctx, shopID, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]ViolationResponse, 0, len(violations))
	for _, v := range violations {
		responses = append(responses, ViolationResponse{
			ID:          v.ID,
			ShopID:      v.ShopID,
			Type:        v.Type.String(),
			Severity:    string(v.Severity),
			ActionTaken: v.ActionTaken,
			CreatedAt:   v.CreatedAt,
		})
	}
	return responses, nil
}

func (s *Service) findShop(ctx context.Context, shopID uuid.UUID) (*shop.Shop, error) {
	sh, err := s.shopRepo.FindByID(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if sh == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Shop not found")
	}
	return sh, nil
}

func toTrustScoreResponse(r *shop.TrustScoreRecord) *TrustScoreResponse {
	return &TrustScoreResponse{
		ShopID:              r.ShopID,
		Score:               r.Score,
		TotalOrders:         r.TotalOrders,
		CompletedOrders:     r.CompletedOrders,
		DisputeCount:        r.DisputeCount,
		RefundCount:         r.RefundCount,
		AvgFulfillmentHours: r.AvgFulfillmentHours,
		LastCalculatedAt:    r.LastCalculatedAt,
	}
}

func tierFor(score int) string {
	switch {
	case score >= 80:
		return "trusted"
	case score >= 60:
		return "established"
	}
	return "standard"
}
