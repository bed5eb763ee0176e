package shop

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Trust score weighting constants. The score starts from a neutral base and
// moves with order history, dispute and refund rates, fulfillment speed and
// buyer ratings.
const (
	trustBaseScore       = 50.0
	trustMaxAgePoints    = 30.0
	trustMaxOrderPoints  = 30.0
	trustOrderPointValue = 0.5
	trustRatingWeight    = 10.0

	highDisputeRate     = 0.10
	elevatedDisputeRate = 0.05
	highRefundRate      = 0.10

	fastFulfillmentHours = 48.0
	slowFulfillmentHours = 168.0
)

// TrustMetrics are the aggregated inputs to a trust score computation.
// TotalOrders and AvgFulfillmentHours cover only orders that progressed past
// payment (completed, shipped, disputed or refunded); pending and paid
// orders have no outcome to score yet.
type TrustMetrics struct {
	ShopAgeDays         int
	TotalOrders         int
	CompletedOrders     int
	DisputeCount        int
	RefundCount         int
	AvgFulfillmentHours float64
	AvgRating           float64
}

// ComputeTrustScore derives a 0-100 reputation score from the given metrics.
// The computation is deterministic: identical metrics always yield the same
// score.
func ComputeTrustScore(m TrustMetrics) int {
	score := trustBaseScore

	// Shop age credit, capped
	score += math.Min(float64(m.ShopAgeDays), trustMaxAgePoints)

	// Completed order volume credit, capped
	score += math.Min(float64(m.CompletedOrders)*trustOrderPointValue, trustMaxOrderPoints)

	// Dispute rate penalty
	if m.TotalOrders > 0 {
		disputeRate := float64(m.DisputeCount) / float64(m.TotalOrders)
		if disputeRate > highDisputeRate {
			score -= 40
		} else if disputeRate > elevatedDisputeRate {
			score -= 20
		}

		refundRate := float64(m.RefundCount) / float64(m.TotalOrders)
		if refundRate > highRefundRate {
			score -= 15
		}
	}

	// Fulfillment speed adjustment. A shop with no fulfilled orders has a
	// zero average and takes the fast credit until real data says otherwise.
	if m.AvgFulfillmentHours < fastFulfillmentHours {
		score += 10
	} else if m.AvgFulfillmentHours > slowFulfillmentHours {
		score -= 10
	}

	// Rating bonus (1-5 scale)
	if m.AvgRating > 0 {
		score += m.AvgRating * trustRatingWeight
	}

	// Clamp then round to the nearest integer
	score = math.Max(0, math.Min(100, score))
	return int(math.Round(score))
}

// TrustScoreRecord is the cached result of a trust score computation,
// one-to-one with a shop. It is always derived fresh from source data and
// upserted, never incrementally patched.
type TrustScoreRecord struct {
	ShopID              uuid.UUID `json:"shop_id"`
	Score               int       `json:"score"`
	TotalOrders         int       `json:"total_orders"`
	CompletedOrders     int       `json:"completed_orders"`
	DisputeCount        int       `json:"dispute_count"`
	RefundCount         int       `json:"refund_count"`
	AvgFulfillmentHours float64   `json:"avg_fulfillment_hours"`
	LastCalculatedAt    time.Time `json:"last_calculated_at"`
}

// NewTrustScoreRecord computes the score for the given metrics and builds the
// record to be upserted.
func NewTrustScoreRecord(shopID uuid.UUID, m TrustMetrics, now time.Time) *TrustScoreRecord {
	return &TrustScoreRecord{
		ShopID:              shopID,
		Score:               ComputeTrustScore(m),
		TotalOrders:         m.TotalOrders,
		CompletedOrders:     m.CompletedOrders,
		DisputeCount:        m.DisputeCount,
		RefundCount:         m.RefundCount,
		AvgFulfillmentHours: m.AvgFulfillmentHours,
		LastCalculatedAt:    now,
	}
}
