package shop

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestComputeTrustScore(t *testing.T) {
	tests := []struct {
		name     string
		metrics  TrustMetrics
		expected int
	}{
		{
			name:     "brand new shop with no history gets the base score plus the fast credit",
			metrics:  TrustMetrics{},
			expected: 60,
		},
		{
			name: "age credit is capped at 30 days",
			metrics: TrustMetrics{
				ShopAgeDays: 400,
			},
			expected: 90,
		},
		{
			name: "order volume credit is capped",
			metrics: TrustMetrics{
				TotalOrders:     500,
				CompletedOrders: 500,
			},
			expected: 90,
		},
		{
			name: "perfect established shop hits the ceiling",
			metrics: TrustMetrics{
				ShopAgeDays:         365,
				TotalOrders:         200,
				CompletedOrders:     200,
				AvgFulfillmentHours: 24,
				AvgRating:           5,
			},
			expected: 100,
		},
		{
			name: "high dispute rate takes the large penalty",
			metrics: TrustMetrics{
				ShopAgeDays:     30,
				TotalOrders:     20,
				CompletedOrders: 15,
				DisputeCount:    3,
			},
			expected: 58,
		},
		{
			name: "elevated dispute rate takes the smaller penalty",
			metrics: TrustMetrics{
				ShopAgeDays:     30,
				TotalOrders:     100,
				CompletedOrders: 90,
				DisputeCount:    8,
			},
			expected: 100,
		},
		{
			name: "dispute rate at exactly 10 percent takes the smaller penalty",
			metrics: TrustMetrics{
				TotalOrders:  10,
				DisputeCount: 1,
			},
			expected: 40,
		},
		{
			name: "refund penalty stacks with dispute penalty",
			metrics: TrustMetrics{
				ShopAgeDays:     30,
				TotalOrders:     10,
				CompletedOrders: 5,
				DisputeCount:    2,
				RefundCount:     2,
			},
			expected: 38,
		},
		{
			name: "slow fulfillment is penalized",
			metrics: TrustMetrics{
				ShopAgeDays:         30,
				TotalOrders:         10,
				CompletedOrders:     10,
				AvgFulfillmentHours: 200,
			},
			expected: 75,
		},
		{
			name: "no fulfilled orders still takes the fast credit",
			metrics: TrustMetrics{
				ShopAgeDays:         10,
				AvgFulfillmentHours: 0,
			},
			expected: 70,
		},
		{
			name: "worst case clamps to zero",
			metrics: TrustMetrics{
				TotalOrders:         10,
				DisputeCount:        10,
				RefundCount:         10,
				AvgFulfillmentHours: 500,
			},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ComputeTrustScore(tt.metrics))
		})
	}
}

func TestComputeTrustScore_Bounds(t *testing.T) {
	extremes := []TrustMetrics{
		{},
		{ShopAgeDays: 100000, TotalOrders: 1000000, CompletedOrders: 1000000, AvgRating: 5, AvgFulfillmentHours: 1},
		{TotalOrders: 1, DisputeCount: 1, RefundCount: 1, AvgFulfillmentHours: 100000},
		{ShopAgeDays: -5, TotalOrders: -1},
	}

	for _, m := range extremes {
		score := ComputeTrustScore(m)
		assert.GreaterOrEqual(t, score, 0)
		assert.LessOrEqual(t, score, 100)
	}
}

func TestComputeTrustScore_Deterministic(t *testing.T) {
	m := TrustMetrics{
		ShopAgeDays:         45,
		TotalOrders:         80,
		CompletedOrders:     70,
		DisputeCount:        3,
		RefundCount:         2,
		AvgFulfillmentHours: 60,
		AvgRating:           4.2,
	}

	first := ComputeTrustScore(m)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ComputeTrustScore(m))
	}
}

func TestNewTrustScoreRecord(t *testing.T) {
	shopID := uuid.New()
	now := time.Now()
	m := TrustMetrics{
		ShopAgeDays:         30,
		TotalOrders:         40,
		CompletedOrders:     35,
		DisputeCount:        1,
		RefundCount:         1,
		AvgFulfillmentHours: 36,
		AvgRating:           4.5,
	}

	record := NewTrustScoreRecord(shopID, m, now)

	assert.Equal(t, shopID, record.ShopID)
	assert.Equal(t, ComputeTrustScore(m), record.Score)
	assert.Equal(t, 40, record.TotalOrders)
	assert.Equal(t, 35, record.CompletedOrders)
	assert.Equal(t, 1, record.DisputeCount)
	assert.Equal(t, now, record.LastCalculatedAt)
}
