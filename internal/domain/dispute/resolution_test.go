package dispute

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateAutoResolution(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name       string
		reason     string
		facts      OrderFacts
		resolution string
		fires      bool
	}{
		{
			name:       "old unshipped order refunds regardless of reason",
			reason:     "where is my stuff",
			facts:      OrderFacts{CreatedAt: now.AddDate(0, 0, -8), Shipped: false},
			resolution: ResolutionUnshipped,
			fires:      true,
		},
		{
			name:       "recent unshipped order with fraud keyword refunds",
			reason:     "This looks like a scam to me",
			facts:      OrderFacts{CreatedAt: now.AddDate(0, 0, -2), Shipped: false},
			resolution: ResolutionFraudKeyword,
			fires:      true,
		},
		{
			name:   "recent unshipped order without keywords stays open",
			reason: "where is my stuff",
			facts:  OrderFacts{CreatedAt: now.AddDate(0, 0, -2), Shipped: false},
			fires:  false,
		},
		{
			name:   "shipped order never auto resolves",
			reason: "never received anything, total scam",
			facts:  OrderFacts{CreatedAt: now.AddDate(0, 0, -30), Shipped: true},
			fires:  false,
		},
		{
			name:       "age rule wins over keyword rule on old orders",
			reason:     "never received, this is counterfeit",
			facts:      OrderFacts{CreatedAt: now.AddDate(0, 0, -10), Shipped: false},
			resolution: ResolutionUnshipped,
			fires:      true,
		},
		{
			name:   "exactly seven days is not over the line",
			reason: "where is my stuff",
			facts:  OrderFacts{CreatedAt: now.Add(-7 * 24 * time.Hour), Shipped: false},
			fires:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolution, fires := EvaluateAutoResolution(tt.reason, tt.facts, now)
			assert.Equal(t, tt.fires, fires)
			assert.Equal(t, tt.resolution, resolution)
		})
	}
}

func TestContainsFraudKeyword(t *testing.T) {
	tests := []struct {
		reason   string
		expected bool
	}{
		{"I never received the package", true},
		{"this is FAKE merchandise", true},
		{"product not as described at all", true},
		{"selling counterfeit goods", true},
		{"obvious scam", true},
		{"arrived late but fine", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			assert.Equal(t, tt.expected, ContainsFraudKeyword(tt.reason))
		})
	}
}
