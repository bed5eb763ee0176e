package dispute

import (
	"strings"
	"time"
)

// Resolution messages recorded when an auto-resolution rule fires
const (
	ResolutionUnshipped    = "Auto-resolved: Order was not shipped within the expected timeframe. Refund issued."
	ResolutionFraudKeyword = "Auto-resolved: Order was not shipped and buyer reported issues. Refund issued."
)

// unshippedRefundAge is how old an unshipped order must be before a dispute
// against it refunds automatically.
const unshippedRefundAge = 7 * 24 * time.Hour

// fraudKeywords trigger an immediate refund on unshipped orders. Matching is
// a case-insensitive substring scan of the dispute reason.
var fraudKeywords = []string{
	"never received",
	"fake",
	"scam",
	"counterfeit",
	"not as described",
}

// OrderFacts are the order attributes the resolution rules look at
type OrderFacts struct {
	CreatedAt time.Time
	Shipped   bool
}

// EvaluateAutoResolution applies the resolution rules in order and returns
// the resolution message for the first rule that fires. A dispute no rule
// matches stays open; there is no manual review queue feeding back into this
// path, so such disputes remain open until an operator intervenes.
func EvaluateAutoResolution(reason string, facts OrderFacts, now time.Time) (string, bool) {
	if facts.Shipped {
		return "", false
	}
	if now.Sub(facts.CreatedAt) > unshippedRefundAge {
		return ResolutionUnshipped, true
	}
	if ContainsFraudKeyword(reason) {
		return ResolutionFraudKeyword, true
	}
	return "", false
}

// ContainsFraudKeyword reports whether the reason mentions any fraud keyword
func ContainsFraudKeyword(reason string) bool {
	lowered := strings.ToLower(reason)
	for _, kw := range fraudKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}
