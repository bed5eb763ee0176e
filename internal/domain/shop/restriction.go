package shop

import (
	"fmt"
	"regexp"
	"strings"
)

// RestrictionPolicy holds the tunables for new-seller restrictions
type RestrictionPolicy struct {
	// NewSellerDays is the age below which a shop is treated as a new seller
	NewSellerDays int
	// MaxDailyListings is the listing cap for new sellers per trailing 24h
	MaxDailyListings int
}

// DefaultRestrictionPolicy returns the default restriction tunables
func DefaultRestrictionPolicy() RestrictionPolicy {
	return RestrictionPolicy{
		NewSellerDays:    7,
		MaxDailyListings: 5,
	}
}

// ListingDecision is the outcome of a listing restriction check
type ListingDecision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// CheckNewSellerThrottle decides whether a shop may list another product.
// New sellers are capped at MaxDailyListings products per trailing 24 hours;
// established shops are never throttled.
func (p RestrictionPolicy) CheckNewSellerThrottle(shopAgeDays int, listedLast24h int) ListingDecision {
	if shopAgeDays >= p.NewSellerDays {
		return ListingDecision{Allowed: true}
	}
	if listedLast24h >= p.MaxDailyListings {
		return ListingDecision{
			Allowed: false,
			Reason:  fmt.Sprintf("New sellers can only list %d products per day", p.MaxDailyListings),
		}
	}
	return ListingDecision{Allowed: true}
}

// highRiskCategories are blocked for new sellers. Matching is case-insensitive.
var highRiskCategories = map[string]struct{}{
	"electronics": {},
	"phones":      {},
	"laptops":     {},
	"smartphones": {},
}

// CheckHighRiskCategory returns true when the shop may list in the category.
// High-risk categories are blocked while the shop is younger than
// NewSellerDays and always allowed afterwards.
func (p RestrictionPolicy) CheckHighRiskCategory(category string, shopAgeDays int) bool {
	if shopAgeDays >= p.NewSellerDays {
		return true
	}
	_, highRisk := highRiskCategories[strings.ToLower(category)]
	return !highRisk
}

// Contact sharing patterns: candidate phone numbers, email-shaped tokens and
// messaging app mentions.
var contactPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{10,15}\b`),
	regexp.MustCompile(`\b[\w.-]+@[\w.-]+\.\w+\b`),
	regexp.MustCompile(`(?i)whatsapp|wa\.me|t\.me|telegram`),
}

// ContactCheck is the result of scanning text for shared contact details
type ContactCheck struct {
	HasContact bool     `json:"has_contact"`
	Matches    []string `json:"matches"`
}

// DetectContactSharing scans arbitrary text (typically product name plus
// description) for phone numbers, email addresses and messaging handles.
func DetectContactSharing(text string) ContactCheck {
	var matches []string
	for _, pattern := range contactPatterns {
		matches = append(matches, pattern.FindAllString(text, -1)...)
	}
	return ContactCheck{
		HasContact: len(matches) > 0,
		Matches:    matches,
	}
}
