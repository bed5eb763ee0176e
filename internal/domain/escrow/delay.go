package escrow

// Payout delay tiers in days. Young shops always get the longest hold no
// matter how their score looks; with little history a high score is noise.
const (
	DelayNewShopDays     = 14
	DelayTrustedDays     = 3
	DelayEstablishedDays = 7
	DelayDefaultDays     = 14

	newShopAgeDays        = 7
	trustedScoreFloor     = 80
	establishedScoreFloor = 60
)

// PayoutDelayDays returns how many days released funds wait before becoming
// payout eligible, given the shop's age and current trust score.
func PayoutDelayDays(shopAgeDays, trustScore int) int {
	if shopAgeDays < newShopAgeDays {
		return DelayNewShopDays
	}
	switch {
	case trustScore >= trustedScoreFloor:
		return DelayTrustedDays
	case trustScore >= establishedScoreFloor:
		return DelayEstablishedDays
	}
	return DelayDefaultDays
}
