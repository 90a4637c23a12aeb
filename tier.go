package unifiedauth

// Tier is the RevenueCat subscription class gating feature access
type Tier = string

const (
	// TierBasic is the free tier every account degrades to
	TierBasic Tier = "basic"
	// TierPremium unlocks AI coaching and streaming features
	TierPremium Tier = "premium"
	// TierPro unlocks creator and instructor features on top of premium
	TierPro Tier = "pro"
)

// IsValidTier checks if the tier is one of the predefined valid tiers
func IsValidTier(t Tier) bool {
	switch t {
	case TierBasic, TierPremium, TierPro:
		return true
	default:
		return false
	}
}

// TierIsAtLeast checks if a tier meets the minimum required level
func TierIsAtLeast(t, min Tier) bool {
	tierHierarchy := map[Tier]int{
		TierBasic:   0,
		TierPremium: 1,
		TierPro:     2,
	}

	currentLevel, exists := tierHierarchy[t]
	if !exists {
		return false
	}

	minLevel, exists := tierHierarchy[min]
	if !exists {
		return false
	}

	return currentLevel >= minLevel
}

// AllTiers returns all predefined tiers in hierarchical order
func AllTiers() []Tier {
	return []Tier{
		TierBasic,
		TierPremium,
		TierPro,
	}
}

// ParseTier safely parses a string into a Tier type
func ParseTier(tierStr string) (Tier, bool) {
	tier := Tier(tierStr)
	return tier, IsValidTier(tier)
}
