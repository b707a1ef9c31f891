package domain

// Tier is a user's subscription level.
type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
	TierPro     Tier = "pro"
	TierExpert  Tier = "expert"
)

// ParseTier maps an externally sourced tier string; anything unknown is free.
func ParseTier(s string) Tier {
	switch t := Tier(s); t {
	case TierFree, TierPremium, TierPro, TierExpert:
		return t
	default:
		return TierFree
	}
}
