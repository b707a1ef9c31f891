package followup

import (
	"fmt"

	"github.com/randomtoy/oracle-go/internal/domain"
)

// limits maps tiers to the number of follow-up questions allowed per reading.
// Absent tiers are unlimited.
var limits = map[domain.Tier]int{
	domain.TierFree:    3,
	domain.TierPremium: 3,
	domain.TierPro:     10,
}

// Limit returns the question limit for tier; ok is false when unlimited.
// Unrecognised tiers are treated as free.
func Limit(tier domain.Tier) (limit int, ok bool) {
	tier = domain.ParseTier(string(tier))
	limit, ok = limits[tier]
	return limit, ok
}

// CheckQuota rejects with ErrQuotaExceeded when msgs already hold the tier's
// limit of user questions. The check is advisory: it runs in-process and is
// not backed by server-side billing.
func CheckQuota(tier domain.Tier, msgs []Message) error {
	limit, ok := Limit(tier)
	if !ok {
		return nil
	}
	if asked := countUser(msgs); asked >= limit {
		return fmt.Errorf("%w: %d of %d questions used on tier %s", domain.ErrQuotaExceeded, asked, limit, domain.ParseTier(string(tier)))
	}
	return nil
}

// Remaining returns how many questions are left; -1 means unlimited.
func Remaining(tier domain.Tier, msgs []Message) int {
	limit, ok := Limit(tier)
	if !ok {
		return -1
	}
	if left := limit - countUser(msgs); left > 0 {
		return left
	}
	return 0
}
