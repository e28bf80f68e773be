// internal/routing/eligibility.go
package routing

import (
	"fmt"
	"strings"

	"marketplace-routing/internal/routing/quota"
)

// Disqualification messages. Exported as package constants so exporters and
// the admin UI can match on them.
const (
	ReasonHeavyShipping      = "heavy items cannot ship via this channel"
	ReasonPartsDamagedListed = "parts/damaged items cannot be listed on this channel"
	ReasonPrivateLabel       = "private-label blocked"
	ReasonBrandBlocked       = "brand blocked for this channel"
)

// Evaluate computes hard disqualification reasons per channel. A channel
// absent from the returned map is eligible. The function never mutates the
// ledger; snap is a read taken by the orchestrator inside the key's
// critical section, and is nil for tiers outside the fairness quota.
func Evaluate(in RoutingInput, cfg Config, snap *quota.Snapshot) map[Channel][]string {
	disqs := make(map[Channel][]string)

	if in.WeightClass == WeightHeavy {
		disqs[ChannelWhatnot] = append(disqs[ChannelWhatnot], ReasonHeavyShipping)
	}

	if cfg.QuotaTracked(in.BrandTier) && snap != nil && snap.Exhausted(cfg.HighValueBrandRatio) {
		disqs[ChannelWhatnot] = append(disqs[ChannelWhatnot], fmt.Sprintf(
			"tier-%s fairness quota reached: %d auction listings against %d on other channels (allowance %d)",
			in.BrandTier, snap.LimitedChannelCount, snap.OtherChannelsCount, snap.Allowance(cfg.HighValueBrandRatio),
		))
	}

	if in.Condition == ConditionPartsDamaged {
		disqs[ChannelAmazon] = append(disqs[ChannelAmazon], ReasonPartsDamagedListed)
	}

	if in.BrandTier == TierC {
		disqs[ChannelAmazon] = append(disqs[ChannelAmazon], ReasonPrivateLabel)
	}

	if brandBlocked(in.Brand, cfg.BlockedAmazonBrands) {
		disqs[ChannelAmazon] = append(disqs[ChannelAmazon], ReasonBrandBlocked)
	}

	return disqs
}

func brandBlocked(brand string, blocked []string) bool {
	if brand == "" {
		return false
	}
	for _, b := range blocked {
		if strings.EqualFold(strings.TrimSpace(b), brand) {
			return true
		}
	}
	return false
}
