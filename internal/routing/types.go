// internal/routing/types.go
package routing

import "fmt"

// Channel is one of the three external sales destinations.
type Channel string

const (
	ChannelWhatnot Channel = "whatnot"
	ChannelEbay    Channel = "ebay"
	ChannelAmazon  Channel = "amazon"
)

// ChannelPriority is the fixed deterministic tie-break order. When two
// eligible channels score equal, the earlier entry wins.
var ChannelPriority = []Channel{ChannelWhatnot, ChannelEbay, ChannelAmazon}

// BrandTier is the human-assigned brand classification.
type BrandTier string

const (
	TierA BrandTier = "A" // premium brands
	TierB BrandTier = "B" // recognizable brands
	TierC BrandTier = "C" // private-label
)

// WeightClass buckets an item's shipping weight.
type WeightClass string

const (
	WeightLight  WeightClass = "light"
	WeightMedium WeightClass = "medium"
	WeightHeavy  WeightClass = "heavy"
)

// Condition grades the item.
type Condition string

const (
	ConditionNew          Condition = "new"
	ConditionLikeNew      Condition = "like_new"
	ConditionGood         Condition = "good"
	ConditionAcceptable   Condition = "acceptable"
	ConditionPartsDamaged Condition = "parts_damaged"
)

// RoutingInput is the validated, immutable input to one routing decision.
// It is derived fresh from the item record at creation and at every
// explicit re-route request.
type RoutingInput struct {
	BrandTier        BrandTier
	WeightClass      WeightClass
	Condition        Condition
	Brand            string
	Category         string
	RetailPriceCents *int
	StockQuantity    int
	UPCMatched       bool
}

// Decision is the persisted output of one routing decision.
type Decision struct {
	Primary   Channel `json:"primary,omitempty"`
	Secondary Channel `json:"secondary,omitempty"`

	// Scores are always populated when inputs were complete, even for
	// disqualified channels, so the admin UI can show why a channel lost.
	Scores map[Channel]int `json:"scores,omitempty"`

	// Disqualifications holds ordered human-readable reasons per channel.
	// A channel absent from the map is eligible.
	Disqualifications map[Channel][]string `json:"disqualifications,omitempty"`

	NeedsReview bool `json:"needsReview"`

	// MissingRequiredFields is non-empty only when normalization failed;
	// in that case no scoring, eligibility, or quota mutation happened.
	MissingRequiredFields []string `json:"missingRequiredFields,omitempty"`
}

// Config is the injected, hot-reloadable routing configuration. It is read
// once per decision; callers swap the value atomically on reload.
type Config struct {
	HeavyWeightThresholdOunces int
	HighValueBrandRatio        int
	BlockedAmazonBrands        []string
	QuotaTrackedTiers          []string
}

// QuotaTracked reports whether the tier participates in the fairness quota.
func (c Config) QuotaTracked(t BrandTier) bool {
	for _, tier := range c.QuotaTrackedTiers {
		if BrandTier(tier) == t {
			return true
		}
	}
	return false
}

// QuotaKey returns the fairness key for a tracked tier, e.g. "TierA".
func (c Config) QuotaKey(t BrandTier) string {
	return fmt.Sprintf("Tier%s", t)
}

const (
	baselineScore = 50

	// reviewThreshold is the minimum score gap between the top two
	// eligible channels for the winner to be considered confident.
	reviewThreshold = 5
)
