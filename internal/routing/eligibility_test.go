// internal/routing/eligibility_test.go
package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"marketplace-routing/internal/routing/quota"
)

func TestEvaluate_NoDisqualifications(t *testing.T) {
	disqs := Evaluate(RoutingInput{
		BrandTier:   TierB,
		Condition:   ConditionNew,
		WeightClass: WeightLight,
	}, testConfig(), nil)
	assert.Empty(t, disqs)
}

func TestEvaluate_HardRules(t *testing.T) {
	cfg := testConfig()
	cfg.BlockedAmazonBrands = []string{"GrayMarket Co"}

	tests := []struct {
		name string
		in   RoutingInput
		want map[Channel][]string
	}{
		{
			name: "heavy blocks auctions",
			in:   RoutingInput{BrandTier: TierB, Condition: ConditionGood, WeightClass: WeightHeavy},
			want: map[Channel][]string{
				ChannelWhatnot: {ReasonHeavyShipping},
			},
		},
		{
			name: "parts-damaged blocks amazon",
			in:   RoutingInput{BrandTier: TierB, Condition: ConditionPartsDamaged, WeightClass: WeightLight},
			want: map[Channel][]string{
				ChannelAmazon: {ReasonPartsDamagedListed},
			},
		},
		{
			name: "private-label blocks amazon",
			in:   RoutingInput{BrandTier: TierC, Condition: ConditionNew, WeightClass: WeightLight},
			want: map[Channel][]string{
				ChannelAmazon: {ReasonPrivateLabel},
			},
		},
		{
			name: "blocked brand matches case-insensitively",
			in:   RoutingInput{BrandTier: TierB, Condition: ConditionNew, WeightClass: WeightLight, Brand: "graymarket co"},
			want: map[Channel][]string{
				ChannelAmazon: {ReasonBrandBlocked},
			},
		},
		{
			name: "reasons accumulate per channel",
			in:   RoutingInput{BrandTier: TierC, Condition: ConditionPartsDamaged, WeightClass: WeightHeavy},
			want: map[Channel][]string{
				ChannelWhatnot: {ReasonHeavyShipping},
				ChannelAmazon:  {ReasonPartsDamagedListed, ReasonPrivateLabel},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.in, cfg, nil))
		})
	}
}

func TestEvaluate_TierAQuota(t *testing.T) {
	cfg := testConfig() // ratio 10
	in := RoutingInput{BrandTier: TierA, Condition: ConditionGood, WeightClass: WeightLight}

	tests := []struct {
		name     string
		snap     *quota.Snapshot
		rejected bool
	}{
		{"empty ledger exhausts immediately", &quota.Snapshot{}, true},
		{"allowance zero just below ratio", &quota.Snapshot{OtherChannelsCount: 9}, true},
		{"allowance opens at the ratio", &quota.Snapshot{OtherChannelsCount: 10}, false},
		{"allowance consumed", &quota.Snapshot{LimitedChannelCount: 1, OtherChannelsCount: 10}, true},
		{"allowance grows with other channels", &quota.Snapshot{LimitedChannelCount: 1, OtherChannelsCount: 20}, false},
		{"nil snapshot skips the rule", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			disqs := Evaluate(in, cfg, tt.snap)
			if tt.rejected {
				assert.NotEmpty(t, disqs[ChannelWhatnot])
				assert.Contains(t, disqs[ChannelWhatnot][0], "fairness quota reached")
			} else {
				assert.Empty(t, disqs[ChannelWhatnot])
			}
		})
	}
}

func TestEvaluate_QuotaIgnoredForOtherTiers(t *testing.T) {
	// The snapshot only binds quota-tracked tiers, even when one is passed.
	disqs := Evaluate(RoutingInput{
		BrandTier:   TierB,
		Condition:   ConditionGood,
		WeightClass: WeightLight,
	}, testConfig(), &quota.Snapshot{LimitedChannelCount: 99})
	assert.Empty(t, disqs[ChannelWhatnot])
}
