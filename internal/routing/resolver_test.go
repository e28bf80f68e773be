// internal/routing/resolver_test.go
package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve_RanksByScore(t *testing.T) {
	d := Resolve(map[Channel]int{
		ChannelWhatnot: 65,
		ChannelEbay:    115,
		ChannelAmazon:  125,
	}, nil)

	assert.Equal(t, ChannelAmazon, d.Primary)
	assert.Equal(t, ChannelEbay, d.Secondary)
	assert.False(t, d.NeedsReview)
}

func TestResolve_SkipsDisqualified(t *testing.T) {
	d := Resolve(map[Channel]int{
		ChannelWhatnot: 90,
		ChannelEbay:    70,
		ChannelAmazon:  120,
	}, map[Channel][]string{
		ChannelAmazon: {ReasonPartsDamagedListed},
	})

	assert.Equal(t, ChannelWhatnot, d.Primary)
	assert.Equal(t, ChannelEbay, d.Secondary)
	assert.False(t, d.NeedsReview)
}

func TestResolve_TieBreakPriority(t *testing.T) {
	tests := []struct {
		name          string
		scores        map[Channel]int
		disqs         map[Channel][]string
		wantPrimary   Channel
		wantSecondary Channel
	}{
		{
			name:          "three-way tie resolves whatnot first",
			scores:        map[Channel]int{ChannelWhatnot: 65, ChannelEbay: 65, ChannelAmazon: 65},
			wantPrimary:   ChannelWhatnot,
			wantSecondary: ChannelEbay,
		},
		{
			name:          "ebay beats amazon on a tie",
			scores:        map[Channel]int{ChannelWhatnot: 40, ChannelEbay: 80, ChannelAmazon: 80},
			wantPrimary:   ChannelEbay,
			wantSecondary: ChannelAmazon,
		},
		{
			name:   "tie among the remaining eligible pair",
			scores: map[Channel]int{ChannelWhatnot: 90, ChannelEbay: 70, ChannelAmazon: 70},
			disqs: map[Channel][]string{
				ChannelWhatnot: {ReasonHeavyShipping},
			},
			wantPrimary:   ChannelEbay,
			wantSecondary: ChannelAmazon,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Resolve(tt.scores, tt.disqs)
			assert.Equal(t, tt.wantPrimary, d.Primary)
			assert.Equal(t, tt.wantSecondary, d.Secondary)
			// Equal top scores always sit inside the review threshold.
			assert.True(t, d.NeedsReview)
		})
	}
}

func TestResolve_NeedsReview(t *testing.T) {
	tests := []struct {
		name   string
		scores map[Channel]int
		disqs  map[Channel][]string
		want   bool
	}{
		{
			name:   "comfortable gap",
			scores: map[Channel]int{ChannelWhatnot: 60, ChannelEbay: 80, ChannelAmazon: 100},
			want:   false,
		},
		{
			name:   "gap exactly at threshold is confident",
			scores: map[Channel]int{ChannelWhatnot: 60, ChannelEbay: 95, ChannelAmazon: 100},
			want:   false,
		},
		{
			name:   "gap one under threshold",
			scores: map[Channel]int{ChannelWhatnot: 60, ChannelEbay: 96, ChannelAmazon: 100},
			want:   true,
		},
		{
			name:   "single eligible channel is confident",
			scores: map[Channel]int{ChannelWhatnot: 60, ChannelEbay: 96, ChannelAmazon: 100},
			disqs: map[Channel][]string{
				ChannelWhatnot: {ReasonHeavyShipping},
				ChannelEbay:    {ReasonBrandBlocked},
			},
			want: false,
		},
		{
			name:   "no eligible channel",
			scores: map[Channel]int{ChannelWhatnot: 60, ChannelEbay: 96, ChannelAmazon: 100},
			disqs: map[Channel][]string{
				ChannelWhatnot: {ReasonHeavyShipping},
				ChannelEbay:    {ReasonBrandBlocked},
				ChannelAmazon:  {ReasonPartsDamagedListed},
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Resolve(tt.scores, tt.disqs)
			assert.Equal(t, tt.want, d.NeedsReview)
		})
	}
}

func TestResolve_NoEligibleLeavesChannelsEmpty(t *testing.T) {
	d := Resolve(map[Channel]int{ChannelWhatnot: 60, ChannelEbay: 70, ChannelAmazon: 80}, map[Channel][]string{
		ChannelWhatnot: {ReasonHeavyShipping},
		ChannelEbay:    {ReasonBrandBlocked},
		ChannelAmazon:  {ReasonPrivateLabel},
	})
	assert.Empty(t, d.Primary)
	assert.Empty(t, d.Secondary)
	assert.True(t, d.NeedsReview)
	// Scores stay populated for operators even when nothing is eligible.
	assert.Len(t, d.Scores, 3)
}
