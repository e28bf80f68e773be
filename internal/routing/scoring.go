// internal/routing/scoring.go
package routing

// ScoreChannels computes the weighted score for every channel from a 50
// baseline, regardless of eligibility. Pure function; all adjustments are
// additive integers so decisions stay reproducible.
func ScoreChannels(in RoutingInput) map[Channel]int {
	return map[Channel]int{
		ChannelWhatnot: scoreWhatnot(in),
		ChannelEbay:    scoreEbay(in),
		ChannelAmazon:  scoreAmazon(in),
	}
}

func scoreWhatnot(in RoutingInput) int {
	score := baselineScore

	// Live auctions move mid-grade stock best.
	switch in.Condition {
	case ConditionGood, ConditionAcceptable:
		score += 15
	case ConditionPartsDamaged:
		score += 10
	}

	switch in.BrandTier {
	case TierA:
		score -= 25
	case TierB:
		score += 5
	case TierC:
		score += 15
	}

	if in.WeightClass == WeightLight {
		score += 10
	}

	if in.RetailPriceCents != nil && *in.RetailPriceCents < 3000 {
		score += 10
	}

	return score
}

func scoreEbay(in RoutingInput) int {
	score := baselineScore

	switch in.Condition {
	case ConditionNew, ConditionLikeNew:
		score += 10
	}

	switch in.BrandTier {
	case TierA:
		score += 20
	case TierB:
		score += 15
	case TierC:
		score += 5
	}

	if in.RetailPriceCents != nil {
		if *in.RetailPriceCents >= 2000 {
			score += 10
		}
		if *in.RetailPriceCents >= 5000 {
			score += 10
		}
	}

	if in.UPCMatched {
		score += 20
	}

	return score
}

func scoreAmazon(in RoutingInput) int {
	score := baselineScore

	switch in.Condition {
	case ConditionNew:
		score += 30
	case ConditionLikeNew:
		score += 10
	default:
		score -= 20
	}

	switch in.BrandTier {
	case TierA:
		score += 20
	case TierB:
		score += 10
	}

	if in.RetailPriceCents != nil && *in.RetailPriceCents >= 2000 {
		score += 10
	}

	if in.StockQuantity > 1 {
		score += 15
	}
	if in.StockQuantity >= 5 {
		score += 10
	}

	return score
}
