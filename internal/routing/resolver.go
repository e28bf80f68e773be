// internal/routing/resolver.go
package routing

import "sort"

// Resolve combines per-channel scores and disqualifications into the final
// assignment. Eligible channels are ranked by score descending; equal
// scores fall back to the fixed priority order (Whatnot, then Ebay, then
// Amazon). The decision needs review when no channel is eligible or when
// the top two eligible scores sit within the review threshold.
func Resolve(scores map[Channel]int, disqs map[Channel][]string) Decision {
	eligible := make([]Channel, 0, len(ChannelPriority))
	for _, ch := range ChannelPriority {
		if len(disqs[ch]) == 0 {
			eligible = append(eligible, ch)
		}
	}

	// Stable sort keeps the priority order for equal scores.
	sort.SliceStable(eligible, func(i, j int) bool {
		return scores[eligible[i]] > scores[eligible[j]]
	})

	d := Decision{
		Scores:            scores,
		Disqualifications: disqs,
	}

	if len(eligible) > 0 {
		d.Primary = eligible[0]
	}
	if len(eligible) > 1 {
		d.Secondary = eligible[1]
	}

	switch {
	case len(eligible) == 0:
		d.NeedsReview = true
	case len(eligible) >= 2:
		gap := scores[eligible[0]] - scores[eligible[1]]
		if gap < 0 {
			gap = -gap
		}
		d.NeedsReview = gap < reviewThreshold
	}

	return d
}
