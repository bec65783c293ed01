// Package alignment scores a catalog item's declared value stances against a
// user's supported and avoided value sets, producing a 0-100 alignment
// strength and a shop/avoid classification. Like the ranking engine it is a
// pure request/response computation.
package alignment

import "math"

// ValueAlignment records one item's stance on one value. Position is a
// 1..11 centrality scale where 1 means the stance is most central to the
// item's identity.
type ValueAlignment struct {
	ValueID   string `json:"value_id"`
	Position  int    `json:"position"`
	IsSupport bool   `json:"is_support"`
}

// Result is the outcome of scoring one item for one user. Strength >= 50
// conventionally reads as "shop this", below 50 as "avoid".
type Result struct {
	AlignmentStrength   int      `json:"alignment_strength"`
	IsPositivelyAligned bool     `json:"is_positively_aligned"`
	MatchingValues      []string `json:"matching_values"`
}

// neutralPosition is the centrality assigned to each user value the item
// takes no stance on: the least central slot on the 1..11 scale.
const neutralPosition = 11

// Score evaluates the item's value alignments against the user's supported
// and avoided value sets. totalUserValues is the size of the user's full
// declared set (supported plus avoided); values the item takes no stance on
// dilute the average centrality toward neutral. The two strength formulas
// are intentionally asymmetric: positively aligned items map into a
// compressed 50-100 band and everything else into 0-50.
func Score(alignments []ValueAlignment, supported, avoided map[string]struct{}, totalUserValues int) Result {
	var (
		totalSupportScore float64
		totalAvoidScore   float64
		totalPositionSum  float64
		matching          = make([]string, 0, len(alignments))
	)

	for _, a := range alignments {
		_, userSupports := supported[a.ValueID]
		_, userAvoids := avoided[a.ValueID]
		if !userSupports && !userAvoids {
			continue
		}
		matching = append(matching, a.ValueID)
		totalPositionSum += float64(a.Position)

		score := float64(100 - a.Position*5)
		if !a.IsSupport {
			score = -score
		}
		if userSupports {
			if score > 0 {
				totalSupportScore += score
			} else {
				totalAvoidScore += -score
			}
		} else {
			// The user avoids this value, so the item taking a
			// supporting stance counts against it and an avoiding
			// stance counts for it.
			if score > 0 {
				totalAvoidScore += score
			} else {
				totalSupportScore += -score
			}
		}
	}

	avgPosition := float64(neutralPosition)
	if totalUserValues > 0 {
		missing := totalUserValues - len(matching)
		if missing < 0 {
			missing = 0
		}
		totalPositionSum += float64(missing * neutralPosition)
		avgPosition = totalPositionSum / float64(totalUserValues)
	}

	aligned := totalSupportScore > totalAvoidScore && totalSupportScore > 0

	var strength float64
	if aligned {
		strength = (1-(avgPosition-1)/10)*50 + 50
	} else {
		strength = (avgPosition - 1) / 10 * 50
	}

	return Result{
		AlignmentStrength:   clampStrength(int(math.Round(strength))),
		IsPositivelyAligned: aligned,
		MatchingValues:      matching,
	}
}

func clampStrength(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
