// Package engine implements the endorsement ranking pipeline: position
// weighting, catalog-resolved aggregation over user endorsement lists,
// deterministic ranking, and great-circle distance filtering. Every function
// is a pure computation over inputs already materialized in memory; all
// fetching belongs to the stores that feed it.
package engine

// Weight maps a 1-indexed rank position within an endorsement list to its
// score contribution. The schedule is front-loaded: the first ten positions
// step down by 5, positions 11-20 by 2, positions 21 onward by 1 until the
// floor of 1 is reached. Weights never increase with worse rank and never
// drop below 1 for any position >= 1. A position below 1 contributes
// nothing.
func Weight(position int) float64 {
	switch {
	case position < 1:
		return 0
	case position <= 10:
		return 100 - float64(position-1)*5
	case position <= 20:
		return 50 - float64(position-10)*2
	default:
		w := 30 - float64(position-20)
		if w < 1 {
			return 1
		}
		return w
	}
}
