package engine

import "sort"

// Rank converts aggregated totals into a leaderboard sorted by score
// descending. Ties break by endorsement count descending, then by entity ID
// ascending, so the output is deterministic regardless of map iteration
// order. A limit <= 0 means unlimited. The result is never nil.
func Rank(totals map[string]*Aggregate, limit int) []RankedItem {
	items := make([]RankedItem, 0, len(totals))
	for id, agg := range totals {
		items = append(items, RankedItem{
			ID:               id,
			Name:             agg.Name,
			Category:         agg.Category,
			Website:          agg.Website,
			LogoURL:          agg.LogoURL,
			Score:            agg.Score,
			EndorsementCount: agg.Count,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		if items[i].EndorsementCount != items[j].EndorsementCount {
			return items[i].EndorsementCount > items[j].EndorsementCount
		}
		return items[i].ID < items[j].ID
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
