package engine

// Aggregate scans every list and accumulates a position-weighted score and a
// raw mention count per entity ID, considering only entries of the given
// kind. The catalog map is the live snapshot for this request: an entry
// whose RefID is absent from it references a deleted entity and is skipped
// without error. Because accumulation is pure addition, the order in which
// lists are scanned does not affect the totals.
func AggregateLists(lists []EndorsementList, catalog map[string]Entity, kind EntryKind) map[string]*Aggregate {
	totals := make(map[string]*Aggregate)
	for _, list := range lists {
		for i, entry := range list.Entries {
			if entry.Kind != kind || entry.RefID == "" {
				continue
			}
			entity, ok := catalog[entry.RefID]
			if !ok {
				continue
			}
			agg := totals[entry.RefID]
			if agg == nil {
				agg = &Aggregate{}
				totals[entry.RefID] = agg
				seedSnapshot(agg, entity, entry)
			}
			agg.Score += Weight(i + 1)
			agg.Count++
		}
	}
	return totals
}

// seedSnapshot fills the aggregate's display fields from the live catalog
// entity, falling back to the entry's add-time snapshot for any field the
// catalog no longer carries. Staleness of the fallback is deliberate: the
// entry snapshot is a cache of what the user endorsed.
func seedSnapshot(agg *Aggregate, entity Entity, entry ListEntry) {
	agg.Name = entity.Name
	if agg.Name == "" {
		agg.Name = entry.Name
	}
	agg.Category = entity.Category
	if agg.Category == "" {
		agg.Category = entry.Category
	}
	agg.Website = entity.Website
	agg.LogoURL = entity.LogoURL
	if agg.LogoURL == "" {
		agg.LogoURL = entry.LogoURL
	}
}
