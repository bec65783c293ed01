package engine

import (
	"fmt"
	"testing"
)

func syntheticInputs(users, listLen, catalogSize int) ([]EndorsementList, map[string]Entity) {
	catalog := make(map[string]Entity, catalogSize)
	for i := 0; i < catalogSize; i++ {
		id := fmt.Sprintf("brand-%d", i)
		catalog[id] = Entity{ID: id, Kind: KindBrand, Name: id}
	}
	lists := make([]EndorsementList, users)
	for u := 0; u < users; u++ {
		entries := make([]ListEntry, listLen)
		for p := 0; p < listLen; p++ {
			entries[p] = ListEntry{
				Kind:  KindBrand,
				RefID: fmt.Sprintf("brand-%d", (u*7+p*13)%catalogSize),
			}
		}
		lists[u] = EndorsementList{
			ID:         fmt.Sprintf("list-%d", u),
			UserID:     fmt.Sprintf("user-%d", u),
			IsEndorsed: true,
			Entries:    entries,
		}
	}
	return lists, catalog
}

// BenchmarkAggregateLists measures aggregation over 1 000 users with
// 25-entry lists against a 500-entity catalog.
func BenchmarkAggregateLists(b *testing.B) {
	lists, catalog := syntheticInputs(1000, 25, 500)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		AggregateLists(lists, catalog, KindBrand)
	}
}

// BenchmarkRank measures sorting and truncation of a 500-entity total map.
func BenchmarkRank(b *testing.B) {
	lists, catalog := syntheticInputs(1000, 25, 500)
	totals := AggregateLists(lists, catalog, KindBrand)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Rank(totals, 25)
	}
}

func BenchmarkWeight(b *testing.B) {
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Weight(i%60 + 1)
	}
}
