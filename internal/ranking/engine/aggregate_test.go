package engine

import "testing"

func brandList(id string, refIDs ...string) EndorsementList {
	entries := make([]ListEntry, 0, len(refIDs))
	for _, refID := range refIDs {
		entries = append(entries, ListEntry{Kind: KindBrand, RefID: refID})
	}
	return EndorsementList{ID: id, UserID: "u-" + id, IsEndorsed: true, Entries: entries}
}

func brandCatalog(ids ...string) map[string]Entity {
	catalog := make(map[string]Entity, len(ids))
	for _, id := range ids {
		catalog[id] = Entity{ID: id, Kind: KindBrand, Name: "Brand " + id}
	}
	return catalog
}

func TestAggregatePositionWeights(t *testing.T) {
	// Two lists: [A, B] and [B]. B collects weight(2)+weight(1), A weight(1).
	userLists := []EndorsementList{
		brandList("l1", "A", "B"),
		brandList("l2", "B"),
	}
	totals := AggregateLists(userLists, brandCatalog("A", "B"), KindBrand)

	if got := totals["B"]; got == nil || got.Score != 195 || got.Count != 2 {
		t.Fatalf("B = %+v, want score 195 count 2", got)
	}
	if got := totals["A"]; got == nil || got.Score != 100 || got.Count != 1 {
		t.Fatalf("A = %+v, want score 100 count 1", got)
	}

	ranked := Rank(totals, 1)
	if len(ranked) != 1 || ranked[0].ID != "B" {
		t.Fatalf("Rank(limit=1) = %v, want [B]", ranked)
	}
}

func TestAggregateListOrderIrrelevant(t *testing.T) {
	catalog := brandCatalog("A", "B", "C")
	forward := []EndorsementList{
		brandList("l1", "A", "B"),
		brandList("l2", "C"),
		brandList("l3", "B", "C", "A"),
	}
	reversed := []EndorsementList{forward[2], forward[1], forward[0]}

	got := AggregateLists(forward, catalog, KindBrand)
	want := AggregateLists(reversed, catalog, KindBrand)

	if len(got) != len(want) {
		t.Fatalf("entity counts differ: %d vs %d", len(got), len(want))
	}
	for id, a := range got {
		b := want[id]
		if b == nil || a.Score != b.Score || a.Count != b.Count {
			t.Errorf("%s: forward %+v, reversed %+v", id, a, b)
		}
	}
}

func TestAggregateIsolation(t *testing.T) {
	catalog := brandCatalog("X", "Y")
	base := []EndorsementList{brandList("l1", "Y")}
	withX := append([]EndorsementList{brandList("l2", "X", "X")}, base...)

	before := AggregateLists(base, catalog, KindBrand)["Y"]
	after := AggregateLists(withX, catalog, KindBrand)["Y"]

	if before.Score != after.Score || before.Count != after.Count {
		t.Errorf("Y changed when X-only list was added: before %+v, after %+v", before, after)
	}
}

func TestAggregateDeletedEntity(t *testing.T) {
	// "X" was endorsed and later removed from the catalog.
	userLists := []EndorsementList{brandList("l1", "X")}
	totals := AggregateLists(userLists, map[string]Entity{}, KindBrand)
	if len(totals) != 0 {
		t.Fatalf("aggregate over deleted entity = %v, want empty", totals)
	}
	if ranked := Rank(totals, 10); len(ranked) != 0 {
		t.Fatalf("ranking deleted entity = %v, want empty", ranked)
	}
}

func TestAggregateSkipsOtherKinds(t *testing.T) {
	list := EndorsementList{
		ID: "l1",
		Entries: []ListEntry{
			{Kind: KindPlace, RefID: "P"},
			{Kind: KindBrand, RefID: "A"},
			{Kind: KindText},
			{Kind: KindBusiness, RefID: "A"},
		},
	}
	totals := AggregateLists([]EndorsementList{list}, brandCatalog("A", "P"), KindBrand)

	if len(totals) != 1 {
		t.Fatalf("totals = %v, want only A", totals)
	}
	// The brand entry sits at index 1, so it scores as position 2 even
	// though non-brand entries around it are skipped.
	if got := totals["A"]; got.Score != Weight(2) || got.Count != 1 {
		t.Errorf("A = %+v, want score %v count 1", got, Weight(2))
	}
}

func TestAggregateSnapshotPrefersCatalog(t *testing.T) {
	catalog := map[string]Entity{
		"A": {ID: "A", Name: "Fresh Name", Category: "Coffee", Website: "https://a.example"},
		"B": {ID: "B", Name: ""},
	}
	userLists := []EndorsementList{{
		ID: "l1",
		Entries: []ListEntry{
			{Kind: KindBrand, RefID: "A", Name: "Stale Name", LogoURL: "https://cdn/a.png"},
			{Kind: KindBrand, RefID: "B", Name: "Snapshot B", Category: "Tea"},
		},
	}}

	totals := AggregateLists(userLists, catalog, KindBrand)

	a := totals["A"]
	if a.Name != "Fresh Name" || a.Category != "Coffee" {
		t.Errorf("A snapshot = %+v, want live catalog fields", a)
	}
	if a.LogoURL != "https://cdn/a.png" {
		t.Errorf("A logo = %q, want entry fallback when catalog has none", a.LogoURL)
	}
	b := totals["B"]
	if b.Name != "Snapshot B" || b.Category != "Tea" {
		t.Errorf("B snapshot = %+v, want entry fallback", b)
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	totals := AggregateLists(nil, nil, KindBrand)
	if len(totals) != 0 {
		t.Fatalf("totals = %v, want empty", totals)
	}
}
