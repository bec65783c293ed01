package engine

import (
	"math"
	"testing"
)

func TestDistanceMiles(t *testing.T) {
	tests := []struct {
		name string
		a, b LatLng
		want float64
		tol  float64
	}{
		{"same point", LatLng{0, 0}, LatLng{0, 0}, 0, 0.001},
		{"one degree longitude at equator", LatLng{0, 0}, LatLng{0, 1}, 69.09, 0.1},
		{"one degree latitude", LatLng{0, 0}, LatLng{1, 0}, 69.09, 0.1},
		{"nyc to la", LatLng{40.7128, -74.0060}, LatLng{34.0522, -118.2437}, 2445, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceMiles(tt.a, tt.b)
			if math.Abs(got-tt.want) > tt.tol {
				t.Errorf("DistanceMiles = %v, want %v +/- %v", got, tt.want, tt.tol)
			}
			// Symmetry.
			if back := DistanceMiles(tt.b, tt.a); math.Abs(back-got) > 1e-9 {
				t.Errorf("distance not symmetric: %v vs %v", got, back)
			}
		})
	}
}

func TestFilterByDistance(t *testing.T) {
	items := []RankedItem{{ID: "near"}, {ID: "far"}, {ID: "unknown"}}
	locations := map[string]LatLng{
		"near": {Latitude: 0, Longitude: 0.1}, // ~7 miles
		"far":  {Latitude: 0, Longitude: 1},   // ~69 miles
	}
	origin := LatLng{0, 0}

	tests := []struct {
		maxMiles float64
		want     []string
	}{
		{50, []string{"near"}},
		{100, []string{"near", "far"}},
		{1, nil},
	}
	for _, tt := range tests {
		kept := FilterByDistance(items, locations, origin, tt.maxMiles)
		if len(kept) != len(tt.want) {
			t.Errorf("maxMiles=%v: kept %v, want %v", tt.maxMiles, kept, tt.want)
			continue
		}
		for i, id := range tt.want {
			if kept[i].ID != id {
				t.Errorf("maxMiles=%v: kept[%d] = %s, want %s", tt.maxMiles, i, kept[i].ID, id)
			}
		}
	}
}

func TestFilterByDistancePreservesOrder(t *testing.T) {
	items := []RankedItem{{ID: "a", Score: 9}, {ID: "b", Score: 5}, {ID: "c", Score: 1}}
	locations := map[string]LatLng{
		"a": {0, 0.1},
		"b": {0, 0.2},
		"c": {0, 0.3},
	}
	kept := FilterByDistance(items, locations, LatLng{0, 0}, 100)
	if len(kept) != 3 || kept[0].ID != "a" || kept[1].ID != "b" || kept[2].ID != "c" {
		t.Errorf("order not preserved: %v", kept)
	}
}
