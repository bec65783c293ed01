package engine

import "math"

// earthRadiusMiles is the great-circle Earth radius used for all distance
// math. 3958.8 is the canonical value everywhere in this service.
const earthRadiusMiles = 3958.8

// DistanceMiles returns the haversine great-circle distance between two
// coordinates in miles.
func DistanceMiles(a, b LatLng) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng
	return earthRadiusMiles * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// FilterByDistance keeps only the items whose entity lies within maxMiles of
// origin. An item with no known location is treated as non-local and
// dropped. Survivors keep their relative order.
func FilterByDistance(items []RankedItem, locations map[string]LatLng, origin LatLng, maxMiles float64) []RankedItem {
	kept := make([]RankedItem, 0, len(items))
	for _, item := range items {
		loc, ok := locations[item.ID]
		if !ok {
			continue
		}
		if DistanceMiles(origin, loc) <= maxMiles {
			kept = append(kept, item)
		}
	}
	return kept
}
