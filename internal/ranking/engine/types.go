package engine

// EntryKind discriminates the entry types that can appear in an endorsement
// list. Only brand and business entries participate in ranking; the other
// kinds (places, values, links, free text) pass through aggregation
// untouched.
type EntryKind string

const (
	KindBrand    EntryKind = "brand"
	KindBusiness EntryKind = "business"
	KindPlace    EntryKind = "place"
	KindValue    EntryKind = "value"
	KindLink     EntryKind = "link"
	KindText     EntryKind = "text"
)

// LatLng is a geographic coordinate pair in decimal degrees.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Entity is a brand or business as known to the live catalog. The ranking
// engine reads entities by ID and never mutates them.
type Entity struct {
	ID       string    `json:"id"`
	Kind     EntryKind `json:"kind"`
	Name     string    `json:"name"`
	Category string    `json:"category,omitempty"`
	Website  string    `json:"website,omitempty"`
	LogoURL  string    `json:"logo_url,omitempty"`
	Location *LatLng   `json:"location,omitempty"`
}

// ListEntry is one slot in an endorsement list. RefID points back at the
// live catalog; the display fields are a snapshot captured when the entry
// was added and may have drifted from the catalog since.
type ListEntry struct {
	Kind     EntryKind `json:"kind"`
	RefID    string    `json:"ref_id"`
	Name     string    `json:"name,omitempty"`
	Category string    `json:"category,omitempty"`
	LogoURL  string    `json:"logo_url,omitempty"`
}

// EndorsementList is one user's ordered list of endorsements. Entry order
// encodes rank: index 0 is the strongest endorsement.
type EndorsementList struct {
	ID         string      `json:"id"`
	UserID     string      `json:"user_id"`
	Title      string      `json:"title"`
	IsEndorsed bool        `json:"is_endorsed"`
	Entries    []ListEntry `json:"entries"`
}

// Aggregate is the running total for one entity across all scanned lists.
type Aggregate struct {
	Score    float64
	Count    int
	Name     string
	Category string
	Website  string
	LogoURL  string
}

// RankedItem is one row of a computed leaderboard. It is derived fresh on
// every ranking request and never persisted.
type RankedItem struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Category         string  `json:"category,omitempty"`
	Website          string  `json:"website,omitempty"`
	LogoURL          string  `json:"logo_url,omitempty"`
	Score            float64 `json:"score"`
	EndorsementCount int     `json:"endorsement_count"`
}
