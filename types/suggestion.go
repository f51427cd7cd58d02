package types

// AISuggestion is a generated recommendation cached on the trip. The cache is
// replaced wholesale on refresh.
type AISuggestion struct {
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Type          ActivityType `json:"type"`
	Location      string       `json:"location"`
	Rating        *float64     `json:"rating,omitempty"`
	PriceRange    string       `json:"priceRange,omitempty"`
	GoogleMapsURL string       `json:"googleMapsUrl,omitempty"`
	ImageURL      string       `json:"imageUrl,omitempty"`
	EstimatedCost string       `json:"estimatedCost,omitempty"`
	Reason        string       `json:"reason"`
}

// Clone returns a copy that shares no pointers with the receiver.
func (s AISuggestion) Clone() AISuggestion {
	c := s
	if s.Rating != nil {
		r := *s.Rating
		c.Rating = &r
	}
	return c
}

// PlaceSuggestion is the normalized output of a place search. It is never
// persisted.
type PlaceSuggestion struct {
	Title         string   `json:"title"`
	Location      string   `json:"location"`
	Description   string   `json:"description,omitempty"`
	Lat           float64  `json:"lat"`
	Lng           float64  `json:"lng"`
	ImageURL      string   `json:"imageUrl,omitempty"`
	Rating        *float64 `json:"rating,omitempty"`
	PriceRange    string   `json:"priceRange,omitempty"`
	GoogleMapsURL string   `json:"googleMapsUrl,omitempty"`
}

// Coordinates is an optional anchor for place searches.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PlaceQuery scopes a structured place search.
type PlaceQuery struct {
	Query        string       `json:"query"`
	Location     string       `json:"location"`
	ActivityType ActivityType `json:"type"`
	MaxResults   int          `json:"maxResults,omitempty"`
	Anchor       *Coordinates `json:"anchor,omitempty"`
}
