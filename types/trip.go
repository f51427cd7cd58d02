package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trip is one travel plan. It exclusively owns its itinerary, cached
// suggestions and checklist.
type Trip struct {
	ID          string           `json:"id"`
	Destination string           `json:"destination"`
	StartDate   time.Time        `json:"startDate"`
	EndDate     time.Time        `json:"endDate"`
	CoverImage  string           `json:"coverImage"`
	Budget      *decimal.Decimal `json:"budget,omitempty"`
	Itinerary   []ItineraryItem  `json:"itinerary"`
	Suggestions []AISuggestion   `json:"suggestions"`
	Checklist   []ChecklistItem  `json:"checklist"`
}

// TripCreate is the request body for creating a trip.
type TripCreate struct {
	Destination string           `json:"destination" binding:"required"`
	Days        int              `json:"days"`
	StartDate   string           `json:"startDate,omitempty"`
	Budget      *decimal.Decimal `json:"budget,omitempty"`
}

// TripUpdate carries the editable trip header fields. Nil fields are left
// unchanged.
type TripUpdate struct {
	Destination *string          `json:"destination,omitempty"`
	StartDate   *string          `json:"startDate,omitempty"`
	EndDate     *string          `json:"endDate,omitempty"`
	Budget      *decimal.Decimal `json:"budget,omitempty"`
}

// Clone returns a deep copy so callers can hand snapshots to other goroutines.
func (t *Trip) Clone() *Trip {
	if t == nil {
		return nil
	}
	c := *t
	if t.Budget != nil {
		b := *t.Budget
		c.Budget = &b
	}
	if t.Itinerary != nil {
		c.Itinerary = make([]ItineraryItem, len(t.Itinerary))
		for i := range t.Itinerary {
			c.Itinerary[i] = t.Itinerary[i].Clone()
		}
	}
	if t.Suggestions != nil {
		c.Suggestions = make([]AISuggestion, len(t.Suggestions))
		for i := range t.Suggestions {
			c.Suggestions[i] = t.Suggestions[i].Clone()
		}
	}
	if t.Checklist != nil {
		c.Checklist = append([]ChecklistItem(nil), t.Checklist...)
		if len(t.Checklist) == 0 {
			c.Checklist = []ChecklistItem{}
		}
	}
	return &c
}
