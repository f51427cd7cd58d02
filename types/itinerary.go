package types

import "time"

// ActivityType is the closed set of itinerary item kinds. It only affects
// presentation.
type ActivityType string

const (
	ActivityFlight     ActivityType = "flight"
	ActivityHotel      ActivityType = "hotel"
	ActivityRestaurant ActivityType = "restaurant"
	ActivityAttraction ActivityType = "attraction"
	ActivityTransport  ActivityType = "transport"
	ActivityOther      ActivityType = "other"
)

// IsValid checks if the type is one of the known activity types
func (a ActivityType) IsValid() bool {
	switch a {
	case ActivityFlight, ActivityHotel, ActivityRestaurant, ActivityAttraction, ActivityTransport, ActivityOther:
		return true
	default:
		return false
	}
}

// ParseActivityType maps free text onto the closed set. Unknown values become
// ActivityOther.
func ParseActivityType(s string) ActivityType {
	t := ActivityType(s)
	if t.IsValid() {
		return t
	}
	return ActivityOther
}

// FlightInfo holds flight-specific details extracted from bookings.
type FlightInfo struct {
	DepartureAirport string `json:"departureAirport"`
	ArrivalAirport   string `json:"arrivalAirport"`
	FlightNumber     string `json:"flightNumber,omitempty"`
}

// ItineraryItem is one scheduled activity. Lat/Lng of (0,0) means the
// location is unknown.
type ItineraryItem struct {
	ID                 string       `json:"id"`
	Type               ActivityType `json:"type"`
	Title              string       `json:"title"`
	Location           string       `json:"location"`
	StartTime          time.Time    `json:"startTime"`
	EndTime            *time.Time   `json:"endTime,omitempty"`
	Description        string       `json:"description,omitempty"`
	Lat                float64      `json:"lat"`
	Lng                float64      `json:"lng"`
	ImageURL           string       `json:"imageUrl,omitempty"`
	Rating             *float64     `json:"rating,omitempty"`
	PriceRange         string       `json:"priceRange,omitempty"`
	GoogleMapsURL      string       `json:"googleMapsUrl,omitempty"`
	ConfirmationNumber string       `json:"confirmationNumber,omitempty"`
	FlightInfo         *FlightInfo  `json:"flightInfo,omitempty"`
}

// HasLocation reports whether the item carries real coordinates.
func (i ItineraryItem) HasLocation() bool {
	return !(i.Lat == 0 && i.Lng == 0)
}

// Clone returns a copy that shares no pointers with the receiver.
func (i ItineraryItem) Clone() ItineraryItem {
	c := i
	if i.EndTime != nil {
		e := *i.EndTime
		c.EndTime = &e
	}
	if i.Rating != nil {
		r := *i.Rating
		c.Rating = &r
	}
	if i.FlightInfo != nil {
		f := *i.FlightInfo
		c.FlightInfo = &f
	}
	return c
}

// ActivityInput is the wire shape accepted from clients and adapters before
// time resolution. Times are free-form strings.
type ActivityInput struct {
	ID                 string      `json:"id,omitempty"`
	Type               string      `json:"type"`
	Title              string      `json:"title"`
	Location           string      `json:"location"`
	StartTime          string      `json:"startTime"`
	EndTime            string      `json:"endTime,omitempty"`
	Description        string      `json:"description,omitempty"`
	Lat                *float64    `json:"lat,omitempty"`
	Lng                *float64    `json:"lng,omitempty"`
	ImageURL           string      `json:"imageUrl,omitempty"`
	Rating             *float64    `json:"rating,omitempty"`
	PriceRange         string      `json:"priceRange,omitempty"`
	GoogleMapsURL      string      `json:"googleMapsUrl,omitempty"`
	ConfirmationNumber string      `json:"confirmationNumber,omitempty"`
	FlightInfo         *FlightInfo `json:"flightInfo,omitempty"`
}
