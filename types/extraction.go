package types

// ExtractionCandidate is an activity proposed by the extraction service,
// before validation. Times are kept as returned.
type ExtractionCandidate struct {
	Title              string      `json:"title"`
	Type               string      `json:"type"`
	Location           string      `json:"location"`
	StartTime          string      `json:"startTime"`
	EndTime            string      `json:"endTime,omitempty"`
	Description        string      `json:"description,omitempty"`
	Lat                *float64    `json:"lat,omitempty"`
	Lng                *float64    `json:"lng,omitempty"`
	ImageURL           string      `json:"imageUrl,omitempty"`
	ConfirmationNumber string      `json:"confirmationNumber,omitempty"`
	FlightInfo         *FlightInfo `json:"flightInfo,omitempty"`
}

// ToInput converts a candidate to the generic activity input shape.
func (c ExtractionCandidate) ToInput() ActivityInput {
	return ActivityInput{
		Type:               c.Type,
		Title:              c.Title,
		Location:           c.Location,
		StartTime:          c.StartTime,
		EndTime:            c.EndTime,
		Description:        c.Description,
		Lat:                c.Lat,
		Lng:                c.Lng,
		ImageURL:           c.ImageURL,
		ConfirmationNumber: c.ConfirmationNumber,
		FlightInfo:         c.FlightInfo,
	}
}

// ExtractionSource names the producer of a candidate batch.
type ExtractionSource string

const (
	ExtractionFreeText  ExtractionSource = "free_text"
	ExtractionBookings  ExtractionSource = "bookings"
	ExtractionGenerated ExtractionSource = "generated"
)

// ExtractionState is the transient candidate buffer for one trip.
type ExtractionState struct {
	TripID     string                `json:"tripId"`
	Source     ExtractionSource      `json:"source,omitempty"`
	InFlight   bool                  `json:"inFlight"`
	Candidates []ExtractionCandidate `json:"candidates"`
	Selected   []int                 `json:"selected"`
}

type ExtractionRequest struct {
	Text string `json:"text" binding:"required"`
}

type BookingParseRequest struct {
	Flight string `json:"flight"`
	Hotel  string `json:"hotel"`
}

type ItineraryGenerateRequest struct {
	Days int `json:"days" binding:"required"`
}

type SelectionUpdate struct {
	Indices []int `json:"indices"`
}
