// Package valueobjects holds small immutable value types shared by the
// itinerary and map projections.
package valueobjects

import (
	"fmt"
	"math"

	"github.com/NomadCrew/nomad-crew-planner/errors"
	"github.com/NomadCrew/nomad-crew-planner/types"
)

const earthRadiusMeters = 6371000

// GeoPoint is a WGS84 coordinate. The zero value is the (0,0) sentinel the
// itinerary uses for "location unknown".
type GeoPoint struct {
	latitude  float64
	longitude float64
}

// NewGeoPoint validates the ranges [-90, 90] and [-180, 180].
func NewGeoPoint(lat, lng float64) (GeoPoint, error) {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return GeoPoint{}, errors.ValidationFailed(
			"invalid latitude",
			fmt.Sprintf("latitude %f is outside valid range [-90, 90]", lat),
		)
	}
	if math.IsNaN(lng) || lng < -180 || lng > 180 {
		return GeoPoint{}, errors.ValidationFailed(
			"invalid longitude",
			fmt.Sprintf("longitude %f is outside valid range [-180, 180]", lng),
		)
	}
	return GeoPoint{latitude: lat, longitude: lng}, nil
}

// NewGeoPointFromCoordinates validates a request anchor.
func NewGeoPointFromCoordinates(coords *types.Coordinates) (GeoPoint, error) {
	if coords == nil {
		return GeoPoint{}, errors.ValidationFailed("invalid coordinates", "coordinates cannot be nil")
	}
	return NewGeoPoint(coords.Lat, coords.Lng)
}

// MustGeoPoint builds a point without validation. Use only with coordinates
// that are already known to be in range.
func MustGeoPoint(lat, lng float64) GeoPoint {
	return GeoPoint{latitude: lat, longitude: lng}
}

func (g GeoPoint) Latitude() float64  { return g.latitude }
func (g GeoPoint) Longitude() float64 { return g.longitude }

// IsUnknown reports whether the point is the (0,0) "no location" sentinel.
func (g GeoPoint) IsUnknown() bool {
	return g.latitude == 0 && g.longitude == 0
}

// DistanceTo is the haversine distance in meters.
func (g GeoPoint) DistanceTo(other GeoPoint) float64 {
	lat1 := degreesToRadians(g.latitude)
	lat2 := degreesToRadians(other.latitude)
	dlat := lat2 - lat1
	dlng := degreesToRadians(other.longitude - g.longitude)

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlng/2)*math.Sin(dlng/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// BearingTo returns the initial great-circle bearing towards other, in
// degrees clockwise from north, normalized to [0, 360).
func (g GeoPoint) BearingTo(other GeoPoint) float64 {
	lat1 := degreesToRadians(g.latitude)
	lat2 := degreesToRadians(other.latitude)
	dlng := degreesToRadians(other.longitude - g.longitude)

	y := math.Sin(dlng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dlng)

	return math.Mod(radiansToDegrees(math.Atan2(y, x))+360, 360)
}

// ScreenMidpoint returns the point halfway between g and other in Web
// Mercator pixel space, which is where a straight drawn segment has its
// middle.
func (g GeoPoint) ScreenMidpoint(other GeoPoint) GeoPoint {
	a := Project(g)
	b := Project(other)
	return Unproject(PixelPoint{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2})
}

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

func radiansToDegrees(radians float64) float64 {
	return radians * 180 / math.Pi
}
