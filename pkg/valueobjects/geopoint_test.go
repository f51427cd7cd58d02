package valueobjects

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NomadCrew/nomad-crew-planner/errors"
	"github.com/NomadCrew/nomad-crew-planner/types"
)

func TestNewGeoPoint(t *testing.T) {
	tests := []struct {
		name        string
		latitude    float64
		longitude   float64
		shouldError bool
	}{
		{
			name:        "valid coordinates",
			latitude:    51.5074,
			longitude:   -0.1278,
			shouldError: false,
		},
		{
			name:        "invalid latitude - too high",
			latitude:    91.0,
			longitude:   0.0,
			shouldError: true,
		},
		{
			name:        "invalid latitude - too low",
			latitude:    -91.0,
			longitude:   0.0,
			shouldError: true,
		},
		{
			name:        "invalid longitude - too high",
			latitude:    0.0,
			longitude:   181.0,
			shouldError: true,
		},
		{
			name:        "invalid longitude - too low",
			latitude:    0.0,
			longitude:   -181.0,
			shouldError: true,
		},
		{
			name:        "edge case - max valid values",
			latitude:    90.0,
			longitude:   180.0,
			shouldError: false,
		},
		{
			name:        "edge case - min valid values",
			latitude:    -90.0,
			longitude:   -180.0,
			shouldError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			point, err := NewGeoPoint(tt.latitude, tt.longitude)
			if tt.shouldError {
				assert.True(t, errors.IsType(err, errors.ValidationError))
				assert.Zero(t, point)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.latitude, point.Latitude())
				assert.Equal(t, tt.longitude, point.Longitude())
			}
		})
	}
}

func TestGeoPointDistance(t *testing.T) {
	// Test cases with known distances
	tests := []struct {
		name         string
		point1       GeoPoint
		point2       GeoPoint
		expectDist   float64
		expectMargin float64 // Acceptable margin of error in meters
	}{
		{
			name:         "London to Paris",
			point1:       GeoPoint{51.5074, -0.1278}, // London
			point2:       GeoPoint{48.8566, 2.3522},  // Paris
			expectDist:   343457.0,                   // ~343.5 km
			expectMargin: 100.0,                      // 100m margin of error
		},
		{
			name:         "Same point",
			point1:       GeoPoint{0.0, 0.0},
			point2:       GeoPoint{0.0, 0.0},
			expectDist:   0.0,
			expectMargin: 0.1,
		},
		{
			name:         "Antipodes",
			point1:       GeoPoint{0.0, 0.0},
			point2:       GeoPoint{0.0, 180.0},
			expectDist:   20015087.0, // ~20,015 km (half Earth's circumference)
			expectMargin: 1000.0,     // 1km margin of error
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			distance := tt.point1.DistanceTo(tt.point2)
			assert.InDelta(t, tt.expectDist, distance, tt.expectMargin)

			// Distance should be the same in reverse
			reverseDistance := tt.point2.DistanceTo(tt.point1)
			assert.InDelta(t, distance, reverseDistance, 0.1)
		})
	}
}

func TestGeoPointBearingTo(t *testing.T) {
	origin := MustGeoPoint(0, 0)

	tests := []struct {
		name     string
		to       GeoPoint
		expected float64
	}{
		{name: "north", to: MustGeoPoint(1, 0), expected: 0},
		{name: "east", to: MustGeoPoint(0, 1), expected: 90},
		{name: "south", to: MustGeoPoint(-1, 0), expected: 180},
		{name: "west", to: MustGeoPoint(0, -1), expected: 270},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bearing := origin.BearingTo(tt.to)
			assert.InDelta(t, tt.expected, bearing, 1e-9)
			assert.GreaterOrEqual(t, bearing, 0.0)
			assert.Less(t, bearing, 360.0)
		})
	}
}

func TestGeoPointScreenMidpoint(t *testing.T) {
	t.Run("along the equator", func(t *testing.T) {
		mid := MustGeoPoint(0, 0).ScreenMidpoint(MustGeoPoint(0, 10))
		assert.InDelta(t, 0, mid.Latitude(), 1e-9)
		assert.InDelta(t, 5, mid.Longitude(), 1e-9)
	})

	t.Run("mercator stretch pulls towards the pole", func(t *testing.T) {
		mid := MustGeoPoint(10, 0).ScreenMidpoint(MustGeoPoint(20, 0))
		assert.Greater(t, mid.Latitude(), 15.0)
		assert.Less(t, mid.Latitude(), 15.2)
		assert.InDelta(t, 0, mid.Longitude(), 1e-9)
	})
}

func TestGeoPointIsUnknown(t *testing.T) {
	assert.True(t, MustGeoPoint(0, 0).IsUnknown())
	assert.False(t, MustGeoPoint(0, 1).IsUnknown())
	assert.False(t, MustGeoPoint(1, 0).IsUnknown())
}

func TestNewGeoPointFromCoordinates(t *testing.T) {
	_, err := NewGeoPointFromCoordinates(nil)
	assert.Error(t, err)

	_, err = NewGeoPointFromCoordinates(&types.Coordinates{Lat: math.NaN(), Lng: 2.35})
	assert.Error(t, err)

	point, err := NewGeoPointFromCoordinates(&types.Coordinates{Lat: 48.8566, Lng: 2.3522})
	require.NoError(t, err)
	assert.Equal(t, 48.8566, point.Latitude())
	assert.False(t, point.IsUnknown())
}
