package valueobjects

import "math"

// TileSize is the pixel width of the world at zoom 0.
const TileSize = 256.0

// maxMercatorLat is where the Web Mercator square ends.
const maxMercatorLat = 85.0511287798

// PixelPoint is a position in Web Mercator pixel space at zoom 0.
type PixelPoint struct {
	X float64
	Y float64
}

// Project maps a point into zoom-0 pixel space. Latitudes beyond the
// Mercator limit are clamped.
func Project(p GeoPoint) PixelPoint {
	lat := math.Max(-maxMercatorLat, math.Min(maxMercatorLat, p.latitude))
	sin := math.Sin(degreesToRadians(lat))
	return PixelPoint{
		X: TileSize * (p.longitude + 180) / 360,
		Y: TileSize * (0.5 - math.Log((1+sin)/(1-sin))/(4*math.Pi)),
	}
}

// Unproject is the inverse of Project.
func Unproject(px PixelPoint) GeoPoint {
	lng := px.X/TileSize*360 - 180
	n := math.Pi - 2*math.Pi*px.Y/TileSize
	lat := radiansToDegrees(math.Atan(math.Sinh(n)))
	return GeoPoint{latitude: lat, longitude: lng}
}

// Bounds is a south-west / north-east rectangle.
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// BoundsOf returns the smallest rectangle containing every point. ok is
// false when points is empty.
func BoundsOf(points []GeoPoint) (b Bounds, ok bool) {
	if len(points) == 0 {
		return Bounds{}, false
	}
	b = Bounds{
		South: points[0].latitude, North: points[0].latitude,
		West: points[0].longitude, East: points[0].longitude,
	}
	for _, p := range points[1:] {
		b.South = math.Min(b.South, p.latitude)
		b.North = math.Max(b.North, p.latitude)
		b.West = math.Min(b.West, p.longitude)
		b.East = math.Max(b.East, p.longitude)
	}
	return b, true
}

// Center returns the pixel-space center of the rectangle.
func (b Bounds) Center() GeoPoint {
	sw := Project(GeoPoint{latitude: b.South, longitude: b.West})
	ne := Project(GeoPoint{latitude: b.North, longitude: b.East})
	return Unproject(PixelPoint{X: (sw.X + ne.X) / 2, Y: (sw.Y + ne.Y) / 2})
}

// FitZoom returns the largest integer zoom at which the bounds fit inside a
// width x height viewport with padding pixels on every side, capped at
// maxZoom.
func (b Bounds) FitZoom(width, height, padding float64, maxZoom int) int {
	sw := Project(GeoPoint{latitude: b.South, longitude: b.West})
	ne := Project(GeoPoint{latitude: b.North, longitude: b.East})
	dx := math.Abs(ne.X - sw.X)
	dy := math.Abs(sw.Y - ne.Y)

	availW := width - 2*padding
	availH := height - 2*padding
	if availW <= 0 || availH <= 0 {
		return 0
	}
	if dx == 0 && dy == 0 {
		return maxZoom
	}

	scale := math.Inf(1)
	if dx > 0 {
		scale = availW / dx
	}
	if dy > 0 {
		scale = math.Min(scale, availH/dy)
	}
	zoom := int(math.Floor(math.Log2(scale)))
	if zoom > maxZoom {
		return maxZoom
	}
	if zoom < 0 {
		return 0
	}
	return zoom
}
