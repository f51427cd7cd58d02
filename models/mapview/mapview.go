// Package mapview derives markers, the chronological path and the viewport
// from an itinerary.
package mapview

import (
	"sort"

	"github.com/NomadCrew/nomad-crew-planner/models/selection"
	"github.com/NomadCrew/nomad-crew-planner/pkg/valueobjects"
	"github.com/NomadCrew/nomad-crew-planner/types"
)

const (
	FitPadding  = 50
	MaxFitZoom  = 14
	ActiveZoom  = 15
	DefaultZoom = 12
	EmptyZoom   = 2
)

// Viewport is the pixel size of the rendered map.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultViewport is used when the caller does not know its size yet.
var DefaultViewport = Viewport{Width: 800, Height: 600}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Marker struct {
	ID          string             `json:"id"`
	Type        types.ActivityType `json:"type"`
	Title       string             `json:"title"`
	Position    LatLng             `json:"position"`
	Highlighted bool               `json:"highlighted"`
	Active      bool               `json:"active"`
}

// Segment joins two consecutive located items. The arrow sits at the
// midpoint of the drawn line and points along Bearing.
type Segment struct {
	FromID   string  `json:"fromId"`
	ToID     string  `json:"toId"`
	From     LatLng  `json:"from"`
	To       LatLng  `json:"to"`
	Arrow    LatLng  `json:"arrow"`
	Bearing  float64 `json:"bearing"`
	Distance float64 `json:"distanceMeters"`
}

// Camera is what the renderer should show. When Bounds is set the renderer
// fits it with Padding; Center and Zoom are the equivalent resolved view.
type Camera struct {
	Center  LatLng               `json:"center"`
	Zoom    int                  `json:"zoom"`
	Bounds  *valueobjects.Bounds `json:"bounds,omitempty"`
	Padding int                  `json:"padding,omitempty"`
	MaxZoom int                  `json:"maxZoom,omitempty"`
}

type View struct {
	Markers   []Marker  `json:"markers"`
	Path      []Segment `json:"path"`
	Camera    Camera    `json:"camera"`
	ResizeSeq uint64    `json:"resizeSeq"`
}

// Project is a pure function of the itinerary, the shared selection and
// the viewport size.
func Project(items []types.ItineraryItem, sel selection.State, vp Viewport) View {
	if vp.Width <= 0 || vp.Height <= 0 {
		vp = DefaultViewport
	}

	located := make([]types.ItineraryItem, 0, len(items))
	for _, item := range items {
		if item.HasLocation() {
			located = append(located, item)
		}
	}

	markers := make([]Marker, 0, len(located))
	for _, item := range located {
		markers = append(markers, Marker{
			ID:          item.ID,
			Type:        item.Type,
			Title:       item.Title,
			Position:    LatLng{Lat: item.Lat, Lng: item.Lng},
			Highlighted: sel.IsHovered(item.ID),
			Active:      sel.IsActive(item.ID),
		})
	}

	return View{
		Markers:   markers,
		Path:      buildPath(located),
		Camera:    camera(located, sel, vp),
		ResizeSeq: sel.ResizeSeq,
	}
}

func buildPath(located []types.ItineraryItem) []Segment {
	ordered := make([]types.ItineraryItem, len(located))
	copy(ordered, located)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].StartTime.Before(ordered[j].StartTime)
	})

	path := make([]Segment, 0)
	for i := 1; i < len(ordered); i++ {
		from, to := ordered[i-1], ordered[i]
		a := valueobjects.MustGeoPoint(from.Lat, from.Lng)
		b := valueobjects.MustGeoPoint(to.Lat, to.Lng)
		mid := a.ScreenMidpoint(b)
		path = append(path, Segment{
			FromID:   from.ID,
			ToID:     to.ID,
			From:     LatLng{Lat: from.Lat, Lng: from.Lng},
			To:       LatLng{Lat: to.Lat, Lng: to.Lng},
			Arrow:    LatLng{Lat: mid.Latitude(), Lng: mid.Longitude()},
			Bearing:  a.BearingTo(b),
			Distance: a.DistanceTo(b),
		})
	}
	return path
}

func camera(located []types.ItineraryItem, sel selection.State, vp Viewport) Camera {
	if sel.ActiveID != "" {
		for _, item := range located {
			if item.ID == sel.ActiveID {
				return Camera{Center: LatLng{Lat: item.Lat, Lng: item.Lng}, Zoom: ActiveZoom}
			}
		}
	}

	points := make([]valueobjects.GeoPoint, len(located))
	for i, item := range located {
		points[i] = valueobjects.MustGeoPoint(item.Lat, item.Lng)
	}
	bounds, ok := valueobjects.BoundsOf(points)
	if !ok {
		return Camera{Zoom: EmptyZoom}
	}

	center := bounds.Center()
	return Camera{
		Center:  LatLng{Lat: center.Latitude(), Lng: center.Longitude()},
		Zoom:    bounds.FitZoom(vp.Width, vp.Height, FitPadding, MaxFitZoom),
		Bounds:  &bounds,
		Padding: FitPadding,
		MaxZoom: MaxFitZoom,
	}
}
