package mapview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NomadCrew/nomad-crew-planner/models/selection"
	"github.com/NomadCrew/nomad-crew-planner/types"
)

var t0 = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func located(id string, hour int, lat, lng float64) types.ItineraryItem {
	return types.ItineraryItem{
		ID:        id,
		Type:      types.ActivityAttraction,
		Title:     id,
		StartTime: t0.Add(time.Duration(hour) * time.Hour),
		Lat:       lat,
		Lng:       lng,
	}
}

func TestProject_ExcludesSentinelCoordinates(t *testing.T) {
	items := []types.ItineraryItem{
		located("a", 0, 48.86, 2.33),
		located("unknown", 1, 0, 0),
		located("b", 2, 48.85, 2.35),
	}

	view := Project(items, selection.State{HoveredID: "unknown"}, Viewport{})

	require.Len(t, view.Markers, 2)
	for _, m := range view.Markers {
		assert.NotEqual(t, "unknown", m.ID)
		assert.False(t, m.Highlighted)
	}
	require.Len(t, view.Path, 1)
	assert.Equal(t, "a", view.Path[0].FromID)
	assert.Equal(t, "b", view.Path[0].ToID)
}

func TestProject_KeepsAxisPointsThatAreNotTheSentinel(t *testing.T) {
	items := []types.ItineraryItem{
		located("equator", 0, 0, 10),
		located("meridian", 1, 10, 0),
	}
	view := Project(items, selection.State{}, Viewport{})
	assert.Len(t, view.Markers, 2)
	assert.Len(t, view.Path, 1)
}

func TestProject_PathIsResortedByStartTime(t *testing.T) {
	items := []types.ItineraryItem{
		located("late", 5, 1, 1),
		located("early", 1, 2, 2),
		located("mid", 3, 3, 3),
	}

	view := Project(items, selection.State{}, Viewport{})

	require.Len(t, view.Path, 2)
	assert.Equal(t, "early", view.Path[0].FromID)
	assert.Equal(t, "mid", view.Path[0].ToID)
	assert.Equal(t, "mid", view.Path[1].FromID)
	assert.Equal(t, "late", view.Path[1].ToID)
	// markers keep canonical order
	assert.Equal(t, "late", view.Markers[0].ID)
}

func TestProject_BearingDueEast(t *testing.T) {
	items := []types.ItineraryItem{
		located("west", 0, 0, 1e-9),
		located("east", 1, 0, 1),
	}

	view := Project(items, selection.State{}, Viewport{})

	require.Len(t, view.Path, 1)
	assert.InDelta(t, 90, view.Path[0].Bearing, 1e-6)
	assert.InDelta(t, 0, view.Path[0].Arrow.Lat, 1e-9)
	assert.InDelta(t, 0.5, view.Path[0].Arrow.Lng, 1e-6)
	assert.InDelta(t, 111195, view.Path[0].Distance, 100)
}

func TestProject_MarkersFollowSelection(t *testing.T) {
	items := []types.ItineraryItem{
		located("a", 0, 48.86, 2.33),
		located("b", 1, 48.85, 2.35),
	}
	sel := selection.State{ActiveID: "a", HoveredID: "b"}

	view := Project(items, sel, Viewport{})

	assert.True(t, view.Markers[0].Active)
	assert.False(t, view.Markers[0].Highlighted)
	assert.True(t, view.Markers[1].Highlighted)
	assert.False(t, view.Markers[1].Active)
}

func TestProject_Camera(t *testing.T) {
	items := []types.ItineraryItem{
		located("a", 0, 48.86, 2.33),
		located("b", 1, 48.85, 2.35),
		located("nowhere", 2, 0, 0),
	}

	t.Run("fits all markers", func(t *testing.T) {
		cam := Project(items, selection.State{}, Viewport{Width: 800, Height: 600}).Camera
		require.NotNil(t, cam.Bounds)
		assert.Equal(t, FitPadding, cam.Padding)
		assert.Equal(t, MaxFitZoom, cam.MaxZoom)
		assert.LessOrEqual(t, cam.Zoom, MaxFitZoom)
		assert.Greater(t, cam.Zoom, 0)
		assert.InDelta(t, 48.855, cam.Center.Lat, 0.01)
		assert.InDelta(t, 2.34, cam.Center.Lng, 0.01)
	})

	t.Run("single marker uses the zoom cap", func(t *testing.T) {
		cam := Project(items[:1], selection.State{}, Viewport{}).Camera
		assert.Equal(t, MaxFitZoom, cam.Zoom)
	})

	t.Run("active item centers tightly", func(t *testing.T) {
		cam := Project(items, selection.State{ActiveID: "b"}, Viewport{}).Camera
		assert.Nil(t, cam.Bounds)
		assert.Equal(t, ActiveZoom, cam.Zoom)
		assert.Equal(t, 48.85, cam.Center.Lat)
		assert.Equal(t, 2.35, cam.Center.Lng)
	})

	t.Run("active item without location falls back to fit", func(t *testing.T) {
		cam := Project(items, selection.State{ActiveID: "nowhere"}, Viewport{}).Camera
		assert.NotNil(t, cam.Bounds)
	})

	t.Run("empty itinerary shows the world", func(t *testing.T) {
		cam := Project(nil, selection.State{}, Viewport{}).Camera
		assert.Equal(t, EmptyZoom, cam.Zoom)
		assert.Equal(t, LatLng{}, cam.Center)
	})
}

func TestProject_SurfacesResizeSequence(t *testing.T) {
	sel := selection.State{}.SetMapVisible(true)
	view := Project(nil, sel, Viewport{})
	assert.Equal(t, uint64(1), view.ResizeSeq)
	assert.NotNil(t, view.Markers)
	assert.NotNil(t, view.Path)
}
