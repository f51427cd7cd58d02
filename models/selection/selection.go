// Package selection holds the active and hovered item shared by the
// timeline and map projections.
package selection

// PointerType names the input device behind a pointer event.
type PointerType string

const (
	PointerMouse PointerType = "mouse"
	PointerPen   PointerType = "pen"
	PointerTouch PointerType = "touch"
)

// State is the selection for one trip. The zero value means nothing is
// selected and the map is hidden.
type State struct {
	ActiveID   string `json:"activeId"`
	HoveredID  string `json:"hoveredId"`
	MapVisible bool   `json:"mapVisible"`
	// ResizeSeq increases every time the map goes from hidden to visible.
	// Renderers recompute their size when it changes.
	ResizeSeq uint64 `json:"resizeSeq"`
}

// Activate selects id. An empty id clears the active item.
func (s State) Activate(id string) State {
	s.ActiveID = id
	return s
}

// ClearActive is called when the user navigates away from the trip view.
func (s State) ClearActive() State {
	s.ActiveID = ""
	s.HoveredID = ""
	return s
}

// PointerEnter marks id as hovered. Touch never hovers.
func (s State) PointerEnter(id string, pointer PointerType) State {
	if pointer == PointerTouch {
		return s
	}
	s.HoveredID = id
	return s
}

// PointerLeave clears the hover if it still points at id.
func (s State) PointerLeave(id string) State {
	if s.HoveredID == id {
		s.HoveredID = ""
	}
	return s
}

// SetMapVisible records map visibility and bumps ResizeSeq on a
// hidden-to-visible transition.
func (s State) SetMapVisible(visible bool) State {
	if visible && !s.MapVisible {
		s.ResizeSeq++
	}
	s.MapVisible = visible
	return s
}

// Forget drops any reference to a removed item.
func (s State) Forget(id string) State {
	if s.ActiveID == id {
		s.ActiveID = ""
	}
	if s.HoveredID == id {
		s.HoveredID = ""
	}
	return s
}

func (s State) IsActive(id string) bool {
	return id != "" && s.ActiveID == id
}

func (s State) IsHovered(id string) bool {
	return id != "" && s.HoveredID == id
}
