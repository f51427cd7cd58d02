// Package trip owns the in-memory trip set. Reads are served from memory;
// every mutation is applied synchronously and then handed to a Saver without
// waiting for durability.
package trip

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/NomadCrew/nomad-crew-planner/errors"
	"github.com/NomadCrew/nomad-crew-planner/internal/store"
	"github.com/NomadCrew/nomad-crew-planner/logger"
	"github.com/NomadCrew/nomad-crew-planner/models/checklist"
	"github.com/NomadCrew/nomad-crew-planner/models/itinerary"
	"github.com/NomadCrew/nomad-crew-planner/models/mapview"
	"github.com/NomadCrew/nomad-crew-planner/models/selection"
	"github.com/NomadCrew/nomad-crew-planner/models/timeline"
	"github.com/NomadCrew/nomad-crew-planner/pkg/valueobjects"
	"github.com/NomadCrew/nomad-crew-planner/types"
)

const (
	DefaultDays    = 1
	maxTripDays    = 365
	dateOnlyLayout = "2006-01-02"
)

// Saver receives snapshots after each mutation. It is called with the model
// lock held, so implementations must not block or call back into the model;
// failures are theirs to log.
type Saver interface {
	Save(trip *types.Trip)
	Delete(tripID string)
}

// CoverImageProvider resolves a cover image for a new trip.
type CoverImageProvider interface {
	CoverImage(ctx context.Context, destination string) string
}

type TripModel struct {
	mu         sync.RWMutex
	trips      map[string]*types.Trip
	selections map[string]selection.State
	saver      Saver
	covers     CoverImageProvider
	loc        *time.Location
	now        func() time.Time
	log        *zap.SugaredLogger
}

type Option func(*TripModel)

// WithClock replaces time.Now, used by tests.
func WithClock(now func() time.Time) Option {
	return func(m *TripModel) {
		m.now = now
	}
}

// WithLocation sets the zone used to read naive timestamps and to group
// the timeline by day.
func WithLocation(loc *time.Location) Option {
	return func(m *TripModel) {
		if loc != nil {
			m.loc = loc
		}
	}
}

func NewTripModel(saver Saver, covers CoverImageProvider, opts ...Option) *TripModel {
	m := &TripModel{
		trips:      make(map[string]*types.Trip),
		selections: make(map[string]selection.State),
		saver:      saver,
		covers:     covers,
		loc:        time.UTC,
		now:        time.Now,
		log:        logger.GetLogger().Named("trip-model"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Location is the default zone of the model.
func (m *TripModel) Location() *time.Location {
	return m.loc
}

// Load replaces the in-memory set with the store contents. Itineraries are
// re-sorted on the way in.
func (m *TripModel) Load(ctx context.Context, s store.TripStore) error {
	trips, err := s.GetAll(ctx)
	if err != nil {
		return errors.NewDatabaseError(err)
	}

	loaded := make(map[string]*types.Trip, len(trips))
	for _, t := range trips {
		normalizeLoaded(t)
		loaded[t.ID] = t
	}

	m.mu.Lock()
	m.trips = loaded
	m.selections = make(map[string]selection.State)
	m.mu.Unlock()

	m.log.Infow("Trips loaded", "count", len(loaded))
	return nil
}

func normalizeLoaded(t *types.Trip) {
	if t.Itinerary == nil {
		t.Itinerary = []types.ItineraryItem{}
	}
	if t.Suggestions == nil {
		t.Suggestions = []types.AISuggestion{}
	}
	if t.Checklist == nil {
		t.Checklist = []types.ChecklistItem{}
	}
	if !itinerary.IsSorted(t.Itinerary) {
		itinerary.Sort(t.Itinerary)
	}
}

// CreateTrip starts a trip today (or on the requested date) lasting Days
// days. Days below one count as one.
func (m *TripModel) CreateTrip(ctx context.Context, req types.TripCreate) (*types.Trip, error) {
	destination := strings.TrimSpace(req.Destination)
	if destination == "" {
		return nil, errors.ValidationFailed("invalid trip", "destination is required")
	}

	days := req.Days
	if days < DefaultDays {
		days = DefaultDays
	}
	if days > maxTripDays {
		return nil, errors.ValidationFailed("invalid trip", "a trip cannot last more than 365 days")
	}

	start := m.now().UTC()
	if req.StartDate != "" {
		parsed, err := m.parseDate(req.StartDate)
		if err != nil {
			return nil, err
		}
		start = parsed
	}

	if err := validateBudget(req.Budget); err != nil {
		return nil, err
	}

	t := &types.Trip{
		ID:          uuid.NewString(),
		Destination: destination,
		StartDate:   start,
		EndDate:     start.Add(time.Duration(days) * 24 * time.Hour),
		Budget:      req.Budget,
		Itinerary:   []types.ItineraryItem{},
		Suggestions: []types.AISuggestion{},
		Checklist:   []types.ChecklistItem{},
	}
	if m.covers != nil {
		t.CoverImage = m.covers.CoverImage(ctx, destination)
	}

	m.mu.Lock()
	m.trips[t.ID] = t
	snapshot := t.Clone()
	m.persist(snapshot)
	m.mu.Unlock()

	m.log.Infow("Trip created", "tripID", t.ID, "destination", destination, "days", days)
	return snapshot.Clone(), nil
}

// GetTrip returns a copy of the trip.
func (m *TripModel) GetTrip(tripID string) (*types.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.trips[tripID]
	if !ok {
		return nil, errors.NotFound("Trip", tripID)
	}
	return t.Clone(), nil
}

// ListTrips returns copies ordered by start date, then id.
func (m *TripModel) ListTrips() []*types.Trip {
	m.mu.RLock()
	out := make([]*types.Trip, 0, len(m.trips))
	for _, t := range m.trips {
		out = append(out, t.Clone())
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// UpdateTrip edits the header fields. The itinerary is never checked
// against the trip dates.
func (m *TripModel) UpdateTrip(tripID string, upd types.TripUpdate) (*types.Trip, error) {
	var (
		start, end time.Time
		err        error
	)
	if upd.StartDate != nil {
		if start, err = m.parseDate(*upd.StartDate); err != nil {
			return nil, err
		}
	}
	if upd.EndDate != nil {
		if end, err = m.parseDate(*upd.EndDate); err != nil {
			return nil, err
		}
	}
	if err := validateBudget(upd.Budget); err != nil {
		return nil, err
	}

	return m.mutate(tripID, func(t *types.Trip) error {
		destination := t.Destination
		if upd.Destination != nil {
			destination = strings.TrimSpace(*upd.Destination)
			if destination == "" {
				return errors.ValidationFailed("invalid trip", "destination cannot be empty")
			}
		}
		newStart, newEnd := t.StartDate, t.EndDate
		if upd.StartDate != nil {
			newStart = start
		}
		if upd.EndDate != nil {
			newEnd = end
		}
		if newEnd.Before(newStart) {
			return errors.ValidationFailed("invalid trip dates", "end date is before start date")
		}
		t.Destination = destination
		t.StartDate, t.EndDate = newStart, newEnd
		if upd.Budget != nil {
			b := *upd.Budget
			t.Budget = &b
		}
		return nil
	})
}

// DeleteTrip removes the whole aggregate.
func (m *TripModel) DeleteTrip(tripID string) error {
	m.mu.Lock()
	if _, ok := m.trips[tripID]; !ok {
		m.mu.Unlock()
		return errors.NotFound("Trip", tripID)
	}
	delete(m.trips, tripID)
	delete(m.selections, tripID)
	if m.saver != nil {
		m.saver.Delete(tripID)
	}
	m.mu.Unlock()

	m.log.Infow("Trip deleted", "tripID", tripID)
	return nil
}

// UpsertItem inserts or replaces one activity and returns it as stored.
func (m *TripModel) UpsertItem(tripID string, item types.ItineraryItem) (types.ItineraryItem, error) {
	var stored types.ItineraryItem
	_, err := m.mutate(tripID, func(t *types.Trip) error {
		items, s, err := itinerary.Upsert(t.Itinerary, item)
		if err != nil {
			return err
		}
		t.Itinerary = items
		stored = s
		return nil
	})
	return stored, err
}

// UpsertInput resolves the wire shape in the model's zone and upserts it.
func (m *TripModel) UpsertInput(tripID string, in types.ActivityInput) (types.ItineraryItem, error) {
	return m.UpsertItem(tripID, itinerary.FromInput(in, m.loc))
}

// BulkInsertItems appends a batch, dropping items without a start time.
func (m *TripModel) BulkInsertItems(tripID string, batch []types.ItineraryItem) (*types.Trip, int, error) {
	var dropped int
	t, err := m.mutate(tripID, func(t *types.Trip) error {
		t.Itinerary, dropped = itinerary.BulkInsert(t.Itinerary, batch)
		return nil
	})
	if dropped > 0 {
		m.log.Warnw("Dropped activities without a start time", "tripID", tripID, "dropped", dropped)
	}
	return t, dropped, err
}

// RemoveItem deletes an activity. A selection pointing at it is cleared.
func (m *TripModel) RemoveItem(tripID, itemID string) error {
	_, err := m.mutate(tripID, func(t *types.Trip) error {
		items, removed := itinerary.Remove(t.Itinerary, itemID)
		if !removed {
			return errors.NotFound("Activity", itemID)
		}
		t.Itinerary = items
		m.selections[tripID] = m.selections[tripID].Forget(itemID)
		return nil
	})
	return err
}

// ReplaceSuggestions swaps the cached suggestion list wholesale.
func (m *TripModel) ReplaceSuggestions(tripID string, suggestions []types.AISuggestion) (*types.Trip, error) {
	return m.mutate(tripID, func(t *types.Trip) error {
		next := make([]types.AISuggestion, len(suggestions))
		for i := range suggestions {
			next[i] = suggestions[i].Clone()
		}
		t.Suggestions = next
		return nil
	})
}

func (m *TripModel) AddChecklistItem(tripID string, req types.ChecklistCreate) (types.ChecklistItem, error) {
	var added types.ChecklistItem
	_, err := m.mutate(tripID, func(t *types.Trip) error {
		items, entry, err := checklist.Add(t.Checklist, req.Text, req.Category)
		if err != nil {
			return err
		}
		t.Checklist = items
		added = entry
		return nil
	})
	return added, err
}

// AddSuggestedChecklistItem is a no-op when the text is already listed.
func (m *TripModel) AddSuggestedChecklistItem(tripID, text string, category types.ChecklistCategory) (bool, error) {
	var added bool
	_, err := m.mutate(tripID, func(t *types.Trip) error {
		items, ok, err := checklist.AddSuggested(t.Checklist, text, category)
		if err != nil {
			return err
		}
		t.Checklist = items
		added = ok
		return nil
	})
	return added, err
}

func (m *TripModel) ToggleChecklistItem(tripID, itemID string) error {
	_, err := m.mutate(tripID, func(t *types.Trip) error {
		items, err := checklist.Toggle(t.Checklist, itemID)
		if err != nil {
			return err
		}
		t.Checklist = items
		return nil
	})
	return err
}

func (m *TripModel) RemoveChecklistItem(tripID, itemID string) error {
	_, err := m.mutate(tripID, func(t *types.Trip) error {
		items, err := checklist.Remove(t.Checklist, itemID)
		if err != nil {
			return err
		}
		t.Checklist = items
		return nil
	})
	return err
}

func (m *TripModel) ChecklistSummary(tripID string) (checklist.Summary, error) {
	t, err := m.GetTrip(tripID)
	if err != nil {
		return checklist.Summary{}, err
	}
	return checklist.Summarize(t.Checklist), nil
}

// Selection returns the shared selection of a trip.
func (m *TripModel) Selection(tripID string) (selection.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.trips[tripID]; !ok {
		return selection.State{}, errors.NotFound("Trip", tripID)
	}
	return m.selections[tripID], nil
}

// UpdateSelection applies fn to the selection of a trip. Selection is view
// state and is never persisted.
func (m *TripModel) UpdateSelection(tripID string, fn func(selection.State) selection.State) (selection.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trips[tripID]; !ok {
		return selection.State{}, errors.NotFound("Trip", tripID)
	}
	next := fn(m.selections[tripID])
	m.selections[tripID] = next
	return next, nil
}

// Timeline projects the itinerary by day in loc, or the model zone when
// loc is nil.
func (m *TripModel) Timeline(tripID string, loc *time.Location) (timeline.View, error) {
	m.mu.RLock()
	t, ok := m.trips[tripID]
	if !ok {
		m.mu.RUnlock()
		return timeline.View{}, errors.NotFound("Trip", tripID)
	}
	items, sel, budget := t.Clone().Itinerary, m.selections[tripID], dailyBudget(t)
	m.mu.RUnlock()

	if loc == nil {
		loc = m.loc
	}
	view := timeline.Project(items, sel, loc)
	view.DailyBudget = budget
	return view, nil
}

// MapView projects the itinerary onto the map.
func (m *TripModel) MapView(tripID string, vp mapview.Viewport) (mapview.View, error) {
	items, sel, err := m.snapshotView(tripID)
	if err != nil {
		return mapview.View{}, err
	}
	return mapview.Project(items, sel, vp), nil
}

// DefaultStart suggests a start time for an activity inserted at anchor.
func (m *TripModel) DefaultStart(tripID string, anchor timeline.Anchor, loc *time.Location) (time.Time, error) {
	items, _, err := m.snapshotView(tripID)
	if err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = m.loc
	}
	return timeline.DefaultStart(items, anchor, loc, m.now), nil
}

func (m *TripModel) snapshotView(tripID string) ([]types.ItineraryItem, selection.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.trips[tripID]
	if !ok {
		return nil, selection.State{}, errors.NotFound("Trip", tripID)
	}
	return t.Clone().Itinerary, m.selections[tripID], nil
}

// mutate runs fn on the live trip under the write lock. fn must leave the
// trip untouched when it returns an error. A successful mutation is handed
// to the saver before the lock is released, so the saver sees snapshots and
// deletes in the order they were applied.
func (m *TripModel) mutate(tripID string, fn func(t *types.Trip) error) (*types.Trip, error) {
	m.mu.Lock()
	t, ok := m.trips[tripID]
	if !ok {
		m.mu.Unlock()
		return nil, errors.NotFound("Trip", tripID)
	}
	if err := fn(t); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	snapshot := t.Clone()
	m.persist(snapshot)
	m.mu.Unlock()

	return snapshot.Clone(), nil
}

func (m *TripModel) persist(snapshot *types.Trip) {
	if m.saver == nil {
		return
	}
	m.saver.Save(snapshot)
}

// parseDate accepts a calendar date or any timestamp ResolveTime reads.
func (m *TripModel) parseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if d, err := time.ParseInLocation(dateOnlyLayout, s, m.loc); err == nil {
		return d.UTC(), nil
	}
	t, err := itinerary.ResolveTime(s, m.loc)
	if err != nil {
		return time.Time{}, errors.ValidationFailed("invalid date", err.Error())
	}
	return t, nil
}

// validateBudget applies the Money rules to an optional budget.
func validateBudget(budget *decimal.Decimal) error {
	if budget == nil {
		return nil
	}
	_, err := valueobjects.NewMoney(*budget, valueobjects.USD)
	return err
}

// dailyBudget spreads the budget over the planned days, start to end date.
// A zero budget means none was set.
func dailyBudget(t *types.Trip) []decimal.Decimal {
	if t.Budget == nil {
		return nil
	}
	money, err := valueobjects.NewMoney(*t.Budget, valueobjects.USD)
	if err != nil || money.IsZero() {
		return nil
	}
	days := int(t.EndDate.Sub(t.StartDate) / (24 * time.Hour))
	if days < 1 {
		days = 1
	}
	if days > maxTripDays {
		days = maxTripDays
	}
	parts, err := money.PerDay(days)
	if err != nil {
		return nil
	}
	return parts
}
