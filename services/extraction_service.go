package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/NomadCrew/nomad-crew-planner/errors"
	"github.com/NomadCrew/nomad-crew-planner/internal/gemini"
	"github.com/NomadCrew/nomad-crew-planner/logger"
	"github.com/NomadCrew/nomad-crew-planner/models/itinerary"
	"github.com/NomadCrew/nomad-crew-planner/types"
)

const (
	adapterExtraction = "extraction"
	maxGeneratedDays  = 14
)

// Generator produces JSON answers from a prompt and a response schema.
type Generator interface {
	GenerateJSON(ctx context.Context, req gemini.Request, out interface{}) error
}

// ItineraryStore is the part of the trip model the extraction adapter
// writes through.
type ItineraryStore interface {
	GetTrip(tripID string) (*types.Trip, error)
	BulkInsertItems(tripID string, batch []types.ItineraryItem) (*types.Trip, int, error)
	Location() *time.Location
}

// ExtractionService turns free text into candidate activities. Candidates
// live in a per-trip buffer until they are committed or cleared; they never
// touch the itinerary on their own.
type ExtractionService struct {
	gen     Generator
	trips   ItineraryStore
	tracker *RequestTracker
	metrics *AdapterMetrics
	log     *zap.SugaredLogger

	mu      sync.Mutex
	buffers map[string]*types.ExtractionState
	owners  map[string]uint64 // request token that last reset each buffer
}

func NewExtractionService(gen Generator, trips ItineraryStore, tracker *RequestTracker, metrics *AdapterMetrics) *ExtractionService {
	if tracker == nil {
		tracker = NewRequestTracker()
	}
	return &ExtractionService{
		gen:     gen,
		trips:   trips,
		tracker: tracker,
		metrics: metrics,
		log:     logger.GetLogger().Named("extraction"),
		buffers: make(map[string]*types.ExtractionState),
		owners:  make(map[string]uint64),
	}
}

func extractionKey(tripID string) string {
	return "extraction:" + tripID
}

// Extract sends text to the extraction service. All returned candidates
// start out selected.
func (s *ExtractionService) Extract(ctx context.Context, tripID, text string) (types.ExtractionState, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return types.ExtractionState{}, errors.ValidationFailed("nothing to extract", "text is required")
	}
	trip, err := s.trips.GetTrip(tripID)
	if err != nil {
		return types.ExtractionState{}, err
	}

	loc := s.trips.Location()
	req := gemini.Request{
		Prompt:    extractionPrompt(text, trip, loc),
		Schema:    candidateSchema("title", "type", "location", "startTime"),
		UseSearch: true,
	}
	return s.run(ctx, tripID, types.ExtractionFreeText, req)
}

// ExtractBookings reads pasted flight and hotel confirmations.
func (s *ExtractionService) ExtractBookings(ctx context.Context, tripID, flight, hotel string) (types.ExtractionState, error) {
	flight, hotel = strings.TrimSpace(flight), strings.TrimSpace(hotel)
	if flight == "" && hotel == "" {
		return types.ExtractionState{}, errors.ValidationFailed("nothing to extract", "flight or hotel text is required")
	}
	trip, err := s.trips.GetTrip(tripID)
	if err != nil {
		return types.ExtractionState{}, err
	}

	req := gemini.Request{
		Prompt: bookingPrompt(flight, hotel, trip, s.trips.Location()),
		Schema: candidateSchema("title", "type", "location", "startTime"),
	}
	return s.run(ctx, tripID, types.ExtractionBookings, req)
}

// GenerateItinerary drafts a days-long plan for the trip destination.
func (s *ExtractionService) GenerateItinerary(ctx context.Context, tripID string, days int) (types.ExtractionState, error) {
	if days < 1 || days > maxGeneratedDays {
		return types.ExtractionState{}, errors.ValidationFailed("invalid itinerary length", "days must be between 1 and 14")
	}
	trip, err := s.trips.GetTrip(tripID)
	if err != nil {
		return types.ExtractionState{}, err
	}

	req := gemini.Request{
		Prompt:    itineraryPrompt(trip, days, s.trips.Location()),
		Schema:    candidateSchema(),
		UseSearch: true,
	}
	return s.run(ctx, tripID, types.ExtractionGenerated, req)
}

// run performs one request under the last-request-wins rule. A failed
// request empties the buffer; a superseded one leaves it to its successor.
// Tokens are issued, checked and forgotten under s.mu, so a Clear or a newer
// request can never be overwritten by an older response.
func (s *ExtractionService) run(ctx context.Context, tripID string, source types.ExtractionSource, req gemini.Request) (types.ExtractionState, error) {
	key := extractionKey(tripID)

	s.mu.Lock()
	token := s.tracker.Begin(key)
	s.owners[tripID] = token
	s.buffers[tripID] = &types.ExtractionState{
		TripID:     tripID,
		Source:     source,
		Candidates: []types.ExtractionCandidate{},
		Selected:   []int{},
	}
	s.mu.Unlock()

	start := time.Now()
	var candidates []types.ExtractionCandidate
	err := s.gen.GenerateJSON(ctx, req, &candidates)

	if candidates == nil {
		candidates = []types.ExtractionCandidate{}
	}
	selected := make([]int, len(candidates))
	for i := range candidates {
		selected[i] = i
	}

	s.mu.Lock()
	if !s.tracker.Finish(key, token) {
		s.mu.Unlock()
		s.log.Infow("Discarding superseded extraction response", "tripID", tripID, "source", source)
		superseded := errSuperseded("extraction")
		s.metrics.observe(adapterExtraction, start, superseded)
		return types.ExtractionState{}, superseded
	}
	if err != nil {
		delete(s.buffers, tripID)
		delete(s.owners, tripID)
		s.mu.Unlock()
		s.metrics.observe(adapterExtraction, start, err)
		s.log.Warnw("Extraction failed", "tripID", tripID, "source", source, "error", err)
		return types.ExtractionState{}, err
	}
	state := &types.ExtractionState{
		TripID:     tripID,
		Source:     source,
		Candidates: candidates,
		Selected:   selected,
	}
	s.buffers[tripID] = state
	out := copyState(state)
	s.mu.Unlock()
	s.metrics.observe(adapterExtraction, start, nil)

	s.log.Infow("Extraction returned candidates", "tripID", tripID, "source", source, "count", len(candidates))
	return out, nil
}

// State returns the current buffer of a trip. An absent buffer is an empty
// state.
func (s *ExtractionService) State(tripID string) types.ExtractionState {
	inFlight := s.tracker.InFlight(extractionKey(tripID))

	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.buffers[tripID]
	if !ok {
		return types.ExtractionState{
			TripID:     tripID,
			InFlight:   inFlight,
			Candidates: []types.ExtractionCandidate{},
			Selected:   []int{},
		}
	}
	out := copyState(state)
	out.InFlight = inFlight
	return out
}

// SetSelection replaces the selected set. Indices are deduplicated and
// sorted; any index outside the buffer rejects the whole update.
func (s *ExtractionService) SetSelection(tripID string, indices []int) (types.ExtractionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.buffers[tripID]
	if !ok {
		return types.ExtractionState{}, errors.ValidationFailed("no candidates", "run an extraction first")
	}

	seen := make(map[int]bool, len(indices))
	selected := make([]int, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(state.Candidates) {
			return types.ExtractionState{}, errors.ValidationFailed("invalid selection", "candidate index out of range")
		}
		if !seen[i] {
			seen[i] = true
			selected = append(selected, i)
		}
	}
	sort.Ints(selected)
	state.Selected = selected
	return copyState(state), nil
}

// Commit converts the selected candidates into activities and inserts them
// in one batch, then clears the buffer. Committing twice is not prevented
// and duplicates the activities. A request started while the batch was
// being inserted keeps its buffer and stays current.
func (s *ExtractionService) Commit(tripID string) (*types.Trip, int, int, error) {
	s.mu.Lock()
	state, ok := s.buffers[tripID]
	if !ok || len(state.Candidates) == 0 {
		s.mu.Unlock()
		return nil, 0, 0, errors.ValidationFailed("no candidates", "nothing to commit")
	}
	owner := s.owners[tripID]
	chosen := make([]types.ExtractionCandidate, 0, len(state.Selected))
	for _, i := range state.Selected {
		chosen = append(chosen, state.Candidates[i])
	}
	s.mu.Unlock()

	loc := s.trips.Location()
	batch := make([]types.ItineraryItem, 0, len(chosen))
	for _, c := range chosen {
		batch = append(batch, CandidateToItem(c, loc))
	}

	trip, dropped, err := s.trips.BulkInsertItems(tripID, batch)
	if err != nil {
		return nil, 0, 0, err
	}

	s.mu.Lock()
	if s.owners[tripID] == owner {
		key := extractionKey(tripID)
		if s.tracker.IsCurrent(key, owner) {
			s.tracker.Forget(key)
		}
		delete(s.buffers, tripID)
		delete(s.owners, tripID)
	}
	s.mu.Unlock()
	s.log.Infow("Committed extracted activities", "tripID", tripID, "added", len(batch)-dropped, "dropped", dropped)
	return trip, len(batch) - dropped, dropped, nil
}

// Clear discards the buffer and makes any outstanding request stale.
func (s *ExtractionService) Clear(tripID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracker.Forget(extractionKey(tripID))
	delete(s.buffers, tripID)
	delete(s.owners, tripID)
}

// CandidateToItem applies the commit defaults. A candidate without a type
// is an attraction; ids are always fresh.
func CandidateToItem(c types.ExtractionCandidate, loc *time.Location) types.ItineraryItem {
	in := c.ToInput()
	if strings.TrimSpace(in.Type) == "" {
		in.Type = string(types.ActivityAttraction)
	}
	return itinerary.FromInput(in, loc)
}

func copyState(s *types.ExtractionState) types.ExtractionState {
	out := *s
	out.Candidates = append([]types.ExtractionCandidate{}, s.Candidates...)
	out.Selected = append([]int{}, s.Selected...)
	return out
}
