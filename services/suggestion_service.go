package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/NomadCrew/nomad-crew-planner/errors"
	"github.com/NomadCrew/nomad-crew-planner/internal/gemini"
	"github.com/NomadCrew/nomad-crew-planner/internal/places"
	"github.com/NomadCrew/nomad-crew-planner/logger"
	"github.com/NomadCrew/nomad-crew-planner/pkg/valueobjects"
	"github.com/NomadCrew/nomad-crew-planner/types"
)

const (
	adapterPlaces        = "places"
	adapterAISuggestions = "ai_suggestions"
	adapterAIPlaces      = "ai_places"
	adapterPhotos        = "place_photos"

	DefaultMaxResults      = 4
	DefaultSuggestionCount = 5
	maxSearchResults       = 20
	enrichConcurrency      = 4
	// Bias radius around an anchor such as the trip hotel.
	anchorRadiusMeters = 5000.0
	unknownPlaceTitle  = "Unknown Place"
)

// SuggestionProvider picks the backend of a type-scoped search.
type SuggestionProvider string

const (
	ProviderPlaces SuggestionProvider = "places"
	ProviderAI     SuggestionProvider = "ai"
)

// placeCategories maps an activity type to the place types it searches. The
// first entry scopes the query.
var placeCategories = map[types.ActivityType][]string{
	types.ActivityRestaurant: {"restaurant", "cafe", "bakery", "bar"},
	types.ActivityAttraction: {"tourist_attraction", "museum", "art_gallery", "park", "point_of_interest"},
	types.ActivityHotel:      {"lodging", "hotel"},
	types.ActivityTransport:  {"transit_station", "airport", "train_station", "bus_station"},
	types.ActivityOther:      {"point_of_interest"},
}

// PlaceSearcher is the structured search backend.
type PlaceSearcher interface {
	Enabled() bool
	SearchText(ctx context.Context, req places.SearchRequest, fieldMask string) ([]places.Place, error)
	FirstPhotoURL(p places.Place, maxWidth int) string
}

// SuggestionStore is the part of the trip model the suggestion adapter
// needs.
type SuggestionStore interface {
	GetTrip(tripID string) (*types.Trip, error)
	ReplaceSuggestions(tripID string, suggestions []types.AISuggestion) (*types.Trip, error)
}

type SuggestionOptions struct {
	MaxResults      int
	PhotoMaxWidth   int
	SuggestionCount int
}

type SuggestionService struct {
	places  PlaceSearcher
	gen     Generator
	trips   SuggestionStore
	tracker *RequestTracker
	metrics *AdapterMetrics
	opts    SuggestionOptions
	log     *zap.SugaredLogger
}

func NewSuggestionService(
	searcher PlaceSearcher,
	gen Generator,
	trips SuggestionStore,
	tracker *RequestTracker,
	metrics *AdapterMetrics,
	opts SuggestionOptions,
) *SuggestionService {
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	if opts.PhotoMaxWidth <= 0 {
		opts.PhotoMaxWidth = places.DefaultPhotoMaxWidth
	}
	if opts.SuggestionCount <= 0 {
		opts.SuggestionCount = DefaultSuggestionCount
	}
	if tracker == nil {
		tracker = NewRequestTracker()
	}
	return &SuggestionService{
		places:  searcher,
		gen:     gen,
		trips:   trips,
		tracker: tracker,
		metrics: metrics,
		opts:    opts,
		log:     logger.GetLogger().Named("suggestions"),
	}
}

// PlaceTypes returns the place categories searched for an activity type.
func PlaceTypes(t types.ActivityType) []string {
	if cats, ok := placeCategories[t]; ok {
		return cats
	}
	return placeCategories[types.ActivityOther]
}

// BuildSearchText composes the search text. Only restaurants and hotels
// carry a type hint.
func BuildSearchText(query, location string, t types.ActivityType) string {
	hint := ""
	switch t {
	case types.ActivityRestaurant:
		hint = "restaurant"
	case types.ActivityHotel:
		hint = "hotel"
	}
	query = strings.TrimSpace(query)
	if query != "" {
		return strings.Join(strings.Fields(fmt.Sprintf("%s %s in %s", query, hint, location)), " ")
	}
	if hint == "" {
		hint = "places"
	}
	return fmt.Sprintf("best %s in %s", hint, location)
}

// SearchPlaces runs a type-scoped search for tripID. An empty location
// falls back to the trip destination. A response that arrives after a newer
// search for the same trip is discarded.
func (s *SuggestionService) SearchPlaces(ctx context.Context, tripID string, q types.PlaceQuery, provider SuggestionProvider) ([]types.PlaceSuggestion, error) {
	if strings.TrimSpace(q.Location) == "" {
		trip, err := s.trips.GetTrip(tripID)
		if err != nil {
			return nil, err
		}
		q.Location = trip.Destination
	}

	key := "places:" + tripID
	token := s.tracker.Begin(key)

	var (
		out []types.PlaceSuggestion
		err error
	)
	switch provider {
	case ProviderAI:
		out, err = s.searchAI(ctx, q)
	default:
		out, err = s.Search(ctx, q)
	}

	if !s.tracker.Finish(key, token) {
		s.log.Infow("Discarding superseded place search", "tripID", tripID)
		return nil, errSuperseded("search")
	}
	return out, err
}

// Search is the structured place search. A scoped query with no results is
// retried exactly once without the type scope. No results after that is an
// empty slice, not an error.
func (s *SuggestionService) Search(ctx context.Context, q types.PlaceQuery) ([]types.PlaceSuggestion, error) {
	q.Location = strings.TrimSpace(q.Location)
	if q.Location == "" {
		return nil, errors.ValidationFailed("invalid search", "location is required")
	}
	if !s.places.Enabled() {
		return nil, places.ErrNotConfigured
	}

	activityType := types.ParseActivityType(string(q.ActivityType))
	max := q.MaxResults
	if max <= 0 {
		max = s.opts.MaxResults
	}
	if max > maxSearchResults {
		max = maxSearchResults
	}

	req := places.SearchRequest{
		TextQuery:      BuildSearchText(q.Query, q.Location, activityType),
		IncludedType:   PlaceTypes(activityType)[0],
		MaxResultCount: max,
	}
	if q.Anchor != nil {
		anchor, err := valueobjects.NewGeoPointFromCoordinates(q.Anchor)
		if err != nil {
			return nil, err
		}
		if !anchor.IsUnknown() {
			req.LocationBias = &places.LocationBias{Circle: places.Circle{
				Center: places.LatLng{Latitude: anchor.Latitude(), Longitude: anchor.Longitude()},
				Radius: anchorRadiusMeters,
			}}
		}
	}

	found, err := s.searchOnce(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		s.log.Debugw("Scoped search empty, retrying unscoped", "query", req.TextQuery, "includedType", req.IncludedType)
		req.IncludedType = ""
		if found, err = s.searchOnce(ctx, req); err != nil {
			return nil, err
		}
	}

	out := make([]types.PlaceSuggestion, 0, len(found))
	for _, p := range found {
		out = append(out, s.toSuggestion(p, q.Location))
	}
	return out, nil
}

func (s *SuggestionService) searchOnce(ctx context.Context, req places.SearchRequest) ([]places.Place, error) {
	start := time.Now()
	found, err := s.places.SearchText(ctx, req, places.SearchFieldMask)
	s.metrics.observe(adapterPlaces, start, err)
	return found, err
}

func (s *SuggestionService) toSuggestion(p places.Place, location string) types.PlaceSuggestion {
	out := types.PlaceSuggestion{
		Title:         unknownPlaceTitle,
		Location:      location,
		ImageURL:      s.places.FirstPhotoURL(p, s.opts.PhotoMaxWidth),
		PriceRange:    places.PriceRange(p.PriceLevel),
		GoogleMapsURL: p.GoogleMapsURI,
	}
	if p.DisplayName != nil && p.DisplayName.Text != "" {
		out.Title = p.DisplayName.Text
	}
	if p.FormattedAddress != "" {
		out.Location = p.FormattedAddress
	}
	if p.EditorialSummary != nil {
		out.Description = p.EditorialSummary.Text
	}
	if p.Location != nil {
		out.Lat, out.Lng = p.Location.Latitude, p.Location.Longitude
	}
	if p.Rating != nil {
		r := *p.Rating
		out.Rating = &r
	}
	return out
}

// searchAI is the generated variant of Search. Malformed output is an empty
// list.
func (s *SuggestionService) searchAI(ctx context.Context, q types.PlaceQuery) ([]types.PlaceSuggestion, error) {
	max := q.MaxResults
	if max <= 0 {
		max = s.opts.MaxResults
	}
	q.ActivityType = types.ParseActivityType(string(q.ActivityType))

	start := time.Now()
	var out []types.PlaceSuggestion
	err := s.gen.GenerateJSON(ctx, gemini.Request{
		Prompt:    typeSuggestionsPrompt(q, max),
		Schema:    placeSuggestionSchema,
		UseSearch: true,
	}, &out)
	s.metrics.observe(adapterAIPlaces, start, err)
	if err != nil {
		if errors.IsType(err, errors.ParseError) {
			s.log.Warnw("Ignoring malformed place suggestions", "error", err)
			return []types.PlaceSuggestion{}, nil
		}
		return nil, err
	}
	if len(out) > max {
		out = out[:max]
	}

	refs := make([]photoRef, len(out))
	for i := range out {
		refs[i] = photoRef{title: out[i].Title, location: out[i].Location, imageURL: &out[i].ImageURL}
	}
	s.enrichPhotos(ctx, refs)
	return out, nil
}

// RefreshAISuggestions regenerates the trip suggestion cache. The cache is
// replaced wholesale on success. Malformed model output yields an empty list
// and leaves the cache alone.
func (s *SuggestionService) RefreshAISuggestions(ctx context.Context, tripID string, interests []string) ([]types.AISuggestion, error) {
	trip, err := s.trips.GetTrip(tripID)
	if err != nil {
		return nil, err
	}

	key := "ai:" + tripID
	token := s.tracker.Begin(key)

	start := time.Now()
	var suggestions []types.AISuggestion
	err = s.gen.GenerateJSON(ctx, gemini.Request{
		Prompt:    aiSuggestionsPrompt(trip.Destination, interests, s.opts.SuggestionCount),
		Schema:    aiSuggestionSchema,
		UseSearch: true,
	}, &suggestions)
	s.metrics.observe(adapterAISuggestions, start, err)

	if err != nil {
		s.tracker.Finish(key, token)
		if errors.IsType(err, errors.ParseError) {
			s.log.Warnw("Ignoring malformed AI suggestions", "tripID", tripID, "error", err)
			return []types.AISuggestion{}, nil
		}
		return nil, err
	}

	for i := range suggestions {
		suggestions[i].Type = types.ParseActivityType(string(suggestions[i].Type))
	}
	refs := make([]photoRef, len(suggestions))
	for i := range suggestions {
		refs[i] = photoRef{title: suggestions[i].Title, location: suggestions[i].Location, imageURL: &suggestions[i].ImageURL}
	}
	s.enrichPhotos(ctx, refs)

	if !s.tracker.Finish(key, token) {
		s.log.Infow("Discarding superseded AI suggestions", "tripID", tripID)
		return nil, errSuperseded("suggestion")
	}

	if suggestions == nil {
		suggestions = []types.AISuggestion{}
	}
	if _, err := s.trips.ReplaceSuggestions(tripID, suggestions); err != nil {
		return nil, err
	}
	s.log.Infow("AI suggestions refreshed", "tripID", tripID, "count", len(suggestions))
	return suggestions, nil
}

// SuggestionsInFlight reports whether an AI refresh is running for tripID.
func (s *SuggestionService) SuggestionsInFlight(tripID string) bool {
	return s.tracker.InFlight("ai:" + tripID)
}

type photoRef struct {
	title    string
	location string
	imageURL *string
}

// enrichPhotos looks up a real photo for each entry concurrently. Failed or
// empty lookups keep whatever image the entry already had.
func (s *SuggestionService) enrichPhotos(ctx context.Context, refs []photoRef) {
	if !s.places.Enabled() || len(refs) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichConcurrency)
	for _, ref := range refs {
		ref := ref
		if strings.TrimSpace(ref.title) == "" {
			continue
		}
		g.Go(func() error {
			start := time.Now()
			found, err := s.places.SearchText(gctx, places.SearchRequest{
				TextQuery:      strings.TrimSpace(ref.title + " " + ref.location),
				MaxResultCount: 1,
			}, places.PhotoFieldMask)
			s.metrics.observe(adapterPhotos, start, err)
			if err != nil {
				s.log.Debugw("Photo lookup failed", "title", ref.title, "error", err)
				return nil
			}
			if len(found) > 0 {
				if url := s.places.FirstPhotoURL(found[0], s.opts.PhotoMaxWidth); url != "" {
					*ref.imageURL = url
				}
			}
			return nil
		})
	}
	_ = g.Wait()
}
