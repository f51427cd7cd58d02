package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/NomadCrew/nomad-crew-planner/services"
	"github.com/NomadCrew/nomad-crew-planner/types"
)

type MockExtractionService struct {
	mock.Mock
}

func (m *MockExtractionService) Extract(ctx context.Context, tripID, text string) (types.ExtractionState, error) {
	args := m.Called(ctx, tripID, text)
	return args.Get(0).(types.ExtractionState), args.Error(1)
}

func (m *MockExtractionService) ExtractBookings(ctx context.Context, tripID, flight, hotel string) (types.ExtractionState, error) {
	args := m.Called(ctx, tripID, flight, hotel)
	return args.Get(0).(types.ExtractionState), args.Error(1)
}

func (m *MockExtractionService) GenerateItinerary(ctx context.Context, tripID string, days int) (types.ExtractionState, error) {
	args := m.Called(ctx, tripID, days)
	return args.Get(0).(types.ExtractionState), args.Error(1)
}

func (m *MockExtractionService) State(tripID string) types.ExtractionState {
	args := m.Called(tripID)
	return args.Get(0).(types.ExtractionState)
}

func (m *MockExtractionService) SetSelection(tripID string, indices []int) (types.ExtractionState, error) {
	args := m.Called(tripID, indices)
	return args.Get(0).(types.ExtractionState), args.Error(1)
}

func (m *MockExtractionService) Commit(tripID string) (*types.Trip, int, int, error) {
	args := m.Called(tripID)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Int(2), args.Error(3)
	}
	return args.Get(0).(*types.Trip), args.Int(1), args.Int(2), args.Error(3)
}

func (m *MockExtractionService) Clear(tripID string) {
	m.Called(tripID)
}

type MockSuggestionService struct {
	mock.Mock
}

func (m *MockSuggestionService) SearchPlaces(ctx context.Context, tripID string, q types.PlaceQuery, provider services.SuggestionProvider) ([]types.PlaceSuggestion, error) {
	args := m.Called(ctx, tripID, q, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.PlaceSuggestion), args.Error(1)
}

func (m *MockSuggestionService) RefreshAISuggestions(ctx context.Context, tripID string, interests []string) ([]types.AISuggestion, error) {
	args := m.Called(ctx, tripID, interests)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.AISuggestion), args.Error(1)
}

func (m *MockSuggestionService) SuggestionsInFlight(tripID string) bool {
	return m.Called(tripID).Bool(0)
}
