// Package memory is an in-process TripStore used for local runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/NomadCrew/nomad-crew-planner/internal/store"
	"github.com/NomadCrew/nomad-crew-planner/types"
)

// TripStore keeps encoded documents so callers never share memory with the
// store.
type TripStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewTripStore() *TripStore {
	return &TripStore{}
}

func (s *TripStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.docs == nil {
		s.docs = make(map[string][]byte)
	}
	return nil
}

func (s *TripStore) GetAll(ctx context.Context) ([]*types.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.docs == nil {
		return nil, store.ErrNotInitialized
	}

	ids := make([]string, 0, len(s.docs))
	for id := range s.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	trips := make([]*types.Trip, 0, len(ids))
	for _, id := range ids {
		trip, err := store.Decode(s.docs[id])
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}
	return trips, nil
}

func (s *TripStore) Get(ctx context.Context, id string) (*types.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.docs == nil {
		return nil, store.ErrNotInitialized
	}
	data, ok := s.docs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return store.Decode(data)
}

func (s *TripStore) Save(ctx context.Context, trip *types.Trip) (string, error) {
	id := store.EnsureID(trip)
	data, err := store.Encode(trip)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.docs == nil {
		return "", store.ErrNotInitialized
	}
	s.docs[id] = data
	return id, nil
}

func (s *TripStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.docs == nil {
		return store.ErrNotInitialized
	}
	delete(s.docs, id)
	return nil
}

func (s *TripStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.docs == nil {
		return store.ErrNotInitialized
	}
	return nil
}

// Close drops every document.
func (s *TripStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = nil
	return nil
}
