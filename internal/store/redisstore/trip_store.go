// Package redisstore keeps trips in a single Redis hash, one field per trip.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/NomadCrew/nomad-crew-planner/internal/store"
	"github.com/NomadCrew/nomad-crew-planner/logger"
	"github.com/NomadCrew/nomad-crew-planner/types"
)

// DefaultHashKey is the hash holding every trip document.
const DefaultHashKey = "trips"

type TripStore struct {
	client  redis.UniversalClient
	hashKey string
}

// NewTripStore wraps an existing client. The store owns the client and
// closes it on Close.
func NewTripStore(client redis.UniversalClient, hashKey string) *TripStore {
	if hashKey == "" {
		hashKey = DefaultHashKey
	}
	return &TripStore{client: client, hashKey: hashKey}
}

func (s *TripStore) Init(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis trip store init: %w", err)
	}
	logger.GetLogger().Infow("Redis trip store ready", "hashKey", s.hashKey)
	return nil
}

func (s *TripStore) GetAll(ctx context.Context) ([]*types.Trip, error) {
	docs, err := s.client.HGetAll(ctx, s.hashKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis get all trips: %w", err)
	}

	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	trips := make([]*types.Trip, 0, len(ids))
	for _, id := range ids {
		trip, err := store.Decode([]byte(docs[id]))
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}
	return trips, nil
}

func (s *TripStore) Get(ctx context.Context, id string) (*types.Trip, error) {
	doc, err := s.client.HGet(ctx, s.hashKey, id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get trip %s: %w", id, err)
	}
	return store.Decode([]byte(doc))
}

func (s *TripStore) Save(ctx context.Context, trip *types.Trip) (string, error) {
	id := store.EnsureID(trip)
	data, err := store.Encode(trip)
	if err != nil {
		return "", err
	}
	if err := s.client.HSet(ctx, s.hashKey, id, string(data)).Err(); err != nil {
		return "", fmt.Errorf("redis save trip %s: %w", id, err)
	}
	return id, nil
}

func (s *TripStore) Delete(ctx context.Context, id string) error {
	if err := s.client.HDel(ctx, s.hashKey, id).Err(); err != nil {
		return fmt.Errorf("redis delete trip %s: %w", id, err)
	}
	return nil
}

func (s *TripStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *TripStore) Close() error {
	return s.client.Close()
}
