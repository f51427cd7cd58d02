// Package store defines the persistence gateway for trips. Each backend
// keeps one JSON document per trip keyed by trip id.
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/NomadCrew/nomad-crew-planner/types"
)

// TripStore is the durable key-value view of trips. Implementations are
// injected with an explicit lifecycle: Init before first use, Close at
// shutdown.
type TripStore interface {
	Init(ctx context.Context) error
	// GetAll returns every trip ordered by id.
	GetAll(ctx context.Context) ([]*types.Trip, error)
	// Get returns ErrNotFound when id is absent.
	Get(ctx context.Context, id string) (*types.Trip, error)
	// Save inserts or replaces the trip and returns its id. A trip without
	// an id gets a new one.
	Save(ctx context.Context, trip *types.Trip) (string, error)
	// Delete is a no-op for an absent id.
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close() error
}

// EnsureID assigns a fresh id to a trip that has none.
func EnsureID(trip *types.Trip) string {
	if trip.ID == "" {
		trip.ID = uuid.NewString()
	}
	return trip.ID
}
